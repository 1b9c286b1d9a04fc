package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthMissingToken           ErrorCode = "AUTH_001"
	AuthExpiredToken           ErrorCode = "AUTH_002"
	AuthInvalidTokenFormat     ErrorCode = "AUTH_003"
	AuthInsufficientPermission ErrorCode = "AUTH_004"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationInvalidDate   ErrorCode = "VALIDATION_004"
	ValidationFileMissing   ErrorCode = "VALIDATION_005"
)

// Category error codes (CATEGORY_*)
const (
	CategoryNotFound       ErrorCode = "CATEGORY_001"
	CategoryInvalidID      ErrorCode = "CATEGORY_002"
	CategoryAlreadyExists  ErrorCode = "CATEGORY_003"
	CategoryDefaultMissing ErrorCode = "CATEGORY_004"
)

// Transaction error codes (TRANSACTION_*)
const (
	TransactionNotFound  ErrorCode = "TRANSACTION_001"
	TransactionInvalidID ErrorCode = "TRANSACTION_002"
)

// Statement upload error codes (UPLOAD_*)
const (
	UploadRejected    ErrorCode = "UPLOAD_001"
	UploadUnavailable ErrorCode = "UPLOAD_002"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_005"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Authentication errors
	AuthMissingToken:           "Authorization token is required",
	AuthExpiredToken:           "Authorization token has expired",
	AuthInvalidTokenFormat:     "Invalid authorization token format",
	AuthInsufficientPermission: "Insufficient permissions to access this resource",

	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationInvalidDate:   "Invalid date format or range",
	ValidationFileMissing:   "At least one statement file is required",

	// Category errors
	CategoryNotFound:       "Category not found",
	CategoryInvalidID:      "Invalid category ID format",
	CategoryAlreadyExists:  "A category with this name already exists",
	CategoryDefaultMissing: "Family has no default category configured",

	// Transaction errors
	TransactionNotFound:  "Transaction not found",
	TransactionInvalidID: "Invalid transaction ID format",

	// Upload errors
	UploadRejected:    "The statement file could not be parsed",
	UploadUnavailable: "Statement transform service is unavailable",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
