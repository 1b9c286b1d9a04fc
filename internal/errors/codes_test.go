package errors

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// CodesTestSuite defines the test suite for error codes
type CodesTestSuite struct {
	suite.Suite
}

// TestCodesTestSuite runs the test suite
func TestCodesTestSuite(t *testing.T) {
	suite.Run(t, new(CodesTestSuite))
}

// TestGetErrorMessage_ValidCode tests getting message for valid error codes
func (s *CodesTestSuite) TestGetErrorMessage_ValidCode() {
	testCases := []struct {
		name     string
		code     ErrorCode
		expected string
	}{
		{
			name:     "Auth Missing Token",
			code:     AuthMissingToken,
			expected: "Authorization token is required",
		},
		{
			name:     "Validation General",
			code:     ValidationGeneral,
			expected: "Validation failed",
		},
		{
			name:     "Category Not Found",
			code:     CategoryNotFound,
			expected: "Category not found",
		},
		{
			name:     "Category Default Missing",
			code:     CategoryDefaultMissing,
			expected: "Family has no default category configured",
		},
		{
			name:     "Upload Rejected",
			code:     UploadRejected,
			expected: "The statement file could not be parsed",
		},
		{
			name:     "Upload Unavailable",
			code:     UploadUnavailable,
			expected: "Statement transform service is unavailable",
		},
		{
			name:     "System Internal Error",
			code:     SystemInternalError,
			expected: "An unexpected error occurred. Please contact support with trace ID",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			message := GetErrorMessage(tc.code)
			s.Equal(tc.expected, message)
		})
	}
}

// TestGetErrorMessage_UnknownCode tests fallback message for unknown codes
func (s *CodesTestSuite) TestGetErrorMessage_UnknownCode() {
	message := GetErrorMessage(ErrorCode("UNKNOWN_999"))
	s.Equal("An error occurred", message)
}

// TestIsValidErrorCode tests error code validation
func (s *CodesTestSuite) TestIsValidErrorCode() {
	s.True(IsValidErrorCode(UploadRejected))
	s.True(IsValidErrorCode(SystemRateLimitExceeded))
	s.False(IsValidErrorCode(ErrorCode("NOT_A_CODE")))
	s.False(IsValidErrorCode(ErrorCode("")))
}

// TestAllErrorCodesHaveMessages verifies every declared code has a default message
func (s *CodesTestSuite) TestAllErrorCodesHaveMessages() {
	codes := []ErrorCode{
		AuthMissingToken, AuthExpiredToken, AuthInvalidTokenFormat, AuthInsufficientPermission,
		ValidationGeneral, ValidationRequiredField, ValidationInvalidFormat,
		ValidationInvalidDate, ValidationFileMissing,
		CategoryNotFound, CategoryInvalidID, CategoryAlreadyExists, CategoryDefaultMissing,
		TransactionNotFound, TransactionInvalidID,
		UploadRejected, UploadUnavailable,
		SystemInternalError, SystemDatabaseError, SystemServiceUnavailable,
		SystemConfigurationError, SystemRateLimitExceeded,
	}

	for _, code := range codes {
		s.True(IsValidErrorCode(code), "code %s should be registered", code)
		s.NotEqual("An error occurred", GetErrorMessage(code), "code %s should have a specific message", code)
	}
}
