package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"family-ledger/internal/dto"
	apperrors "family-ledger/internal/errors"
	"family-ledger/internal/services"

	"github.com/labstack/echo/v4"
)

// StatementHandler handles statement upload and recategorization requests
type StatementHandler struct {
	importService  services.ImportServiceInterface
	maxUploadBytes int64
}

// NewStatementHandler creates a new statement handler
func NewStatementHandler(importService services.ImportServiceInterface, maxUploadBytes int64) *StatementHandler {
	return &StatementHandler{
		importService:  importService,
		maxUploadBytes: maxUploadBytes,
	}
}

// ImportStatement accepts one or more bank statement files and imports their transactions
// @Summary Import bank statements
// @Description Upload statement file(s), convert them to entries via the transform service and import new transactions into the family ledger
// @Tags Statements
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Statement file (PDF, CSV or image); repeat the field to upload several"
// @Param password formData string false "Password for protected PDF exports"
// @Success 200 {object} dto.ImportSummaryResponse "Import summary with inserted, skipped and error counts"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_005 - Statement file is missing"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Missing or invalid authentication"
// @Failure 422 {object} errors.ErrorResponse "UPLOAD_001 - The statement file could not be parsed"
// @Failure 500 {object} errors.ErrorResponse "CATEGORY_004 - Family has no default category, or SYSTEM_001"
// @Failure 502 {object} errors.ErrorResponse "UPLOAD_002 - Statement transform service is unavailable"
// @Router /statements/import [post]
func (h *StatementHandler) ImportStatement(c echo.Context) error {
	familyID, err := getFamilyIDFromContext(c)
	if err != nil {
		return SendError(c, apperrors.AuthMissingToken)
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apperrors.AuthMissingToken)
	}

	fileHeaders, err := statementFileHeaders(c)
	if err != nil || len(fileHeaders) == 0 {
		return SendError(c, apperrors.ValidationFileMissing)
	}

	password := c.FormValue("password")
	files := make([]services.StatementFile, 0, len(fileHeaders))
	for _, fileHeader := range fileHeaders {
		if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
			return SendError(c, apperrors.ValidationGeneral,
				apperrors.WithDetails("Statement file exceeds the maximum upload size"))
		}

		file, err := readStatementFile(fileHeader)
		if err != nil {
			return SendSystemError(c, err)
		}
		file.Password = password
		files = append(files, file)
	}

	summary, err := h.importService.ImportStatement(c.Request().Context(), familyID, userID, files)
	if err != nil {
		return h.sendImportError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewImportSummaryResponse(summary))
}

// statementFileHeaders collects uploaded statements from the "file" multipart
// field, accepting the field repeated for multi-statement imports.
func statementFileHeaders(c echo.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	return form.File["file"], nil
}

// Recategorize re-runs tag matching over the family's uncategorized transactions
// @Summary Recategorize transactions
// @Description Re-run category tag matching over transactions currently on the family's default category
// @Tags Statements
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.RecategorizeResponse "Number of transactions scanned and updated"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Missing or invalid authentication"
// @Failure 500 {object} errors.ErrorResponse "CATEGORY_004 - Family has no default category, or SYSTEM_001"
// @Router /transactions/recategorize [post]
func (h *StatementHandler) Recategorize(c echo.Context) error {
	familyID, err := getFamilyIDFromContext(c)
	if err != nil {
		return SendError(c, apperrors.AuthMissingToken)
	}

	result, err := h.importService.Recategorize(c.Request().Context(), familyID)
	if err != nil {
		if errors.Is(err, services.ErrDefaultCategoryMissing) {
			return SendError(c, apperrors.CategoryDefaultMissing)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewRecategorizeResponse(result))
}

func (h *StatementHandler) sendImportError(c echo.Context, err error) error {
	var rejected *services.UploadRejectedError
	if errors.As(err, &rejected) {
		return SendError(c, apperrors.UploadRejected, apperrors.WithDetails(rejected.Message))
	}

	var unavailable *services.UploadUnavailableError
	if errors.As(err, &unavailable) {
		return SendError(c, apperrors.UploadUnavailable)
	}

	if errors.Is(err, services.ErrDefaultCategoryMissing) {
		return SendError(c, apperrors.CategoryDefaultMissing)
	}

	return SendSystemError(c, err)
}

func readStatementFile(fileHeader *multipart.FileHeader) (services.StatementFile, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return services.StatementFile{}, err
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return services.StatementFile{}, err
	}

	return services.StatementFile{
		Name:        fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
