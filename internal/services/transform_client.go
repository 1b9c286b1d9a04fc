package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"family-ledger/internal/config"
	"family-ledger/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MaxStatementEntries bounds the number of entries a single transform
// response may carry. Larger responses indicate a malformed statement or a
// misbehaving transform service and are rejected outright.
const MaxStatementEntries = 5000

const (
	uploadPDFPath  = "/statements/upload-pdf"
	uploadPDFsPath = "/statements/upload-pdfs"
)

var transformRetryAttemptsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "transform_retry_attempts_total",
		Help: "Total number of retried statement transform calls",
	},
)

// StatementFile is an uploaded statement held in memory for the duration of
// the transform call. The body is rebuilt per attempt so retries never
// re-read a consumed stream. Password is forwarded to the transform service
// for password-protected PDF exports.
type StatementFile struct {
	Name        string
	ContentType string
	Password    string
	Content     []byte
}

// UploadRejectedError means the transform service refused the file itself.
// Retrying the same bytes can never succeed.
type UploadRejectedError struct {
	StatusCode int
	Message    string
}

func (e *UploadRejectedError) Error() string {
	return fmt.Sprintf("transform service rejected upload (status %d): %s", e.StatusCode, e.Message)
}

// UploadUnavailableError means the transform service could not be reached
// or kept failing after all retries were spent.
type UploadUnavailableError struct {
	StatusCode int
	Err        error
}

func (e *UploadUnavailableError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transform service unavailable (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transform service unavailable: %v", e.Err)
}

func (e *UploadUnavailableError) Unwrap() error {
	return e.Err
}

// TransformClient calls the external transform API that converts statement
// files into structured entries. Each attempt gets its own timeout; failed
// attempts back off linearly before the next try, and a circuit breaker
// sheds calls while the service is known to be down.
type TransformClient struct {
	baseURL        string
	httpClient     *http.Client
	uploadTimeout  time.Duration
	maxRetries     int
	retryBackoff   time.Duration
	circuitBreaker CircuitBreakerInterface
	logger         *slog.Logger
}

func NewTransformClient(cfg config.TransformConfig, circuitBreaker CircuitBreakerInterface, logger *slog.Logger) TransformClientInterface {
	return &TransformClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:     &http.Client{},
		uploadTimeout:  cfg.UploadTimeout,
		maxRetries:     cfg.MaxRetries,
		retryBackoff:   cfg.RetryBackoff,
		circuitBreaker: circuitBreaker,
		logger:         logger,
	}
}

// Transform uploads one statement file and returns the parsed entries.
// Terminal rejections (HTTP 400/422) surface as *UploadRejectedError after
// a single attempt; everything else is retried up to maxRetries times and
// surfaces as *UploadUnavailableError once attempts are exhausted.
func (c *TransformClient) Transform(ctx context.Context, file StatementFile) ([]models.RawStatementEntry, error) {
	return c.execute(ctx, uploadPDFPath, func() (*bytes.Buffer, string, error) {
		return buildSingleFileBody(file)
	})
}

// TransformBatch uploads several statement files in one multipart request.
// Per-file passwords travel as a JSON map keyed by filename.
func (c *TransformClient) TransformBatch(ctx context.Context, files []StatementFile) ([]models.RawStatementEntry, error) {
	if len(files) == 1 {
		return c.Transform(ctx, files[0])
	}
	return c.execute(ctx, uploadPDFsPath, func() (*bytes.Buffer, string, error) {
		return buildMultiFileBody(files)
	})
}

func (c *TransformClient) execute(ctx context.Context, path string, buildBody func() (*bytes.Buffer, string, error)) ([]models.RawStatementEntry, error) {
	if c.circuitBreaker != nil && c.circuitBreaker.IsOpen() {
		return nil, &UploadUnavailableError{Err: ErrCircuitBreakerOpen}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * c.retryBackoff
			transformRetryAttemptsTotal.Inc()
			c.logger.Warn("retrying statement transform",
				"event", "transform_retry",
				"attempt", attempt+1,
				"backoff", backoff.String(),
				"cause", lastErr.Error(),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, &UploadUnavailableError{Err: ctx.Err()}
			}
		}

		entries, err := c.attempt(ctx, path, buildBody)
		if err == nil {
			if c.circuitBreaker != nil {
				c.circuitBreaker.RecordSuccess()
			}
			return entries, nil
		}

		var rejected *UploadRejectedError
		if errors.As(err, &rejected) {
			return nil, rejected
		}

		lastErr = err

		var unavailable *UploadUnavailableError
		if errors.As(err, &unavailable) && unavailable.StatusCode > 0 && !isRetryableStatus(unavailable.StatusCode) {
			break
		}
	}

	if c.circuitBreaker != nil {
		c.circuitBreaker.RecordFailure()
	}

	var unavailable *UploadUnavailableError
	if errors.As(lastErr, &unavailable) {
		return nil, unavailable
	}
	return nil, &UploadUnavailableError{Err: lastErr}
}

func (c *TransformClient) attempt(ctx context.Context, path string, buildBody func() (*bytes.Buffer, string, error)) ([]models.RawStatementEntry, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	body, contentType, err := buildBody()
	if err != nil {
		return nil, &UploadRejectedError{StatusCode: 0, Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, &UploadUnavailableError{Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UploadUnavailableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		detail := readErrorBody(resp.Body)
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
			return nil, &UploadRejectedError{StatusCode: resp.StatusCode, Message: detail}
		}
		return nil, &UploadUnavailableError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected transform status: %s", detail),
		}
	}

	var entries []models.RawStatementEntry
	if err := json.NewDecoder(io.LimitReader(resp.Body, 32<<20)).Decode(&entries); err != nil {
		return nil, &UploadUnavailableError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding transform response: %w", err)}
	}

	if len(entries) > MaxStatementEntries {
		return nil, &UploadUnavailableError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("transform response carries %d entries, limit is %d", len(entries), MaxStatementEntries),
		}
	}

	return entries, nil
}

// buildSingleFileBody constructs a fresh multipart payload for one attempt.
func buildSingleFileBody(file StatementFile) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	if err := writeFilePart(writer, "file", file); err != nil {
		return nil, "", err
	}
	if file.Password != "" {
		if err := writer.WriteField("password", file.Password); err != nil {
			return nil, "", fmt.Errorf("writing password field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing multipart body: %w", err)
	}

	return buf, writer.FormDataContentType(), nil
}

func buildMultiFileBody(files []StatementFile) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	passwords := make(map[string]string)
	for _, file := range files {
		if err := writeFilePart(writer, "files", file); err != nil {
			return nil, "", err
		}
		if file.Password != "" {
			passwords[file.Name] = file.Password
		}
	}

	if len(passwords) > 0 {
		encoded, err := json.Marshal(passwords)
		if err != nil {
			return nil, "", fmt.Errorf("encoding passwords map: %w", err)
		}
		if err := writer.WriteField("passwords", string(encoded)); err != nil {
			return nil, "", fmt.Errorf("writing passwords field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing multipart body: %w", err)
	}

	return buf, writer.FormDataContentType(), nil
}

// writeFilePart adds one file part. Browsers sometimes upload PDFs as
// application/octet-stream; the part is rewrapped as application/pdf so the
// transform service recognizes it.
func writeFilePart(writer *multipart.Writer, fieldName string, file StatementFile) error {
	contentType := file.ContentType
	if isPDFFilename(file.Name) && (contentType == "" || contentType == "application/octet-stream") {
		contentType = "application/pdf"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, file.Name))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("creating multipart field: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return fmt.Errorf("writing multipart field: %w", err)
	}
	return nil
}

// isRetryableStatus reports whether a transform failure with this status is
// worth another attempt. Timeouts, throttling and server errors are
// transient; any other status will not change on retry.
func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return status >= 500
}

func isPDFFilename(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no response body"
	}
	return strings.TrimSpace(string(data))
}
