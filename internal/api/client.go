package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/filebox/filebox-client/internal/config"
	"github.com/filebox/filebox-client/internal/constants"
	"github.com/filebox/filebox-client/internal/http"
	"github.com/filebox/filebox-client/internal/logging"
	"github.com/filebox/filebox-client/internal/models"
	"github.com/filebox/filebox-client/internal/util/buffers"
	"github.com/filebox/filebox-client/internal/validation"
)

// retryLogger implements the retryablehttp.LeveledLogger interface on top
// of the application logger.
type retryLogger struct {
	logger *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// request-level info is logged by the client itself
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

// Response is a completed exchange with the server.
type Response struct {
	StatusCode int
	Body       string
	RequestID  string
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client talks to the file server's upload, list, download and delete endpoints.
type Client struct {
	httpClient *nethttp.Client
	baseURL    *url.URL
	userAgent  string
	logger     *logging.Logger
}

// NewClient creates a new API client
func NewClient(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("server base URL is empty")
	}
	baseURL, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server base URL: %w", err)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	httpClient, err := http.CreateClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	// Exactly one attempt unless the caller opted into retries.
	// PassthroughErrorHandler keeps the last response so a final 5xx on
	// DELETE is reported as a status error, not as a transport failure.
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = &retryLogger{logger: logger}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent()
	}

	return &Client{
		httpClient: retryClient.StandardClient(),
		baseURL:    baseURL,
		userAgent:  userAgent,
		logger:     logger,
	}, nil
}

// DownloadURL returns the absolute download URL for a file name.
func (c *Client) DownloadURL(fileName string) string {
	return c.baseURL.String() + constants.DownloadPathPrefix + url.PathEscape(fileName)
}

// doRequest sends one request and returns the raw response. Any failure to
// obtain a response is a *TransportError.
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*nethttp.Response, string, error) {
	requestID := uuid.NewString()

	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, requestID, &TransportError{Method: method, Path: path, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Msg("Sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, requestID, &TransportError{Method: method, Path: path, Err: err}
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Msg("Received response")

	return resp, requestID, nil
}

// readResponse drains and closes the body.
func (c *Client) readResponse(method, path, requestID string, resp *nethttp.Response) (*Response, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return &Response{StatusCode: resp.StatusCode, Body: string(body), RequestID: requestID}, nil
}

// UploadFile posts the content as multipart form field "file".
//
// The returned error is always a *TransportError; any HTTP status counts as
// a completed upload and is returned in the Response for the caller to log.
func (c *Client) UploadFile(ctx context.Context, fileName string, content io.Reader) (*Response, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, &TransportError{Method: nethttp.MethodPost, Path: constants.UploadPath, Err: fmt.Errorf("failed to read %s: %w", fileName, err)}
	}

	body, contentType, err := buildUploadBody(fileName, data)
	if err != nil {
		return nil, &TransportError{Method: nethttp.MethodPost, Path: constants.UploadPath, Err: err}
	}

	resp, requestID, err := c.doRequest(ctx, nethttp.MethodPost, constants.UploadPath, body, contentType)
	if err != nil {
		return nil, err
	}
	return c.readResponse(nethttp.MethodPost, constants.UploadPath, requestID, resp)
}

// buildUploadBody encodes a single-file multipart form. The part's
// Content-Type is sniffed from the content, as a browser would.
func buildUploadBody(fileName string, data []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		constants.UploadFormField, escapeQuotes(fileName)))
	header.Set("Content-Type", mimetype.Detect(data).String())

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("failed to write form part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// ListFiles fetches the newline-separated listing.
//
// Only transport failures are errors. The body is parsed whatever the
// status, matching the page's behaviour; a non-2xx status is logged.
func (c *Client) ListFiles(ctx context.Context) (models.FileListing, error) {
	resp, requestID, err := c.doRequest(ctx, nethttp.MethodGet, constants.ListPath, nil, "")
	if err != nil {
		return nil, err
	}

	result, err := c.readResponse(nethttp.MethodGet, constants.ListPath, requestID, resp)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		c.logger.Warn().
			Str("request_id", requestID).
			Int("status", result.StatusCode).
			Msg("Listing returned a non-success status")
	}

	return models.ParseListing(result.Body), nil
}

// DeleteFile deletes a file by name. A non-2xx answer is a *StatusError.
func (c *Client) DeleteFile(ctx context.Context, fileName string) error {
	if err := validation.ValidateFilename(fileName); err != nil {
		return err
	}
	path := constants.DeletePathPrefix + url.PathEscape(fileName)

	resp, requestID, err := c.doRequest(ctx, nethttp.MethodDelete, path, nil, "")
	if err != nil {
		return err
	}

	result, err := c.readResponse(nethttp.MethodDelete, path, requestID, resp)
	if err != nil {
		return err
	}
	if !result.OK() {
		return &StatusError{Method: nethttp.MethodDelete, Path: path, StatusCode: result.StatusCode, Body: strings.TrimSpace(result.Body)}
	}
	return nil
}

// SizeChecker is an optional interface for download writers. When the server
// announces a Content-Length, DownloadFile calls ExpectSize before writing
// and aborts with its error.
type SizeChecker interface {
	ExpectSize(n int64) error
}

// DownloadFile streams a file into w and returns the number of bytes written.
// A non-2xx answer is a *StatusError and nothing is written.
func (c *Client) DownloadFile(ctx context.Context, fileName string, w io.Writer) (int64, error) {
	if err := validation.ValidateFilename(fileName); err != nil {
		return 0, err
	}
	path := constants.DownloadPathPrefix + url.PathEscape(fileName)

	resp, requestID, err := c.doRequest(ctx, nethttp.MethodGet, path, nil, "")
	if err != nil {
		return 0, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result, err := c.readResponse(nethttp.MethodGet, path, requestID, resp)
		if err != nil {
			return 0, err
		}
		return 0, &StatusError{Method: nethttp.MethodGet, Path: path, StatusCode: result.StatusCode, Body: strings.TrimSpace(result.Body)}
	}
	defer resp.Body.Close()

	if sc, ok := w.(SizeChecker); ok && resp.ContentLength > 0 {
		if err := sc.ExpectSize(resp.ContentLength); err != nil {
			return 0, err
		}
	}

	buf := buffers.GetCopyBuffer()
	defer buffers.PutCopyBuffer(buf)

	// Plain Reader/Writer so CopyBuffer cannot bypass buf through
	// ReadFrom (*os.File) or WriteTo.
	n, err := io.CopyBuffer(struct{ io.Writer }{w}, struct{ io.Reader }{resp.Body}, *buf)
	if err != nil {
		return n, &TransportError{Method: nethttp.MethodGet, Path: path, Err: fmt.Errorf("failed to read download: %w", err)}
	}
	return n, nil
}
