// Package filemanager implements the file-management page: upload a file,
// load and render the listing, and delete a listed file.
//
// Failures are logged and swallowed. Every operation also returns a Result
// so a host can pick an exit code or a message without parsing logs.
package filemanager

import (
	"context"
	"errors"
	"io"

	"github.com/filebox/filebox-client/internal/api"
	"github.com/filebox/filebox-client/internal/events"
	"github.com/filebox/filebox-client/internal/logging"
	"github.com/filebox/filebox-client/internal/models"
	"github.com/filebox/filebox-client/internal/view"
)

// ErrNoFileSelected is returned when SubmitUpload is called without content.
var ErrNoFileSelected = errors.New("no file selected")

// FileService is the subset of *api.Client the manager needs.
type FileService interface {
	UploadFile(ctx context.Context, fileName string, content io.Reader) (*api.Response, error)
	ListFiles(ctx context.Context) (models.FileListing, error)
	DeleteFile(ctx context.Context, fileName string) error
}

// Committer owns the file list element. *state.Page implements it.
type Committer interface {
	Commit(items []view.ItemNode)
	SetError(err error)
}

// SelectedFile is the file picked in the upload form.
type SelectedFile struct {
	Name    string
	Content io.Reader
}

// ResultKind classifies how an operation ended.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultTransportError
	ResultStatusError
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultTransportError:
		return "transport_error"
	case ResultStatusError:
		return "status_error"
	default:
		return "unknown"
	}
}

// Result is the outcome of one operation.
type Result struct {
	Kind       ResultKind
	StatusCode int    // 0 when no response was received or the status is not tracked
	Body       string // upload response body, delete failure body
	Err        error
}

// OK reports whether the operation met its success criterion.
func (r Result) OK() bool {
	return r.Kind == ResultSuccess
}

// Manager performs upload, list and delete against a FileService and
// renders the listing into a Committer.
type Manager struct {
	service  FileService
	page     Committer
	logger   *logging.Logger
	eventBus *events.EventBus
}

// NewManager creates a manager. logger and eventBus may be nil.
func NewManager(service FileService, page Committer, logger *logging.Logger, eventBus *events.EventBus) *Manager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Manager{
		service:  service,
		page:     page,
		logger:   logger,
		eventBus: eventBus,
	}
}

// SubmitUpload posts the selected file. When the request completes, whatever
// the HTTP status, the response body is logged and the listing is reloaded
// once. A transport failure is logged and nothing is reloaded.
func (m *Manager) SubmitUpload(ctx context.Context, file SelectedFile) Result {
	if file.Content == nil {
		m.logger.Error().Msg("Upload skipped: no file selected")
		m.eventBus.PublishLog(events.ErrorLevel, "no file selected", "upload", file.Name, ErrNoFileSelected)
		return Result{Kind: ResultTransportError, Err: ErrNoFileSelected}
	}

	resp, err := m.service.UploadFile(ctx, file.Name, file.Content)
	if err != nil {
		m.fail("upload", file.Name, err)
		return classify(err)
	}

	m.logger.Info().
		Str("file", file.Name).
		Str("request_id", resp.RequestID).
		Int("status", resp.StatusCode).
		Str("response", resp.Body).
		Msg("Upload completed")
	m.eventBus.PublishOperation(events.EventUploadCompleted, events.OperationEvent{
		Operation:  "upload",
		FileName:   file.Name,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		RequestID:  resp.RequestID,
	})

	m.LoadFiles(ctx)

	return Result{Kind: ResultSuccess, StatusCode: resp.StatusCode, Body: resp.Body}
}

// LoadFiles fetches the listing and commits a full re-render. On a transport
// failure the error is logged and the committed list is left as it was.
func (m *Manager) LoadFiles(ctx context.Context) Result {
	listing, err := m.service.ListFiles(ctx)
	if err != nil {
		m.fail("list", "", err)
		m.page.SetError(err)
		return classify(err)
	}

	items := view.Render(listing)
	m.page.Commit(items)

	m.logger.Debug().Int("files", len(items)).Msg("File list rendered")
	return Result{Kind: ResultSuccess}
}

// DeleteFile deletes the file named by action. On 2xx the success is logged
// and the listing is reloaded once. Any other outcome is logged and the list
// is left untouched.
func (m *Manager) DeleteFile(ctx context.Context, action view.DeleteAction) Result {
	name := action.FileName

	if err := m.service.DeleteFile(ctx, name); err != nil {
		m.fail("delete", name, err)
		return classify(err)
	}

	m.logger.Info().Str("file", name).Msg("File deleted")
	m.eventBus.PublishOperation(events.EventDeleteCompleted, events.OperationEvent{
		Operation: "delete",
		FileName:  name,
	})

	m.LoadFiles(ctx)

	return Result{Kind: ResultSuccess}
}

// fail logs err to the diagnostic channel and publishes it.
func (m *Manager) fail(operation, fileName string, err error) {
	event := m.logger.Error().Err(err).Str("operation", operation)
	if fileName != "" {
		event = event.Str("file", fileName)
	}

	op := events.OperationEvent{Operation: operation, FileName: fileName, Error: err}
	var se *api.StatusError
	if errors.As(err, &se) {
		event.Int("status", se.StatusCode).Msg("Failed to " + operation + " file")
		op.StatusCode = se.StatusCode
		op.Body = se.Body
	} else {
		event.Msg("Error")
	}

	m.eventBus.PublishOperation(events.EventOperationFailed, op)
}

// classify maps an error to a Result. A rejected file name is reported as a
// transport failure since no request was sent.
func classify(err error) Result {
	var se *api.StatusError
	if errors.As(err, &se) {
		return Result{Kind: ResultStatusError, StatusCode: se.StatusCode, Body: se.Body, Err: err}
	}
	return Result{Kind: ResultTransportError, Err: err}
}
