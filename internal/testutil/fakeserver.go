// Package testutil provides an in-memory file server for tests.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/filebox/filebox-client/internal/constants"
)

// RecordedRequest is one request seen by the fake server.
type RecordedRequest struct {
	Method string
	Path   string

	// Set for uploads only.
	FormFileName    string
	FormFileContent string
	FormFileType    string
	RequestID       string
}

// FakeServer serves /upload, /files, /download/{name} and /delete/{name}
// from memory and records every request.
type FakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string][]byte
	requests []RecordedRequest

	// Overrides; zero means the normal behaviour.
	UploadStatus int
	ListStatus   int
	DeleteStatus int

	// ListBody, when non-nil, is returned verbatim by GET /files.
	ListBody *string
}

// NewFakeServer starts a fake server holding the given files.
func NewFakeServer(initial map[string]string) *FakeServer {
	fs := &FakeServer{files: make(map[string][]byte)}
	for name, content := range initial {
		fs.files[name] = []byte(content)
	}

	r := mux.NewRouter()
	r.HandleFunc(constants.UploadPath, fs.handleUpload).Methods(http.MethodPost)
	r.HandleFunc(constants.ListPath, fs.handleList).Methods(http.MethodGet)
	r.HandleFunc(constants.DownloadPathPrefix+"{name}", fs.handleDownload).Methods(http.MethodGet)
	r.HandleFunc(constants.DeletePathPrefix+"{name}", fs.handleDelete).Methods(http.MethodDelete)

	fs.Server = httptest.NewServer(r)
	return fs
}

func (fs *FakeServer) record(req RecordedRequest) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.requests = append(fs.requests, req)
}

func (fs *FakeServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	rec := RecordedRequest{Method: r.Method, Path: r.URL.Path, RequestID: r.Header.Get("X-Request-ID")}

	file, header, err := r.FormFile(constants.UploadFormField)
	if err != nil {
		fs.record(rec)
		http.Error(w, "Error retrieving the file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fs.record(rec)
		http.Error(w, "Error reading the file", http.StatusInternalServerError)
		return
	}
	rec.FormFileName = header.Filename
	rec.FormFileContent = string(data)
	rec.FormFileType = header.Header.Get("Content-Type")
	fs.record(rec)

	if fs.UploadStatus != 0 {
		w.WriteHeader(fs.UploadStatus)
		io.WriteString(w, "upload rejected")
		return
	}

	fs.mu.Lock()
	fs.files[header.Filename] = data
	fs.mu.Unlock()
	io.WriteString(w, "File uploaded successfully: "+header.Filename)
}

func (fs *FakeServer) handleList(w http.ResponseWriter, r *http.Request) {
	fs.record(RecordedRequest{Method: r.Method, Path: r.URL.Path, RequestID: r.Header.Get("X-Request-ID")})

	if fs.ListStatus != 0 {
		w.WriteHeader(fs.ListStatus)
	}
	if fs.ListBody != nil {
		io.WriteString(w, *fs.ListBody)
		return
	}

	var b strings.Builder
	for _, name := range fs.Names() {
		b.WriteString(name)
		b.WriteString("\n")
	}
	io.WriteString(w, b.String())
}

func (fs *FakeServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	fs.record(RecordedRequest{Method: r.Method, Path: r.URL.Path, RequestID: r.Header.Get("X-Request-ID")})

	name := mux.Vars(r)["name"]
	fs.mu.Lock()
	data, ok := fs.files[name]
	fs.mu.Unlock()
	if !ok {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.Write(data)
}

func (fs *FakeServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	fs.record(RecordedRequest{Method: r.Method, Path: r.URL.Path, RequestID: r.Header.Get("X-Request-ID")})

	if fs.DeleteStatus != 0 {
		http.Error(w, "delete failed", fs.DeleteStatus)
		return
	}

	name := mux.Vars(r)["name"]
	fs.mu.Lock()
	_, ok := fs.files[name]
	delete(fs.files, name)
	fs.mu.Unlock()
	if !ok {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	io.WriteString(w, "File deleted successfully")
}

// Names returns the stored file names, sorted.
func (fs *FakeServer) Names() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	names := make([]string, 0, len(fs.files))
	for name := range fs.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Requests returns a copy of all recorded requests in arrival order.
func (fs *FakeServer) Requests() []RecordedRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]RecordedRequest, len(fs.requests))
	copy(out, fs.requests)
	return out
}

// Count returns how many requests matched method and path.
func (fs *FakeServer) Count(method, path string) int {
	n := 0
	for _, req := range fs.Requests() {
		if req.Method == method && req.Path == path {
			n++
		}
	}
	return n
}

// Reset forgets recorded requests; stored files are kept.
func (fs *FakeServer) Reset() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.requests = nil
}
