package constants

import (
	"time"
)

// Server endpoint contract.
// The file server exposes exactly these routes; names are appended as a
// single escaped path segment.
const (
	// UploadPath accepts a multipart POST with the file in UploadFormField
	UploadPath = "/upload"

	// ListPath returns newline-separated file names as text/plain
	ListPath = "/files"

	// DownloadPathPrefix is followed by the file name
	DownloadPathPrefix = "/download/"

	// DeletePathPrefix is followed by the file name
	DeletePathPrefix = "/delete/"

	// UploadFormField is the multipart field name the server reads
	UploadFormField = "file"
)

// View defaults
const (
	// FileListElementID is the id of the list container in the page markup
	FileListElementID = "fileList"

	// DownloadLinkText is the label of each entry's download link
	DownloadLinkText = " Download"

	// DeleteButtonText is the label of each entry's delete control
	DeleteButtonText = " Delete"
)

// Client defaults
const (
	// DefaultBaseURL is used when neither the config file, the environment
	// nor a flag provides one
	DefaultBaseURL = "http://localhost:8080"

	// DefaultMaxRetries - one attempt per operation, the caller opts in to more
	DefaultMaxRetries = 0

	// MaxMaxRetries caps the opt-in retry count
	MaxMaxRetries = 10

	// DefaultRetryWaitMin - minimum backoff between attempts when retries are enabled
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax - maximum backoff between attempts when retries are enabled
	DefaultRetryWaitMax = 30 * time.Second

	// DefaultUserAgent identifies the client to the server
	DefaultUserAgent = "filebox-client"

	// DefaultProxyPort is used when proxy.port is unset
	DefaultProxyPort = 8080
)

// HTTP transport configuration
const (
	// HTTPDialTimeout - timeout for establishing TCP connections
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive - keep-alive interval for TCP connections
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPIdleConnTimeout - how long idle connections stay in the pool
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshakes
	HTTPTLSHandshakeTimeout = 30 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue responses
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPMaxIdleConnsPerHost - the client talks to a single host
	HTTPMaxIdleConnsPerHost = 16

	// ProxyWarmupTimeout bounds the optional proxy warmup request
	ProxyWarmupTimeout = 15 * time.Second
)

// Downloads
const (
	// CopyBufferSize - size of pooled buffers used to stream downloads to disk
	CopyBufferSize = 256 * 1024
)

// Event bus configuration
const (
	// EventBusDefaultBuffer - default buffer size for event bus channels
	EventBusDefaultBuffer = 256

	// EventBusMaxBuffer - maximum allowed buffer size
	EventBusMaxBuffer = 4096
)

// Logging
const (
	// LogTimeFormat is the console timestamp layout
	LogTimeFormat = "15:04:05"

	// LogFileMaxSizeMB - rotate the log file after this many megabytes
	LogFileMaxSizeMB = 10

	// LogFileMaxBackups - number of rotated log files kept
	LogFileMaxBackups = 5

	// LogFileMaxAgeDays - rotated log files older than this are removed
	LogFileMaxAgeDays = 30
)
