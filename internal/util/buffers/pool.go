// Package buffers provides reusable byte buffers for streaming downloads.
package buffers

import (
	"sync"
	"sync/atomic"

	"github.com/filebox/filebox-client/internal/constants"
)

var (
	copyAllocations int64 // Total copy buffer allocations (new creates)

	// copyPool provides CopyBufferSize buffers for io.CopyBuffer
	copyPool = &sync.Pool{
		New: func() interface{} {
			atomic.AddInt64(&copyAllocations, 1)
			buf := make([]byte, constants.CopyBufferSize)
			return &buf
		},
	}
)

// GetCopyBuffer retrieves a buffer from the pool.
// Return it with PutCopyBuffer when done.
//
// Usage:
//
//	buf := buffers.GetCopyBuffer()
//	defer buffers.PutCopyBuffer(buf)
//	n, err := io.CopyBuffer(dst, src, *buf)
func GetCopyBuffer() *[]byte {
	return copyPool.Get().(*[]byte)
}

// PutCopyBuffer returns a buffer to the pool for reuse.
// Only buffers of the correct size are pooled. The buffer is cleared first
// so file contents do not linger across downloads.
func PutCopyBuffer(buf *[]byte) {
	if buf != nil && len(*buf) == constants.CopyBufferSize {
		clear(*buf)
		copyPool.Put(buf)
	}
}

// Stats returns buffer pool statistics.
type Stats struct {
	CopyBufferSize  int   // Size of copy buffers (bytes)
	CopyAllocations int64 // Total copy buffer allocations (new creates)
}

// GetStats returns current pool statistics.
func GetStats() Stats {
	return Stats{
		CopyBufferSize:  constants.CopyBufferSize,
		CopyAllocations: atomic.LoadInt64(&copyAllocations),
	}
}
