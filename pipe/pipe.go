/*
Package pipe provides a bounded in-memory byte pipe between one writer and one reader.

Unlike io.Pipe, writes complete as soon as the bytes fit in the buffer, so the two
ends only wait on each other when the buffer is full or empty.
*/
package pipe

import (
	"errors"
	"io"

	"github.com/djherbis/buffer"
	"github.com/djherbis/nio/v3"
)

// ErrClosedPipe is returned by writes after the writer end has been closed,
// and by writes after the reader end has been closed without an error.
var ErrClosedPipe = io.ErrClosedPipe

var errInvalidSize = errors.New("pipe: size must be positive")

// Reader is the read half of a pipe.
//
// Read returns buffered bytes in write order, blocking while the pipe is empty and the
// writer is open. Once the writer is closed and the buffer drained, it returns io.EOF
// or the writer's error. CloseWithError makes pending and later writes fail with err,
// or with ErrClosedPipe when err is nil.
type Reader struct {
	*nio.PipeReader
}

// Writer is the write half of a pipe.
//
// Write blocks while the buffer is full. CloseWithError hands err to the reader after
// the remaining bytes, or io.EOF when err is nil.
type Writer struct {
	*nio.PipeWriter
}

// New returns both ends of a pipe buffering at most size bytes.
func New(size int) (*Reader, *Writer) {
	if size <= 0 {
		panic(errInvalidSize)
	}
	r, w := nio.Pipe(buffer.New(int64(size)))
	return &Reader{r}, &Writer{w}
}
