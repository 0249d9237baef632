package board

import (
	"unsafe"

	"github.com/tginick/otters/internal/dsp"
)

// Reader and Writer erase the difference between an effect's own
// internal buffer and a raw pointer bound in from outside the board
// (an FFI caller's audio buffer) so effect code never branches on it.
type Reader interface {
	BufRead(idx int) float32
}

type Writer interface {
	BufWrite(idx int, value float32)
}

type nullReader struct{}

func (nullReader) BufRead(idx int) float32 { return 0 }

type nullWriter struct{}

func (nullWriter) BufWrite(idx int, value float32) {}

// internalReader/internalWriter wrap the board's own SimpleFloatBuffer.
// Reads are by offset from the write cursor; writes ignore idx and
// simply advance the cursor, matching the buffer's own semantics.
type internalReader struct {
	buf *dsp.SimpleFloatBuffer
}

func (r internalReader) BufRead(idx int) float32 { return r.buf.Read(idx) }

type internalWriter struct {
	buf *dsp.SimpleFloatBuffer
}

func (w internalWriter) BufWrite(idx int, value float32) { w.buf.Write(value) }

// externalReader/externalWriter read and write directly through a
// pointer bound by BindInput/BindOutput, indexed by idx.
type externalReader struct {
	ptr *float32
}

func (r externalReader) BufRead(idx int) float32 {
	if r.ptr == nil {
		return 0
	}
	base := unsafe.Pointer(r.ptr)
	return *(*float32)(unsafe.Add(base, idx*int(unsafe.Sizeof(float32(0)))))
}

type externalWriter struct {
	ptr *float32
}

func (w externalWriter) BufWrite(idx int, value float32) {
	if w.ptr == nil {
		return
	}
	base := unsafe.Pointer(w.ptr)
	*(*float32)(unsafe.Add(base, idx*int(unsafe.Sizeof(float32(0))))) = value
}
