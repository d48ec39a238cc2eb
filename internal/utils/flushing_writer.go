package utils

import (
	"io"
	"sync"
)

// FlushingWriter serializes writes and flushes buffered writers after each one, so that streamed plan
// documents reach the terminal as soon as they are encoded.
type FlushingWriter struct {
	writer       io.Writer
	mutex        sync.Mutex
	bytesWritten int64
}

// NewFlushingWriter wraps writer. Writers that are already wrapped are returned as is.
func NewFlushingWriter(writer io.Writer) *FlushingWriter {
	if writer == nil {
		return nil
	}
	if existing, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return existing
	}
	return &FlushingWriter{writer: writer}
}

// Write delegates to the underlying writer and flushes it when it exposes Flush.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return 0, nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	written, writeError := flushingWriter.writer.Write(data)
	flushingWriter.bytesWritten += int64(written)
	if writeError != nil {
		return written, writeError
	}

	if flushableWriter, implementsFlush := flushingWriter.writer.(interface{ Flush() error }); implementsFlush {
		if flushError := flushableWriter.Flush(); flushError != nil {
			return written, flushError
		}
	}

	return written, nil
}

// BytesWritten reports how many bytes reached the underlying writer.
func (flushingWriter *FlushingWriter) BytesWritten() int64 {
	if flushingWriter == nil {
		return 0
	}
	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()
	return flushingWriter.bytesWritten
}
