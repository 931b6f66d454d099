package log

import (
	"errors"
	"fmt"
	"io"
)

var errWriterAlreadyLoaded = errors.New("io.Writer already loaded")

// Add appends a new writer to the multiwriter slice
func (mw *multiWriter) Add(writer io.Writer) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	for i := range mw.writers {
		if mw.writers[i] == writer {
			return errWriterAlreadyLoaded
		}
	}
	mw.writers = append(mw.writers, writer)
	return nil
}

// Write writes p to every loaded writer in order, holding the lock so that
// concurrent log lines are never interleaved
func (mw *multiWriter) Write(p []byte) (int, error) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	for _, w := range mw.writers {
		n, err := w.Write(p)
		if err != nil {
			return n, fmt.Errorf("%T %w", w, err)
		}
		if n != len(p) {
			return n, fmt.Errorf("%T %w", w, io.ErrShortWrite)
		}
	}
	return len(p), nil
}

// MultiWriter make and return a new copy of multiWriter
func MultiWriter(writers ...io.Writer) (*multiWriter, error) {
	mw := &multiWriter{}
	for x := range writers {
		if err := mw.Add(writers[x]); err != nil {
			return nil, err
		}
	}
	return mw, nil
}
