// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballots

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// FileResource stores ballots in a text file, one line per ballot in the
// Parse encoding. The file is opened fresh for every read pass, so a
// FileResource can be handed out before the file exists.
type FileResource struct {
	Path string
}

// NewFileResource returns a resource backed by the file at path.
func NewFileResource(path string) *FileResource {
	return &FileResource{Path: path}
}

// Open starts a read pass over the file contents.
func (f *FileResource) Open() (Reader, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	return &lineReader{scanner: bufio.NewScanner(file), closer: file}, nil
}

// Create truncates the file, creating it if needed, and returns a writer
// for its new contents.
func (f *FileResource) Create() (Writer, error) {
	file, err := os.Create(f.Path)
	if err != nil {
		return nil, err
	}
	return &fileWriter{buf: bufio.NewWriter(file), file: file}, nil
}

// lineReader adapts a line-oriented source to the Reader interface and
// keeps the bookkeeping ReadError needs. A nil closer means the source has
// nothing to release.
type lineReader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	count   int
	cur     Ballot
	last    string
	err     error
	done    bool
}

func (r *lineReader) Next() bool {
	if r.done {
		return false
	}
	if !r.scanner.Scan() {
		r.done = true
		if err := r.scanner.Err(); err != nil {
			r.err = r.readError(err)
		}
		return false
	}

	b, err := Parse(r.scanner.Text())
	if err != nil {
		r.done = true
		r.err = r.readError(err)
		return false
	}

	r.count++
	r.cur = b
	r.last = b.String()
	return true
}

func (r *lineReader) readError(err error) *ReadError {
	return &ReadError{Ordinal: r.count + 1, Last: r.last, Err: err}
}

func (r *lineReader) Ballot() Ballot { return r.cur }

func (r *lineReader) Err() error { return r.err }

func (r *lineReader) Close() error {
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}

type fileWriter struct {
	buf  *bufio.Writer
	file *os.File
	err  error
}

func (w *fileWriter) Write(b Ballot) error {
	if w.err != nil {
		return w.err
	}
	if w.file == nil {
		return fmt.Errorf("write to closed ballot writer")
	}
	if _, err := fmt.Fprintln(w.buf, b.String()); err != nil {
		w.err = err
		return err
	}
	return nil
}

func (w *fileWriter) Close() error {
	if w.file == nil {
		return w.err
	}
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	w.file = nil

	switch {
	case w.err != nil:
	case flushErr != nil:
		w.err = flushErr
	case closeErr != nil:
		w.err = closeErr
	}
	return w.err
}
