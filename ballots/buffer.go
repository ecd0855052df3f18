// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballots

import (
	"bufio"
	"fmt"
	"strings"
)

// BufferResource stores ballots in an in-memory text buffer using the same
// line encoding as FileResource. It is handy in tests and when building
// ballot text destined for another encoder.
type BufferResource struct {
	text string
}

// NewBufferResource returns a resource whose contents are the given ballot
// text, one line per ballot.
func NewBufferResource(text string) *BufferResource {
	return &BufferResource{text: text}
}

// Open starts a read pass over the contents as of the call. Writes that
// land afterwards do not disturb the pass.
func (b *BufferResource) Open() (Reader, error) {
	return &lineReader{scanner: bufio.NewScanner(strings.NewReader(b.text))}, nil
}

// Create empties the buffer immediately and returns a writer that appends
// to it.
func (b *BufferResource) Create() (Writer, error) {
	b.text = ""
	return &bufferWriter{res: b}, nil
}

// String returns the current contents of the buffer.
func (b *BufferResource) String() string {
	return b.text
}

type bufferWriter struct {
	res    *BufferResource
	closed bool
}

func (w *bufferWriter) Write(b Ballot) error {
	if w.closed {
		return fmt.Errorf("write to closed ballot writer")
	}
	w.res.text += b.String() + "\n"
	return nil
}

func (w *bufferWriter) Close() error {
	w.closed = true
	return nil
}
