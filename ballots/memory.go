// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballots

import "fmt"

// MemoryResource stores ballots in memory. The zero value is an empty
// resource ready to use. It is the natural home for fixtures and small
// generated contests.
type MemoryResource struct {
	ballots []Ballot
}

// NewMemoryResource returns a resource holding copies of the given ballots.
func NewMemoryResource(bs ...Ballot) *MemoryResource {
	m := &MemoryResource{}
	for _, b := range bs {
		m.ballots = append(m.ballots, b.Clone())
	}
	return m
}

// Open starts a read pass over a snapshot of the current contents. A later
// Create does not disturb readers already in flight.
func (m *MemoryResource) Open() (Reader, error) {
	return &memoryReader{ballots: m.ballots}, nil
}

// Create empties the resource immediately and returns a writer that appends
// to it.
func (m *MemoryResource) Create() (Writer, error) {
	m.ballots = nil
	return &memoryWriter{res: m}, nil
}

type memoryReader struct {
	ballots []Ballot
	pos     int
	cur     Ballot
}

func (r *memoryReader) Next() bool {
	if r.pos >= len(r.ballots) {
		return false
	}
	r.cur = r.ballots[r.pos].Clone()
	r.pos++
	return true
}

func (r *memoryReader) Ballot() Ballot { return r.cur }

func (r *memoryReader) Err() error { return nil }

func (r *memoryReader) Close() error { return nil }

type memoryWriter struct {
	res    *MemoryResource
	closed bool
}

func (w *memoryWriter) Write(b Ballot) error {
	if w.closed {
		return fmt.Errorf("write to closed ballot writer")
	}
	w.res.ballots = append(w.res.ballots, b.Clone())
	return nil
}

func (w *memoryWriter) Close() error {
	w.closed = true
	return nil
}
