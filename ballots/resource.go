// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballots

import "fmt"

// Reader streams ballots one at a time. Usage mirrors sql.Rows:
//
//	r, err := res.Open()
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//	for r.Next() {
//		b := r.Ballot()
//		...
//	}
//	if err := r.Err(); err != nil {
//		return err
//	}
type Reader interface {
	// Next advances to the next ballot. It returns false when the stream
	// ends or a ballot cannot be produced; Err tells the two apart.
	Next() bool

	// Ballot returns the ballot read by the last successful Next.
	Ballot() Ballot

	// Err returns the error that stopped Next, or nil after a clean end of
	// stream. Failures to produce a ballot are reported as a *ReadError.
	Err() error

	// Close releases the underlying handle. It is safe to call more than
	// once.
	Close() error
}

// Writer stores ballots one at a time. Ballots are not guaranteed durable
// until Close returns nil.
type Writer interface {
	Write(Ballot) error
	Close() error
}

// Resource is a rewindable home for a ballot collection, such as a file, an
// in-memory slice, or a database table. Open and Create follow the os
// package: Open starts a fresh read pass over the current contents, and
// Create discards the current contents before returning a writer for the
// replacement. A resource may serve any number of read passes at once, each
// advancing independently. Writing concurrently with any other access on
// the same resource is not supported.
type Resource interface {
	Open() (Reader, error)
	Create() (Writer, error)
}

// ReadError reports a ballot that could not be produced mid-stream. Ordinal
// is the 1-based position of the failing ballot, and Last is the line
// encoding of the ballot most recently produced, or "" when the failure
// happened before any ballot was read. Tabulation stops on the first
// ReadError; partial tallies are never returned.
type ReadError struct {
	Ordinal int
	Last    string
	Err     error
}

func (e *ReadError) Error() string {
	if e.Last == "" {
		return fmt.Sprintf("ballot %d: %v (no ballots read)", e.Ordinal, e.Err)
	}
	return fmt.Sprintf("ballot %d: %v (last ballot read: %q)", e.Ordinal, e.Err, e.Last)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ReadAll drains one full read pass and returns every ballot in order.
func ReadAll(res Resource) ([]Ballot, error) {
	r, err := res.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []Ballot
	for r.Next() {
		out = append(out, r.Ballot())
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteAll replaces the contents of res with the given ballots.
func WriteAll(res Resource, bs []Ballot) error {
	w, err := res.Create()
	if err != nil {
		return err
	}
	for _, b := range bs {
		if err := w.Write(b); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
