// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/rankedpick/ballots"
)

// BallotStore exposes one contest's ballot and ballot_rank rows as a
// ballots.Resource, so the tabulator can stream them round by round
// without ever loading the whole contest into memory.
type BallotStore struct {
	db        *sql.DB
	contestID string
}

func NewBallotStore(db *sql.DB, contestID string) *BallotStore {
	return &BallotStore{db: db, contestID: contestID}
}

// Open starts a read pass over the contest's ballots in submission order.
func (s *BallotStore) Open() (ballots.Reader, error) {
	rows, err := s.db.Query(`
		SELECT b.id, b.weight, r.candidate
		FROM ballot b
		LEFT JOIN ballot_rank r ON r.ballot_id = b.id
		WHERE b.contest_id = $1
		ORDER BY b.submitted_at, b.id, r.position`,
		s.contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ballots: %w", err)
	}
	return &rowReader{rows: rows}, nil
}

// Create replaces the contest's ballots. The old rows are deleted and the
// new ones inserted in a single transaction, committed when the writer is
// closed; readers opened before that commit keep seeing the old contents.
func (s *BallotStore) Create() (ballots.Writer, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Explicit delete of rankings first; SQLite only cascades when
	// foreign_keys is switched on.
	_, err = tx.Exec(`
		DELETE FROM ballot_rank
		WHERE ballot_id IN (SELECT id FROM ballot WHERE contest_id = $1)`,
		s.contestID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to clear rankings: %w", err)
	}
	_, err = tx.Exec(`DELETE FROM ballot WHERE contest_id = $1`, s.contestID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to clear ballots: %w", err)
	}

	return &storeWriter{tx: tx, contestID: s.contestID}, nil
}

// rowReader groups the flat ballot/rank join back into ballots. The query
// orders rank rows within each ballot, so one row of lookahead is enough to
// spot the boundary between ballots.
type rowReader struct {
	rows  *sql.Rows
	cur   ballots.Ballot
	count int
	last  string
	err   error
	done  bool

	pending       bool
	pendingID     string
	pendingWeight int
	pendingChoice sql.NullInt64
}

func (r *rowReader) Next() bool {
	if r.err != nil || r.done {
		return false
	}

	if !r.pending {
		if !r.rows.Next() {
			r.done = true
			if err := r.rows.Err(); err != nil {
				r.fail(err)
			}
			return false
		}
		if err := r.rows.Scan(&r.pendingID, &r.pendingWeight, &r.pendingChoice); err != nil {
			r.fail(err)
			return false
		}
	}

	id := r.pendingID
	weight := r.pendingWeight
	var choices []int
	if r.pendingChoice.Valid {
		choices = append(choices, int(r.pendingChoice.Int64))
	}
	r.pending = false

	for r.rows.Next() {
		var choice sql.NullInt64
		var nextID string
		var nextWeight int
		if err := r.rows.Scan(&nextID, &nextWeight, &choice); err != nil {
			r.fail(err)
			return false
		}
		if nextID != id {
			r.pending = true
			r.pendingID = nextID
			r.pendingWeight = nextWeight
			r.pendingChoice = choice
			break
		}
		if choice.Valid {
			choices = append(choices, int(choice.Int64))
		}
	}
	if !r.pending {
		if err := r.rows.Err(); err != nil {
			r.fail(err)
			return false
		}
		r.done = true
	}

	r.cur = ballots.Ballot{Weight: weight, Choices: choices}
	r.count++
	r.last = r.cur.String()
	return true
}

func (r *rowReader) fail(err error) {
	r.err = &ballots.ReadError{Ordinal: r.count + 1, Last: r.last, Err: err}
}

func (r *rowReader) Ballot() ballots.Ballot { return r.cur }

func (r *rowReader) Err() error { return r.err }

func (r *rowReader) Close() error { return r.rows.Close() }

type storeWriter struct {
	tx        *sql.Tx
	contestID string
	err       error
}

func (w *storeWriter) Write(b ballots.Ballot) error {
	if w.err != nil {
		return w.err
	}
	if w.tx == nil {
		return errors.New("write to closed ballot writer")
	}
	if b.Weight < 1 {
		w.err = fmt.Errorf("ballot weight must be positive, got %d", b.Weight)
		return w.err
	}

	id := uuid.NewString()
	_, err := w.tx.Exec(`
		INSERT INTO ballot (id, contest_id, weight, submitted_at)
		VALUES ($1, $2, $3, $4)`,
		id, w.contestID, b.Weight, time.Now().UTC())
	if err != nil {
		w.err = fmt.Errorf("failed to insert ballot: %w", err)
		return w.err
	}

	for i, c := range b.Choices {
		_, err := w.tx.Exec(`
			INSERT INTO ballot_rank (ballot_id, position, candidate)
			VALUES ($1, $2, $3)`,
			id, i+1, c)
		if err != nil {
			w.err = fmt.Errorf("failed to insert ranking: %w", err)
			return w.err
		}
	}
	return nil
}

// Close commits the replacement, or rolls the whole thing back if any
// write failed so the store keeps its previous contents.
func (w *storeWriter) Close() error {
	if w.tx == nil {
		return nil
	}
	tx := w.tx
	w.tx = nil
	if w.err != nil {
		tx.Rollback()
		return w.err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ballots: %w", err)
	}
	return nil
}
