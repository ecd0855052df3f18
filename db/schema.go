// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The SQL is kept to the dialect both PostgreSQL and SQLite accept.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Contests
CREATE TABLE IF NOT EXISTS contest (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    creator_name TEXT NOT NULL,
    method TEXT NOT NULL DEFAULT 'irv',
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'open', 'closed')),
    share_slug TEXT UNIQUE,
    closes_at TIMESTAMP,
    closed_at TIMESTAMP,
    final_snapshot_id TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_contest_share_slug ON contest(share_slug);
CREATE INDEX IF NOT EXISTS idx_contest_status ON contest(status);

-- Candidates, numbered 1..N per contest
CREATE TABLE IF NOT EXISTS candidate (
    contest_id TEXT NOT NULL REFERENCES contest(id) ON DELETE CASCADE,
    number INTEGER NOT NULL CHECK (number > 0),
    label TEXT NOT NULL,
    withdrawn BOOLEAN NOT NULL DEFAULT FALSE,
    PRIMARY KEY (contest_id, number)
);

CREATE INDEX IF NOT EXISTS idx_candidate_contest_id ON candidate(contest_id);

-- Username Claims
CREATE TABLE IF NOT EXISTS username_claim (
    contest_id TEXT NOT NULL REFERENCES contest(id) ON DELETE CASCADE,
    username TEXT NOT NULL,
    voter_token TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (contest_id, voter_token),
    UNIQUE (contest_id, username)
);

CREATE INDEX IF NOT EXISTS idx_username_claim_contest_id ON username_claim(contest_id);

-- Ballots; voter_token is NULL for bulk-loaded ballots
CREATE TABLE IF NOT EXISTS ballot (
    id TEXT PRIMARY KEY,
    contest_id TEXT NOT NULL REFERENCES contest(id) ON DELETE CASCADE,
    voter_token TEXT,
    weight INTEGER NOT NULL DEFAULT 1 CHECK (weight > 0),
    submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    ip_hash TEXT,
    user_agent TEXT,
    UNIQUE (contest_id, voter_token)
);

CREATE INDEX IF NOT EXISTS idx_ballot_contest_id ON ballot(contest_id);
CREATE INDEX IF NOT EXISTS idx_ballot_voter_token ON ballot(contest_id, voter_token);

-- Rankings, one row per ranked candidate
CREATE TABLE IF NOT EXISTS ballot_rank (
    ballot_id TEXT NOT NULL REFERENCES ballot(id) ON DELETE CASCADE,
    position INTEGER NOT NULL CHECK (position > 0),
    candidate INTEGER NOT NULL CHECK (candidate > 0),
    PRIMARY KEY (ballot_id, position),
    UNIQUE (ballot_id, candidate)
);

-- Result Snapshots
CREATE TABLE IF NOT EXISTS result_snapshot (
    id TEXT PRIMARY KEY,
    contest_id TEXT NOT NULL REFERENCES contest(id) ON DELETE CASCADE,
    method TEXT NOT NULL,
    computed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_result_snapshot_contest_id ON result_snapshot(contest_id);
`
