// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation and the SQL-backed ballot store.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The schema sticks to SQL that both PostgreSQL and SQLite accept.

# Tables

The schema includes:

  - contest: Contest metadata and lifecycle state
  - candidate: Numbered candidates per contest
  - username_claim: Maps usernames to voter tokens
  - ballot: One ballot per voter per contest, with integer weight
  - ballot_rank: One row per ranked candidate, ordered by position
  - result_snapshot: Immutable tabulation results

# Relationships

	contest 1──* candidate
	contest 1──* username_claim
	contest 1──* ballot
	ballot  1──* ballot_rank
	contest 1──* result_snapshot

All foreign keys use ON DELETE CASCADE.

# Ballot Store

BallotStore adapts one contest's ballot rows to ballots.Resource, so the
tabulator streams them the same way it streams a file:

	store := db.NewBallotStore(conn, contestID)
	def, err := contest.New(title, labels, withdrawn, store)
	result, err := tally.Count(def)

Each Open runs a fresh query, which gives the multi-round count its
re-readable stream. Create replaces the contest's ballots inside a single
transaction committed on writer Close.

# Indexes

Performance indexes on:

  - contest.share_slug (unique)
  - contest.status
  - candidate.contest_id
  - ballot.contest_id
  - ballot.(contest_id, voter_token)
  - result_snapshot.contest_id
*/
package db
