// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the rankedpick API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - ContestHandler: Contest lifecycle (create, publish, withdraw, close)
  - VotingHandler: Username claims and ballot submission
  - ResultsHandler: Contest info and results retrieval

Handlers are created via constructor functions that accept *sql.DB and Config:

	contestHandler := handlers.NewContestHandler(db, cfg)

# Contest Lifecycle

Contests progress through three states: draft → open → closed

	POST /contests                → CreateContest (returns admin_key)
	POST /contests/{id}/candidates → AddCandidate (draft only)
	POST /contests/{id}/candidates/{number}/withdraw → WithdrawCandidate (draft or open)
	POST /contests/{id}/publish   → PublishContest (generates share_slug)
	POST /contests/{id}/close     → CloseContest (runs the instant-runoff count)

Admin operations require the X-Admin-Key header.

# Voting Flow

Voters interact via the share slug:

	POST /contests/{slug}/claim-username → ClaimUsername (returns voter_token)
	POST /contests/{slug}/ballots        → SubmitBallot (create or update)
	GET  /contests/{slug}/my-ballot      → GetMyBallot (current ranking)

Voter operations require the X-Voter-Token header. A ballot is a ranking of
candidate numbers in preference order; an empty ranking is a valid undervote.

# Closing and Results

CloseContest claims the close with a guarded status update, loads the roster
and withdrawn set, and runs tally.Count over the contest's ballots through
db.BallotStore. The round-by-round outcome is stored as a result_snapshot
and the contest points at it via final_snapshot_id.

Results stay sealed until the contest is closed: GetResults returns 403 for
draft and open contests, then serves the stored snapshot verbatim.
*/
package handlers
