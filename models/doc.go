// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateContestRequest: title, description, creator_name
  - AddCandidateRequest: label
  - ClaimUsernameRequest: username
  - SubmitBallotRequest: ranking ([]int, most preferred first)

# Response Types

Types for JSON responses:

  - CreateContestResponse: contest_id, admin_key
  - AddCandidateResponse: number, label
  - WithdrawCandidateResponse: number, withdrawn
  - PublishContestResponse: share_slug, share_url
  - ClaimUsernameResponse: voter_token
  - SubmitBallotResponse: ballot_id, message
  - MyBallotResponse: ranking, submitted_at
  - CloseContestResponse: closed_at, snapshot
  - PreviewResponse: title, status, candidate_count, ballot_count
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Contest: contest metadata and lifecycle state
  - Candidate: numbered candidate with label and withdrawn flag
  - Ballot: voter submission metadata with weight
  - BallotRank: single position in a ballot's ranking
  - SnapshotPayload: per-round totals, winner or tie, ballot weight
  - ResultSnapshot: immutable result record

# Constants

Status values:

	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"

Tabulation method:

	MethodIRV = "irv"
*/
package models
