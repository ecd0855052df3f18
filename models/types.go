package models

import (
	"time"

	"github.com/danielhkuo/rankedpick/tally"
)

// Contest status constants
const (
	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Tabulation method constants
const (
	MethodIRV = "irv"
)

// Request types

type CreateContestRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatorName string `json:"creator_name"`
}

type AddCandidateRequest struct {
	Label string `json:"label"`
}

type ClaimUsernameRequest struct {
	Username string `json:"username"`
}

// Candidate numbers in preference order, most preferred first.
// An empty ranking is a valid undervote.
type SubmitBallotRequest struct {
	Ranking []int `json:"ranking"`
}

// Response types

type CreateContestResponse struct {
	ContestID string `json:"contest_id"`
	AdminKey  string `json:"admin_key"`
}

type AddCandidateResponse struct {
	Number int    `json:"number"`
	Label  string `json:"label"`
}

type WithdrawCandidateResponse struct {
	Number    int  `json:"number"`
	Withdrawn bool `json:"withdrawn"`
}

type PublishContestResponse struct {
	ShareSlug string `json:"share_slug"`
	ShareURL  string `json:"share_url"`
}

type ClaimUsernameResponse struct {
	VoterToken string `json:"voter_token"`
}

type SubmitBallotResponse struct {
	BallotID string `json:"ballot_id"`
	Message  string `json:"message"`
}

type MyBallotResponse struct {
	Ranking     []int     `json:"ranking"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type CloseContestResponse struct {
	ClosedAt time.Time      `json:"closed_at"`
	Snapshot ResultSnapshot `json:"snapshot"`
}

type PreviewResponse struct {
	Title          string `json:"title"`
	Status         string `json:"status"`
	CandidateCount int    `json:"candidate_count"`
	BallotCount    int    `json:"ballot_count"`
}

// Domain types

type Contest struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CreatorName     string     `json:"creator_name"`
	Method          string     `json:"method"`
	Status          string     `json:"status"`
	ShareSlug       *string    `json:"share_slug,omitempty"`
	ClosesAt        *time.Time `json:"closes_at,omitempty"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	FinalSnapshotID *string    `json:"final_snapshot_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type Candidate struct {
	ContestID string `json:"contest_id"`
	Number    int    `json:"number"`
	Label     string `json:"label"`
	Withdrawn bool   `json:"withdrawn"`
}

type ContestWithCandidates struct {
	Contest    Contest     `json:"contest"`
	Candidates []Candidate `json:"candidates"`
}

type Ballot struct {
	ID          string    `json:"id"`
	ContestID   string    `json:"contest_id"`
	VoterToken  string    `json:"-"` // Never expose in JSON
	Weight      int       `json:"weight"`
	SubmittedAt time.Time `json:"submitted_at"`
	IPHash      *string   `json:"-"` // Never expose in JSON
	UserAgent   *string   `json:"-"` // Never expose in JSON
}

type BallotRank struct {
	BallotID  string `json:"ballot_id"`
	Position  int    `json:"position"`
	Candidate int    `json:"candidate"`
}

// IRV Result Types

// SnapshotPayload is the tabulation outcome stored with a closed contest.
// Winner is nil when the count ended in a tie.
type SnapshotPayload struct {
	Rounds       []tally.Round `json:"rounds"`
	Winner       *int          `json:"winner,omitempty"`
	Tie          bool          `json:"tie,omitempty"`
	BallotWeight int           `json:"ballot_weight"`
}

type ResultSnapshot struct {
	ID         string          `json:"id"`
	ContestID  string          `json:"contest_id"`
	Method     string          `json:"method"`
	ComputedAt time.Time       `json:"computed_at"`
	Payload    SnapshotPayload `json:"payload"`
}

type ResultsResponse struct {
	ContestID string         `json:"contest_id"`
	Title     string         `json:"title"`
	Status    string         `json:"status"`
	ClosedAt  *time.Time     `json:"closed_at,omitempty"`
	Results   ResultSnapshot `json:"results"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
