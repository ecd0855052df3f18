// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/rankedpick/auth"
	"github.com/danielhkuo/rankedpick/cliparse"
	"github.com/danielhkuo/rankedpick/middleware"
	"github.com/danielhkuo/rankedpick/models"
)

type VotingHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg}
}

// ClaimUsername handles POST /contests/:slug/claim-username
func (h *VotingHandler) ClaimUsername(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	// Parse request
	var req models.ClaimUsernameRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Username == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username is required")
		return
	}

	// Validate username (basic validation)
	if len(req.Username) < 2 || len(req.Username) > 50 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username must be 2-50 characters")
		return
	}

	// Find contest by share slug
	var contestID string
	var status string
	err := h.db.QueryRow(`
		SELECT id, status FROM contest WHERE share_slug = $1
	`, shareSlug).Scan(&contestID, &status)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		slog.Error("failed to query contest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Can only claim username for open contests
	if status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Contest is not open for voting")
		return
	}

	// Generate voter token
	voterToken, err := auth.GenerateVoterToken()
	if err != nil {
		slog.Error("failed to generate voter token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to claim username")
		return
	}

	// Insert username claim (UNIQUE constraint will prevent duplicates)
	_, err = h.db.Exec(`
		INSERT INTO username_claim (contest_id, username, voter_token, created_at)
		VALUES ($1, $2, $3, $4)
	`, contestID, req.Username, voterToken, time.Now())

	if err != nil {
		// Uniqueness violation; the message shape differs per driver
		if strings.Contains(err.Error(), "UNIQUE constraint failed") ||
			strings.Contains(err.Error(), "duplicate key value") {
			middleware.ErrorResponse(w, http.StatusConflict, "Username already taken")
			return
		}
		slog.Error("failed to insert username claim", "error", err, "contest_id", contestID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to claim username")
		return
	}

	slog.Info("username claimed", "contest_id", contestID, "username", req.Username)

	middleware.JSONResponse(w, http.StatusCreated, models.ClaimUsernameResponse{
		VoterToken: voterToken,
	})
}

// SubmitBallot handles POST /contests/:slug/ballots
// The body carries the voter's ranking as candidate numbers in preference
// order. An empty ranking is accepted and recorded as an undervote.
func (h *VotingHandler) SubmitBallot(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	// Get voter token from header
	voterToken := r.Header.Get("X-Voter-Token")
	if voterToken == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-Token header required")
		return
	}

	// Parse request
	var req models.SubmitBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Find contest by share slug
	var contestID string
	var status string
	err := h.db.QueryRow(`
		SELECT id, status FROM contest WHERE share_slug = $1
	`, shareSlug).Scan(&contestID, &status)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		slog.Error("failed to query contest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Can only vote on open contests
	if status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Contest is not open for voting")
		return
	}

	// Verify voter token is valid for this contest
	var exists bool
	err = h.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM username_claim
			WHERE contest_id = $1 AND voter_token = $2
		)
	`, contestID, voterToken).Scan(&exists)

	if err != nil {
		slog.Error("failed to verify voter token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !exists {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid voter token for this contest")
		return
	}

	// Get all valid candidate numbers for this contest. Withdrawn candidates
	// stay rankable; the count transfers their votes.
	rows, err := h.db.Query(`
		SELECT number FROM candidate WHERE contest_id = $1
	`, contestID)
	if err != nil {
		slog.Error("failed to query candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	validNumbers := make(map[int]bool)
	for rows.Next() {
		var number int
		if err := rows.Scan(&number); err != nil {
			slog.Error("failed to scan candidate", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		validNumbers[number] = true
	}

	// Verify the ranking names known candidates, each at most once
	seen := make(map[int]bool, len(req.Ranking))
	for _, number := range req.Ranking {
		if !validNumbers[number] {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid candidate number: "+strconv.Itoa(number))
			return
		}
		if seen[number] {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Duplicate candidate number: "+strconv.Itoa(number))
			return
		}
		seen[number] = true
	}

	// Get IP hash for tracking
	clientIP := middleware.GetClientIP(r)
	ipHash := auth.HashIP(clientIP, h.cfg.AdminKeySalt) // Reuse admin salt for IP hashing
	userAgent := r.UserAgent()

	// Begin transaction for UPSERT
	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Check if ballot already exists
	var existingBallotID string
	err = tx.QueryRow(`
		SELECT id FROM ballot WHERE contest_id = $1 AND voter_token = $2
	`, contestID, voterToken).Scan(&existingBallotID)

	if err != nil && err != sql.ErrNoRows {
		slog.Error("failed to query ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	isUpdate := err == nil
	var ballotID string

	if isUpdate {
		// Update existing ballot
		ballotID = existingBallotID
		_, err = tx.Exec(`
			UPDATE ballot
			SET submitted_at = $1, ip_hash = $2, user_agent = $3
			WHERE id = $4
		`, time.Now(), ipHash, userAgent, ballotID)

		if err != nil {
			slog.Error("failed to update ballot", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update ballot")
			return
		}

		// Delete old ranking
		_, err = tx.Exec(`DELETE FROM ballot_rank WHERE ballot_id = $1`, ballotID)
		if err != nil {
			slog.Error("failed to delete old ranking", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update ballot")
			return
		}
	} else {
		// Create new ballot; voter ballots always carry weight 1
		ballotID = uuid.NewString()
		_, err = tx.Exec(`
			INSERT INTO ballot (id, contest_id, voter_token, weight, submitted_at, ip_hash, user_agent)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, ballotID, contestID, voterToken, 1, time.Now(), ipHash, userAgent)

		if err != nil {
			slog.Error("failed to insert ballot", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit ballot")
			return
		}
	}

	// Insert ranking rows in preference order
	for i, number := range req.Ranking {
		_, err = tx.Exec(`
			INSERT INTO ballot_rank (ballot_id, position, candidate)
			VALUES ($1, $2, $3)
		`, ballotID, i+1, number)

		if err != nil {
			slog.Error("failed to insert ranking", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save ranking")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit ballot")
		return
	}

	message := "Ballot submitted successfully"
	if isUpdate {
		message = "Ballot updated successfully"
	}

	slog.Info("ballot submitted", "contest_id", contestID, "ballot_id", ballotID, "is_update", isUpdate)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitBallotResponse{
		BallotID: ballotID,
		Message:  message,
	})
}

// GetMyBallot handles GET /contests/:slug/my-ballot
// Returns the caller's current ranking so a revote can start from it
func (h *VotingHandler) GetMyBallot(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	voterToken := r.Header.Get("X-Voter-Token")
	if voterToken == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-Token header required")
		return
	}

	// Find contest by share slug
	var contestID string
	err := h.db.QueryRow(`
		SELECT id FROM contest WHERE share_slug = $1
	`, shareSlug).Scan(&contestID)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		slog.Error("failed to query contest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Find the voter's ballot
	var ballotID string
	var submittedAt time.Time
	err = h.db.QueryRow(`
		SELECT id, submitted_at FROM ballot
		WHERE contest_id = $1 AND voter_token = $2
	`, contestID, voterToken).Scan(&ballotID, &submittedAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "No ballot submitted yet")
		return
	}
	if err != nil {
		slog.Error("failed to query ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Load the ranking in preference order
	rows, err := h.db.Query(`
		SELECT candidate FROM ballot_rank
		WHERE ballot_id = $1
		ORDER BY position
	`, ballotID)
	if err != nil {
		slog.Error("failed to query ranking", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	ranking := []int{}
	for rows.Next() {
		var number int
		if err := rows.Scan(&number); err != nil {
			slog.Error("failed to scan ranking", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		ranking = append(ranking, number)
	}

	middleware.JSONResponse(w, http.StatusOK, models.MyBallotResponse{
		Ranking:     ranking,
		SubmittedAt: submittedAt,
	})
}
