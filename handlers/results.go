// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/rankedpick/cliparse"
	"github.com/danielhkuo/rankedpick/middleware"
	"github.com/danielhkuo/rankedpick/models"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// GetContest handles GET /contests/:slug
// Returns contest details and candidates, but NOT results (results are
// sealed until closed)
func (h *ResultsHandler) GetContest(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	// Get contest by share slug
	var c models.Contest
	err := h.db.QueryRow(`
		SELECT id, title, description, creator_name, method, status,
		       share_slug, closes_at, closed_at, final_snapshot_id, created_at
		FROM contest
		WHERE share_slug = $1
	`, shareSlug).Scan(
		&c.ID, &c.Title, &c.Description, &c.CreatorName,
		&c.Method, &c.Status, &c.ShareSlug, &c.ClosesAt,
		&c.ClosedAt, &c.FinalSnapshotID, &c.CreatedAt,
	)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		slog.Error("failed to query contest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	candidates, err := contestCandidates(h.db, c.ID)
	if err != nil {
		slog.Error("failed to query candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	response := models.ContestWithCandidates{
		Contest:    c,
		Candidates: candidates,
	}

	middleware.JSONResponse(w, http.StatusOK, response)
}

// GetResults handles GET /contests/:slug/results
// Returns 403 if contest is open (results are sealed)
// Returns the final round-by-round snapshot if contest is closed
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	// Get contest status and snapshot ID
	var contestID, title, status string
	var closedAt sql.NullTime
	var snapshotID sql.NullString
	err := h.db.QueryRow(`
		SELECT id, title, status, closed_at, final_snapshot_id
		FROM contest
		WHERE share_slug = $1
	`, shareSlug).Scan(&contestID, &title, &status, &closedAt, &snapshotID)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		slog.Error("failed to query contest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// CRITICAL: Results are sealed while contest is open
	if status != models.StatusClosed {
		middleware.ErrorResponse(w, http.StatusForbidden, "Results are hidden until contest is closed")
		return
	}

	// Contest is closed, return final snapshot
	if !snapshotID.Valid {
		slog.Error("closed contest has no snapshot", "slug", shareSlug)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Results not available")
		return
	}

	// Get snapshot
	var snapshot models.ResultSnapshot
	var payloadJSON []byte
	err = h.db.QueryRow(`
		SELECT id, contest_id, method, computed_at, payload
		FROM result_snapshot
		WHERE id = $1
	`, snapshotID.String).Scan(
		&snapshot.ID, &snapshot.ContestID, &snapshot.Method,
		&snapshot.ComputedAt, &payloadJSON,
	)

	if err != nil {
		slog.Error("failed to query snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Parse JSON payload
	if err := json.Unmarshal(payloadJSON, &snapshot.Payload); err != nil {
		slog.Error("failed to parse snapshot payload", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to parse results")
		return
	}

	response := models.ResultsResponse{
		ContestID: contestID,
		Title:     title,
		Status:    status,
		Results:   snapshot,
	}
	if closedAt.Valid {
		response.ClosedAt = &closedAt.Time
	}

	middleware.JSONResponse(w, http.StatusOK, response)
}

// GetBallotCount handles GET /contests/:slug/ballot-count (optional convenience endpoint)
// Returns the number of ballots submitted (visible even while open)
func (h *ResultsHandler) GetBallotCount(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	// Get contest ID
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

	// Count ballots
	var count int
	err = h.db.QueryRow(`
		SELECT COUNT(*) FROM ballot WHERE contest_id = $1
	`, contestID).Scan(&count)

	if err != nil {
		slog.Error("failed to count ballots", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]int{
		"ballot_count": count,
	})
}

// GetPreview handles GET /contests/:slug/preview
// Returns compact contest data for link previews
func (h *ResultsHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	// Get contest info with counts
	var title, status string
	var contestID string
	err := h.db.QueryRow(`
		SELECT id, title, status FROM contest WHERE share_slug = $1
	`, shareSlug).Scan(&contestID, &title, &status)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		slog.Error("failed to query contest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Get candidate count
	var candidateCount int
	err = h.db.QueryRow(`
		SELECT COUNT(*) FROM candidate WHERE contest_id = $1
	`, contestID).Scan(&candidateCount)
	if err != nil {
		slog.Error("failed to count candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Get ballot count
	var ballotCount int
	err = h.db.QueryRow(`
		SELECT COUNT(*) FROM ballot WHERE contest_id = $1
	`, contestID).Scan(&ballotCount)
	if err != nil {
		slog.Error("failed to count ballots", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PreviewResponse{
		Title:          title,
		Status:         status,
		CandidateCount: candidateCount,
		BallotCount:    ballotCount,
	})
}
