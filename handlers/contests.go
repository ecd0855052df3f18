// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/rankedpick/auth"
	"github.com/danielhkuo/rankedpick/cliparse"
	"github.com/danielhkuo/rankedpick/contest"
	"github.com/danielhkuo/rankedpick/db"
	"github.com/danielhkuo/rankedpick/middleware"
	"github.com/danielhkuo/rankedpick/models"
	"github.com/danielhkuo/rankedpick/tally"
)

type ContestHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewContestHandler(db *sql.DB, cfg cliparse.Config) *ContestHandler {
	return &ContestHandler{db: db, cfg: cfg}
}

// CreateContest handles POST /contests
func (h *ContestHandler) CreateContest(w http.ResponseWriter, r *http.Request) {
	var req models.CreateContestRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.CreatorName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "creator_name is required")
		return
	}

	contestID := uuid.NewString()

	// Generate admin key
	adminKey := auth.GenerateAdminKey(contestID, h.cfg.AdminKeySalt)

	// Insert contest into database
	_, err := h.db.Exec(`
		INSERT INTO contest (id, title, description, creator_name, method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, contestID, req.Title, req.Description, req.CreatorName, models.MethodIRV, models.StatusDraft, time.Now())

	if err != nil {
		slog.Error("failed to insert contest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create contest")
		return
	}

	slog.Info("contest created", "contest_id", contestID, "creator", req.CreatorName)

	// Return response
	middleware.JSONResponse(w, http.StatusCreated, models.CreateContestResponse{
		ContestID: contestID,
		AdminKey:  adminKey,
	})
}

// AddCandidate handles POST /contests/:id/candidates
func (h *ContestHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	contestID := r.PathValue("id")
	if contestID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "contest_id is required")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(contestID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	// Parse request
	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Label == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "label is required")
		return
	}

	// Check contest exists and is in draft status
	var status string
	err := h.db.QueryRow("SELECT status FROM contest WHERE id = $1", contestID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		slog.Error("failed to query contest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.StatusDraft {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot add candidates to non-draft contest")
		return
	}

	// Assign the next candidate number inside a transaction so concurrent
	// adds cannot hand out the same number twice.
	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var number int
	err = tx.QueryRow(`
		SELECT COALESCE(MAX(number), 0) + 1 FROM candidate WHERE contest_id = $1
	`, contestID).Scan(&number)
	if err != nil {
		slog.Error("failed to pick candidate number", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create candidate")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO candidate (contest_id, number, label)
		VALUES ($1, $2, $3)
	`, contestID, number, req.Label)

	if err != nil {
		slog.Error("failed to insert candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create candidate")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create candidate")
		return
	}

	slog.Info("candidate added", "contest_id", contestID, "number", number)

	middleware.JSONResponse(w, http.StatusCreated, models.AddCandidateResponse{
		Number: number,
		Label:  req.Label,
	})
}

// WithdrawCandidate handles POST /contests/:id/candidates/:number/withdraw
// A withdrawn candidate stays on printed and submitted ballots; the count
// skips over them, so votes transfer to each ballot's next choice.
func (h *ContestHandler) WithdrawCandidate(w http.ResponseWriter, r *http.Request) {
	contestID := r.PathValue("id")
	if contestID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "contest_id is required")
		return
	}

	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || number < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate number must be a positive integer")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(contestID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	// Check contest exists and is not closed; withdrawals are allowed while
	// voting is still running.
	var status string
	err = h.db.QueryRow("SELECT status FROM contest WHERE id = $1", contestID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		slog.Error("failed to query contest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status == models.StatusClosed {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot withdraw candidates from closed contest")
		return
	}

	result, err := h.db.Exec(`
		UPDATE candidate
		SET withdrawn = TRUE
		WHERE contest_id = $1 AND number = $2
	`, contestID, number)

	if err != nil {
		slog.Error("failed to withdraw candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to withdraw candidate")
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to withdraw candidate")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	slog.Info("candidate withdrawn", "contest_id", contestID, "number", number)

	middleware.JSONResponse(w, http.StatusOK, models.WithdrawCandidateResponse{
		Number:    number,
		Withdrawn: true,
	})
}

// PublishContest handles POST /contests/:id/publish
func (h *ContestHandler) PublishContest(w http.ResponseWriter, r *http.Request) {
	contestID := r.PathValue("id")
	if contestID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "contest_id is required")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(contestID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	// Check contest exists and is in draft status
	var status string
	var candidateCount, continuingCount int
	err := h.db.QueryRow(`
		SELECT c.status, COUNT(ca.number), COUNT(CASE WHEN NOT ca.withdrawn THEN 1 END)
		FROM contest c
		LEFT JOIN candidate ca ON c.id = ca.contest_id
		WHERE c.id = $1
		GROUP BY c.status
	`, contestID).Scan(&status, &candidateCount, &continuingCount)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		slog.Error("failed to query contest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.StatusDraft {
		middleware.ErrorResponse(w, http.StatusConflict, "Contest is not in draft status")
		return
	}

	if candidateCount < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Contest must have at least 2 candidates")
		return
	}
	if continuingCount < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Contest must have at least 1 continuing candidate")
		return
	}

	// Generate share slug
	shareSlug := auth.GenerateShareSlug(contestID, h.cfg.ContestSlugSalt)

	// Update contest to open status
	_, err = h.db.Exec(`
		UPDATE contest
		SET status = $1, share_slug = $2
		WHERE id = $3
	`, models.StatusOpen, shareSlug, contestID)

	if err != nil {
		slog.Error("failed to publish contest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to publish contest")
		return
	}

	slog.Info("contest published", "contest_id", contestID, "share_slug", shareSlug)

	// Build share URL (could be configurable)
	baseURL := "https://rankedpick.com" // TODO: Make this configurable
	shareURL := baseURL + "/contests/" + shareSlug

	middleware.JSONResponse(w, http.StatusOK, models.PublishContestResponse{
		ShareSlug: shareSlug,
		ShareURL:  shareURL,
	})
}

// GetContestAdmin handles GET /contests/:id/admin
// Returns contest details for admin access using contest ID and admin key
func (h *ContestHandler) GetContestAdmin(w http.ResponseWriter, r *http.Request) {
	contestID := r.PathValue("id")
	if contestID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "contest_id is required")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(contestID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	// Get contest by ID
	var c models.Contest
	err := h.db.QueryRow(`
		SELECT id, title, description, creator_name, method, status,
		       share_slug, closes_at, closed_at, final_snapshot_id, created_at
		FROM contest
		WHERE id = $1
	`, contestID).Scan(
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

// CloseContest handles POST /contests/:id/close
// Runs the instant-runoff count over the stored ballots and seals the
// outcome in a result snapshot.
func (h *ContestHandler) CloseContest(w http.ResponseWriter, r *http.Request) {
	contestID := r.PathValue("id")
	if contestID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "contest_id is required")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(contestID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	// Check contest exists and is open
	var title, status string
	err := h.db.QueryRow("SELECT title, status FROM contest WHERE id = $1", contestID).Scan(&title, &status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		slog.Error("failed to query contest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Contest is not open")
		return
	}

	// Claim the close before counting. Ballot submission checks for open
	// status, so after this update the ballot set cannot change under the
	// count.
	claim, err := h.db.Exec(`
		UPDATE contest SET status = $1 WHERE id = $2 AND status = $3
	`, models.StatusClosed, contestID, models.StatusOpen)
	if err != nil {
		slog.Error("failed to close contest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close contest")
		return
	}
	if n, err := claim.RowsAffected(); err != nil || n == 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "Contest is not open")
		return
	}

	reopen := func() {
		if _, err := h.db.Exec(`
			UPDATE contest SET status = $1 WHERE id = $2
		`, models.StatusOpen, contestID); err != nil {
			slog.Error("failed to reopen contest", "error", err, "contest_id", contestID)
		}
	}

	// Build the contest definition over the stored ballots
	candidates, err := contestCandidates(h.db, contestID)
	if err != nil {
		reopen()
		slog.Error("failed to query candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	labels, withdrawn := candidateRoster(candidates)

	def, err := contest.New(title, labels, withdrawn, db.NewBallotStore(h.db, contestID))
	if err != nil {
		reopen()
		slog.Error("invalid contest definition", "error", err, "contest_id", contestID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to tabulate results")
		return
	}

	result, err := tally.Count(def)
	if err != nil {
		reopen()
		slog.Error("failed to tabulate contest", "error", err, "contest_id", contestID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to tabulate results")
		return
	}

	payload := models.SnapshotPayload{
		Rounds:       result.Rounds,
		Tie:          result.Tie,
		BallotWeight: result.BallotWeight(),
	}
	if result.HasWinner() {
		winner := result.Winner
		payload.Winner = &winner
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		reopen()
		slog.Error("failed to marshal snapshot payload", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save results")
		return
	}

	snapshotID := uuid.NewString()
	closedAt := time.Now()

	// Begin transaction
	tx, err := h.db.Begin()
	if err != nil {
		reopen()
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Record the close and seal the snapshot
	_, err = tx.Exec(`
		UPDATE contest
		SET closed_at = $1, final_snapshot_id = $2
		WHERE id = $3
	`, closedAt, snapshotID, contestID)

	if err != nil {
		reopen()
		slog.Error("failed to record close", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close contest")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO result_snapshot (id, contest_id, method, computed_at, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, snapshotID, contestID, models.MethodIRV, closedAt, string(payloadJSON))

	if err != nil {
		reopen()
		slog.Error("failed to insert snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save results")
		return
	}

	if err := tx.Commit(); err != nil {
		reopen()
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close contest")
		return
	}

	slog.Info("contest closed", "contest_id", contestID, "snapshot_id", snapshotID,
		"rounds", len(result.Rounds), "winner", result.Winner, "tie", result.Tie)

	middleware.JSONResponse(w, http.StatusOK, models.CloseContestResponse{
		ClosedAt: closedAt,
		Snapshot: models.ResultSnapshot{
			ID:         snapshotID,
			ContestID:  contestID,
			Method:     models.MethodIRV,
			ComputedAt: closedAt,
			Payload:    payload,
		},
	})
}

// contestCandidates loads a contest's candidates ordered by number.
func contestCandidates(conn *sql.DB, contestID string) ([]models.Candidate, error) {
	rows, err := conn.Query(`
		SELECT contest_id, number, label, withdrawn
		FROM candidate
		WHERE contest_id = $1
		ORDER BY number
	`, contestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ContestID, &c.Number, &c.Label, &c.Withdrawn); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// candidateRoster splits candidates into the label list and withdrawn
// numbers the contest package expects. Candidate numbers are assigned
// contiguously from 1, so the slice index encodes the number.
func candidateRoster(candidates []models.Candidate) ([]string, []int) {
	labels := make([]string, 0, len(candidates))
	var withdrawn []int
	for _, c := range candidates {
		labels = append(labels, c.Label)
		if c.Withdrawn {
			withdrawn = append(withdrawn, c.Number)
		}
	}
	return labels, withdrawn
}
