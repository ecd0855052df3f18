// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/rankedpick/auth"
	"github.com/danielhkuo/rankedpick/cliparse"
	"github.com/danielhkuo/rankedpick/db"
)

// SetupTestDB creates a fresh SQLite database with the full schema. The file
// lives in the test's temp dir, so every test starts empty and nothing needs
// cleaning up afterwards.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "rankedpick_test.db") +
		"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     "file:test.db",
		AdminKeySalt:    "test-admin-salt",
		ContestSlugSalt: "test-slug-salt",
	}
}

// CreateTestContest creates a contest in the database and returns its ID,
// admin key and share slug. status should be "draft", "open", or "closed".
// Draft contests have no slug yet, matching the publish flow.
func CreateTestContest(t *testing.T, conn *sql.DB, cfg cliparse.Config, status string) (contestID, adminKey, shareSlug string) {
	t.Helper()

	contestID = uuid.NewString()
	adminKey = auth.GenerateAdminKey(contestID, cfg.AdminKeySalt)

	var slug *string
	if status == "open" || status == "closed" {
		s := auth.GenerateShareSlug(contestID, cfg.ContestSlugSalt)
		slug = &s
		shareSlug = s
	}

	var closedAt *time.Time
	if status == "closed" {
		now := time.Now().UTC()
		closedAt = &now
	}

	_, err := conn.Exec(`
		INSERT INTO contest (id, title, description, creator_name, status, share_slug, closed_at, created_at)
		VALUES ($1, 'Test Contest', 'A test contest', 'TestUser', $2, $3, $4, $5)
	`, contestID, status, slug, closedAt, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test contest: %v", err)
	}

	return contestID, adminKey, shareSlug
}

// AddTestCandidate adds a candidate to a contest and returns its number
func AddTestCandidate(t *testing.T, conn *sql.DB, contestID, label string) int {
	t.Helper()

	var number int
	err := conn.QueryRow(`
		SELECT COALESCE(MAX(number), 0) + 1 FROM candidate WHERE contest_id = $1
	`, contestID).Scan(&number)
	if err != nil {
		t.Fatalf("Failed to pick candidate number: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO candidate (contest_id, number, label)
		VALUES ($1, $2, $3)
	`, contestID, number, label)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return number
}

// WithdrawTestCandidate marks a candidate as withdrawn
func WithdrawTestCandidate(t *testing.T, conn *sql.DB, contestID string, number int) {
	t.Helper()

	_, err := conn.Exec(`
		UPDATE candidate SET withdrawn = TRUE WHERE contest_id = $1 AND number = $2
	`, contestID, number)
	if err != nil {
		t.Fatalf("Failed to withdraw test candidate: %v", err)
	}
}

// CreateTestVoter claims a username for a contest and returns the voter token
func CreateTestVoter(t *testing.T, conn *sql.DB, contestID, username string) string {
	t.Helper()

	voterToken, _ := auth.GenerateVoterToken()
	_, err := conn.Exec(`
		INSERT INTO username_claim (contest_id, username, voter_token, created_at)
		VALUES ($1, $2, $3, $4)
	`, contestID, username, voterToken, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voterToken
}

// SubmitTestBallot creates a weight-1 ballot with the given ranking for a voter
func SubmitTestBallot(t *testing.T, conn *sql.DB, contestID, voterToken string, ranking []int) string {
	t.Helper()

	ballotID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO ballot (id, contest_id, voter_token, weight, submitted_at)
		VALUES ($1, $2, $3, 1, $4)
	`, ballotID, contestID, voterToken, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}

	for i, candidate := range ranking {
		_, err := conn.Exec(`
			INSERT INTO ballot_rank (ballot_id, position, candidate)
			VALUES ($1, $2, $3)
		`, ballotID, i+1, candidate)
		if err != nil {
			t.Fatalf("Failed to create test ranking row: %v", err)
		}
	}

	return ballotID
}

// InsertWeightedBallot creates a bulk-loaded ballot with no voter token,
// the shape imports produce. Useful for seeding counts with weighted input.
func InsertWeightedBallot(t *testing.T, conn *sql.DB, contestID string, weight int, ranking []int) string {
	t.Helper()

	ballotID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO ballot (id, contest_id, weight, submitted_at)
		VALUES ($1, $2, $3, $4)
	`, ballotID, contestID, weight, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create weighted ballot: %v", err)
	}

	for i, candidate := range ranking {
		_, err := conn.Exec(`
			INSERT INTO ballot_rank (ballot_id, position, candidate)
			VALUES ($1, $2, $3)
		`, ballotID, i+1, candidate)
		if err != nil {
			t.Fatalf("Failed to create weighted ranking row: %v", err)
		}
	}

	return ballotID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
