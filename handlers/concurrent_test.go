// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/rankedpick/models"
	"github.com/danielhkuo/rankedpick/testutil"
)

// TestConcurrentBallotSubmissions verifies that multiple simultaneous ballot
// submissions from different voters don't cause data corruption or duplicates
func TestConcurrentBallotSubmissions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	votingHandler := NewVotingHandler(db, cfg)

	// Create an open contest with candidates
	contestID, _, shareSlug := testutil.CreateTestContest(t, db, cfg, "open")
	testutil.AddTestCandidate(t, db, contestID, "Candidate A")
	testutil.AddTestCandidate(t, db, contestID, "Candidate B")
	testutil.AddTestCandidate(t, db, contestID, "Candidate C")

	numVoters := 10
	voterTokens := make([]string, numVoters)

	// Pre-create all voters
	for i := 0; i < numVoters; i++ {
		username := "ConcurrentVoter" + string(rune('A'+i))
		voterTokens[i] = testutil.CreateTestVoter(t, db, contestID, username)
	}

	// Track results
	var successCount atomic.Int32
	var wg sync.WaitGroup

	// Submit all ballots concurrently
	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			rankings := [][]int{
				{1, 2, 3},
				{2, 3, 1},
				{3, 1, 2},
			}
			ranking := rankings[voterIdx%3]

			ballotReq := models.SubmitBallotRequest{Ranking: ranking}
			body, _ := json.Marshal(ballotReq)
			req := httptest.NewRequest("POST", "/contests/"+shareSlug+"/ballots", bytes.NewReader(body))
			req.SetPathValue("slug", shareSlug)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Voter-Token", voterTokens[voterIdx])
			w := httptest.NewRecorder()

			votingHandler.SubmitBallot(w, req)

			if w.Code == http.StatusCreated || w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	// All submissions should succeed
	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful submissions, got %d", numVoters, successCount.Load())
	}

	// Verify database has exactly numVoters ballots
	var ballotCount int
	err := db.QueryRow("SELECT COUNT(*) FROM ballot WHERE contest_id = $1", contestID).Scan(&ballotCount)
	if err != nil {
		t.Fatalf("Failed to count ballots: %v", err)
	}

	if ballotCount != numVoters {
		t.Errorf("Expected %d ballots in database, got %d", numVoters, ballotCount)
	}

	// Verify no duplicate voter tokens
	var uniqueVoters int
	err = db.QueryRow("SELECT COUNT(DISTINCT voter_token) FROM ballot WHERE contest_id = $1", contestID).Scan(&uniqueVoters)
	if err != nil {
		t.Fatalf("Failed to count unique voters: %v", err)
	}

	if uniqueVoters != numVoters {
		t.Errorf("Expected %d unique voters, got %d (possible duplicates)", numVoters, uniqueVoters)
	}
}

// TestConcurrentUsernameClaims verifies that when several goroutines try to
// claim the same username, exactly one succeeds
func TestConcurrentUsernameClaims(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	votingHandler := NewVotingHandler(db, cfg)

	// Create an open contest
	contestID, _, shareSlug := testutil.CreateTestContest(t, db, cfg, "open")
	testutil.AddTestCandidate(t, db, contestID, "A")
	testutil.AddTestCandidate(t, db, contestID, "B")

	contestedUsername := "RaceConditionUser"
	numAttempts := 5 // Multiple goroutines trying same username

	var successCount atomic.Int32
	var wg sync.WaitGroup

	// All goroutines try to claim the same username simultaneously
	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			claimReq := models.ClaimUsernameRequest{Username: contestedUsername}
			body, _ := json.Marshal(claimReq)
			req := httptest.NewRequest("POST", "/contests/"+shareSlug+"/claim-username", bytes.NewReader(body))
			req.SetPathValue("slug", shareSlug)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			votingHandler.ClaimUsername(w, req)

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	// Exactly one should succeed; the unique index rejects the rest
	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful claim, got %d", successCount.Load())
	}

	// Verify database has exactly one claim for this username
	var claimCount int
	err := db.QueryRow("SELECT COUNT(*) FROM username_claim WHERE contest_id = $1 AND username = $2",
		contestID, contestedUsername).Scan(&claimCount)
	if err != nil {
		t.Fatalf("Failed to count claims: %v", err)
	}

	if claimCount != 1 {
		t.Errorf("Expected 1 username claim in database, got %d", claimCount)
	}
}

// TestConcurrentContestClose verifies that when multiple goroutines try to
// close the same contest, exactly one wins and exactly one snapshot exists.
// The handler claims the close with a guarded status update before counting,
// so the losers see a conflict instead of racing the count.
func TestConcurrentContestClose(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	contestHandler := NewContestHandler(db, cfg)

	// Create an open contest with a few ballots to count
	contestID, adminKey, _ := testutil.CreateTestContest(t, db, cfg, "open")
	testutil.AddTestCandidate(t, db, contestID, "A")
	testutil.AddTestCandidate(t, db, contestID, "B")
	testutil.InsertWeightedBallot(t, db, contestID, 2, []int{1, 2})
	testutil.InsertWeightedBallot(t, db, contestID, 1, []int{2})

	numAttempts := 3 // Multiple goroutines trying to close
	var successCount atomic.Int32
	var wg sync.WaitGroup

	// All goroutines try to close simultaneously
	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := httptest.NewRequest("POST", "/contests/"+contestID+"/close", nil)
			req.SetPathValue("id", contestID)
			req.Header.Set("X-Admin-Key", adminKey)
			w := httptest.NewRecorder()

			contestHandler.CloseContest(w, req)

			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	// Exactly one close should win
	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful close, got %d", successCount.Load())
	}

	// Verify contest is closed
	var status string
	err := db.QueryRow("SELECT status FROM contest WHERE id = $1", contestID).Scan(&status)
	if err != nil {
		t.Fatalf("Failed to query contest status: %v", err)
	}

	if status != "closed" {
		t.Errorf("Expected contest status 'closed', got '%s'", status)
	}

	// Exactly one snapshot should exist
	var snapshotCount int
	err = db.QueryRow("SELECT COUNT(*) FROM result_snapshot WHERE contest_id = $1", contestID).Scan(&snapshotCount)
	if err != nil {
		t.Fatalf("Failed to count snapshots: %v", err)
	}

	if snapshotCount != 1 {
		t.Errorf("Expected exactly 1 snapshot, got %d", snapshotCount)
	}
}

// TestConcurrentBallotUpdates verifies that a single voter updating their
// ballot multiple times concurrently results in a consistent final state
func TestConcurrentBallotUpdates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	votingHandler := NewVotingHandler(db, cfg)

	contestID, _, shareSlug := testutil.CreateTestContest(t, db, cfg, "open")
	testutil.AddTestCandidate(t, db, contestID, "A")
	testutil.AddTestCandidate(t, db, contestID, "B")

	// Create a single voter with an initial ballot
	voterToken := testutil.CreateTestVoter(t, db, contestID, "UpdaterVoter")
	testutil.SubmitTestBallot(t, db, contestID, voterToken, []int{1, 2})

	numUpdates := 10
	var wg sync.WaitGroup

	// Concurrently update the same ballot
	for i := 0; i < numUpdates; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			// Updates flip between the two orderings
			ranking := []int{1, 2}
			if idx%2 == 0 {
				ranking = []int{2, 1}
			}

			ballotReq := models.SubmitBallotRequest{Ranking: ranking}
			body, _ := json.Marshal(ballotReq)
			req := httptest.NewRequest("POST", "/contests/"+shareSlug+"/ballots", bytes.NewReader(body))
			req.SetPathValue("slug", shareSlug)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Voter-Token", voterToken)
			w := httptest.NewRecorder()

			votingHandler.SubmitBallot(w, req)
			// We don't care which update wins, just that the state stays sane
		}(i)
	}

	wg.Wait()

	// Verify there's still only one ballot for this voter
	var ballotCount int
	err := db.QueryRow("SELECT COUNT(*) FROM ballot WHERE contest_id = $1 AND voter_token = $2",
		contestID, voterToken).Scan(&ballotCount)
	if err != nil {
		t.Fatalf("Failed to count ballots: %v", err)
	}

	if ballotCount != 1 {
		t.Errorf("Expected 1 ballot after updates, got %d", ballotCount)
	}

	// Whichever update won, the ranking must be a complete permutation of
	// the two candidates, not a mix of two writes
	rows, err := db.Query(`
		SELECT r.candidate FROM ballot_rank r
		JOIN ballot b ON r.ballot_id = b.id
		WHERE b.contest_id = $1 AND b.voter_token = $2
		ORDER BY r.position
	`, contestID, voterToken)
	if err != nil {
		t.Fatalf("Failed to query ranking: %v", err)
	}
	defer rows.Close()

	var ranking []int
	for rows.Next() {
		var candidate int
		if err := rows.Scan(&candidate); err != nil {
			t.Fatalf("Failed to scan ranking: %v", err)
		}
		ranking = append(ranking, candidate)
	}

	if len(ranking) != 2 {
		t.Fatalf("Expected 2 ranking rows, got %d", len(ranking))
	}
	if !(ranking[0] == 1 && ranking[1] == 2) && !(ranking[0] == 2 && ranking[1] == 1) {
		t.Errorf("Ranking is not a valid permutation: %v", ranking)
	}
}

// TestParallelContests verifies that operations on different contests don't interfere
func TestParallelContests(t *testing.T) {
	t.Parallel() // This test can run in parallel with others

	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	contestHandler := NewContestHandler(db, cfg)
	votingHandler := NewVotingHandler(db, cfg)

	numContests := 5
	var wg sync.WaitGroup

	// Create and operate on multiple contests in parallel
	for i := 0; i < numContests; i++ {
		wg.Add(1)
		go func(contestIdx int) {
			defer wg.Done()

			// Create contest
			createReq := models.CreateContestRequest{
				Title:       "Parallel Contest " + string(rune('A'+contestIdx)),
				Description: "Testing parallel operations",
				CreatorName: "Tester",
			}
			body, _ := json.Marshal(createReq)
			req := httptest.NewRequest("POST", "/contests", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			contestHandler.CreateContest(w, req)

			if w.Code != http.StatusCreated {
				t.Errorf("Contest %d creation failed: %d", contestIdx, w.Code)
				return
			}

			var createResp models.CreateContestResponse
			json.NewDecoder(w.Body).Decode(&createResp)
			contestID := createResp.ContestID
			adminKey := createResp.AdminKey

			// Add candidates
			for j := 0; j < 3; j++ {
				candidateReq := models.AddCandidateRequest{Label: "Candidate " + string(rune('A'+j))}
				body, _ := json.Marshal(candidateReq)
				req := httptest.NewRequest("POST", "/contests/"+contestID+"/candidates", bytes.NewReader(body))
				req.SetPathValue("id", contestID)
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("X-Admin-Key", adminKey)
				w := httptest.NewRecorder()
				contestHandler.AddCandidate(w, req)

				if w.Code != http.StatusCreated {
					t.Errorf("Contest %d candidate %d failed: %d", contestIdx, j, w.Code)
					return
				}
			}

			// Publish
			req = httptest.NewRequest("POST", "/contests/"+contestID+"/publish", nil)
			req.SetPathValue("id", contestID)
			req.Header.Set("X-Admin-Key", adminKey)
			w = httptest.NewRecorder()
			contestHandler.PublishContest(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("Contest %d publish failed: %d", contestIdx, w.Code)
				return
			}

			var publishResp models.PublishContestResponse
			json.NewDecoder(w.Body).Decode(&publishResp)
			shareSlug := publishResp.ShareSlug

			// Claim username
			claimReq := models.ClaimUsernameRequest{Username: "Voter" + string(rune('A'+contestIdx))}
			body, _ = json.Marshal(claimReq)
			req = httptest.NewRequest("POST", "/contests/"+shareSlug+"/claim-username", bytes.NewReader(body))
			req.SetPathValue("slug", shareSlug)
			req.Header.Set("Content-Type", "application/json")
			w = httptest.NewRecorder()
			votingHandler.ClaimUsername(w, req)

			if w.Code != http.StatusCreated {
				t.Errorf("Contest %d username claim failed: %d", contestIdx, w.Code)
				return
			}
		}(i)
	}

	wg.Wait()

	// Verify all contests were created
	var contestCount int
	err := db.QueryRow("SELECT COUNT(*) FROM contest").Scan(&contestCount)
	if err != nil {
		t.Fatalf("Failed to count contests: %v", err)
	}

	if contestCount != numContests {
		t.Errorf("Expected %d contests, got %d", numContests, contestCount)
	}
}
