// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/rankedpick/cliparse"
	"github.com/danielhkuo/rankedpick/handlers"
	"github.com/danielhkuo/rankedpick/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	contestHandler := handlers.NewContestHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Contest management (admin operations)
	mux.HandleFunc("POST /contests", middleware.WithLogging(contestHandler.CreateContest))
	mux.HandleFunc("GET /contests/{id}/admin", middleware.WithLogging(contestHandler.GetContestAdmin))
	mux.HandleFunc("POST /contests/{id}/candidates", middleware.WithLogging(contestHandler.AddCandidate))
	mux.HandleFunc("POST /contests/{id}/candidates/{number}/withdraw", middleware.WithLogging(contestHandler.WithdrawCandidate))
	mux.HandleFunc("POST /contests/{id}/publish", middleware.WithLogging(contestHandler.PublishContest))
	mux.HandleFunc("POST /contests/{id}/close", middleware.WithLogging(contestHandler.CloseContest))

	// Voting operations (public)
	mux.HandleFunc("POST /contests/{slug}/claim-username", middleware.WithLogging(votingHandler.ClaimUsername))
	mux.HandleFunc("POST /contests/{slug}/ballots", middleware.WithLogging(votingHandler.SubmitBallot))
	mux.HandleFunc("GET /contests/{slug}/my-ballot", middleware.WithLogging(votingHandler.GetMyBallot))

	// Results retrieval (public, with sealed results)
	mux.HandleFunc("GET /contests/{slug}", middleware.WithLogging(resultsHandler.GetContest))
	mux.HandleFunc("GET /contests/{slug}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /contests/{slug}/ballot-count", middleware.WithLogging(resultsHandler.GetBallotCount))
	mux.HandleFunc("GET /contests/{slug}/preview", middleware.WithLogging(resultsHandler.GetPreview))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("rankedpick API v1"))
	})

	return mux
}
