// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the rankedpick API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Contest management (admin, requires X-Admin-Key):

	POST /contests                                  - Create contest
	GET  /contests/{id}/admin                       - Get contest details
	POST /contests/{id}/candidates                  - Add candidate
	POST /contests/{id}/candidates/{number}/withdraw - Withdraw candidate
	POST /contests/{id}/publish                     - Open for voting
	POST /contests/{id}/close                       - Run the count and seal results

Voting (public, uses share slug):

	POST /contests/{slug}/claim-username - Claim voter identity
	POST /contests/{slug}/ballots        - Submit/update ranking
	GET  /contests/{slug}/my-ballot      - Current ranking for a voter token

Results (public):

	GET /contests/{slug}              - Contest info and candidates
	GET /contests/{slug}/results      - Final rounds and winner (closed only)
	GET /contests/{slug}/ballot-count - Ballot count
	GET /contests/{slug}/preview      - Compact preview data

# Handler Initialization

The router creates handler instances with dependency injection:

	contestHandler := handlers.NewContestHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
