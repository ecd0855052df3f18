// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the rankedpick entry point: an instant-runoff voting
service and a set of offline counting tools.

Voters rank candidates in preference order. When a contest closes, the
lowest-placed candidates are eliminated round by round and their ballots
transfer to each voter's next continuing choice, until someone holds a
majority of the non-exhausted weight.

# Commands

The binary dispatches on its first argument; with none it serves:

	rankedpick serve -p 3318 -d rankedpick.db
	rankedpick count -i contests.yaml
	rankedpick gen -c 6 -b 50 -f blt
	rankedpick clean testdata/cases.json

# Serve Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC
  - CONTEST_SLUG_SALT (-slug-salt): Secret for share slug generation

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"

A .env file in the working directory is loaded before parsing.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (contests, voting, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Token generation and validation
  - db: Schema creation and the SQL-backed ballot store
  - cliparse: Command and configuration parsing

The counting core is independent of the server:

  - ballots: Ballot values, streams, and text encoding
  - contest: Contest definitions (roster, withdrawn set, ballot source)
  - tally: The instant-runoff count itself
  - formats: BLT files, test case files, and contest config files
  - datagen: Random ballot generation for tests and demos
  - commands: The count, gen and clean subcommands

See package documentation for each component.
*/
package main
