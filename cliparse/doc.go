// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Commands

Parse reads the subcommand from the first argument and returns a Config:

	cfg, err := cliparse.Parse(os.Args[1:])

Supported commands are serve, count, gen and clean. No arguments (or a
leading flag) selects serve, so running the binary bare still starts the
server.

# Serve

Config fields for the server:

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - ContestSlugSalt: Secret for share slug generation (required)

Flags:

	-p          Server port
	-d          Database URL
	-t          Database type
	-admin-salt Admin key salt
	-slug-salt  Contest slug salt

Flags fall back to environment variables:

	PORT              → -p
	DATABASE_URL      → -d
	DATABASE_TYPE     → -t
	ADMIN_KEY_SALT    → -admin-salt
	CONTEST_SLUG_SALT → -slug-salt

CLI flags take precedence over environment variables.

# Count

	rankedpick count -i contests.yaml [-f auto|text|json]

The config file may also be given as a positional argument. Format auto
prints text on a terminal and JSON otherwise.

# Gen

	rankedpick gen [-c N] [-b N] [-w 2,5] [-f blt|ballots|jscase] [-o dir] [-n] [-seed n]

Generates a random contest. Seed 0 seeds from the clock; any other seed
makes the output reproducible.

# Clean

	rankedpick clean contests.json

Renumbers and normalizes a JSON case file in place.

# Validation

Parse returns an error if required values are missing:

  - serve: DATABASE_URL, ADMIN_KEY_SALT and CONTEST_SLUG_SALT must be provided
  - count: a config file path must be provided
  - clean: a case file path must be provided

# Example

	// In main.go
	cfg, err := cliparse.Parse(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open(driver, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(db, cfg)
*/
package cliparse
