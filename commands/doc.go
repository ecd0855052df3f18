// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package commands implements the count, gen and clean subcommands. The serve
command lives in main, which owns the process lifecycle.

# Count

Count reads a contests config, counts each listed BLT file and renders the
results:

	err := commands.Count(cfg.Count, os.Stdout)

The config may rename contests and add withdrawals on top of what each BLT
file declares. Output is a JSON case file with expected results filled in,
or a round-by-round text report; format auto picks text on a terminal.

# Gen

Gen produces a random contest for fixtures and load testing:

	err := commands.Gen(cfg.Gen, os.Stdout)

Formats: blt (full contest), ballots (one ballot per line) and jscase (JSON
case file). A fixed seed reproduces the same contest.

# Clean

Clean canonicalizes a JSON case file in place, renumbering contests and
normalizing every ballot list:

	err := commands.Clean(cfg.Clean)

Cleaning is idempotent, so regenerated fixtures diff cleanly.
*/
package commands
