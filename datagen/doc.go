// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package datagen produces random contests and ballots for fixtures,
// benchmarks and manual testing. Generated ballots mimic real ranked
// elections: most voters rank a few candidates, some rank everyone, and a
// tunable share turn in empty ballots. Given a fixed-seed rand.Rand the
// output is fully reproducible.
package datagen
