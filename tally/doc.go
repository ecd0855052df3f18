// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package tally implements instant-runoff counting over a contest
// definition.
//
// # Rounds
//
// Counting proceeds in rounds. Each round re-reads the ballot stream from
// the top and credits every ballot's weight to its first choice still in
// the running; ballots with no such choice are exhausted for the round.
// A candidate holding a strict majority of the round's non-exhausted
// weight, floor(weight/2)+1 or more, wins. Failing that, a lone remaining
// candidate wins by default. Otherwise the candidate with the lowest total
// is eliminated and the next round begins.
//
// # Bottom ties
//
// When several candidates share the lowest total they are all eliminated
// together in that round. This is a deliberate policy choice: other
// instant-runoff rules break bottom ties by lot or by previous-round
// standings and can reach different outcomes on the same ballots. Batch
// elimination keeps the count fully deterministic and auditable. Its
// extreme case, every remaining candidate tied at the bottom at once, ends
// the contest with no winner rather than looping.
//
// # Invariants
//
// Every round conserves weight: candidate totals plus exhausted weight
// always sum to the total ballot weight. All arithmetic is integer-only,
// and a count never takes more rounds than there were candidates in the
// running at the start.
package tally
