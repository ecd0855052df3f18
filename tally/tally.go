// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"sort"

	"github.com/danielhkuo/rankedpick/contest"
)

// Round records one counting round: each continuing candidate's weighted
// first-choice total, keyed by candidate number, plus the weight that could
// not be assigned to any continuing candidate.
type Round struct {
	Number    int         `json:"number"`
	Totals    map[int]int `json:"totals"`
	Exhausted int         `json:"exhausted"`
}

// Result is a finished count. Winner holds the winning candidate's number
// and is zero when the contest produced no winner; Tie marks the no-winner
// outcome. Exactly one of the two is ever set.
type Result struct {
	Rounds []Round `json:"rounds"`
	Winner int     `json:"winner,omitempty"`
	Tie    bool    `json:"tie,omitempty"`
}

// HasWinner reports whether the count produced a winner.
func (r *Result) HasWinner() bool {
	return r.Winner != 0
}

// BallotWeight returns the total ballot weight that entered the count.
func (r *Result) BallotWeight() int {
	if len(r.Rounds) == 0 {
		return 0
	}
	total := r.Rounds[0].Exhausted
	for _, t := range r.Rounds[0].Totals {
		total += t
	}
	return total
}

// Count runs an instant-runoff count over the contest and returns every
// round plus the outcome. Rounds repeat until a candidate holds a strict
// majority of the round's non-exhausted weight, a single candidate is left
// standing, or eliminations empty the field. Every round re-reads the full
// ballot stream, so the contest's resource must support repeated read
// passes. The count is deterministic: the same definition and ballot
// contents always produce the same rounds and outcome, and the arithmetic
// is integer-only throughout.
func Count(def *contest.Definition) (*Result, error) {
	continuing := make(map[int]bool)
	for _, n := range def.Continuing() {
		continuing[n] = true
	}

	result := &Result{}
	for number := 1; ; number++ {
		round, err := countRound(def, continuing, number)
		if err != nil {
			return nil, err
		}
		result.Rounds = append(result.Rounds, round)

		// A contest whose candidates all withdrew has nobody left to
		// count toward. One round records the electorate as fully
		// exhausted, then the contest ends with no winner.
		if len(continuing) == 0 {
			result.Tie = true
			return result, nil
		}

		// Majority check. The threshold is computed from this round's
		// non-exhausted weight, so it shrinks as ballots exhaust. At most
		// one candidate can reach it.
		counted := 0
		for _, t := range round.Totals {
			counted += t
		}
		threshold := counted/2 + 1
		for _, n := range sortedNumbers(round.Totals) {
			if round.Totals[n] >= threshold {
				result.Winner = n
				return result, nil
			}
		}

		// A lone continuing candidate wins without reaching the
		// threshold. That case is real: when every ballot is exhausted,
		// counted is zero and the threshold stays out of reach.
		if len(continuing) == 1 {
			for n := range continuing {
				result.Winner = n
			}
			return result, nil
		}

		// Eliminate every candidate sharing the lowest total. Eliminating
		// the whole remaining field at once is an unbreakable tie.
		lowest := -1
		for _, t := range round.Totals {
			if lowest < 0 || t < lowest {
				lowest = t
			}
		}
		for n, t := range round.Totals {
			if t == lowest {
				delete(continuing, n)
			}
		}
		if len(continuing) == 0 {
			result.Tie = true
			return result, nil
		}
	}
}

// countRound tallies one full pass of the ballot stream against the
// continuing candidates. Each ballot's weight goes to its first continuing
// choice, or to the exhausted pile when no choice is continuing. Choices
// naming unknown or non-continuing candidates are skipped, not errors, so
// ballots cast before withdrawals and eliminations still count.
func countRound(def *contest.Definition, continuing map[int]bool, number int) (Round, error) {
	round := Round{Number: number, Totals: make(map[int]int, len(continuing))}
	for n := range continuing {
		round.Totals[n] = 0
	}

	r, err := def.Ballots.Open()
	if err != nil {
		return Round{}, fmt.Errorf("round %d: open ballots: %w", number, err)
	}
	defer r.Close()

	for r.Next() {
		b := r.Ballot()
		counted := false
		for _, choice := range b.Choices {
			if continuing[choice] {
				round.Totals[choice] += b.Weight
				counted = true
				break
			}
		}
		if !counted {
			round.Exhausted += b.Weight
		}
	}
	if err := r.Err(); err != nil {
		return Round{}, fmt.Errorf("round %d: %w", number, err)
	}
	return round, r.Close()
}

// sortedNumbers returns the keys of totals in ascending order so scans over
// the map run in a reproducible order.
func sortedNumbers(totals map[int]int) []int {
	ns := make([]int, 0, len(totals))
	for n := range totals {
		ns = append(ns, n)
	}
	sort.Ints(ns)
	return ns
}
