// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contest

import (
	"errors"
	"fmt"

	"github.com/danielhkuo/rankedpick/ballots"
)

// ErrNoCandidates is returned by New when the candidate roster is empty.
var ErrNoCandidates = errors.New("contest has no candidates")

// Definition describes one contest to count: the roster of candidates, the
// subset withdrawn before counting, and the resource holding its ballots.
// Candidates are numbered 1 through len(Candidates) in roster order, and
// ballots refer to them by number. Treat a Definition as read-only once
// built.
type Definition struct {
	Name       string
	Candidates []string
	Withdrawn  []int
	Ballots    ballots.Resource
}

// New validates and builds a contest definition. The roster must be
// non-empty and every withdrawn number must name a distinct candidate on
// it. The candidate and withdrawn slices are copied.
func New(name string, candidates []string, withdrawn []int, res ballots.Resource) (*Definition, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	seen := make(map[int]bool, len(withdrawn))
	for _, n := range withdrawn {
		if n < 1 || n > len(candidates) {
			return nil, fmt.Errorf("withdrawn candidate %d is not between 1 and %d", n, len(candidates))
		}
		if seen[n] {
			return nil, fmt.Errorf("withdrawn candidate %d listed twice", n)
		}
		seen[n] = true
	}

	return &Definition{
		Name:       name,
		Candidates: append([]string(nil), candidates...),
		Withdrawn:  append([]int(nil), withdrawn...),
		Ballots:    res,
	}, nil
}

// CandidateCount returns the size of the roster, withdrawn candidates
// included.
func (d *Definition) CandidateCount() int {
	return len(d.Candidates)
}

// Numbers returns every candidate number in ascending order.
func (d *Definition) Numbers() []int {
	ns := make([]int, len(d.Candidates))
	for i := range ns {
		ns[i] = i + 1
	}
	return ns
}

// Continuing returns the candidate numbers still eligible when counting
// begins: the roster minus the withdrawn set, ascending. The slice is the
// caller's to keep.
func (d *Definition) Continuing() []int {
	withdrawn := make(map[int]bool, len(d.Withdrawn))
	for _, n := range d.Withdrawn {
		withdrawn[n] = true
	}

	var ns []int
	for n := 1; n <= len(d.Candidates); n++ {
		if !withdrawn[n] {
			ns = append(ns, n)
		}
	}
	return ns
}

// Label returns the name of the candidate with the given number, or "" when
// the number is off the roster.
func (d *Definition) Label(n int) string {
	if n < 1 || n > len(d.Candidates) {
		return ""
	}
	return d.Candidates[n-1]
}
