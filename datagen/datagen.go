// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package datagen

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/danielhkuo/rankedpick/ballots"
	"github.com/danielhkuo/rankedpick/contest"
)

// CandidateNames is the pool of friendly candidate names used before
// falling back to numbered placeholders.
var CandidateNames = []string{
	"Ann", "Bob", "Carol", "Dave", "Ellen", "Fred",
	"Gwen", "Hank", "Irene", "Joe", "Katy", "Leo",
}

// MakeCandidates returns count candidate names, drawing from
// CandidateNames first and switching to "Candidate N" beyond it.
func MakeCandidates(count int) []string {
	names := make([]string, count)
	for i := range names {
		if i < len(CandidateNames) {
			names[i] = CandidateNames[i]
		} else {
			names[i] = fmt.Sprintf("Candidate %d", i+1)
		}
	}
	return names
}

// Generator produces random weight-1 ballots over a fixed choice set.
// Choices within one ballot never repeat. The exported fields may be
// adjusted after NewGenerator and before the first Ballot call.
type Generator struct {
	// Choices is the set of candidate numbers a ballot may rank.
	Choices []int

	// MaxLength caps how many choices one ballot may carry. NewGenerator
	// defaults it to the full choice set.
	MaxLength int

	// Undervote is the probability of producing an empty ballot outright.
	Undervote float64

	rng *rand.Rand
}

// NewGenerator returns a generator over the given candidate numbers. A nil
// rng is seeded from the clock; pass a fixed-seed rand.Rand for
// reproducible output.
func NewGenerator(choices []int, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{
		Choices:   append([]int(nil), choices...),
		MaxLength: len(choices),
		Undervote: 0.1,
		rng:       rng,
	}
}

// Ballot produces one random ballot. With probability Undervote the ballot
// is empty. Otherwise choices are drawn without replacement, with a
// 1-in-(remaining+1) chance of stopping before each draw, so short partial
// rankings stay common the way they are in real ranked elections.
func (g *Generator) Ballot() ballots.Ballot {
	b := ballots.Ballot{Weight: 1}
	if g.rng.Float64() < g.Undervote {
		return b
	}

	pool := append([]int(nil), g.Choices...)
	for len(b.Choices) < g.MaxLength && len(pool) > 0 {
		// One slot past the end of the pool is the stop choice.
		i := g.rng.Intn(len(pool) + 1)
		if i == len(pool) {
			break
		}
		b.Choices = append(b.Choices, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return b
}

// Fill replaces the contents of res with count freshly generated ballots.
func (g *Generator) Fill(res ballots.Resource, count int) error {
	w, err := res.Create()
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		if err := w.Write(g.Ballot()); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

// RandomContest builds a complete random contest: a roster of named
// candidates, the given withdrawals, and ballotCount random ballots written
// into res. Ballots may rank withdrawn candidates too, like real ballots
// cast before a withdrawal.
func RandomContest(res ballots.Resource, candidateCount, ballotCount int, withdrawn []int, rng *rand.Rand) (*contest.Definition, error) {
	def, err := contest.New("Random Contest", MakeCandidates(candidateCount), withdrawn, res)
	if err != nil {
		return nil, err
	}

	g := NewGenerator(def.Numbers(), rng)
	if err := g.Fill(res, ballotCount); err != nil {
		return nil, err
	}
	return def, nil
}
