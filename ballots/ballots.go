// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballots

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Ballot is one ranked ballot: a positive integer weight and the voter's
// choices in preference order, most preferred first. Choices are 1-based
// candidate numbers with no repeats. An empty choice list is a valid
// undervote; it carries weight but names nobody.
type Ballot struct {
	Weight  int
	Choices []int
}

// Parse reads a ballot from its line encoding: the weight followed by the
// choices, space-separated. "3 1 2" is three identical ballots ranking
// candidate 1 over candidate 2, and "4" is four undervotes.
func Parse(line string) (Ballot, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Ballot{}, fmt.Errorf("empty ballot line")
	}

	weight, err := strconv.Atoi(fields[0])
	if err != nil {
		return Ballot{}, fmt.Errorf("invalid weight %q", fields[0])
	}
	if weight < 1 {
		return Ballot{}, fmt.Errorf("weight must be positive, got %d", weight)
	}

	b := Ballot{Weight: weight}
	if len(fields) == 1 {
		return b, nil
	}

	b.Choices = make([]int, 0, len(fields)-1)
	seen := make(map[int]bool, len(fields)-1)
	for _, f := range fields[1:] {
		c, err := strconv.Atoi(f)
		if err != nil {
			return Ballot{}, fmt.Errorf("invalid choice %q", f)
		}
		if c < 1 {
			return Ballot{}, fmt.Errorf("choice must be a positive candidate number, got %d", c)
		}
		if seen[c] {
			return Ballot{}, fmt.Errorf("duplicate choice %d", c)
		}
		seen[c] = true
		b.Choices = append(b.Choices, c)
	}
	return b, nil
}

// String renders the ballot in the encoding Parse reads.
func (b Ballot) String() string {
	parts := make([]string, 0, len(b.Choices)+1)
	parts = append(parts, strconv.Itoa(b.Weight))
	for _, c := range b.Choices {
		parts = append(parts, strconv.Itoa(c))
	}
	return strings.Join(parts, " ")
}

// Clone returns a copy of the ballot that shares no memory with b.
func (b Ballot) Clone() Ballot {
	c := Ballot{Weight: b.Weight}
	if len(b.Choices) > 0 {
		c.Choices = append([]int(nil), b.Choices...)
	}
	return c
}

// TotalWeight sums the weights of the given ballots.
func TotalWeight(bs []Ballot) int {
	total := 0
	for _, b := range bs {
		total += b.Weight
	}
	return total
}

// Normalize returns the canonical form of a ballot collection: ballots
// ordered by their choice sequence, with identical choice sequences merged
// into a single ballot carrying the summed weight. Two collections describe
// the same electorate exactly when their normalized forms are equal. The
// input is left untouched.
func Normalize(bs []Ballot) []Ballot {
	sorted := make([]Ballot, len(bs))
	copy(sorted, bs)
	sort.Slice(sorted, func(i, j int) bool {
		return compareChoices(sorted[i].Choices, sorted[j].Choices) < 0
	})

	var out []Ballot
	for _, b := range sorted {
		if n := len(out); n > 0 && compareChoices(out[n-1].Choices, b.Choices) == 0 {
			out[n-1].Weight += b.Weight
			continue
		}
		out = append(out, b.Clone())
	}
	return out
}

// compareChoices orders choice sequences lexicographically by candidate
// number, with a prefix sorting before any extension of it.
func compareChoices(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
