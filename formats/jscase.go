// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package formats

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/danielhkuo/rankedpick/ballots"
	"github.com/danielhkuo/rankedpick/contest"
	"github.com/danielhkuo/rankedpick/tally"
)

// CaseVersion is the case-file format version this package writes.
const CaseVersion = "0.2.0"

// CaseFile is the JSON test-case container: a versioned file holding one or
// more contests with inline ballots, suitable for golden fixtures.
type CaseFile struct {
	Version  string `json:"version"`
	Contests []Case `json:"contests"`
}

// Case is one contest in a case file. Ballots use the one-line encoding
// ballots.Parse reads, one string per ballot, so fixtures stay diffable.
// Expected, when present, records the count the ballots should produce.
type Case struct {
	ID         int           `json:"id,omitempty"`
	Name       string        `json:"name,omitempty"`
	Notes      string        `json:"notes,omitempty"`
	Candidates []string      `json:"candidates"`
	Withdrawn  []int         `json:"withdrawn,omitempty"`
	Ballots    []string      `json:"ballots"`
	Expected   *tally.Result `json:"expected,omitempty"`
}

// ReadCases decodes a case file.
func ReadCases(r io.Reader) (*CaseFile, error) {
	var cf CaseFile
	if err := json.NewDecoder(r).Decode(&cf); err != nil {
		return nil, fmt.Errorf("decode case file: %w", err)
	}
	return &cf, nil
}

// WriteCases encodes a case file with stable two-space indentation and a
// trailing newline. A missing version is filled in with CaseVersion.
func WriteCases(w io.Writer, cf *CaseFile) error {
	out := *cf
	if out.Version == "" {
		out.Version = CaseVersion
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Definition converts the case into a countable contest backed by an
// in-memory ballot resource.
func (c *Case) Definition() (*contest.Definition, error) {
	bs := make([]ballots.Ballot, 0, len(c.Ballots))
	for i, line := range c.Ballots {
		b, err := ballots.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("ballot %d: %w", i+1, err)
		}
		bs = append(bs, b)
	}

	name := c.Name
	if name == "" {
		name = fmt.Sprintf("Contest %d", c.ID)
	}
	return contest.New(name, c.Candidates, c.Withdrawn, ballots.NewMemoryResource(bs...))
}

// CaseFromDefinition drains one read pass over the definition's ballots and
// returns them as a case with the given id.
func CaseFromDefinition(def *contest.Definition, id int) (*Case, error) {
	bs, err := ballots.ReadAll(def.Ballots)
	if err != nil {
		return nil, err
	}

	lines := make([]string, len(bs))
	for i, b := range bs {
		lines[i] = b.String()
	}
	return &Case{
		ID:         id,
		Name:       def.Name,
		Candidates: append([]string(nil), def.Candidates...),
		Withdrawn:  append([]int(nil), def.Withdrawn...),
		Ballots:    lines,
	}, nil
}

// Normalize renumbers the contests from 1 and rewrites every ballot list in
// its canonical sorted, merged form, so regenerating a fixture file always
// produces the same bytes for the same electorate.
func (cf *CaseFile) Normalize() error {
	for i := range cf.Contests {
		c := &cf.Contests[i]
		c.ID = i + 1

		bs := make([]ballots.Ballot, 0, len(c.Ballots))
		for j, line := range c.Ballots {
			b, err := ballots.Parse(line)
			if err != nil {
				return fmt.Errorf("contest %d, ballot %d: %w", c.ID, j+1, err)
			}
			bs = append(bs, b)
		}

		normalized := ballots.Normalize(bs)
		lines := make([]string, len(normalized))
		for j, b := range normalized {
			lines[j] = b.String()
		}
		c.Ballots = lines
	}

	cf.Version = CaseVersion
	return nil
}
