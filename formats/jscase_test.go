// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package formats

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/danielhkuo/rankedpick/ballots"
	"github.com/danielhkuo/rankedpick/contest"
	"github.com/danielhkuo/rankedpick/tally"
)

const sampleCaseFile = `{
  "version": "0.2.0",
  "contests": [
    {
      "id": 1,
      "name": "Board Pick",
      "candidates": ["Ann", "Bob", "Carol"],
      "withdrawn": [3],
      "ballots": ["2 1 2", "1 2", "1"],
      "expected": {
        "rounds": [
          {"number": 1, "totals": {"1": 2, "2": 1}, "exhausted": 1}
        ],
        "winner": 1
      }
    }
  ]
}`

func TestReadCases(t *testing.T) {
	cf, err := ReadCases(strings.NewReader(sampleCaseFile))
	if err != nil {
		t.Fatalf("ReadCases failed: %v", err)
	}

	if cf.Version != "0.2.0" {
		t.Errorf("Expected version 0.2.0, got %q", cf.Version)
	}
	if len(cf.Contests) != 1 {
		t.Fatalf("Expected 1 contest, got %d", len(cf.Contests))
	}

	c := cf.Contests[0]
	if c.Name != "Board Pick" {
		t.Errorf("Expected name \"Board Pick\", got %q", c.Name)
	}
	if !reflect.DeepEqual(c.Withdrawn, []int{3}) {
		t.Errorf("Expected withdrawn [3], got %v", c.Withdrawn)
	}
	if c.Expected == nil {
		t.Fatal("Expected the expected block to be present")
	}
	if c.Expected.Winner != 1 {
		t.Errorf("Expected winner 1, got %d", c.Expected.Winner)
	}
	wantTotals := map[int]int{1: 2, 2: 1}
	if !reflect.DeepEqual(c.Expected.Rounds[0].Totals, wantTotals) {
		t.Errorf("Expected totals %v, got %v", wantTotals, c.Expected.Rounds[0].Totals)
	}
}

func TestCaseCountMatchesExpected(t *testing.T) {
	cf, err := ReadCases(strings.NewReader(sampleCaseFile))
	if err != nil {
		t.Fatalf("ReadCases failed: %v", err)
	}

	c := cf.Contests[0]
	def, err := c.Definition()
	if err != nil {
		t.Fatalf("Definition failed: %v", err)
	}

	result, err := tally.Count(def)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if !reflect.DeepEqual(result, c.Expected) {
		t.Errorf("Expected count %+v, got %+v", c.Expected, result)
	}
}

func TestCaseDefinitionBadBallot(t *testing.T) {
	c := Case{
		Candidates: []string{"Ann"},
		Ballots:    []string{"1 1", "oops"},
	}

	_, err := c.Definition()
	if err == nil {
		t.Fatal("Expected an error for the malformed ballot")
	}
	if !strings.Contains(err.Error(), "ballot 2") {
		t.Errorf("Expected the error to name ballot 2, got %q", err.Error())
	}
}

func TestCaseDefinitionDefaultName(t *testing.T) {
	c := Case{ID: 7, Candidates: []string{"Ann"}}

	def, err := c.Definition()
	if err != nil {
		t.Fatalf("Definition failed: %v", err)
	}
	if def.Name != "Contest 7" {
		t.Errorf("Expected default name \"Contest 7\", got %q", def.Name)
	}
}

func TestWriteCasesRoundTrip(t *testing.T) {
	original := &CaseFile{
		Contests: []Case{
			{
				ID:         1,
				Name:       "Round Trip",
				Candidates: []string{"Ann", "Bob"},
				Ballots:    []string{"2 1", "1 2 1"},
			},
		},
	}

	var buf bytes.Buffer
	if err := WriteCases(&buf, original); err != nil {
		t.Fatalf("WriteCases failed: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("Expected the encoded file to end with a newline")
	}

	reread, err := ReadCases(&buf)
	if err != nil {
		t.Fatalf("ReadCases failed: %v", err)
	}
	if reread.Version != CaseVersion {
		t.Errorf("Expected the version to be filled in with %q, got %q", CaseVersion, reread.Version)
	}
	if !reflect.DeepEqual(reread.Contests, original.Contests) {
		t.Errorf("Expected contests %+v, got %+v", original.Contests, reread.Contests)
	}
}

func TestCaseFromDefinition(t *testing.T) {
	res := ballots.NewMemoryResource(
		ballots.Ballot{Weight: 2, Choices: []int{2, 1}},
		ballots.Ballot{Weight: 1},
	)
	def, err := contest.New("Exported", []string{"Ann", "Bob"}, []int{1}, res)
	if err != nil {
		t.Fatalf("Failed to build contest: %v", err)
	}

	c, err := CaseFromDefinition(def, 3)
	if err != nil {
		t.Fatalf("CaseFromDefinition failed: %v", err)
	}

	if c.ID != 3 {
		t.Errorf("Expected id 3, got %d", c.ID)
	}
	if c.Name != "Exported" {
		t.Errorf("Expected name \"Exported\", got %q", c.Name)
	}
	if !reflect.DeepEqual(c.Ballots, []string{"2 2 1", "1"}) {
		t.Errorf("Expected ballots [\"2 2 1\" \"1\"], got %v", c.Ballots)
	}
	if !reflect.DeepEqual(c.Withdrawn, []int{1}) {
		t.Errorf("Expected withdrawn [1], got %v", c.Withdrawn)
	}
}

func TestCaseFileNormalize(t *testing.T) {
	cf := &CaseFile{
		Contests: []Case{
			{
				ID:         9,
				Candidates: []string{"Ann", "Bob"},
				Ballots:    []string{"1 2 1", "2 1", "1 2 1", "3"},
			},
			{
				Candidates: []string{"Ann"},
				Ballots:    []string{"1 1"},
			},
		},
	}

	if err := cf.Normalize(); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if cf.Version != CaseVersion {
		t.Errorf("Expected version %q, got %q", CaseVersion, cf.Version)
	}
	for i, c := range cf.Contests {
		if c.ID != i+1 {
			t.Errorf("Expected contest %d to have id %d, got %d", i, i+1, c.ID)
		}
	}

	expected := []string{"3", "2 1", "2 2 1"}
	if !reflect.DeepEqual(cf.Contests[0].Ballots, expected) {
		t.Errorf("Expected normalized ballots %v, got %v", expected, cf.Contests[0].Ballots)
	}
}

func TestCaseFileNormalizeBadBallot(t *testing.T) {
	cf := &CaseFile{
		Contests: []Case{
			{Candidates: []string{"Ann"}, Ballots: []string{"not a ballot"}},
		},
	}

	err := cf.Normalize()
	if err == nil {
		t.Fatal("Expected an error for the malformed ballot")
	}
	if !strings.Contains(err.Error(), "contest 1, ballot 1") {
		t.Errorf("Expected the error to name the contest and ballot, got %q", err.Error())
	}
}
