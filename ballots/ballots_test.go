// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballots

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		expected    Ballot
		expectError string
	}{
		{
			name:     "weight and choices",
			line:     "3 1 2",
			expected: Ballot{Weight: 3, Choices: []int{1, 2}},
		},
		{
			name:     "undervote",
			line:     "4",
			expected: Ballot{Weight: 4},
		},
		{
			name:     "extra whitespace",
			line:     "  2   5 1  ",
			expected: Ballot{Weight: 2, Choices: []int{5, 1}},
		},
		{
			name:        "empty line",
			line:        "",
			expectError: "empty ballot line",
		},
		{
			name:        "blank line",
			line:        "   ",
			expectError: "empty ballot line",
		},
		{
			name:        "non-numeric weight",
			line:        "x 1 2",
			expectError: "invalid weight",
		},
		{
			name:        "zero weight",
			line:        "0 1 2",
			expectError: "weight must be positive",
		},
		{
			name:        "negative weight",
			line:        "-2 1",
			expectError: "weight must be positive",
		},
		{
			name:        "non-numeric choice",
			line:        "1 2 b",
			expectError: "invalid choice",
		},
		{
			name:        "zero choice",
			line:        "1 2 0",
			expectError: "positive candidate number",
		},
		{
			name:        "duplicate choice",
			line:        "1 2 3 2",
			expectError: "duplicate choice 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Parse(tt.line)

			if tt.expectError != "" {
				if err == nil {
					t.Fatalf("Expected error containing %q, got ballot %v", tt.expectError, b)
				}
				if !strings.Contains(err.Error(), tt.expectError) {
					t.Errorf("Expected error containing %q, got %q", tt.expectError, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if b.Weight != tt.expected.Weight {
				t.Errorf("Expected weight %d, got %d", tt.expected.Weight, b.Weight)
			}
			if !reflect.DeepEqual(b.Choices, tt.expected.Choices) {
				t.Errorf("Expected choices %v, got %v", tt.expected.Choices, b.Choices)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		ballot   Ballot
		expected string
	}{
		{"weight and choices", Ballot{Weight: 3, Choices: []int{1, 2}}, "3 1 2"},
		{"undervote", Ballot{Weight: 4}, "4"},
		{"single choice", Ballot{Weight: 1, Choices: []int{7}}, "1 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ballot.String(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseStringRoundTrip(t *testing.T) {
	lines := []string{"1", "3 1 2", "2 4 3 2 1"}
	for _, line := range lines {
		b, err := Parse(line)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", line, err)
		}
		if got := b.String(); got != line {
			t.Errorf("Expected round trip of %q, got %q", line, got)
		}
	}
}

func TestClone(t *testing.T) {
	original := Ballot{Weight: 2, Choices: []int{1, 2, 3}}
	clone := original.Clone()

	clone.Choices[0] = 9
	if original.Choices[0] != 1 {
		t.Error("Expected clone to share no memory with the original")
	}
}

func TestNormalize(t *testing.T) {
	input := []Ballot{
		{Weight: 1, Choices: []int{2, 1}},
		{Weight: 3, Choices: []int{1, 2}},
		{Weight: 2, Choices: []int{2, 1}},
		{Weight: 1},
		{Weight: 4, Choices: []int{1}},
		{Weight: 2},
	}

	got := Normalize(input)

	expected := []Ballot{
		{Weight: 3},
		{Weight: 4, Choices: []int{1}},
		{Weight: 3, Choices: []int{1, 2}},
		{Weight: 3, Choices: []int{2, 1}},
	}
	if len(got) != len(expected) {
		t.Fatalf("Expected %d normalized ballots, got %d: %v", len(expected), len(got), got)
	}
	for i := range expected {
		if got[i].Weight != expected[i].Weight {
			t.Errorf("Ballot %d: expected weight %d, got %d", i, expected[i].Weight, got[i].Weight)
		}
		if !reflect.DeepEqual(got[i].Choices, expected[i].Choices) {
			t.Errorf("Ballot %d: expected choices %v, got %v", i, expected[i].Choices, got[i].Choices)
		}
	}

	// Weight is conserved across merging.
	if TotalWeight(got) != TotalWeight(input) {
		t.Errorf("Expected total weight %d, got %d", TotalWeight(input), TotalWeight(got))
	}

	// The input order is untouched.
	if input[0].Weight != 1 || input[0].Choices[0] != 2 {
		t.Error("Expected Normalize to leave its input unmodified")
	}
}

func TestNormalizePrefixOrder(t *testing.T) {
	input := []Ballot{
		{Weight: 1, Choices: []int{1, 2, 3}},
		{Weight: 1, Choices: []int{1, 2}},
		{Weight: 1, Choices: []int{1}},
	}

	got := Normalize(input)

	if len(got) != 3 {
		t.Fatalf("Expected 3 ballots, got %d", len(got))
	}
	for i, expected := range [][]int{{1}, {1, 2}, {1, 2, 3}} {
		if !reflect.DeepEqual(got[i].Choices, expected) {
			t.Errorf("Ballot %d: expected choices %v, got %v", i, expected, got[i].Choices)
		}
	}
}

func TestTotalWeight(t *testing.T) {
	bs := []Ballot{{Weight: 1}, {Weight: 3, Choices: []int{1}}, {Weight: 2, Choices: []int{2}}}
	if got := TotalWeight(bs); got != 6 {
		t.Errorf("Expected total weight 6, got %d", got)
	}
	if got := TotalWeight(nil); got != 0 {
		t.Errorf("Expected total weight 0 for no ballots, got %d", got)
	}
}
