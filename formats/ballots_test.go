// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package formats

import (
	"strings"
	"testing"

	"github.com/danielhkuo/rankedpick/ballots"
)

func TestWriteBallots(t *testing.T) {
	res := ballots.NewMemoryResource(
		ballots.Ballot{Weight: 1, Choices: []int{1, 2}},
		ballots.Ballot{Weight: 3},
		ballots.Ballot{Weight: 2, Choices: []int{2}},
	)

	var sb strings.Builder
	if err := WriteBallots(&sb, res); err != nil {
		t.Fatalf("WriteBallots failed: %v", err)
	}

	expected := "1 1 2\n3\n2 2\n"
	if sb.String() != expected {
		t.Errorf("Expected %q, got %q", expected, sb.String())
	}
}

func TestWriteBallotsEmpty(t *testing.T) {
	var sb strings.Builder
	if err := WriteBallots(&sb, &ballots.MemoryResource{}); err != nil {
		t.Fatalf("WriteBallots failed: %v", err)
	}
	if sb.String() != "" {
		t.Errorf("Expected empty output, got %q", sb.String())
	}
}
