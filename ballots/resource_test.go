// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballots

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func appendLine(t *testing.T, path, text string) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("Failed to open %s for append: %v", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(text); err != nil {
		t.Fatalf("Failed to append to %s: %v", path, err)
	}
}

// resourceVariants returns a fresh instance of every in-package Resource
// implementation so the contract tests run against each one.
func resourceVariants(t *testing.T) map[string]Resource {
	t.Helper()
	return map[string]Resource{
		"memory": NewMemoryResource(),
		"file":   NewFileResource(filepath.Join(t.TempDir(), "ballots.txt")),
		"buffer": NewBufferResource(""),
	}
}

func TestResourceRoundTrip(t *testing.T) {
	input := []Ballot{
		{Weight: 1, Choices: []int{1, 2}},
		{Weight: 3},
		{Weight: 2, Choices: []int{2}},
	}

	for name, res := range resourceVariants(t) {
		t.Run(name, func(t *testing.T) {
			if err := WriteAll(res, input); err != nil {
				t.Fatalf("WriteAll failed: %v", err)
			}

			// Two sequential passes read identical contents.
			for pass := 0; pass < 2; pass++ {
				got, err := ReadAll(res)
				if err != nil {
					t.Fatalf("Pass %d: ReadAll failed: %v", pass+1, err)
				}
				if !reflect.DeepEqual(got, input) {
					t.Errorf("Pass %d: expected %v, got %v", pass+1, input, got)
				}
			}
		})
	}
}

func TestResourceOverlappingReaders(t *testing.T) {
	input := []Ballot{
		{Weight: 1, Choices: []int{1}},
		{Weight: 2, Choices: []int{2}},
		{Weight: 3, Choices: []int{3}},
	}

	for name, res := range resourceVariants(t) {
		t.Run(name, func(t *testing.T) {
			if err := WriteAll(res, input); err != nil {
				t.Fatalf("WriteAll failed: %v", err)
			}

			a, err := res.Open()
			if err != nil {
				t.Fatalf("First Open failed: %v", err)
			}
			defer a.Close()

			// Advance the first reader past the first ballot before
			// starting the second.
			if !a.Next() {
				t.Fatalf("First reader stopped early: %v", a.Err())
			}

			b, err := res.Open()
			if err != nil {
				t.Fatalf("Second Open failed: %v", err)
			}
			defer b.Close()

			if !b.Next() {
				t.Fatalf("Second reader stopped early: %v", b.Err())
			}
			if got := b.Ballot(); got.Weight != 1 {
				t.Errorf("Expected second reader to start from the beginning, got %v", got)
			}

			if !a.Next() {
				t.Fatalf("First reader stopped early: %v", a.Err())
			}
			if got := a.Ballot(); got.Weight != 2 {
				t.Errorf("Expected first reader to keep its own position, got %v", got)
			}
		})
	}
}

func TestResourceCreateTruncates(t *testing.T) {
	for name, res := range resourceVariants(t) {
		t.Run(name, func(t *testing.T) {
			if err := WriteAll(res, []Ballot{{Weight: 5, Choices: []int{1}}}); err != nil {
				t.Fatalf("WriteAll failed: %v", err)
			}

			// A write scope with no writes still empties the resource.
			w, err := res.Create()
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			got, err := ReadAll(res)
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("Expected empty resource after truncating create, got %v", got)
			}
		})
	}
}

func TestResourceCreateReplaces(t *testing.T) {
	for name, res := range resourceVariants(t) {
		t.Run(name, func(t *testing.T) {
			if err := WriteAll(res, []Ballot{{Weight: 1, Choices: []int{1}}}); err != nil {
				t.Fatalf("First WriteAll failed: %v", err)
			}

			replacement := []Ballot{{Weight: 9, Choices: []int{2, 1}}}
			if err := WriteAll(res, replacement); err != nil {
				t.Fatalf("Second WriteAll failed: %v", err)
			}

			got, err := ReadAll(res)
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if !reflect.DeepEqual(got, replacement) {
				t.Errorf("Expected %v, got %v", replacement, got)
			}
		})
	}
}

func TestResourceEmptyRead(t *testing.T) {
	// Memory and buffer resources start empty; the file variant needs the
	// file to exist first.
	file := NewFileResource(filepath.Join(t.TempDir(), "ballots.txt"))
	if err := WriteAll(file, nil); err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}

	for name, res := range map[string]Resource{
		"memory": NewMemoryResource(),
		"file":   file,
		"buffer": NewBufferResource(""),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := ReadAll(res)
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("Expected no ballots, got %v", got)
			}
		})
	}
}

func TestReaderErrorPosition(t *testing.T) {
	// The third line is malformed; the error must carry its 1-based
	// position and the last good ballot.
	text := "1 1 2\n2 2 1\n1 x\n1 1\n"

	tmp := filepath.Join(t.TempDir(), "ballots.txt")
	fileRes := NewFileResource(tmp)
	if w, err := fileRes.Create(); err != nil {
		t.Fatalf("Create failed: %v", err)
	} else {
		for _, line := range []string{"1 1 2", "2 2 1"} {
			b, err := Parse(line)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if err := w.Write(b); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}
	// Append the bad line behind the writer's back.
	appendLine(t, tmp, "1 x\n1 1\n")

	for name, res := range map[string]Resource{
		"file":   fileRes,
		"buffer": NewBufferResource(text),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadAll(res)
			if err == nil {
				t.Fatal("Expected a read error for the malformed line")
			}

			var re *ReadError
			if !errors.As(err, &re) {
				t.Fatalf("Expected a *ReadError, got %T: %v", err, err)
			}
			if re.Ordinal != 3 {
				t.Errorf("Expected failure at ballot 3, got %d", re.Ordinal)
			}
			if re.Last != "2 2 1" {
				t.Errorf("Expected last good ballot \"2 2 1\", got %q", re.Last)
			}
		})
	}
}

func TestReaderErrorBeforeFirstBallot(t *testing.T) {
	res := NewBufferResource("oops\n")

	_, err := ReadAll(res)
	if err == nil {
		t.Fatal("Expected a read error")
	}

	var re *ReadError
	if !errors.As(err, &re) {
		t.Fatalf("Expected a *ReadError, got %T: %v", err, err)
	}
	if re.Ordinal != 1 {
		t.Errorf("Expected failure at ballot 1, got %d", re.Ordinal)
	}
	if re.Last != "" {
		t.Errorf("Expected no last ballot, got %q", re.Last)
	}
}

func TestReaderStopsAfterError(t *testing.T) {
	res := NewBufferResource("1 1\nbad\n1 2\n")

	r, err := res.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	if !r.Next() {
		t.Fatalf("Expected first ballot, got error %v", r.Err())
	}
	if r.Next() {
		t.Error("Expected Next to fail on the malformed line")
	}
	if r.Err() == nil {
		t.Error("Expected Err to report the malformed line")
	}
	// Later ballots are unreachable once the pass has failed.
	if r.Next() {
		t.Error("Expected Next to keep returning false after an error")
	}
}

func TestFileResourceMissingFile(t *testing.T) {
	res := NewFileResource(filepath.Join(t.TempDir(), "missing.txt"))

	_, err := res.Open()
	if err == nil {
		t.Fatal("Expected an error opening a missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", err)
	}
}

func TestBufferResourceString(t *testing.T) {
	res := NewBufferResource("")
	if err := WriteAll(res, []Ballot{{Weight: 2, Choices: []int{1, 3}}, {Weight: 1}}); err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}

	expected := "2 1 3\n1\n"
	if got := res.String(); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestWriterRejectsWriteAfterClose(t *testing.T) {
	for name, res := range resourceVariants(t) {
		t.Run(name, func(t *testing.T) {
			w, err := res.Create()
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if err := w.Write(Ballot{Weight: 1}); err == nil {
				t.Error("Expected an error writing after Close")
			}
		})
	}
}
