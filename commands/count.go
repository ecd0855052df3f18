// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/rankedpick/ballots"
	"github.com/danielhkuo/rankedpick/cliparse"
	"github.com/danielhkuo/rankedpick/contest"
	"github.com/danielhkuo/rankedpick/formats"
	"github.com/danielhkuo/rankedpick/tally"
)

type countedContest struct {
	def    *contest.Definition
	result *tally.Result
}

// Count loads a contests config, counts every contest it lists and writes
// the results to out. Ballots stream through temp files rather than memory,
// so large BLT inputs count in constant space. Format auto renders text when
// out is a terminal and JSON otherwise.
func Count(cfg cliparse.CountConfig, out io.Writer) error {
	conf, err := formats.LoadConfig(cfg.Input)
	if err != nil {
		return err
	}

	format := cfg.Format
	if format == "auto" || format == "" {
		format = "json"
		if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			format = "text"
		}
	}

	tmpDir, err := os.MkdirTemp("", "rankedpick-count-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	counted := make([]countedContest, 0, len(conf.Contests))
	for i, ref := range conf.Contests {
		res := ballots.NewFileResource(filepath.Join(tmpDir, fmt.Sprintf("contest-%d.ballots", i+1)))

		f, err := os.Open(ref.File)
		if err != nil {
			return err
		}
		def, err := formats.ReadBLT(f, res)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", ref.File, err)
		}

		// The config may rename the contest and widen its withdrawn set.
		if ref.Name != "" || len(ref.Withdrawn) > 0 {
			name := def.Name
			if ref.Name != "" {
				name = ref.Name
			}
			def, err = contest.New(name, def.Candidates, mergeWithdrawn(def.Withdrawn, ref.Withdrawn), res)
			if err != nil {
				return fmt.Errorf("%s: %w", ref.File, err)
			}
		}

		result, err := tally.Count(def)
		if err != nil {
			return fmt.Errorf("%s: %w", ref.File, err)
		}

		slog.Info("counted contest", "contest", def.Name, "rounds", len(result.Rounds), "winner", result.Winner, "tie", result.Tie)
		counted = append(counted, countedContest{def: def, result: result})
	}

	if format == "json" {
		cf := &formats.CaseFile{}
		for i, cc := range counted {
			c, err := formats.CaseFromDefinition(cc.def, i+1)
			if err != nil {
				return err
			}
			c.Expected = cc.result
			cf.Contests = append(cf.Contests, *c)
		}
		return formats.WriteCases(out, cf)
	}

	for i, cc := range counted {
		if i > 0 {
			fmt.Fprintln(out)
		}
		writeTextResult(out, cc.def, cc.result)
	}
	return nil
}

// mergeWithdrawn unions two withdrawn lists, keeping first-seen order and
// dropping repeats so the merged list still validates.
func mergeWithdrawn(a, b []int) []int {
	seen := make(map[int]bool, len(a)+len(b))
	var out []int
	for _, n := range a {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, n := range b {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// writeTextResult renders one counted contest as a round-by-round report.
func writeTextResult(w io.Writer, def *contest.Definition, res *tally.Result) {
	width := len("(exhausted)")
	for _, name := range def.Candidates {
		if len(name) > width {
			width = len(name)
		}
	}

	fmt.Fprintf(w, "Contest: %s\n", def.Name)
	fmt.Fprintf(w, "Candidates: %d (%d withdrawn)\n", def.CandidateCount(), len(def.Withdrawn))
	fmt.Fprintf(w, "Ballot weight: %s\n", humanize.Comma(int64(res.BallotWeight())))

	for _, round := range res.Rounds {
		fmt.Fprintf(w, "\nRound %d:\n", round.Number)
		for _, n := range descendingTotals(round.Totals) {
			fmt.Fprintf(w, "  %-*s %s\n", width, def.Label(n), humanize.Comma(int64(round.Totals[n])))
		}
		if round.Exhausted > 0 {
			fmt.Fprintf(w, "  %-*s %s\n", width, "(exhausted)", humanize.Comma(int64(round.Exhausted)))
		}
	}

	if res.HasWinner() {
		fmt.Fprintf(w, "\nWinner: %s\n", def.Label(res.Winner))
	} else {
		fmt.Fprintf(w, "\nResult: tie, no winner\n")
	}
}

// descendingTotals orders candidate numbers by total, highest first, ties by
// candidate number, the order reports conventionally use.
func descendingTotals(totals map[int]int) []int {
	ns := make([]int, 0, len(totals))
	for n := range totals {
		ns = append(ns, n)
	}
	sort.Slice(ns, func(i, j int) bool {
		if totals[ns[i]] != totals[ns[j]] {
			return totals[ns[i]] > totals[ns[j]]
		}
		return ns[i] < ns[j]
	})
	return ns
}
