// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package commands

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/danielhkuo/rankedpick/ballots"
	"github.com/danielhkuo/rankedpick/cliparse"
	"github.com/danielhkuo/rankedpick/contest"
	"github.com/danielhkuo/rankedpick/datagen"
	"github.com/danielhkuo/rankedpick/formats"
)

// Gen builds one random contest and writes it in the configured format to
// out, or into a file under the output directory when one is set. A non-zero
// seed makes the output reproducible.
func Gen(cfg cliparse.GenConfig, out io.Writer) error {
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	res := ballots.NewMemoryResource()
	def, err := datagen.RandomContest(res, cfg.Candidates, cfg.Ballots, cfg.Withdrawn, rng)
	if err != nil {
		return err
	}

	if cfg.Normalize {
		bs, err := ballots.ReadAll(res)
		if err != nil {
			return err
		}
		if err := ballots.WriteAll(res, ballots.Normalize(bs)); err != nil {
			return err
		}
	}

	if cfg.Output == "" {
		return writeGenerated(out, cfg.Format, def, res)
	}

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return err
	}
	path := filepath.Join(cfg.Output, "random-contest"+genExt(cfg.Format))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeGenerated(f, cfg.Format, def, res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	slog.Info("wrote random contest", "path", path, "candidates", cfg.Candidates, "ballots", cfg.Ballots)
	return nil
}

func writeGenerated(w io.Writer, format string, def *contest.Definition, res ballots.Resource) error {
	switch format {
	case "blt":
		return formats.WriteBLT(w, def)
	case "ballots":
		return formats.WriteBallots(w, res)
	case "jscase":
		c, err := formats.CaseFromDefinition(def, 1)
		if err != nil {
			return err
		}
		return formats.WriteCases(w, &formats.CaseFile{Contests: []formats.Case{*c}})
	default:
		return fmt.Errorf("unknown gen format %q", format)
	}
}

func genExt(format string) string {
	switch format {
	case "blt":
		return ".blt"
	case "jscase":
		return ".json"
	default:
		return ".ballots"
	}
}
