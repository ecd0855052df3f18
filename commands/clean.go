// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/danielhkuo/rankedpick/cliparse"
	"github.com/danielhkuo/rankedpick/formats"
)

// Clean rewrites a JSON case file in canonical form: contests renumbered
// from 1 and every ballot list sorted with equal rankings merged. Running it
// twice produces identical bytes, so regenerated fixtures diff cleanly.
func Clean(cfg cliparse.CleanConfig) error {
	f, err := os.Open(cfg.Path)
	if err != nil {
		return err
	}
	cf, err := formats.ReadCases(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Path, err)
	}

	if err := cf.Normalize(); err != nil {
		return fmt.Errorf("%s: %w", cfg.Path, err)
	}

	out, err := os.Create(cfg.Path)
	if err != nil {
		return err
	}
	if err := formats.WriteCases(out, cf); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	slog.Info("cleaned case file", "path", cfg.Path, "contests", len(cf.Contests))
	return nil
}
