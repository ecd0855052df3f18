// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package formats

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the contests file the count command reads. YAML and JSON both
// work, JSON being a subset of YAML:
//
//	contests:
//	  - file: city-council.blt
//	  - name: School Board
//	    file: fixtures/school-board.blt
//	    withdrawn: [2, 5]
type Config struct {
	Contests []ContestRef `yaml:"contests"`
}

// ContestRef points at one BLT file to count. File is resolved relative to
// the config file's directory; Name, when set, overrides the contest name
// inside the BLT file, and Withdrawn adds withdrawals on top of any the BLT
// file already declares.
type ContestRef struct {
	Name      string `yaml:"name"`
	File      string `yaml:"file"`
	Withdrawn []int  `yaml:"withdrawn"`
}

// LoadConfig reads and validates a contests file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Contests) == 0 {
		return nil, fmt.Errorf("%s lists no contests", path)
	}

	dir := filepath.Dir(path)
	for i := range cfg.Contests {
		ref := &cfg.Contests[i]
		if ref.File == "" {
			return nil, fmt.Errorf("%s: contest %d has no file", path, i+1)
		}
		if !filepath.IsAbs(ref.File) {
			ref.File = filepath.Join(dir, ref.File)
		}
	}
	return &cfg, nil
}
