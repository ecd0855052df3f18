package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the parsed command and its settings. Only the fields for the
// selected Command carry meaning.
type Config struct {
	Command string

	// serve
	Port            int
	DatabaseURL     string
	DatabaseType    string
	AdminKeySalt    string
	ContestSlugSalt string

	Count CountConfig
	Gen   GenConfig
	Clean CleanConfig
}

// CountConfig configures the count command.
type CountConfig struct {
	Input  string
	Format string
}

// GenConfig configures the gen command.
type GenConfig struct {
	Candidates int
	Ballots    int
	Withdrawn  []int
	Format     string
	Output     string
	Normalize  bool
	Seed       int64
}

// CleanConfig configures the clean command.
type CleanConfig struct {
	Path string
}

// Parse picks the subcommand from args and parses its flags. No args, or a
// leading flag, selects serve so the bare server invocation keeps working.
func Parse(args []string) (Config, error) {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "serve":
		return parseServe(args)
	case "count":
		return parseCount(args)
	case "gen":
		return parseGen(args)
	case "clean":
		return parseClean(args)
	default:
		return Config{}, fmt.Errorf("unknown command %q (want serve, count, gen or clean)", cmd)
	}
}

// parseServe validates flags and sets port number
func parseServe(args []string) (Config, error) {
	cfg := Config{Command: "serve"}

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.ContestSlugSalt, "slug-salt", "", "Contest slug salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.ContestSlugSalt == "" {
		cfg.ContestSlugSalt = os.Getenv("CONTEST_SLUG_SALT")
	}
	if cfg.ContestSlugSalt == "" {
		return Config{}, errors.New("CONTEST_SLUG_SALT required")
	}

	return cfg, nil
}

func parseCount(args []string) (Config, error) {
	cfg := Config{Command: "count"}

	fs := flag.NewFlagSet("count", flag.ContinueOnError)
	fs.StringVar(&cfg.Count.Input, "i", "", "Contest config file (YAML or JSON)")
	fs.StringVar(&cfg.Count.Format, "f", "auto", "Output format (auto, text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Count.Input == "" && fs.NArg() > 0 {
		cfg.Count.Input = fs.Arg(0)
	}
	if cfg.Count.Input == "" {
		return Config{}, errors.New("count needs a config file (use -i or a positional path)")
	}

	switch cfg.Count.Format {
	case "auto", "text", "json":
	default:
		return Config{}, fmt.Errorf("unknown count format %q (want auto, text or json)", cfg.Count.Format)
	}

	return cfg, nil
}

func parseGen(args []string) (Config, error) {
	cfg := Config{Command: "gen"}

	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	fs.IntVar(&cfg.Gen.Candidates, "c", 6, "Number of candidates")
	fs.IntVar(&cfg.Gen.Ballots, "b", 20, "Number of ballots")
	withdrawn := fs.String("w", "", "Withdrawn candidate numbers, comma separated")
	fs.StringVar(&cfg.Gen.Format, "f", "blt", "Output format (blt, ballots or jscase)")
	fs.StringVar(&cfg.Gen.Output, "o", "", "Output directory (default: stdout)")
	fs.BoolVar(&cfg.Gen.Normalize, "n", false, "Normalize generated ballots")
	fs.Int64Var(&cfg.Gen.Seed, "seed", 0, "Random seed (0 seeds from the clock)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Gen.Candidates < 1 {
		return Config{}, errors.New("gen needs at least one candidate")
	}
	if cfg.Gen.Ballots < 0 {
		return Config{}, errors.New("gen ballot count cannot be negative")
	}

	switch cfg.Gen.Format {
	case "blt", "ballots", "jscase":
	default:
		return Config{}, fmt.Errorf("unknown gen format %q (want blt, ballots or jscase)", cfg.Gen.Format)
	}

	var err error
	cfg.Gen.Withdrawn, err = parseIntList(*withdrawn)
	if err != nil {
		return Config{}, fmt.Errorf("invalid -w list: %w", err)
	}

	return cfg, nil
}

func parseClean(args []string) (Config, error) {
	cfg := Config{Command: "clean"}

	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if fs.NArg() != 1 {
		return Config{}, errors.New("clean needs exactly one case file path")
	}
	cfg.Clean.Path = fs.Arg(0)

	return cfg, nil
}

// parseIntList reads a comma separated list like "2,5" into ints. An empty
// string is an empty list.
func parseIntList(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad number %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}
