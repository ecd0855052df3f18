// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package formats

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/danielhkuo/rankedpick/ballots"
	"github.com/danielhkuo/rankedpick/contest"
)

// ReadBLT parses a contest in BLT format from r, streaming its ballots into
// res, and returns the assembled definition. res is truncated first; on a
// parse error it is left holding whatever ballots were written before the
// bad line.
//
// The layout read here is the common single-winner BLT profile: a header of
// candidate count and seat count, an optional line of negated withdrawn
// candidate numbers, ballot lines of weight then choices then a closing 0,
// a lone 0 ending the ballot section, one quoted candidate name per line,
// and finally the quoted contest name. Only blank lines may follow.
func ReadBLT(r io.Reader, res ballots.Resource) (*contest.Definition, error) {
	w, err := res.Create()
	if err != nil {
		return nil, err
	}

	p := &bltParser{scanner: bufio.NewScanner(r)}
	def, parseErr := p.parse(w, res)
	closeErr := w.Close()
	if parseErr != nil {
		return nil, parseErr
	}
	if closeErr != nil {
		return nil, closeErr
	}
	return def, nil
}

// WriteBLT renders the contest in the layout ReadBLT reads. Withdrawn
// candidate numbers are written in ascending order, and names are wrapped
// in double quotes.
func WriteBLT(w io.Writer, def *contest.Definition) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%d 1\n", def.CandidateCount())

	if len(def.Withdrawn) > 0 {
		withdrawn := append([]int(nil), def.Withdrawn...)
		sort.Ints(withdrawn)
		parts := make([]string, len(withdrawn))
		for i, n := range withdrawn {
			parts[i] = strconv.Itoa(-n)
		}
		fmt.Fprintln(bw, strings.Join(parts, " "))
	}

	r, err := def.Ballots.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	for r.Next() {
		fmt.Fprintf(bw, "%s 0\n", r.Ballot().String())
	}
	if err := r.Err(); err != nil {
		return err
	}
	fmt.Fprintln(bw, "0")

	for _, name := range def.Candidates {
		fmt.Fprintf(bw, "\"%s\"\n", name)
	}
	fmt.Fprintf(bw, "\"%s\"\n", def.Name)

	return bw.Flush()
}

type bltParser struct {
	scanner *bufio.Scanner
	line    int
}

// nextLine returns the next line trimmed of surrounding whitespace, or
// io.EOF at a clean end of input.
func (p *bltParser) nextLine() (string, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	p.line++
	return strings.TrimSpace(p.scanner.Text()), nil
}

func (p *bltParser) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", p.line, fmt.Sprintf(format, args...))
}

func (p *bltParser) parse(w ballots.Writer, res ballots.Resource) (*contest.Definition, error) {
	// Header: candidate count and seat count.
	header, err := p.nextLine()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty input")
		}
		return nil, err
	}
	counts, err := parseInts(header)
	if err != nil || len(counts) != 2 {
		return nil, p.errorf("header must be two integers, candidate count then seat count")
	}
	candidateCount, seats := counts[0], counts[1]
	if candidateCount < 1 {
		return nil, p.errorf("candidate count must be positive, got %d", candidateCount)
	}
	if seats != 1 {
		return nil, p.errorf("multi-seat contests are not supported, got %d seats", seats)
	}

	// Optional withdrawn line, written as negated candidate numbers. A
	// blank line is an empty withdrawn list. Anything else is already the
	// first ballot line.
	var withdrawn []int
	var pending *string
	line, err := p.nextLine()
	if err != nil {
		if err == io.EOF {
			return nil, p.errorf("missing ballot section")
		}
		return nil, err
	}
	if line != "" {
		ints, err := parseInts(line)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		if ints[0] < 0 {
			for _, n := range ints {
				if n >= 0 {
					return nil, p.errorf("withdrawn line mixes %d with negated candidate numbers", n)
				}
				withdrawn = append(withdrawn, -n)
			}
		} else {
			pending = &line
		}
	}

	// Ballot section: weight, choices and a closing 0 per line, ended by
	// a lone 0.
	for {
		var text string
		if pending != nil {
			text = *pending
			pending = nil
		} else {
			text, err = p.nextLine()
			if err != nil {
				if err == io.EOF {
					return nil, p.errorf("ballot section never reached its closing 0")
				}
				return nil, err
			}
		}

		ints, err := parseInts(text)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		if len(ints) == 0 {
			return nil, p.errorf("blank line inside the ballot section")
		}
		if ints[0] == 0 {
			if len(ints) != 1 {
				return nil, p.errorf("ballot terminator must be a lone 0")
			}
			break
		}

		b, err := bltBallot(ints)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		if err := w.Write(b); err != nil {
			return nil, err
		}
	}

	// Candidate names in roster order, then the contest name.
	names := make([]string, 0, candidateCount)
	for i := 0; i < candidateCount; i++ {
		line, err := p.nextLine()
		if err != nil {
			if err == io.EOF {
				return nil, p.errorf("expected %d candidate names, got %d", candidateCount, i)
			}
			return nil, err
		}
		if line == "" {
			return nil, p.errorf("blank line where candidate name %d was expected", i+1)
		}
		names = append(names, unquote(line))
	}

	title, err := p.nextLine()
	if err != nil {
		if err == io.EOF {
			return nil, p.errorf("missing contest name after the candidate names")
		}
		return nil, err
	}
	if title == "" {
		return nil, p.errorf("blank line where the contest name was expected")
	}

	// Only blank lines may follow the contest name.
	for {
		line, err := p.nextLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if line != "" {
			return nil, p.errorf("unexpected content after the contest name: %q", line)
		}
	}

	return contest.New(unquote(title), names, withdrawn, res)
}

// bltBallot converts one ballot line's integers into a ballot. The line
// carries the weight, then the choices, then a closing 0.
func bltBallot(ints []int) (ballots.Ballot, error) {
	weight := ints[0]
	if weight < 1 {
		return ballots.Ballot{}, fmt.Errorf("ballot weight must be positive, got %d", weight)
	}
	if ints[len(ints)-1] != 0 {
		return ballots.Ballot{}, fmt.Errorf("ballot line must end with 0")
	}

	b := ballots.Ballot{Weight: weight}
	seen := make(map[int]bool)
	for _, c := range ints[1 : len(ints)-1] {
		if c < 1 {
			return ballots.Ballot{}, fmt.Errorf("ballot choice must be a positive candidate number, got %d", c)
		}
		if seen[c] {
			return ballots.Ballot{}, fmt.Errorf("duplicate choice %d", c)
		}
		seen[c] = true
		b.Choices = append(b.Choices, c)
	}
	return b, nil
}

func parseInts(s string) ([]int, error) {
	fields := strings.Fields(s)
	ints := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", f)
		}
		ints = append(ints, n)
	}
	return ints, nil
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
