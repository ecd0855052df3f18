// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package formats

import (
	"bufio"
	"fmt"
	"io"

	"github.com/danielhkuo/rankedpick/ballots"
)

// WriteBallots streams a resource out in the plain one-ballot-per-line
// encoding ("weight c1 c2 ..."), the format FileResource reads back.
func WriteBallots(w io.Writer, res ballots.Resource) error {
	r, err := res.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	bw := bufio.NewWriter(w)
	for r.Next() {
		if _, err := fmt.Fprintln(bw, r.Ballot().String()); err != nil {
			return err
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	return bw.Flush()
}
