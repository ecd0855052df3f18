// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package contest models a single ranked-choice contest.
//
// A Definition ties together the three inputs a count needs: the candidate
// roster, the candidates withdrawn before counting, and a ballot resource.
// Withdrawn candidates stay on the roster and keep their numbers, so old
// ballots that rank them remain meaningful; the counting engine simply
// skips over them. New rejects rosters and withdrawal lists that could not
// describe a real contest, so code downstream can assume a Definition is
// well-formed.
package contest
