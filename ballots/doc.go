// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ballots defines the ballot data model and the streaming
// interfaces every ballot source implements.
//
// # Ballots
//
// A Ballot pairs an integer weight with the voter's ranked choices, most
// preferred first. Weight folds identical ballots into one record: a ballot
// with weight 3 counts exactly like three separate weight-1 ballots with
// the same choices. Parse and String convert ballots to and from their
// one-line text encoding, and Normalize reduces a collection to a canonical
// sorted, merged form.
//
// # Resources
//
// A Resource is a rewindable home for a ballot collection. Counting ranked
// ballots takes one full pass per round, so resources hand out any number
// of independent read passes via Open, while Create replaces the contents
// wholesale. MemoryResource, FileResource and BufferResource live here;
// package db adds a SQL-backed implementation with the same contract.
//
// # Error reporting
//
// Readers fail fast: the first ballot that cannot be produced stops the
// pass with a *ReadError carrying the 1-based position of the failure and
// the last ballot that was read successfully, which is usually enough to
// find the bad record in the source by eye.
package ballots
