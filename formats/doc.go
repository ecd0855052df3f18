// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package formats reads and writes the file formats contests travel in.
//
// # BLT
//
// ReadBLT and WriteBLT handle the single-winner profile of the BLT election
// format used by several counting tools: a header line, an optional
// withdrawn line of negated candidate numbers, 0-terminated ballot lines, a
// lone 0, then quoted candidate names and the quoted contest name. Parse
// errors name the offending line number.
//
// # Case files
//
// CaseFile is a JSON container for contests with inline ballots and,
// optionally, their expected count. It exists for golden fixtures: ballots
// are stored as one-line strings and Normalize puts a file into a canonical
// renumbered, sorted form so regenerated fixtures diff cleanly.
//
// # Contest configs
//
// LoadConfig reads the small YAML (or JSON) file pointing the count command
// at one or more BLT files.
package formats
