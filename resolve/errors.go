// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"fmt"
	"sort"
	"strings"

	"go.macroscope.dev/syntax"
)

// An Error describes the nature and position of a resolver or
// expander diagnostic.
type Error struct {
	Pos   syntax.Position
	Msg   string
	Notes []Note
	Help  string // optional suggestion
}

// A Note is a secondary message attached to an Error.
// Its position may be invalid.
type Note struct {
	Pos syntax.Position
	Msg string
}

func (e Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// Detail returns the error followed by its notes and help, one per line.
func (e Error) Detail() string {
	var buf strings.Builder
	buf.WriteString(e.Error())
	for _, note := range e.Notes {
		buf.WriteString("\n\tnote: ")
		if note.Pos.IsValid() {
			fmt.Fprintf(&buf, "%s: ", note.Pos)
		}
		buf.WriteString(note.Msg)
	}
	if e.Help != "" {
		fmt.Fprintf(&buf, "\n\thelp: %s", e.Help)
	}
	return buf.String()
}

// An ErrorList is a non-empty list of errors.
type ErrorList []Error

func (e ErrorList) Error() string {
	switch len(e) {
	case 0:
		return "no errors"
	case 1:
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e[0], len(e)-1)
}

// Sort sorts the list by position, preserving the order of errors
// reported at the same position.
func (e ErrorList) Sort() {
	sort.SliceStable(e, func(i, j int) bool {
		x, y := e[i].Pos, e[j].Pos
		if x.Filename() != y.Filename() {
			return x.Filename() < y.Filename()
		}
		return x.Before(y)
	})
}

// Err returns e, or nil if e is empty.
func (e ErrorList) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
