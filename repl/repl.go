// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package repl provides a read/expand/print loop for mac items.
//
// It supports readline-style command editing,
// and interrupts through Control-C.
//
// Each input is parsed as a sequence of items and expanded as if it
// had been written after the items of all earlier inputs. Input that
// leaves a bracket open is continued on the following lines.
// Diagnostics reported while expanding an input are printed at once;
// those that need the whole crate are printed when the session ends,
// at end of file or on the :end command.
//
// Commands:
//
//	:end      finalize resolution and exit
//	:expand   print the expanded items so far
//	:macros   list the names of all known macros
package repl // import "go.macroscope.dev/repl"

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"go.macroscope.dev/expand"
	"go.macroscope.dev/internal/report"
	"go.macroscope.dev/resolve"
	"go.macroscope.dev/syntax"
)

// A Session holds the state of one crate built up input by input.
type Session struct {
	resolver *resolve.Resolver
	expander *expand.Expander

	scope    syntax.Mark // mark of the most recent input
	items    []syntax.Item
	nerrs    int // resolver errors already returned
	nxerrs   int // expander errors already returned
	finished bool
}

// NewSession returns a session for an initially empty crate.
func NewSession(crateName string, opts *expand.Options) (*Session, error) {
	r, x, err := expand.Setup(crateName, nil, opts)
	if err != nil {
		return nil, err
	}
	x.ExpandItems(syntax.RootMark, nil)
	return &Session{resolver: r, expander: x, scope: syntax.RootMark}, nil
}

// Resolver returns the session's resolver.
func (s *Session) Resolver() *resolve.Resolver { return s.resolver }

// Items returns the expanded items of all inputs so far.
func (s *Session) Items() []syntax.Item { return s.items }

// Eval parses src and expands its items after those of earlier
// inputs. It returns the diagnostics the expansion reported, or a
// syntax error, in which case the session is unchanged.
func (s *Session) Eval(filename, src string) (resolve.ErrorList, error) {
	if s.finished {
		return nil, fmt.Errorf("session has ended")
	}
	f, err := syntax.Parse(filename, src)
	if err != nil {
		return nil, err
	}
	mark := s.resolver.ContinueScope(s.scope)
	s.expander.ExpandItems(mark, f.Items)
	s.scope = mark
	s.items = append(s.items, f.Items...)
	return s.newErrors(), nil
}

// Finish finalizes resolution and returns the remaining diagnostics.
// Eval fails after Finish.
func (s *Session) Finish() resolve.ErrorList {
	if s.finished {
		return nil
	}
	s.finished = true
	s.resolver.Finalize()
	return s.newErrors()
}

func (s *Session) newErrors() resolve.ErrorList {
	var errs resolve.ErrorList
	if xerrs := s.expander.Errors(); len(xerrs) > s.nxerrs {
		errs = append(errs, xerrs[s.nxerrs:]...)
		s.nxerrs = len(xerrs)
	}
	rerrs := s.resolver.ErrorsSince(s.nerrs)
	s.nerrs += len(rerrs)
	errs = append(errs, rerrs...)
	errs.Sort()
	return errs
}

// REPL reads inputs from the terminal, expands them in s, and prints
// their diagnostics with p until end of input or the :end command.
func REPL(s *Session, p *report.Printer) error {
	rl, err := readline.New(">>> ")
	if err != nil {
		return err
	}
	defer rl.Close()
	return Run(s, p, rl.Readline, rl.SetPrompt)
}

// Run is the loop of REPL with its input abstracted: readLine returns
// the next line or an error (io.EOF at end of input), and setPrompt,
// if non-nil, is told which prompt to show.
func Run(s *Session, p *report.Printer, readLine func() (string, error), setPrompt func(string)) error {
	if setPrompt == nil {
		setPrompt = func(string) {}
	}
	var buf strings.Builder
	for {
		if buf.Len() == 0 {
			setPrompt(">>> ")
		} else {
			setPrompt("... ")
		}
		line, err := readLine()
		if err == readline.ErrInterrupt {
			buf.Reset()
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if buf.Len() == 0 {
			switch strings.TrimSpace(line) {
			case "":
				continue
			case ":end":
				return p.Errors(s.Finish())
			case ":expand":
				if err := p.Expanded(s.Items()); err != nil {
					return err
				}
				continue
			case ":macros":
				for _, name := range s.resolver.MacroNames() {
					fmt.Fprintln(p.Writer(), name)
				}
				continue
			}
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		if open(buf.String()) {
			continue
		}
		src := buf.String()
		buf.Reset()

		errs, err := s.Eval("<stdin>", src)
		if err != nil {
			fmt.Fprintln(p.Writer(), err)
			continue
		}
		if err := p.Errors(errs); err != nil {
			return err
		}
	}
	return p.Errors(s.Finish())
}

// open reports whether src leaves a bracket open.
// Brackets inside strings and line comments are ignored.
func open(src string) bool {
	depth := 0
	inString := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case inString:
			switch c {
			case '\\':
				i++
			case '"', '\n':
				inString = false
			}
		case c == '"':
			inString = true
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		}
	}
	return depth > 0
}
