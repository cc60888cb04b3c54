// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report prints diagnostics and macro resolutions, either as
// text for people or as JSON for tools.
package report // import "go.macroscope.dev/internal/report"

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"go.macroscope.dev/expand"
	"go.macroscope.dev/resolve"
	"go.macroscope.dev/syntax"
)

const (
	bold  = "\x1b[1m"
	red   = "\x1b[31m"
	blue  = "\x1b[34m"
	cyan  = "\x1b[36m"
	reset = "\x1b[0m"
)

// A Printer writes reports to an output stream.
type Printer struct {
	w     io.Writer
	json  bool
	color bool
}

// New returns a printer writing to w. JSON output is selected by json.
// Text output is coloured when w is a terminal.
func New(w io.Writer, json bool) *Printer {
	p := &Printer{w: w, json: json}
	if f, ok := w.(*os.File); ok && !json {
		p.color = term.IsTerminal(int(f.Fd()))
	}
	return p
}

// Writer returns the printer's output stream.
func (p *Printer) Writer() io.Writer { return p.w }

// SetColor forces coloured text output on or off.
func (p *Printer) SetColor(on bool) { p.color = on }

func (p *Printer) paint(style, s string) string {
	if !p.color {
		return s
	}
	return style + s + reset
}

// Errors reports each error of errs.
func (p *Printer) Errors(errs resolve.ErrorList) error {
	if p.json {
		list := make([]interface{}, len(errs))
		for i, e := range errs {
			list[i] = errorValue(e)
		}
		return p.emit(map[string]interface{}{"errors": list})
	}
	for _, e := range errs {
		fmt.Fprintf(p.w, "%s: %s %s\n", e.Pos, p.paint(bold+red, "error:"), e.Msg)
		for _, note := range e.Notes {
			fmt.Fprintf(p.w, "\t%s ", p.paint(bold+blue, "note:"))
			if note.Pos.IsValid() {
				fmt.Fprintf(p.w, "%s: ", note.Pos)
			}
			fmt.Fprintln(p.w, note.Msg)
		}
		if e.Help != "" {
			fmt.Fprintf(p.w, "\t%s %s\n", p.paint(bold+cyan, "help:"), e.Help)
		}
	}
	return nil
}

// Resolutions reports what each invocation resolved to.
func (p *Printer) Resolutions(rs []expand.Resolution) error {
	if p.json {
		list := make([]interface{}, len(rs))
		for i, r := range rs {
			v := map[string]interface{}{
				"pos":  r.Pos.String(),
				"path": r.Path,
				"mark": uint32(r.Mark),
			}
			if r.Macro != nil {
				v["macro"] = r.Macro.Name
				v["kind"] = r.Macro.Kind.String()
				if r.Macro.Pos.IsValid() {
					v["def"] = r.Macro.Pos.String()
				}
			}
			list[i] = v
		}
		return p.emit(map[string]interface{}{"resolutions": list})
	}
	for _, r := range rs {
		switch {
		case r.Macro == nil:
			fmt.Fprintf(p.w, "%s: %s!: %s\n", r.Pos, r.Path, p.paint(red, "unresolved"))
		case r.Macro.IsBuiltin():
			fmt.Fprintf(p.w, "%s: %s!: builtin %s `%s`\n", r.Pos, r.Path, r.Macro.Kind, r.Macro.Name)
		default:
			fmt.Fprintf(p.w, "%s: %s!: %s `%s` defined at %s\n", r.Pos, r.Path, r.Macro.Kind, r.Macro.Name, r.Macro.Pos)
		}
	}
	return nil
}

// Expanded prints the expanded items of a crate. In JSON the
// printed text is the value of the "expanded" field.
func (p *Printer) Expanded(items []syntax.Item) error {
	if p.json {
		return p.emit(map[string]interface{}{"expanded": syntax.Format(items, true)})
	}
	return syntax.Fprint(p.w, items, true)
}

func (p *Printer) emit(v map[string]interface{}) error {
	msg, err := structpb.NewStruct(v)
	if err != nil {
		return err
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = p.w.Write(data)
	return err
}

func errorValue(e resolve.Error) map[string]interface{} {
	v := map[string]interface{}{
		"pos": e.Pos.String(),
		"msg": e.Msg,
	}
	if len(e.Notes) > 0 {
		notes := make([]interface{}, len(e.Notes))
		for i, note := range e.Notes {
			n := map[string]interface{}{"msg": note.Msg}
			if note.Pos.IsValid() {
				n["pos"] = note.Pos.String()
			}
			notes[i] = n
		}
		v["notes"] = notes
	}
	if e.Help != "" {
		v["help"] = e.Help
	}
	return v
}
