// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"bytes"
	"io"
	"strings"
)

// Fprint writes items to w as mac source.
//
// If expanded is set, each invocation that the expander has processed
// is replaced by its expansion, which may be empty. Otherwise
// invocations are printed as written.
func Fprint(w io.Writer, items []Item, expanded bool) error {
	p := &printer{expanded: expanded}
	p.items(items)
	_, err := p.buf.WriteTo(w)
	return err
}

// Format returns the mac source for items.
func Format(items []Item, expanded bool) string {
	var buf strings.Builder
	Fprint(&buf, items, expanded)
	return buf.String()
}

type printer struct {
	buf      bytes.Buffer
	expanded bool
	indent   int
}

func (p *printer) line(parts ...string) {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteByte('\t')
	}
	for _, s := range parts {
		p.buf.WriteString(s)
	}
	p.buf.WriteByte('\n')
}

func (p *printer) items(items []Item) {
	for _, item := range items {
		p.item(item)
	}
}

// braced prints header followed by a braced list of items.
// A list that prints as nothing is written {}.
func (p *printer) braced(header string, items []Item) {
	start := p.buf.Len()
	p.line(header, "{")
	body := p.buf.Len()
	p.indent++
	p.items(items)
	p.indent--
	if p.buf.Len() == body {
		p.buf.Truncate(start)
		p.line(header, "{}")
		return
	}
	p.line("}")
}

func (p *printer) attrs(attrs []*Attr) {
	for _, attr := range attrs {
		p.line("#[", attr.Name.Name, "]")
	}
}

func (p *printer) item(item Item) {
	if call, ok := item.(*MacroCall); ok && p.expanded && call.Mark != RootMark {
		p.items(call.Expansion)
		return
	}

	p.attrs(*item.Attributes())
	switch item := item.(type) {
	case *ModItem:
		p.braced("mod "+item.Name.Name+" ", item.Items)
	case *FnItem:
		p.braced("fn "+item.Name.Name+" ", item.Body.Items)
	case *Block:
		p.braced("", item.Items)
	case *MacroRules:
		p.braced("macro_rules! "+item.Name.Name+" ", item.Body)
	case *MacroDef:
		p.braced("macro "+item.Name.Name+" ", item.Body)
	case *UseItem:
		if item.Rename != nil {
			p.line("use ", pathString(item.Path), " as ", item.Rename.Name, ";")
		} else {
			p.line("use ", pathString(item.Path), ";")
		}
	case *ExternCrate:
		p.line("extern crate ", item.Name.Name, ";")
	case *ConstItem:
		p.line("const ", item.Name.Name, " = ", p.expr(item.Value), ";")
	case *ExprItem:
		p.line(p.expr(item.X), ";")
	case *MacroCall:
		if item.Attr != nil {
			p.line("#[", item.Attr.Name.Name, "]")
			p.item(item.Target)
			return
		}
		p.line(callString(item), ";")
	}
}

func (p *printer) expr(x Expr) string {
	switch x := x.(type) {
	case *Literal:
		return x.Raw
	case *MacroCall:
		if p.expanded && x.Mark != RootMark && len(x.Expansion) == 1 {
			switch item := x.Expansion[0].(type) {
			case *ExprItem:
				return p.expr(item.X)
			case *MacroCall:
				return p.expr(item)
			}
		}
		return callString(x)
	}
	return "?"
}

func callString(call *MacroCall) string {
	return pathString(call.Path) + "!(" + call.Args + ")"
}

func pathString(path *Path) string {
	var buf strings.Builder
	if path.Global {
		buf.WriteString("::")
	}
	for i, seg := range path.Segments {
		if i > 0 {
			buf.WriteString("::")
		}
		buf.WriteString(seg.Name.Name)
		if len(seg.Args) > 0 {
			buf.WriteByte('<')
			for j, arg := range seg.Args {
				if j > 0 {
					buf.WriteString(", ")
				}
				buf.WriteString(arg.Name)
			}
			buf.WriteByte('>')
		}
	}
	return buf.String()
}
