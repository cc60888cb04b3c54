// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package expand implements macro expansion for mac files.
//
// The Expander runs a fixed-point loop: each round asks the resolver
// for the extension of every pending invocation, expands those that
// are determined, and queues the invocations their expansions contain.
// When a round makes no progress, the resolver is asked to resolve
// imports; if that fails too, the next round forces every query to a
// definite answer.
package expand // import "go.macroscope.dev/expand"

import (
	"fmt"
	"log/slog"

	"go.macroscope.dev/ext"
	"go.macroscope.dev/internal/logging"
	"go.macroscope.dev/resolve"
	"go.macroscope.dev/syntax"
)

// RecursionLimit bounds the nesting depth of expansions.
var RecursionLimit = 64

// A Resolution records what one invocation resolved to.
type Resolution struct {
	Pos   syntax.Position
	Path  string
	Mark  syntax.Mark
	Macro *ext.Extension // nil if the path did not resolve
}

// An Expander expands the macro invocations of one crate.
type Expander struct {
	resolver ext.Resolver
	logger   *slog.Logger

	pending     []*invocation
	resolutions []Resolution
	errors      resolve.ErrorList
	rounds      int
}

type invocation struct {
	call  *syntax.MacroCall
	kind  ext.ExpansionKind
	depth int
}

// New returns an expander that resolves macros with r.
// A nil logger discards trace output.
func New(r ext.Resolver, logger *slog.Logger) *Expander {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Expander{resolver: r, logger: logger}
}

// Resolutions returns the resolution of every invocation expanded so
// far, in expansion order.
func (x *Expander) Resolutions() []Resolution { return x.resolutions }

// Errors returns the expansion errors reported so far.
func (x *Expander) Errors() resolve.ErrorList { return x.errors }

// Rounds returns the number of resolution rounds run so far.
func (x *Expander) Rounds() int { return x.rounds }

func (x *Expander) errorf(pos syntax.Position, format string, args ...interface{}) {
	x.errors = append(x.errors, resolve.Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// ExpandCrate expands every invocation in the crate f.
// The crate's items are modified in place.
func (x *Expander) ExpandCrate(f *syntax.File) {
	x.ExpandItems(syntax.RootMark, f.Items)
}

// ExpandItems expands items as the expansion of the invocation with
// the given mark, which the resolver must already know, and then
// expands every invocation they contain.
func (x *Expander) ExpandItems(mark syntax.Mark, items []syntax.Item) {
	x.collectItems(items, 0)
	x.resolver.VisitExpansion(mark, &ext.Expansion{Kind: ext.Items, Items: items})
	x.run()
}

func (x *Expander) run() {
	force := false
	for len(x.pending) > 0 {
		x.rounds++
		pending := x.pending
		x.pending = nil
		x.logger.Debug("round", "n", x.rounds, "pending", len(pending), "force", force)

		var undetermined []*invocation
		progress := false
		for _, inv := range pending {
			macro, err := x.resolver.ResolveMacro(inv.call.Mark, inv.call.Path, force)
			if err == ext.Undetermined {
				undetermined = append(undetermined, inv)
				continue
			}
			progress = true
			x.expand(inv, macro)
		}
		x.pending = append(undetermined, x.pending...)

		switch {
		case progress:
			force = false
		case x.resolver.ResolveImports():
			x.logger.Debug("imports resolved", "round", x.rounds)
			force = false
		default:
			force = true
		}
	}
}

// expand replaces inv by the expansion of macro, or by nothing if the
// invocation did not resolve.
func (x *Expander) expand(inv *invocation, macro *ext.Extension) {
	call := inv.call
	pos := syntax.Start(call)
	x.resolutions = append(x.resolutions, Resolution{Pos: pos, Path: call.Path.String(), Mark: call.Mark, Macro: macro})

	var items []syntax.Item
	ok := false
	switch {
	case macro == nil:
		x.logger.Debug("unresolved", "path", call.Path.String(), "mark", call.Mark)
	case call.Attr != nil && !macro.Kind.IsAttr():
		x.errorf(pos, "expected an attribute macro, found `%s!`", call.Path)
	case call.Attr == nil && macro.Kind.IsAttr():
		x.errorf(pos, "`%s` can only be used in attributes", call.Path)
	case inv.depth >= RecursionLimit:
		x.errorf(pos, "recursion limit reached while expanding the macro `%s`", call.Path)
	case macro.IsBuiltin():
		var err error
		if items, err = macro.Expand(call); err != nil {
			x.errorf(pos, "%s", err)
			items = nil
			break
		}
		ok = true
		x.logger.Debug("expand builtin", "macro", macro.Name, "mark", call.Mark, "depth", inv.depth)
	default:
		items = cloneItems(macro.Template, call.Mark)
		ok = true
		x.logger.Debug("expand", "macro", macro.Name, "mark", call.Mark, "depth", inv.depth, "items", len(items))
	}

	for _, item := range items {
		x.resolver.EliminateCrateVar(item)
	}
	call.Expansion = items

	expansion := &ext.Expansion{Kind: inv.kind}
	switch inv.kind {
	case ext.Items:
		x.collectItems(items, inv.depth+1)
		expansion.Items = items
	case ext.Expr:
		if ok {
			expansion.Expr = x.singleExpr(call, items)
		}
		if expansion.Expr != nil {
			x.collectExpr(expansion.Expr, inv.depth+1)
		}
	}
	x.resolver.VisitExpansion(call.Mark, expansion)
}

// singleExpr returns the expression that an expansion in expression
// position produced.
func (x *Expander) singleExpr(call *syntax.MacroCall, items []syntax.Item) syntax.Expr {
	if len(items) == 1 {
		switch item := items[0].(type) {
		case *syntax.ExprItem:
			return item.X
		case *syntax.MacroCall:
			if item.Attr == nil {
				return item
			}
		}
	}
	x.errorf(syntax.Start(call), "macro expansion in expression position must produce a single expression")
	return nil
}
