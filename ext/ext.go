// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ext defines the contract between the macro expander and the
// name resolver: compiled macros (extensions), the results of
// expansion, and the outcome of a resolution query.
package ext // import "go.macroscope.dev/ext"

import (
	"go.macroscope.dev/syntax"
)

// A Kind classifies how an extension is invoked.
type Kind uint8

const (
	Bang           Kind = iota // name!(...)
	MultiModifier              // #[name] item, replaces the item
	MultiDecorator             // #[name] item, keeps the item and may add more
	AttrProcMacro              // #[name] item, procedural attribute
)

var kindNames = [...]string{
	Bang:           "bang",
	MultiModifier:  "modifier",
	MultiDecorator: "decorator",
	AttrProcMacro:  "attribute",
}

func (k Kind) String() string { return kindNames[k] }

// IsAttr reports whether extensions of kind k are invoked as attributes.
func (k Kind) IsAttr() bool { return k != Bang }

// An Extension is a compiled macro.
//
// Macros defined in source carry a template of items; builtin
// extensions carry an Expand function instead.
type Extension struct {
	Kind     Kind
	Name     string
	Pos      syntax.Position // definition site; invalid for builtins
	Template []syntax.Item

	// Expand computes the expansion of a builtin.
	// For attribute kinds, call.Target is the annotated item.
	Expand func(call *syntax.MacroCall) ([]syntax.Item, error)
}

// IsBuiltin reports whether x is provided by the compiler.
func (x *Extension) IsBuiltin() bool { return x.Expand != nil }

// Compile compiles a macro_rules! definition.
// The resulting rule set is the definition's item template.
func Compile(def *syntax.MacroRules) *Extension {
	return &Extension{Kind: Bang, Name: def.Name.Name, Pos: def.Pos, Template: def.Body}
}

// CompileMacro compiles a path-addressable macro definition.
func CompileMacro(def *syntax.MacroDef) *Extension {
	return &Extension{Kind: Bang, Name: def.Name.Name, Pos: def.Macro, Template: def.Body}
}

// Determinacy is the error returned by a resolution query that did not
// find an answer. Undetermined means the query should be retried after
// further expansion; Determined means it failed for good.
type Determinacy uint8

const (
	Determined Determinacy = iota
	Undetermined
)

func (d Determinacy) Error() string {
	if d == Undetermined {
		return "undetermined"
	}
	return "determined"
}

// An ExpansionKind records the syntactic position of an invocation.
type ExpansionKind uint8

const (
	Items ExpansionKind = iota
	Expr
)

// An Expansion is the syntax produced by expanding one invocation,
// or the crate itself for the root expansion.
type Expansion struct {
	Kind  ExpansionKind
	Items []syntax.Item // Kind == Items
	Expr  syntax.Expr   // Kind == Expr; nil if expansion failed
}

// Walk calls syntax.Walk on each node of the expansion.
func (x *Expansion) Walk(f func(syntax.Node) bool) {
	switch x.Kind {
	case Items:
		for _, item := range x.Items {
			syntax.Walk(item, f)
		}
	case Expr:
		if x.Expr != nil {
			syntax.Walk(x.Expr, f)
		}
	}
}

// A Resolver is the expander's view of name resolution.
//
// Resolver methods are not safe for concurrent use; the expander calls
// them from a single goroutine.
type Resolver interface {
	// VisitExpansion registers the definitions and nested invocations
	// of the expansion of mark, and records its legacy scope.
	VisitExpansion(mark syntax.Mark, x *Expansion)

	// AddExt registers a builtin extension.
	AddExt(name string, x *Extension)

	// FindAttrInvoc removes and returns the first attribute that names
	// a builtin attribute extension, or nil.
	FindAttrInvoc(attrs *[]*syntax.Attr) *syntax.Attr

	// ResolveMacro returns the extension that path denotes at the
	// invocation scope. The error, if any, is a Determinacy.
	// If force is set the answer is never Undetermined.
	ResolveMacro(scope syntax.Mark, path *syntax.Path, force bool) (*Extension, error)

	// EliminateCrateVar rewrites $crate paths within item.
	EliminateCrateVar(item syntax.Item)

	// ResolveImports makes what progress it can on pending imports
	// and reports whether any import was resolved.
	ResolveImports() bool

	// Finalize rechecks all deferred resolutions once expansion is
	// complete and reports final diagnostics.
	Finalize()
}
