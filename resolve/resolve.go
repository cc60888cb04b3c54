// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resolve defines a name-resolution pass for macro names.
//
// The resolver is driven by the expander (package expand). Each time an
// invocation is expanded, the expander hands the result to
// VisitExpansion, which records the definitions, modules and nested
// invocations it contains; the expander then asks ResolveMacro for the
// extension that each pending invocation path denotes.
//
// # Scopes
//
// Macros are found in two ways.
//
// Textually scoped macros, written macro_rules!, are visible from the
// point of definition to the end of the enclosing block, and flow out of
// a module annotated #[macro_use]. Their visibility is modelled by the
// legacy scope chain: a linked structure whose nodes are the empty
// scope, the call site of an invocation, the result of an invocation's
// expansion, or a single macro_rules! binding. Many chains share
// suffixes, so together they form a cactus stack. The chain positions
// live in an arena owned by the Resolver and are addressed by handle;
// lookups may rewrite a position in place to skip expansions that
// turned out to define nothing.
//
// Path-addressable macros (macro definitions, imports, macros of
// external crates and builtins) live in the macro namespace of the
// module graph and are found by the lexical resolver, which searches
// enclosing block scopes out to the nearest named module.
//
// # Determinacy
//
// A query made while expansion is still in progress may be answered
// ext.Undetermined: later expansion could still produce the name. The
// expander retries such queries, and forces an answer only when no
// further progress is possible. Queries that were answered eagerly are
// recorded and rechecked by Finalize, which reports paths that fail to
// resolve, names whose textual and path-based meanings disagree, and
// macro-expanded macro_rules! that shadow an existing macro.
package resolve // import "go.macroscope.dev/resolve"

import (
	"fmt"
	"sort"

	"go.macroscope.dev/ext"
	"go.macroscope.dev/syntax"
)

// Enabling this flag turns on path-based (modern) macro resolution for
// every crate, as if each began with #![feature(use_extern_macros)].
// It is also enabled per crate by that feature attribute.
var AllowExternMacros = false

// FeatureExternMacros is the feature name that enables modern macro
// resolution for one crate.
const FeatureExternMacros = "use_extern_macros"

// A Resolver resolves macro names for one crate.
//
// It is not safe for concurrent use.
type Resolver struct {
	crateName string
	graphRoot *Module
	crates    []*Module          // crate roots, indexed by CrateNum
	externs   map[string]*Module // extern crate roots by name
	modules   []*Module          // all local modules, in creation order

	definitions *Definitions

	// arenas; all handles index these slices
	cells       []LegacyScope
	invocations []*Invocation
	bindings    []*LegacyBinding

	invocationIndex map[syntax.Mark]int32

	builtinMacros map[string]*NameBinding
	macroMap      map[DefID]*ext.Extension
	macroNames    map[string]bool
	macroExports  []Export
	crateExports  map[CrateNum][]*NameBinding
	nextBuiltin   DefIndex

	// crate in which the macro invoked at each mark was defined
	expansionCrates map[syntax.Mark]CrateNum

	imports []*importDirective

	useExternMacros bool

	ambiguityErrors     []ambiguityError
	disallowedShadowing []int32
	timeTravel          []timeTravel

	errors    ErrorList
	finalized bool
}

// New returns a resolver for the crate of the given name.
// The features are those enabled by the crate's #![feature(...)]
// attribute.
func New(crateName string, features ...string) *Resolver {
	r := &Resolver{
		crateName:       crateName,
		externs:         make(map[string]*Module),
		definitions:     newDefinitions(),
		invocationIndex: make(map[syntax.Mark]int32),
		builtinMacros:   make(map[string]*NameBinding),
		macroMap:        make(map[DefID]*ext.Extension),
		macroNames:      make(map[string]bool),
		crateExports:    make(map[CrateNum][]*NameBinding),
		expansionCrates: make(map[syntax.Mark]CrateNum),
		useExternMacros: AllowExternMacros,
	}
	for _, f := range features {
		if f == FeatureExternMacros {
			r.useExternMacros = true
		}
	}
	r.graphRoot = r.newModule(DefModule, crateName, nil, LocalCrate, DefID{LocalCrate, CrateDefIndex})
	r.crates = append(r.crates, r.graphRoot)

	// The root invocation stands for the crate itself.
	r.registerInvocation(syntax.RootMark, r.graphRoot, CrateDefIndex, false)
	return r
}

// CrateName returns the name of the crate being resolved.
func (r *Resolver) CrateName() string { return r.crateName }

// GraphRoot returns the root module of the crate.
func (r *Resolver) GraphRoot() *Module { return r.graphRoot }

// Modules returns the modules of the crate, in creation order.
func (r *Resolver) Modules() []*Module { return r.modules }

// Definitions returns the definition table of the crate.
func (r *Resolver) Definitions() *Definitions { return r.definitions }

// UseExternMacros reports whether modern macro resolution is enabled.
func (r *Resolver) UseExternMacros() bool { return r.useExternMacros }

// MacroExports returns the macros exported by the crate with
// #[macro_export], in definition order.
func (r *Resolver) MacroExports() []Export { return r.macroExports }

// MacroNames returns the sorted names of all macros known to the
// resolver, including builtins.
func (r *Resolver) MacroNames() []string {
	names := make([]string, 0, len(r.macroNames))
	for name := range r.macroNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Errors returns the diagnostics reported so far, sorted by position.
func (r *Resolver) Errors() ErrorList {
	errs := append(ErrorList(nil), r.errors...)
	errs.Sort()
	return errs
}

// ErrorsSince returns the diagnostics reported after the first n,
// in the order they were reported.
func (r *Resolver) ErrorsSince(n int) ErrorList {
	if n >= len(r.errors) {
		return nil
	}
	return append(ErrorList(nil), r.errors[n:]...)
}

func (r *Resolver) report(e Error) { r.errors = append(r.errors, e) }

func (r *Resolver) errorf(pos syntax.Position, format string, args ...interface{}) {
	r.report(Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// crateRoot returns the root module of the given crate.
// Builtins have no crate of their own and are treated as local.
func (r *Resolver) crateRoot(crate CrateNum) *Module {
	if int(crate) < len(r.crates) {
		return r.crates[crate]
	}
	return r.graphRoot
}
