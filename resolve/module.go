// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

// This file defines the module graph: modules, the namespaces of names
// they bind, and the bindings themselves.

import (
	"fmt"

	"go.macroscope.dev/ext"
	"go.macroscope.dev/syntax"
)

// A Namespace partitions the names bound by a module.
type Namespace uint8

const (
	TypeNS  Namespace = iota // modules and extern crates
	ValueNS                  // functions and constants
	MacroNS                  // path-addressable macros
)

var namespaces = [...]Namespace{TypeNS, ValueNS, MacroNS}

var nsNames = [...]string{
	TypeNS:  "type",
	ValueNS: "value",
	MacroNS: "macro",
}

func (ns Namespace) String() string { return nsNames[ns] }

// A CrateNum identifies a crate. The crate being resolved is LocalCrate;
// external crates are numbered from 1 in the order they are added.
type CrateNum uint32

const (
	LocalCrate CrateNum = 0

	// BuiltinMacrosCrate is the pseudo-crate of builtin extensions.
	BuiltinMacrosCrate CrateNum = ^CrateNum(0)
)

// A DefID identifies a definition within a crate.
type DefID struct {
	Crate CrateNum
	Index DefIndex
}

func (id DefID) IsLocal() bool { return id.Crate == LocalCrate }

func (id DefID) String() string {
	if id.Crate == BuiltinMacrosCrate {
		return fmt.Sprintf("builtin#%d", id.Index)
	}
	return fmt.Sprintf("%d:%d", id.Crate, id.Index)
}

// A DefKind classifies a definition.
type DefKind uint8

const (
	DefMod DefKind = iota
	DefFn
	DefConst
	DefMacro
)

var defKindNames = [...]string{
	DefMod:   "module",
	DefFn:    "function",
	DefConst: "constant",
	DefMacro: "macro",
}

func (k DefKind) String() string { return defKindNames[k] }

// A Def is what a name ultimately refers to.
type Def struct {
	Kind DefKind
	ID   DefID
}

// An Export is a macro exported by a crate.
type Export struct {
	Name string
	Def  Def
}

// A ModuleKind distinguishes anonymous block scopes from named modules.
type ModuleKind uint8

const (
	BlockModule ModuleKind = iota // fn bodies and { } blocks
	DefModule                     // crate roots and mod items
)

// A Module is a node of the module graph.
type Module struct {
	Kind   ModuleKind
	Name   string // empty for blocks
	Parent *Module
	Crate  CrateNum
	DefID  DefID // DefModule only

	resolutions    map[bindingKey]*NameBinding
	pendingImports map[bindingKey]int

	// invocations within the module that have not been expanded yet
	unresolvedInvocations map[syntax.Mark]bool

	// queries answered eagerly, rechecked by Finalize
	macroResolutions       []deferredPath
	legacyMacroResolutions []deferredLegacy
}

type bindingKey struct {
	name string
	ns   Namespace
}

type deferredPath struct {
	path  []*syntax.Ident
	scope PathScope
	pos   syntax.Position
}

type deferredLegacy struct {
	scope syntax.Mark
	name  string
	pos   syntax.Position
}

func (r *Resolver) newModule(kind ModuleKind, name string, parent *Module, crate CrateNum, id DefID) *Module {
	m := &Module{
		Kind:                  kind,
		Name:                  name,
		Parent:                parent,
		Crate:                 crate,
		DefID:                 id,
		resolutions:           make(map[bindingKey]*NameBinding),
		pendingImports:        make(map[bindingKey]int),
		unresolvedInvocations: make(map[syntax.Mark]bool),
	}
	if crate == LocalCrate {
		r.modules = append(r.modules, m)
	}
	return m
}

// IsLocal reports whether the module belongs to the crate being resolved.
func (m *Module) IsLocal() bool { return m.Crate == LocalCrate }

// Lookup returns the binding of name in namespace ns, or nil.
func (m *Module) Lookup(name string, ns Namespace) *NameBinding {
	return m.resolutions[bindingKey{name, ns}]
}

// defModule returns the nearest enclosing named module, possibly m.
func (m *Module) defModule() *Module {
	for m.Kind == BlockModule {
		m = m.Parent
	}
	return m
}

func (m *Module) String() string {
	var s string
	for ; m != nil; m = m.Parent {
		name := m.Name
		if m.Kind == BlockModule {
			name = "{{block}}"
		}
		if s == "" {
			s = name
		} else {
			s = name + "::" + s
		}
	}
	return s
}

// A Visibility restricts where a binding may be named from.
type Visibility uint8

const (
	Public Visibility = iota

	// PrivateExternal bindings are nameable only by the resolver
	// itself, such as builtins.
	PrivateExternal
)

type bindingKind uint8

const (
	defBinding bindingKind = iota
	moduleBinding
	importBinding
)

// A NameBinding associates a name in a module namespace with what it
// denotes: a definition, a module, or another binding it imports.
type NameBinding struct {
	kind     bindingKind
	def      Def          // defBinding
	module   *Module      // moduleBinding
	imported *NameBinding // importBinding

	Pos       syntax.Position
	Vis       Visibility
	Expansion syntax.Mark // expansion that produced the binding
}

// Def returns the definition the binding denotes, following imports.
func (b *NameBinding) Def() Def {
	switch b.kind {
	case moduleBinding:
		return Def{Kind: DefMod, ID: b.module.DefID}
	case importBinding:
		return b.imported.Def()
	}
	return b.def
}

// Module returns the module the binding denotes, following imports,
// or nil if it does not denote a module.
func (b *NameBinding) Module() *Module {
	switch b.kind {
	case moduleBinding:
		return b.module
	case importBinding:
		return b.imported.Module()
	}
	return nil
}

// IsImport reports whether the binding was introduced by an import.
func (b *NameBinding) IsImport() bool { return b.kind == importBinding }

// define binds name in module m, reporting a duplicate definition.
func (r *Resolver) define(m *Module, name string, ns Namespace, b *NameBinding) {
	key := bindingKey{name, ns}
	if old := m.resolutions[key]; old != nil {
		if m.IsLocal() {
			e := Error{Pos: b.Pos, Msg: fmt.Sprintf("the name `%s` is defined multiple times", name)}
			if old.Pos.IsValid() {
				e.Notes = []Note{{old.Pos, fmt.Sprintf("previous definition of the %s `%s` here", ns, name)}}
			}
			r.report(e)
		}
		return
	}
	m.resolutions[key] = b
}

// resolveNameInModule looks up name in one namespace of module m.
//
// The answer is ext.Undetermined while an import or an unexpanded
// invocation of the module might still define the name, unless
// ignoreUnresolvedInvocations is set, in which case invocations are
// not considered. When recordUsed is non-nil every pending question
// has been settled and the answer is never Undetermined.
func (r *Resolver) resolveNameInModule(m *Module, name string, ns Namespace, ignoreUnresolvedInvocations bool, recordUsed *syntax.Position) (*NameBinding, error) {
	key := bindingKey{name, ns}
	if b := m.resolutions[key]; b != nil {
		return b, nil
	}
	if recordUsed == nil {
		if m.pendingImports[key] > 0 {
			return nil, ext.Undetermined
		}
		if !ignoreUnresolvedInvocations && len(m.unresolvedInvocations) > 0 {
			return nil, ext.Undetermined
		}
	}
	return nil, ext.Determined
}
