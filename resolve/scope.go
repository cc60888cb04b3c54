// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"fmt"

	"go.macroscope.dev/ext"
	"go.macroscope.dev/syntax"
)

// A ScopeKind is the kind of a legacy scope chain node.
type ScopeKind uint8

const (
	EmptyScope      ScopeKind = iota // bottom of the chain
	CallSiteScope                    // the scope an invocation was called from
	ExpansionScope                   // the result of an invocation's expansion
	BindingScope                     // a single macro_rules! definition
)

var scopeKindNames = [...]string{
	EmptyScope:     "Empty",
	CallSiteScope:  "CallSite",
	ExpansionScope: "Expansion",
	BindingScope:   "Binding",
}

func (k ScopeKind) String() string { return scopeKindNames[k] }

// A LegacyScope is a node of the legacy scope chain.
// For CallSite and Expansion nodes, Index is an invocation handle;
// for Binding nodes it is a legacy binding handle.
type LegacyScope struct {
	Kind  ScopeKind
	Index int32
}

func (s LegacyScope) String() string {
	if s.Kind == EmptyScope {
		return "Empty"
	}
	return fmt.Sprintf("%s(%d)", s.Kind, s.Index)
}

// A cell is a handle to a mutable position of the chain.
type cell int32

const noCell cell = -1

func (r *Resolver) newCell(s LegacyScope) cell {
	c := cell(len(r.cells))
	r.cells = append(r.cells, s)
	return c
}

// A LegacyBinding is a textually scoped macro definition and the chain
// position preceding it.
type LegacyBinding struct {
	parent cell
	Name   string
	Ext    *ext.Extension
	Pos    syntax.Position
}

// A MacroBinding is the result of a legacy scope lookup: either a
// *LegacyBinding or a *NameBinding for a builtin or imported macro.
type MacroBinding interface {
	macroBinding()
}

func (*LegacyBinding) macroBinding() {}
func (*NameBinding) macroBinding()   {}

// An Invocation is the resolver's record of one macro invocation, or
// of the crate itself for the root mark.
type Invocation struct {
	Mark         syntax.Mark
	Module       *Module
	DefIndex     DefIndex
	ConstInteger bool

	legacyScope cell // scope at the call site
	expansion   cell // scope after the expansion; Empty until expanded
}

// registerInvocation records an invocation with the given mark.
// Both of its chain positions start out Empty.
func (r *Resolver) registerInvocation(mark syntax.Mark, m *Module, parent DefIndex, constInteger bool) *Invocation {
	inv := &Invocation{
		Mark:         mark,
		Module:       m,
		DefIndex:     parent,
		ConstInteger: constInteger,
		legacyScope:  r.newCell(LegacyScope{}),
		expansion:    r.newCell(LegacyScope{}),
	}
	r.invocationIndex[mark] = int32(len(r.invocations))
	r.invocations = append(r.invocations, inv)
	return inv
}

// invocation returns the invocation registered for mark and its handle.
func (r *Resolver) invocation(mark syntax.Mark) (*Invocation, int32) {
	i, ok := r.invocationIndex[mark]
	if !ok {
		panic(fmt.Sprintf("no invocation for mark %s", mark))
	}
	return r.invocations[i], i
}

// Invocation returns the invocation registered for mark, or nil.
func (r *Resolver) Invocation(mark syntax.Mark) *Invocation {
	if i, ok := r.invocationIndex[mark]; ok {
		return r.invocations[i]
	}
	return nil
}

// CallSiteScope returns the current value of the invocation's
// call-site position.
func (r *Resolver) CallSiteScope(inv *Invocation) LegacyScope { return r.cells[inv.legacyScope] }

// ExpansionScope returns the current value of the invocation's
// expansion position.
func (r *Resolver) ExpansionScope(inv *Invocation) LegacyScope { return r.cells[inv.expansion] }

// GetModuleScope registers a fresh invocation in module m and returns
// its mark. Items expanded under the mark are placed in m.
func (r *Resolver) GetModuleScope(m *Module) syntax.Mark {
	mark := syntax.FreshMark()
	index := CrateDefIndex
	if def := m.defModule(); def.IsLocal() {
		index = def.DefID.Index
	}
	r.registerInvocation(mark, m, index, false)
	return mark
}

// ContinueScope registers a fresh invocation that follows the
// expansion of prev in the same module, as items written after prev's
// items would. Macros defined by prev are visible to items expanded
// under the new mark, and are not treated as macro-expanded.
// If prev has not been expanded yet, the new scope follows its
// eventual expansion instead.
func (r *Resolver) ContinueScope(prev syntax.Mark) syntax.Mark {
	p, pi := r.invocation(prev)
	mark := r.GetModuleScope(p.Module)
	inv, _ := r.invocation(mark)
	if s := r.cells[p.expansion]; s.Kind != EmptyScope {
		r.cells[inv.legacyScope] = s
	} else {
		r.cells[inv.legacyScope] = LegacyScope{ExpansionScope, pi}
	}
	return mark
}

// addLegacyBinding pushes a binding on top of the chain position s.
func (r *Resolver) addLegacyBinding(s LegacyScope, b *LegacyBinding) LegacyScope {
	b.parent = r.newCell(s)
	r.bindings = append(r.bindings, b)
	return LegacyScope{BindingScope, int32(len(r.bindings) - 1)}
}
