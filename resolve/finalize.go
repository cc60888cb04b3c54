// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"fmt"

	"go.macroscope.dev/syntax"
)

// Finalize rechecks every query answered during expansion now that
// expansion is complete, and reports the final diagnostics:
// unresolved imports, macro paths that fail to resolve, ambiguous
// macro names, and macro-expanded macro_rules! that shadow an
// existing macro. It must be called exactly once.
func (r *Resolver) Finalize() {
	if r.finalized {
		panic("Finalize called twice")
	}
	r.finalized = true

	r.finalizeImports()
	for _, m := range r.modules {
		r.finalizeCurrentModuleMacroResolutions(m)
	}
	r.reportAmbiguityErrors()
	r.reportShadowingErrors()
}

func (r *Resolver) finalizeCurrentModuleMacroResolutions(m *Module) {
	for _, q := range m.macroResolutions {
		pos := q.pos
		switch res := r.resolvePath(m, q.path, q.scope, MacroNS, &pos); res.Kind {
		case NonModule:
			// ok
		case Failed:
			r.errorf(pos, "failed to resolve. %s", res.Msg)
		default:
			panic(fmt.Sprintf("internal error: unexpected result %d for macro path", res.Kind))
		}
	}

	for _, q := range m.legacyMacroResolutions {
		inv, _ := r.invocation(q.scope)
		pos := q.pos
		legacy := r.resolveLegacyScope(inv.legacyScope, q.name, true)
		resolution, err := r.resolveLexicalMacroPathSegment(m, q.name, MacroNS, &pos)
		if legacy == nil || err != nil {
			continue
		}

		var legacyPos syntax.Position
		var participle string
		switch b := legacy.(type) {
		case *NameBinding:
			if b.Def() == resolution.Def() {
				continue
			}
			legacyPos, participle = b.Pos, "imported"
		case *LegacyBinding:
			legacyPos, participle = b.Pos, "defined"
		}
		r.report(Error{
			Pos: pos,
			Msg: fmt.Sprintf("`%s` is ambiguous", q.name),
			Notes: []Note{
				{legacyPos, fmt.Sprintf("`%s` could resolve to the macro %s here", q.name, participle)},
				{resolution.Pos, fmt.Sprintf("`%s` could also resolve to the macro imported here", q.name)},
			},
		})
	}
}

func participle(b *NameBinding) string {
	if b.IsImport() {
		return "imported"
	}
	return "defined"
}

func (r *Resolver) reportAmbiguityErrors() {
	type key struct {
		pos  syntax.Position
		name string
	}
	reported := make(map[key]bool)
	for _, e := range r.ambiguityErrors {
		k := key{e.pos, e.name}
		if reported[k] {
			continue
		}
		reported[k] = true
		r.report(Error{
			Pos: e.pos,
			Msg: fmt.Sprintf("`%s` is ambiguous", e.name),
			Notes: []Note{
				{e.b1.Pos, fmt.Sprintf("`%s` could refer to the macro %s here", e.name, participle(e.b1))},
				{e.b2.Pos, fmt.Sprintf("`%s` could also refer to the macro %s here", e.name, participle(e.b2))},
			},
			Help: "macro-expanded macros may not shadow macros from an outer scope",
		})
	}
}

// reportShadowingErrors reports each macro_rules! binding that was
// found inside an expansion other than the one it was looked up from
// and that hides another macro of the same name.
func (r *Resolver) reportShadowingErrors() {
	// Repeat lookups that passed an unexpanded invocation; they record
	// any macro-expanded binding they now find.
	for _, tt := range r.timeTravel {
		r.resolveLegacyScope(tt.scope, tt.name, true)
	}

	reported := make(map[int32]bool)
	for i := 0; i < len(r.disallowedShadowing); i++ {
		index := r.disallowedShadowing[i]
		if reported[index] {
			continue
		}
		reported[index] = true
		b := r.bindings[index]
		if r.resolveLegacyScope(b.parent, b.Name, false) == nil {
			continue
		}
		r.report(Error{
			Pos:   b.Pos,
			Msg:   fmt.Sprintf("`%s` is already in scope", b.Name),
			Notes: []Note{{Msg: "macro-expanded `macro_rules!`s may not shadow existing macros (see RFC 1560)"}},
		})
	}
}
