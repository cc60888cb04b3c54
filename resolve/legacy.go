// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

// A timeTravel records a lookup that passed an expansion not yet
// performed. If that expansion later defines the name, the earlier
// answer was wrong; Finalize repeats such lookups.
type timeTravel struct {
	name  string
	scope cell
}

// resolveLegacyScope looks up name along the legacy scope chain
// starting at position scope. If no textually scoped macro is found,
// it falls back to the builtin (and #[macro_use]-imported) macros.
// It returns nil if the name is unbound.
//
// The walk counts how many expansions it has entered and not yet left
// through their call site. A binding found inside such an expansion
// was defined by a macro; it is recorded for the shadowing check.
func (r *Resolver) resolveLegacyScope(scope cell, name string, recordUsed bool) MacroBinding {
	possibleTimeTravel := noCell
	relativeDepth := 0
	var binding *LegacyBinding
walk:
	for {
		switch s := r.cells[scope]; s.Kind {
		case EmptyScope:
			break walk

		case ExpansionScope:
			inv := r.invocations[s.Index]
			switch r.cells[inv.expansion].Kind {
			case CallSiteScope:
				// The expansion defined nothing; skip it from now on.
				r.cells[scope] = r.cells[inv.legacyScope]
			case EmptyScope:
				// Not yet expanded.
				if possibleTimeTravel == noCell {
					possibleTimeTravel = scope
				}
				scope = inv.legacyScope
			default:
				relativeDepth++
				scope = inv.expansion
			}

		case CallSiteScope:
			if relativeDepth > 0 {
				relativeDepth--
			}
			scope = r.invocations[s.Index].legacyScope

		case BindingScope:
			b := r.bindings[s.Index]
			if b.Name == name {
				if (!r.useExternMacros || recordUsed) && relativeDepth > 0 {
					r.disallowedShadowing = append(r.disallowedShadowing, s.Index)
				}
				binding = b
				break walk
			}
			scope = b.parent
		}
	}

	var result MacroBinding
	if binding != nil {
		result = binding
	} else if b, ok := r.builtinMacros[name]; ok {
		result = b
	} else {
		return nil
	}

	if !r.useExternMacros && possibleTimeTravel != noCell {
		r.timeTravel = append(r.timeTravel, timeTravel{name, possibleTimeTravel})
	}
	return result
}
