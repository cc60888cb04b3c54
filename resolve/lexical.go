// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"go.macroscope.dev/ext"
	"go.macroscope.dev/syntax"
)

// An ambiguityError records a name whose innermost binding was
// produced by an expansion and disagrees with a binding found further
// out.
type ambiguityError struct {
	pos  syntax.Position
	name string
	b1   *NameBinding // the expanded binding
	b2   *NameBinding
}

// resolveLexicalMacroPathSegment resolves a single-segment path in
// namespace ns, searching block scopes outward from m to the nearest
// named module.
//
// Unexpanded invocations are not considered when looking in each
// scope: a binding produced by an expansion may not shadow one found
// further out. Such shadowing can only be checked once expansion is
// complete, so when recordUsed is nil the first binding found is
// returned; otherwise an expanded binding that differs from an outer
// one is reported as ambiguous.
func (r *Resolver) resolveLexicalMacroPathSegment(m *Module, name string, ns Namespace, recordUsed *syntax.Position) (*NameBinding, error) {
	var potentialExpandedShadower *NameBinding
	for {
		binding, err := r.resolveNameInModule(m, name, ns, true, recordUsed)
		switch err {
		case nil:
			if recordUsed == nil {
				return binding, nil
			}
			if s := potentialExpandedShadower; s != nil && s.Def() != binding.Def() {
				r.ambiguityErrors = append(r.ambiguityErrors, ambiguityError{
					pos: *recordUsed, name: name, b1: s, b2: binding,
				})
				return s, nil
			}
			if binding.Expansion.IsRoot() {
				return binding, nil
			}
			potentialExpandedShadower = binding
		case ext.Undetermined:
			return nil, ext.Undetermined
		}

		if m.Kind == BlockModule {
			m = m.Parent
			continue
		}
		if potentialExpandedShadower != nil {
			return potentialExpandedShadower, nil
		}
		if recordUsed != nil {
			return nil, ext.Determined
		}
		return nil, ext.Undetermined
	}
}
