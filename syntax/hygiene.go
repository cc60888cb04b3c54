// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// This file defines hygiene marks, the identities that macro-introduced
// syntax carries so that its names can be resolved relative to the
// macro's definition site.

import (
	"fmt"
	"sync/atomic"
)

// A Mark identifies one macro expansion.
// The zero Mark is the root: syntax written directly by the programmer.
type Mark uint32

// RootMark is the mark of unexpanded source.
const RootMark Mark = 0

var lastMark uint32

// FreshMark returns a mark that is unique within the process.
func FreshMark() Mark {
	return Mark(atomic.AddUint32(&lastMark, 1))
}

// IsRoot reports whether m is the root mark.
func (m Mark) IsRoot() bool { return m == RootMark }

func (m Mark) String() string {
	if m == RootMark {
		return "#root"
	}
	return fmt.Sprintf("#%d", uint32(m))
}
