// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package macrotest defines utilities for testing macro resolution and
// expansion: locating test data, and comparing golden output.
package macrotest // import "go.macroscope.dev/macrotest"

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// A Reporter is a value to which errors may be reported.
// It is satisfied by *testing.T.
type Reporter interface {
	Errorf(format string, args ...interface{})
}

// DataFile returns the effective filename of the specified
// test data resource.  The function abstracts differences between
// 'go test', under which a test runs in its package directory,
// and other runners, under which a test runs in the root of the tree.
var DataFile = func(pkgdir, filename string) string {
	_, self, _, _ := runtime.Caller(0)
	root := filepath.Dir(filepath.Dir(self))
	return filepath.Join(root, pkgdir, filename)
}

// Diff returns a unified diff between want and got,
// or "" if they are equal.
func Diff(want, got string) string {
	if want == got {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

// CheckGolden reports a diff to r if got differs from want.
// Leading and trailing space is ignored.
func CheckGolden(r Reporter, name, want, got string) {
	want = strings.TrimSpace(want) + "\n"
	got = strings.TrimSpace(got) + "\n"
	if diff := Diff(want, got); diff != "" {
		r.Errorf("%s: output differs:\n%s", name, diff)
	}
}
