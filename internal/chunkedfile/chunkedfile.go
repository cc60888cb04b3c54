// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chunkedfile provides utilities for testing that source code
// errors are reported in the appropriate places.
//
// A chunked file consists of several chunks of input text separated by
// "---" lines.  Each chunk is an input to the program under test, such
// as a crate to expand and resolve.  Lines containing "###" are
// interpreted as expectations of failure: the following text is a
// sequence of Go string literals, each denoting a regular expression
// that should match one failure message reported on that line.
// Since "#" is not a comment in mac files, the marker is usually
// written after a line comment.
//
// Example:
//
//	foo!(); // ### "macro undefined: 'foo!'"
//	---
//	macro_rules! m {}
//	m!();
//
// A client test feeds each chunk of text into the program under test,
// then calls chunk.GotError for each error that actually occurred.  Any
// discrepancy between the actual and expected errors is reported using
// the client's reporter, which is typically a testing.T.
package chunkedfile // import "go.macroscope.dev/internal/chunkedfile"

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

const debug = false

// A Chunk is a portion of a source file.
// It contains a set of expected errors.
type Chunk struct {
	Source   string
	filename string
	report   Reporter
	wantErrs map[int][]*regexp.Regexp
}

// Reporter is implemented by *testing.T.
type Reporter interface {
	Errorf(format string, args ...interface{})
}

// Read parses a chunked file and returns its chunks.
// It reports failures using the reporter.
//
// Error messages of the form "file.mac:line:col: ..." are prefixed
// by a newline so that the Go source position added by (*testing.T).Errorf
// appears on a separate line so as not to confuse editors.
func Read(filename string, report Reporter) (chunks []Chunk) {
	data, err := os.ReadFile(filename)
	if err != nil {
		report.Errorf("%s", err)
		return
	}
	eol := "\n"
	if runtime.GOOS == "windows" {
		eol = "\r\n"
	}
	return readBytes(filename, data, report, eol)
}

func readBytes(filename string, data []byte, report Reporter, eol string) (chunks []Chunk) {
	linenum := 1
	for i, chunk := range strings.Split(string(data), eol+"---"+eol) {
		if debug {
			fmt.Printf("chunk %d at line %d: %s\n", i, linenum, chunk)
		}
		// Pad with newlines so the line numbers match the original file.
		src := strings.Repeat("\n", linenum-1) + chunk

		wantErrs := make(map[int][]*regexp.Regexp)

		// Parse comments of the form:
		// ### "expected error" "another expected error".
		lines := strings.Split(chunk, "\n")
		for j := 0; j < len(lines); j, linenum = j+1, linenum+1 {
			line := lines[j]
			hashes := strings.Index(line, "###")
			if hashes < 0 {
				continue
			}
			rest := strings.TrimSpace(line[hashes+len("###"):])
			for rest != "" {
				quoted, err := strconv.QuotedPrefix(rest)
				if err != nil {
					report.Errorf("\n%s:%d: not a quoted regexp: %s", filename, linenum, rest)
					break
				}
				rest = strings.TrimSpace(rest[len(quoted):])
				pattern, _ := strconv.Unquote(quoted)
				rx, err := regexp.Compile(pattern)
				if err != nil {
					report.Errorf("\n%s:%d: %v", filename, linenum, err)
					continue
				}
				wantErrs[linenum] = append(wantErrs[linenum], rx)
				if debug {
					fmt.Printf("\t%d\t%s\n", linenum, rx)
				}
			}
		}
		linenum++

		chunks = append(chunks, Chunk{src, filename, report, wantErrs})
	}
	return chunks
}

// GotError should be called by the client to report an error at a particular line.
// GotError reports unexpected errors to the chunk's reporter.
//
// When several errors are expected on one line, the first pattern that
// matches msg is consumed; if none matches, the first pending pattern
// is consumed and the mismatch is reported.
func (chunk *Chunk) GotError(linenum int, msg string) {
	rxs, ok := chunk.wantErrs[linenum]
	if !ok {
		chunk.report.Errorf("\n%s:%d: unexpected error: %v", chunk.filename, linenum, msg)
		return
	}
	i := 0
	for j, rx := range rxs {
		if rx.MatchString(msg) {
			i = j
			break
		}
	}
	if rx := rxs[i]; !rx.MatchString(msg) {
		chunk.report.Errorf("\n%s:%d: error %q does not match pattern %q", chunk.filename, linenum, msg, rx)
	}
	rxs = append(rxs[:i:i], rxs[i+1:]...)
	if len(rxs) == 0 {
		delete(chunk.wantErrs, linenum)
	} else {
		chunk.wantErrs[linenum] = rxs
	}
}

// Done should be called by the client to indicate that the chunk has no more errors.
// Done reports expected errors that did not occur to the chunk's reporter.
func (chunk *Chunk) Done() {
	for linenum, rxs := range chunk.wantErrs {
		for _, rx := range rxs {
			chunk.report.Errorf("\n%s:%d: expected error matching %q", chunk.filename, linenum, rx)
		}
	}
}
