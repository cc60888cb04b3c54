// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"go.macroscope.dev/expand"
	"go.macroscope.dev/ext"
	"go.macroscope.dev/resolve"
	"go.macroscope.dev/syntax"
)

var file = "a.mac"

func pos(line, col int32) syntax.Position { return syntax.MakePosition(&file, line, col) }

var errs = resolve.ErrorList{
	{
		Pos:   pos(3, 1),
		Msg:   "`m` is ambiguous",
		Notes: []resolve.Note{{Pos: pos(1, 1), Msg: "could resolve to the macro defined here"}, {Msg: "unpositioned"}},
	},
	{Pos: pos(5, 1), Msg: "cannot find macro `prinln!` in this scope", Help: "did you mean `println!`?"},
}

func TestErrorsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, false).Errors(errs))
	want := "a.mac:3:1: error: `m` is ambiguous\n" +
		"\tnote: a.mac:1:1: could resolve to the macro defined here\n" +
		"\tnote: unpositioned\n" +
		"a.mac:5:1: error: cannot find macro `prinln!` in this scope\n" +
		"\thelp: did you mean `println!`?\n"
	assert.Equal(t, want, buf.String())
}

func TestErrorsColor(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)
	p.SetColor(true)
	require.NoError(t, p.Errors(errs[1:]))
	assert.True(t, strings.HasPrefix(buf.String(), "a.mac:5:1: "+bold+red+"error:"+reset))
	assert.Contains(t, buf.String(), bold+cyan+"help:"+reset)
}

func TestErrorsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, true).Errors(errs))

	var msg structpb.Struct
	require.NoError(t, protojson.Unmarshal(buf.Bytes(), &msg))
	list := msg.AsMap()["errors"].([]interface{})
	require.Len(t, list, 2)

	first := list[0].(map[string]interface{})
	assert.Equal(t, "a.mac:3:1", first["pos"])
	assert.Equal(t, "`m` is ambiguous", first["msg"])
	notes := first["notes"].([]interface{})
	require.Len(t, notes, 2)
	assert.Equal(t, map[string]interface{}{"pos": "a.mac:1:1", "msg": "could resolve to the macro defined here"}, notes[0])
	assert.Equal(t, map[string]interface{}{"msg": "unpositioned"}, notes[1])
	assert.NotContains(t, first, "help")

	second := list[1].(map[string]interface{})
	assert.Equal(t, "did you mean `println!`?", second["help"])
}

func TestResolutions(t *testing.T) {
	rs := []expand.Resolution{
		{Pos: pos(4, 1), Path: "m", Mark: 7, Macro: &ext.Extension{Kind: ext.Bang, Name: "m", Pos: pos(1, 1)}},
		{Pos: pos(5, 1), Path: "println", Mark: 8, Macro: &ext.Extension{Kind: ext.Bang, Name: "println", Expand: func(*syntax.MacroCall) ([]syntax.Item, error) { return nil, nil }}},
		{Pos: pos(6, 1), Path: "a::n", Mark: 9},
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, false).Resolutions(rs))
	want := "a.mac:4:1: m!: bang `m` defined at a.mac:1:1\n" +
		"a.mac:5:1: println!: builtin bang `println`\n" +
		"a.mac:6:1: a::n!: unresolved\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, New(&buf, true).Resolutions(rs))
	var msg structpb.Struct
	require.NoError(t, protojson.Unmarshal(buf.Bytes(), &msg))
	list := msg.AsMap()["resolutions"].([]interface{})
	require.Len(t, list, 3)
	assert.Equal(t, map[string]interface{}{
		"pos": "a.mac:4:1", "path": "m", "mark": float64(7), "macro": "m", "kind": "bang", "def": "a.mac:1:1",
	}, list[0])
	assert.Equal(t, map[string]interface{}{"pos": "a.mac:6:1", "path": "a::n", "mark": float64(9)}, list[2])
}

func TestExpanded(t *testing.T) {
	f, err := syntax.Parse("a.mac", "mod a { const N = 1; }\n")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, New(&buf, false).Expanded(f.Items))
	assert.Equal(t, syntax.Format(f.Items, true), buf.String())

	buf.Reset()
	require.NoError(t, New(&buf, true).Expanded(f.Items))
	var msg structpb.Struct
	require.NoError(t, protojson.Unmarshal(buf.Bytes(), &msg))
	assert.Equal(t, syntax.Format(f.Items, true), msg.AsMap()["expanded"])
}
