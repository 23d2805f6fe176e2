// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package ops

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mlnoga/labgenp/internal/frame"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() *Context {
	return &Context{Log: io.Discard, MaxThreads: 2}
}

func constPromise(id int, v uint8) Promise {
	return func() (*frame.Frame, error) {
		f := frame.New(2, 2, 3)
		f.Fill(v, v, v)
		f.ID = id
		return f, nil
	}
}

func TestMaterializeAllKeepsOrder(t *testing.T) {
	var ins []Promise
	for i := 0; i < 10; i++ {
		ins = append(ins, constPromise(i, uint8(i)))
	}
	outs, err := MaterializeAll(ins, 3)
	require.NoError(t, err)
	require.Len(t, outs, 10)
	for i, f := range outs {
		assert.Equal(t, i, f.ID)
	}

	outs, err = MaterializeAll(nil, 3)
	assert.NoError(t, err)
	assert.Nil(t, outs)
}

func TestMaterializeAllJoinsErrors(t *testing.T) {
	fail := func(msg string) Promise {
		return func() (*frame.Frame, error) { return nil, errors.New(msg) }
	}
	_, err := MaterializeAll([]Promise{fail("a"), constPromise(1, 0), fail("b")}, 0)
	require.Error(t, err)
	assert.Equal(t, "a; b", err.Error())
}

func TestIsPathAllowed(t *testing.T) {
	assert.True(t, isPathAllowed("frames/in_001.png"))
	assert.True(t, isPathAllowed("out.png"))
	assert.False(t, isPathAllowed("/etc/passwd"))
	assert.False(t, isPathAllowed("../secret.png"))
	assert.False(t, isPathAllowed("a/../../b.png"))
}

func TestExpandPattern(t *testing.T) {
	assert.Equal(t, "motion_7.png", expandPattern("motion_%d.png", 7))
	assert.Equal(t, "motion_007.png", expandPattern("motion_%03d.png", 7))
	assert.Equal(t, "out/qom_12.png", expandPattern("out/qom_%2d.png", 12))
	assert.Equal(t, "static.png", expandPattern("static.png", 7))
}

func TestContextRestrictsPaths(t *testing.T) {
	c := testContext()
	assert.NoError(t, c.checkPath("/tmp/x.png"))
	c.RestrictPaths = true
	assert.Error(t, c.checkPath("/tmp/x.png"))
	assert.NoError(t, c.checkPath("x.png"))

	_, err := NewOpLoad(0, "/tmp/x.png").MakePromises(nil, c)
	assert.Error(t, err)
	op := NewOpBackgroundDefault()
	op.StatsCSV = "../stats.csv"
	_, err = op.MakePromises([]Promise{constPromise(0, 0)}, c)
	assert.Error(t, err)
}

func TestOpBackgroundJSONDefaults(t *testing.T) {
	op := &OpBackground{}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"background","active":true,"n":5}`), op))
	assert.Equal(t, 19, op.S)
	assert.Equal(t, 5, op.N)
	assert.Equal(t, 0, op.Segments)
	assert.Equal(t, 25.0, op.FPS)
	assert.True(t, op.KeepRatio)
}

func TestOpBackgroundJSONRoundTrip(t *testing.T) {
	want := NewOpBackground(7, 2, 4)
	want.Motion, want.QoM = "m%04d.png", "q%04d.png"
	want.StatsCSV, want.StatsPlot = "stats.csv", "stats.svg"
	want.Record, want.FPS = "rec.avi", 12.5
	want.VWidth, want.VHeight, want.KeepRatio = 320, 240, false

	bs, err := json.Marshal(want)
	require.NoError(t, err)
	got := &OpBackground{}
	require.NoError(t, json.Unmarshal(bs, got))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("OpBackground mismatch (-want +got):\n%s", diff)
	}
}

func TestOpSequenceJSON(t *testing.T) {
	seq := NewOpSequence(
		NewOpLoadMany([]string{"in/*.png"}),
		NewOpBackground(7, 2, 4),
		NewOpSave("out.png"),
	)
	bs, err := json.Marshal(seq)
	require.NoError(t, err)

	got := &OpSequence{}
	require.NoError(t, json.Unmarshal(bs, got))
	require.Len(t, got.Steps, 3)
	assert.Equal(t, []string{"in/*.png"}, got.Steps[0].(*OpLoadMany).FilePatterns)
	bg := got.Steps[1].(*OpBackground)
	assert.Equal(t, 7, bg.S)
	assert.Equal(t, 2, bg.N)
	assert.Equal(t, 4, bg.Segments)
	assert.Equal(t, "out.png", got.Steps[2].(*OpSave).FilePattern)
	assert.True(t, got.Active)
}

func TestOpSequenceUnknownType(t *testing.T) {
	got := &OpSequence{}
	err := json.Unmarshal([]byte(`{"type":"seq","active":true,"steps":[{"type":"stack"}]}`), got)
	assert.Error(t, err)
}

func TestOpSequenceSkipsInactiveSteps(t *testing.T) {
	save := NewOpSave("")
	seq := NewOpSequence(save)
	outs, err := seq.MakePromises([]Promise{constPromise(3, 1)}, testContext())
	require.NoError(t, err)
	require.Len(t, outs, 1)
	f, err := outs[0]()
	require.NoError(t, err)
	assert.Equal(t, 3, f.ID)
}

func TestOperatorsRejectInputs(t *testing.T) {
	c := testContext()
	in := []Promise{constPromise(0, 0)}
	_, err := NewOpLoad(0, "a.png").MakePromises(in, c)
	assert.Error(t, err)
	_, err = NewOpLoadMany([]string{"*.png"}).MakePromises(in, c)
	assert.Error(t, err)
	_, err = NewOpSave("a.png").MakePromises(nil, c)
	assert.Error(t, err)
	_, err = NewOpBackgroundDefault().MakePromises(nil, c)
	assert.Error(t, err)
}
