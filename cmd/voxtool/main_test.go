package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/octomesh/internal/mesher"
	"github.com/Faultbox/octomesh/pkg/voxel"
)

func TestParseInts(t *testing.T) {
	v, err := parseInts("1, 2,3")
	require.NoError(t, err)
	assert.Equal(t, [3]int{1, 2, 3}, v)

	_, err = parseInts("1,2")
	assert.Error(t, err)
	_, err = parseInts("1,b,3")
	assert.Error(t, err)
}

func TestPointList(t *testing.T) {
	var l pointList
	require.NoError(t, l.Set("1.5,2,3"))
	require.NoError(t, l.Set("0,0,-4"))
	assert.Equal(t, pointList{{1.5, 2, 3}, {0, 0, -4}}, l)
	assert.Error(t, l.Set("x"))
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, mesher.Cube1, levelFor(1))
	assert.Equal(t, mesher.Cube16, levelFor(16))
	assert.Equal(t, mesher.Cube256, levelFor(256))
}

func TestGenWorldAndBuild(t *testing.T) {
	dir := t.TempDir()
	world := filepath.Join(dir, "w.gz")
	tmpl := filepath.Join(dir, "t.ctpl")

	require.NoError(t, cmdGenWorld([]string{"-edge", "16", "-kind", "sphere", world}))
	require.NoError(t, cmdGenTemplate([]string{tmpl}))
	require.NoError(t, cmdInfo([]string{world}))
	require.NoError(t, cmdTemplate([]string{tmpl}))
	require.NoError(t, cmdMesh([]string{"-level", "3", "-at", "0,0,0", "-template", tmpl, world}))
	require.NoError(t, cmdBuild([]string{"-point", "8,8,8", world}))
	require.NoError(t, cmdConfigInit([]string{filepath.Join(dir, "cfg", "config.yaml")}))

	assert.Error(t, cmdGenWorld([]string{"-edge", "12", world}))
	assert.Error(t, cmdGenWorld([]string{"-kind", "cave", world}))
	assert.Error(t, cmdMesh([]string{"-level", "5", world}))

	g, err := voxel.ReadFile(world)
	require.NoError(t, err)
	assert.Equal(t, 16, g.Edge())
	assert.True(t, g.Occupied(8, 8, 8))
}

func TestUniq(t *testing.T) {
	assert.Equal(t, []uint32{6, 12}, uniq([]uint32{12, 6, 12, 6}))
}
