package canolib

import (
	"os"
	"path/filepath"
	"testing"

	gdal "github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 10x10参考栅格，原点(0,10)，像元1x1，无投影
func writeRefTif(t *testing.T, g *CanopyToolbox, path string) {
	t.Helper()
	ref := &RasterGrid{
		Width:        10,
		Height:       10,
		GeoTransform: [6]float64{0, 1, 0, 10, 0, -1},
	}
	require.NoError(t, g.writeByteTif(path, make([]uint8, ref.Pixels()), ref))
}

func writeVector(t *testing.T, dir, geojson string) string {
	t.Helper()
	vec := filepath.Join(dir, "train.geojson")
	require.NoError(t, os.WriteFile(vec, []byte(geojson), 0644))
	return vec
}

// 覆盖栅格左半边(x<5)的正方形面，类别属性3
const leftHalfGeojson = `{
"type": "FeatureCollection",
"features": [
 {"type": "Feature", "properties": {"class": 3},
  "geometry": {"type": "Polygon", "coordinates": [[[0,0],[5,0],[5,10],[0,10],[0,0]]]}}
]}`

// 左半边类别3，之后再画一块覆盖x<3的类别5
const overlapGeojson = `{
"type": "FeatureCollection",
"features": [
 {"type": "Feature", "properties": {"class": 3},
  "geometry": {"type": "Polygon", "coordinates": [[[0,0],[5,0],[5,10],[0,10],[0,0]]]}},
 {"type": "Feature", "properties": {"class": 5},
  "geometry": {"type": "Polygon", "coordinates": [[[0,0],[3,0],[3,10],[0,10],[0,0]]]}}
]}`

func TestRasterizeTrainingAttributeBurn(t *testing.T) {
	dir := t.TempDir()
	g := NewCanopyToolbox(Config{})
	refTif := filepath.Join(dir, "ref.tif")
	writeRefTif(t, g, refTif)
	vec := writeVector(t, dir, leftHalfGeojson)

	out := filepath.Join(dir, "labels.tif")
	require.NoError(t, g.RasterizeTraining(vec, "class", refTif, out))

	grid, err := g.ReadGrid(out, 1)
	require.NoError(t, err)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			want := float32(0)
			if x < 5 {
				want = 3
			}
			assert.Equal(t, want, grid.Bands[0][y*10+x], "pixel (%d,%d)", x, y)
		}
	}
}

func TestRasterizeTrainingDrawOrderWins(t *testing.T) {
	dir := t.TempDir()
	g := NewCanopyToolbox(Config{})
	refTif := filepath.Join(dir, "ref.tif")
	writeRefTif(t, g, refTif)
	vec := writeVector(t, dir, overlapGeojson)

	out := filepath.Join(dir, "labels.tif")
	require.NoError(t, g.RasterizeTraining(vec, "class", refTif, out))

	grid, err := g.ReadGrid(out, 1)
	require.NoError(t, err)
	for x := 0; x < 10; x++ {
		want := float32(0)
		switch {
		case x < 3: // 后画的面覆盖先画的
			want = 5
		case x < 5:
			want = 3
		}
		assert.Equal(t, want, grid.Bands[0][5*10+x], "pixel (%d,5)", x)
	}
}

func TestRasterizeTrainingDefaultBurnValue(t *testing.T) {
	dir := t.TempDir()
	g := NewCanopyToolbox(Config{})
	refTif := filepath.Join(dir, "ref.tif")
	writeRefTif(t, g, refTif)
	vec := writeVector(t, dir, leftHalfGeojson)

	out := filepath.Join(dir, "labels.tif")
	require.NoError(t, g.RasterizeTraining(vec, "", refTif, out))

	grid, err := g.ReadGrid(out, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(1), grid.Bands[0][5*10+0])
	assert.Equal(t, float32(0), grid.Bands[0][5*10+9])
}

func TestRasterizeTrainingMissingField(t *testing.T) {
	dir := t.TempDir()
	g := NewCanopyToolbox(Config{})
	refTif := filepath.Join(dir, "ref.tif")
	writeRefTif(t, g, refTif)
	vec := writeVector(t, dir, leftHalfGeojson)

	err := g.RasterizeTraining(vec, "species", refTif, filepath.Join(dir, "labels.tif"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "species")
	// 失败时不留半成品
	assert.NoFileExists(t, filepath.Join(dir, "labels.tif"))
}

func TestRasterizeTrainingMissingVector(t *testing.T) {
	dir := t.TempDir()
	g := NewCanopyToolbox(Config{})
	refTif := filepath.Join(dir, "ref.tif")
	writeRefTif(t, g, refTif)

	err := g.RasterizeTraining(filepath.Join(dir, "none.shp"), "class", refTif, filepath.Join(dir, "labels.tif"))
	assert.ErrorIs(t, err, ErrInputNotFound)
}

func TestLookupFieldGbkFallback(t *testing.T) {
	// "类别" 的GBK字节作字段名
	fields := map[string]gdal.Field{"\xC0\xE0\xB1\xF0": {}}
	_, ok := lookupField(fields, "类别")
	assert.True(t, ok)
	_, ok = lookupField(fields, "树种")
	assert.False(t, ok)

	fields = map[string]gdal.Field{"类别": {}}
	_, ok = lookupField(fields, "类别")
	assert.True(t, ok)
}
