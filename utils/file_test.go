package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedName(t *testing.T) {
	assert.Equal(t, "arvi_tile_01.tif", DerivedName("arvi_", "/data/in/tile_01.tif"))
	assert.Equal(t, "rf_tile_01.tif", DerivedName("rf_", "tile_01.tif"))
}

func TestTmpSibling(t *testing.T) {
	tmp := TmpSibling("/data/out/arvi_tile_01.tif")
	assert.Equal(t, "/data/out", filepath.Dir(tmp))
	assert.True(t, strings.HasPrefix(filepath.Base(tmp), "."))
	assert.True(t, strings.HasSuffix(tmp, ".tmp.tif"))
	assert.NotEqual(t, tmp, TmpSibling("/data/out/arvi_tile_01.tif"))
}

func TestIsTif(t *testing.T) {
	assert.True(t, IsTif("a.tif"))
	assert.True(t, IsTif("A.TIF"))
	assert.False(t, IsTif("a.txt"))
	assert.False(t, IsTif("a.tiff"))
}

func TestGetShpEncoding(t *testing.T) {
	dir := t.TempDir()
	shp := filepath.Join(dir, "train.shp")

	enc, utf8 := GetShpEncoding(shp)
	assert.Empty(t, enc)
	assert.False(t, utf8)

	cpg := filepath.Join(dir, "train.cpg")
	require.NoError(t, os.WriteFile(cpg, []byte("UTF-8\n"), 0644))
	enc, utf8 = GetShpEncoding(shp)
	assert.Equal(t, "UTF-8", enc)
	assert.True(t, utf8)

	require.NoError(t, os.WriteFile(cpg, []byte("GBK"), 0644))
	enc, utf8 = GetShpEncoding(shp)
	assert.Equal(t, "GBK", enc)
	assert.False(t, utf8)
}
