package canolib

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedianSmoothUniformFixedPoint(t *testing.T) {
	data := make([]uint8, 8*8)
	for i := range data {
		data[i] = 2
	}
	out := MedianSmooth(data, 8, 8, SMOOTH_WINDOW)
	assert.Equal(t, data, out)
}

func TestMedianSmoothIsolatedPixel(t *testing.T) {
	// 单个孤立像元被周围多数类别覆盖。
	data := make([]uint8, 7*7)
	for i := range data {
		data[i] = 1
	}
	data[3*7+3] = 2
	out := MedianSmooth(data, 7, 7, SMOOTH_WINDOW)
	for i, v := range out {
		assert.Equal(t, uint8(1), v, "pixel %d", i)
	}
}

func TestMedianSmoothPreservesSize(t *testing.T) {
	data := []uint8{1, 2, 1, 2, 1, 2}
	out := MedianSmooth(data, 3, 2, SMOOTH_WINDOW)
	assert.Len(t, out, len(data))
}

func TestMedianSmoothInvalidWindowCopies(t *testing.T) {
	data := []uint8{1, 2, 3, 4}
	out := MedianSmooth(data, 2, 2, 4)
	assert.Equal(t, data, out)
	out[0] = 9
	assert.Equal(t, uint8(1), data[0])
}

func TestReflectIdx(t *testing.T) {
	// (d c b a | a b c d | d c b a)
	assert.Equal(t, 0, reflectIdx(-1, 4))
	assert.Equal(t, 1, reflectIdx(-2, 4))
	assert.Equal(t, 3, reflectIdx(4, 4))
	assert.Equal(t, 2, reflectIdx(5, 4))
	assert.Equal(t, 2, reflectIdx(2, 4))
}
