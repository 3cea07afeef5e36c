package forest

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 两个特征区间清晰可分的合成训练集
func separableSet(n int) (x []float64, y []uint8) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			x = append(x, rng.Float64()*0.4)
			y = append(y, 1)
		} else {
			x = append(x, 0.6+rng.Float64()*0.4)
			y = append(y, 2)
		}
	}
	return
}

func TestTrainRejectsDegenerateInput(t *testing.T) {
	_, err := Train(nil, nil, RandomForest, DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyTrainingSet)

	_, err = Train([]float64{1, 2}, []uint8{1}, RandomForest, DefaultOptions())
	assert.ErrorIs(t, err, ErrSizeMismatch)

	x := []float64{0.1, 0.2, 0.3, 0.4}
	y := []uint8{1, 1, 1, 1}
	_, err = Train(x, y, RandomForest, DefaultOptions())
	assert.ErrorIs(t, err, ErrInsufficientClasses)
}

func TestPredictSeparable(t *testing.T) {
	x, y := separableSet(400)
	for _, strat := range []Strategy{RandomForest, ExtraTrees} {
		opt := DefaultOptions()
		opt.Seed = 42
		f, err := Train(x, y, strat, opt)
		require.NoError(t, err)
		assert.Equal(t, []uint8{1, 2}, f.Classes())

		pred := f.Predict([]float64{0.05, 0.2, 0.8, 0.95})
		assert.Equal(t, []uint8{1, 1, 2, 2}, pred, "strategy %d", strat)
	}
}

func TestPredictClassDomain(t *testing.T) {
	// 预测值恒落在训练集出现过的类别中
	x, y := separableSet(200)
	for i := range y {
		if y[i] == 1 {
			y[i] = 3
		} else {
			y[i] = 7
		}
	}
	opt := DefaultOptions()
	opt.Seed = 9
	f, err := Train(x, y, ExtraTrees, opt)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	probe := make([]float64, 1000)
	for i := range probe {
		probe[i] = rng.Float64()*3 - 1
	}
	for i, c := range f.Predict(probe) {
		assert.Contains(t, []uint8{3, 7}, c, "probe %d", i)
	}
}

func TestTrainDeterministicWithSeed(t *testing.T) {
	x, y := separableSet(300)
	probe := make([]float64, 64)
	for i := range probe {
		probe[i] = float64(i) / 64
	}
	opt := DefaultOptions()
	opt.Seed = 123

	f1, err := Train(x, y, RandomForest, opt)
	require.NoError(t, err)
	f2, err := Train(x, y, RandomForest, opt)
	require.NoError(t, err)
	assert.Equal(t, f1.Predict(probe), f2.Predict(probe))
}

func TestDistinctClassesSorted(t *testing.T) {
	assert.Equal(t, []uint8{1, 2, 9}, distinctClasses([]uint8{9, 2, 1, 2, 9, 1}))
}
