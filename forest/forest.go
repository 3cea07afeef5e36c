// Package forest 实现基于单一数值特征的树集成像元分类器。
// 提供RandomForest与ExtraTrees两种变体，超参数为一次性策略值，模型仅在内存中存活一个fit+predict周期。
package forest

import (
	"errors"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

type Strategy uint8

const (
	RandomForest Strategy = iota
	ExtraTrees
)

var (
	ErrInsufficientClasses = errors.New("need at least 2 distinct classes")
	ErrEmptyTrainingSet    = errors.New("empty training set")
	ErrSizeMismatch        = errors.New("x and y size mismatch")
)

type Options struct {
	Trees   int
	MinLeaf int
	Workers int
	Seed    int64 // 0则取时间种子
}

func DefaultOptions() Options {
	return Options{
		Trees:   50,
		MinLeaf: 10,
		Workers: runtime.NumCPU(),
	}
}

type Forest struct {
	trees   []*node
	classes []uint8
	workers int
}

// 训练树集成。x为特征值，y为对应的正类别标签，调用方负责只传入有标签的样本。
func Train(x []float64, y []uint8, strat Strategy, opt Options) (f *Forest, err error) {
	if len(x) == 0 {
		err = ErrEmptyTrainingSet
		return
	}
	if len(x) != len(y) {
		err = ErrSizeMismatch
		return
	}
	classes := distinctClasses(y)
	if len(classes) < 2 {
		err = ErrInsufficientClasses
		return
	}
	if opt.Trees <= 0 {
		opt.Trees = DefaultOptions().Trees
	}
	if opt.MinLeaf <= 0 {
		opt.MinLeaf = DefaultOptions().MinLeaf
	}
	if opt.Workers <= 0 {
		opt.Workers = runtime.NumCPU()
	}
	seed := opt.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// 全量样本按特征值排好序，各树在其上做有放回抽样或直接复用
	sorted := make([]int32, len(x))
	for i := range sorted {
		sorted[i] = int32(i)
	}
	sort.Slice(sorted, func(a, b int) bool { return x[sorted[a]] < x[sorted[b]] })

	f = &Forest{
		trees:   make([]*node, opt.Trees),
		classes: classes,
		workers: opt.Workers,
	}
	var eg errgroup.Group
	eg.SetLimit(opt.Workers)
	for i := 0; i < opt.Trees; i++ {
		i := i
		eg.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(i)))
			b := builder{x: x, y: y, minLeaf: opt.MinLeaf, strat: strat, rng: rng}
			f.trees[i] = b.build(sorted)
			return nil
		})
	}
	_ = eg.Wait()
	return
}

// Classes 返回训练集中出现过的类别（升序）；预测结果恒落在其中
func (f *Forest) Classes() []uint8 {
	return f.classes
}

// 对每个特征值做全树投票，返回多数类。样本间相互独立，按块并行。
func (f *Forest) Predict(x []float64) []uint8 {
	out := make([]uint8, len(x))
	workers := f.workers
	if workers <= 0 {
		workers = 1
	}
	chunk := (len(x) + workers - 1) / workers
	var eg errgroup.Group
	for lo := 0; lo < len(x); lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > len(x) {
			hi = len(x)
		}
		eg.Go(func() error {
			var votes [256]uint16
			for i := lo; i < hi; i++ {
				for _, c := range f.classes {
					votes[c] = 0
				}
				for _, t := range f.trees {
					votes[t.classify(x[i])]++
				}
				best := f.classes[0]
				for _, c := range f.classes[1:] {
					if votes[c] > votes[best] {
						best = c
					}
				}
				out[i] = best
			}
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

func distinctClasses(y []uint8) []uint8 {
	var seen [256]bool
	for _, c := range y {
		seen[c] = true
	}
	classes := make([]uint8, 0, 8)
	for c := 0; c < 256; c++ {
		if seen[c] {
			classes = append(classes, uint8(c))
		}
	}
	return classes
}
