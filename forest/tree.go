package forest

import (
	"math/rand"
	"sort"
)

type node struct {
	thr   float64
	left  *node
	right *node
	leaf  bool
	class uint8
}

func (n *node) classify(v float64) uint8 {
	for !n.leaf {
		if v <= n.thr {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.class
}

type builder struct {
	x       []float64
	y       []uint8
	minLeaf int
	strat   Strategy
	rng     *rand.Rand
}

// sorted为按特征值升序排列的样本下标。RandomForest对其做有放回抽样，ExtraTrees直接使用全量样本。
func (b *builder) build(sorted []int32) *node {
	idx := sorted
	if b.strat == RandomForest {
		idx = b.bootstrap(sorted)
	}
	return b.grow(idx)
}

// 有放回抽样，抽样结果保持升序，便于后续切分
func (b *builder) bootstrap(sorted []int32) []int32 {
	n := len(sorted)
	pos := make([]int32, n)
	for i := range pos {
		pos[i] = int32(b.rng.Intn(n))
	}
	sort.Slice(pos, func(a, c int) bool { return pos[a] < pos[c] })
	out := make([]int32, n)
	for i, p := range pos {
		out[i] = sorted[p]
	}
	return out
}

func (b *builder) grow(idx []int32) *node {
	n := len(idx)
	if n < 2*b.minLeaf || b.pure(idx) {
		return b.leaf(idx)
	}
	var pos int
	var thr float64
	switch b.strat {
	case ExtraTrees:
		pos, thr = b.randomSplit(idx)
	default:
		pos, thr = b.bestSplit(idx)
	}
	if pos <= 0 {
		return b.leaf(idx)
	}
	return &node{
		thr:   thr,
		left:  b.grow(idx[:pos]),
		right: b.grow(idx[pos:]),
	}
}

func (b *builder) pure(idx []int32) bool {
	first := b.y[idx[0]]
	for _, i := range idx[1:] {
		if b.y[i] != first {
			return false
		}
	}
	return true
}

func (b *builder) leaf(idx []int32) *node {
	var counts [256]int32
	for _, i := range idx {
		counts[b.y[i]]++
	}
	best := b.y[idx[0]]
	for c := 0; c < 256; c++ {
		if counts[c] > counts[best] {
			best = uint8(c)
		}
	}
	return &node{leaf: true, class: best}
}

// 扫描全部可行切分点，取加权Gini不纯度最小者；两侧均需满足最小叶样本数
func (b *builder) bestSplit(idx []int32) (pos int, thr float64) {
	n := len(idx)
	var total, left [256]int32
	for _, i := range idx {
		total[b.y[i]]++
	}
	bestScore := -1.0
	for i := 1; i < n; i++ {
		left[b.y[idx[i-1]]]++
		if i < b.minLeaf || n-i < b.minLeaf {
			continue
		}
		lo, hi := b.x[idx[i-1]], b.x[idx[i]]
		if lo == hi { // 相同特征值之间不可切分
			continue
		}
		score := weightedGini(&left, &total, int32(i), int32(n))
		if bestScore < 0 || score < bestScore {
			bestScore = score
			pos = i
			thr = lo + (hi-lo)/2
		}
	}
	return
}

// ExtraTrees：在特征取值范围内均匀随机取阈值
func (b *builder) randomSplit(idx []int32) (pos int, thr float64) {
	n := len(idx)
	lo, hi := b.x[idx[0]], b.x[idx[n-1]]
	if lo == hi {
		return
	}
	thr = lo + b.rng.Float64()*(hi-lo)
	pos = sort.Search(n, func(i int) bool { return b.x[idx[i]] > thr })
	if pos < b.minLeaf || n-pos < b.minLeaf {
		pos = 0
	}
	return
}

// 1 - sum(p^2)，按左右子集样本数加权
func weightedGini(left, total *[256]int32, nl, n int32) float64 {
	nr := n - nl
	var sl, sr float64
	for c := 0; c < 256; c++ {
		if total[c] == 0 {
			continue
		}
		l := float64(left[c])
		r := float64(total[c] - left[c])
		sl += l * l
		sr += r * r
	}
	fl, fr := float64(nl), float64(nr)
	giniL := 1 - sl/(fl*fl)
	giniR := 1 - sr/(fr*fr)
	return (fl*giniL + fr*giniR) / float64(n)
}
