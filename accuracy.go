package canolib

import (
	"github.com/wgdzlh/canolib/log"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// 分类精度评估结果
type Accuracy struct {
	Overall float64    // 总体精度
	Kappa   float64    // Cohen's kappa
	Classes []uint8    // 参与统计的类别（升序）
	Matrix  *mat.Dense // 混淆矩阵，行为参考类别，列为预测类别
}

// 以参考标签栅格（>0像元）评估分类结果精度
func (g *CanopyToolbox) AssessAccuracy(classified, reference string) (acc *Accuracy, err error) {
	predGrid, err := g.ReadGrid(classified, 1)
	if err != nil {
		return
	}
	refGrid, err := g.ReadGrid(reference, 1)
	if err != nil {
		return
	}
	if !predGrid.AlignedWith(refGrid) {
		log.Error(g.logTag+"classified raster not aligned with reference",
			zap.String("classified", classified), zap.String("reference", reference))
		err = ErrAlignmentMismatch
		return
	}
	acc, err = assessPixels(refGrid.Bands[0], predGrid.Bands[0])
	if err != nil {
		return
	}
	log.Info(g.logTag+"accuracy assessed", zap.String("classified", classified),
		zap.Float64("overall", acc.Overall), zap.Float64("kappa", acc.Kappa))
	return
}

func assessPixels(ref, pred []float32) (acc *Accuracy, err error) {
	var seen [256]bool
	for i, v := range ref {
		if v > 0 {
			seen[uint8(v)] = true
			seen[uint8(pred[i])] = true
		}
	}
	var (
		classes []uint8
		ci      [256]int
	)
	for c := 0; c < 256; c++ {
		if seen[c] {
			ci[c] = len(classes)
			classes = append(classes, uint8(c))
		}
	}
	if len(classes) < 2 {
		err = ErrInsufficientClasses
		return
	}
	k := len(classes)
	m := mat.NewDense(k, k, nil)
	total := 0.0
	for i, v := range ref {
		if v > 0 {
			r, c := ci[uint8(v)], ci[uint8(pred[i])]
			m.Set(r, c, m.At(r, c)+1)
			total++
		}
	}
	diag := 0.0
	pe := 0.0
	row := make([]float64, k)
	col := make([]float64, k)
	for i := 0; i < k; i++ {
		diag += m.At(i, i)
		pe += floats.Sum(mat.Row(row, i, m)) * floats.Sum(mat.Col(col, i, m))
	}
	po := diag / total
	pe /= total * total
	acc = &Accuracy{
		Overall: po,
		Classes: classes,
		Matrix:  m,
	}
	if pe < 1 {
		acc.Kappa = (po - pe) / (1 - pe)
	}
	return
}
