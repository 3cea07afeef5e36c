package canolib

import (
	"os"
	"path/filepath"

	"github.com/wgdzlh/canolib/forest"
	"github.com/wgdzlh/canolib/log"
	"github.com/wgdzlh/canolib/utils"

	"go.uber.org/zap"
)

// 单瓦片监督分类：从(标签栅格, 特征栅格)拟合树集成模型，对目标特征栅格逐像元预测，
// 可选5x5中值平滑后写出byte类别栅格。模型即用即弃，不跨瓦片复用。
func (g *CanopyToolbox) Classify(job ClassifyJob) (out string, skipped bool, err error) {
	if !job.Strategy.Valid() {
		err = ErrUnknownStrategy
		return
	}
	out = filepath.Join(job.OutDir, utils.DerivedName(job.Strategy.Prefix(), job.InRaster))
	if !job.Force {
		if _, e := os.Stat(out); e == nil {
			log.Info(g.logTag+"classified output exists, skip", zap.String("out", out))
			skipped = true
			return
		}
	}
	err = g.classifyTo(job, out)
	return
}

func (g *CanopyToolbox) classifyTo(job ClassifyJob, out string) (err error) {
	model, fitGrid, err := g.fit(job)
	if err != nil {
		return
	}
	inGrid, err := g.ReadGrid(job.InRaster, 1)
	if err != nil {
		return
	}
	// 预测目标瓦片须与训练特征瓦片同尺寸
	if !inGrid.SameShape(fitGrid) {
		log.Error(g.logTag+"predict raster shape differs from fit raster",
			zap.String("in", job.InRaster), zap.String("fit", job.FitRaster))
		err = ErrAlignmentMismatch
		return
	}
	classes := model.Predict(toFeatures(inGrid.Bands[0]))
	if job.Smoothing {
		classes = MedianSmooth(classes, inGrid.Width, inGrid.Height, SMOOTH_WINDOW)
	}
	if err = g.writeByteTif(out, classes, inGrid); err != nil {
		return
	}
	log.Info(g.logTag+"tile classified", zap.String("out", out),
		zap.String("strategy", string(job.Strategy)), zap.Bool("smoothing", job.Smoothing))
	return
}

// 读取标签与特征栅格并拟合模型。只取标签>0的像元为训练样本。
func (g *CanopyToolbox) fit(job ClassifyJob) (model *forest.Forest, fitGrid *RasterGrid, err error) {
	labelGrid, err := g.ReadGrid(job.TrainingRaster, 1)
	if err != nil {
		return
	}
	if fitGrid, err = g.ReadGrid(job.FitRaster, 1); err != nil {
		return
	}
	if !labelGrid.AlignedWith(fitGrid) {
		log.Error(g.logTag+"training raster not aligned with fit raster",
			zap.String("training", job.TrainingRaster), zap.String("fit", job.FitRaster))
		err = ErrAlignmentMismatch
		return
	}
	x, y := trainingPairs(labelGrid.Bands[0], fitGrid.Bands[0])
	opt := forest.DefaultOptions()
	opt.Trees = FOREST_TREES
	opt.MinLeaf = FOREST_MIN_LEAF
	opt.Workers = g.cfg.workers()
	model, err = forest.Train(x, y, strategyOf(job.Strategy), opt)
	if err != nil {
		log.Error(g.logTag+"model fit failed", zap.Int("samples", len(x)), zap.Error(err))
		if err == forest.ErrInsufficientClasses || err == forest.ErrEmptyTrainingSet {
			err = ErrInsufficientClasses
		}
		return
	}
	log.Info(g.logTag+"model fitted", zap.Int("samples", len(x)),
		zap.Int("classes", len(model.Classes())))
	return
}

// 构造训练样本对 (x=特征值, y=标签)，仅保留标签为正的像元
func trainingPairs(label, feat []float32) (x []float64, y []uint8) {
	for i, v := range label {
		if v > 0 {
			x = append(x, float64(feat[i]))
			y = append(y, uint8(v))
		}
	}
	return
}

func toFeatures(band []float32) []float64 {
	out := make([]float64, len(band))
	for i, v := range band {
		out[i] = float64(v)
	}
	return out
}

func strategyOf(s Strategy) forest.Strategy {
	if s == ExtraTrees {
		return forest.ExtraTrees
	}
	return forest.RandomForest
}
