package canolib

import (
	"os"
	"path/filepath"

	"github.com/wgdzlh/canolib/log"
	"github.com/wgdzlh/canolib/utils"

	"go.uber.org/zap"
)

// 计算单张4波段影像的植被指数，输出与输入同地理参考的float32单波段Tif。
// 输出文件名为 {公式前缀}{输入文件名}；已存在且未指定force时直接跳过。
// 分母为零时按IEEE规则产生NaN/Inf并原样写出，属既定数值策略而非错误。
func (g *CanopyToolbox) ComputeIndex(formula Formula, src, outDir string, force bool) (out string, skipped bool, err error) {
	if !formula.Valid() {
		err = ErrUnknownFormula
		return
	}
	out = filepath.Join(outDir, utils.DerivedName(formula.Prefix(), src))
	if !force {
		if _, e := os.Stat(out); e == nil {
			log.Info(g.logTag+"index output exists, skip", zap.String("out", out))
			skipped = true
			return
		}
	}
	err = g.computeIndexTo(formula, src, out)
	return
}

func (g *CanopyToolbox) computeIndexTo(formula Formula, src, out string) (err error) {
	grid, err := g.ReadGrid(src, NAIP_BANDS)
	if err != nil {
		return
	}
	idx, err := evalFormula(formula, grid)
	if err != nil {
		return
	}
	if err = g.writeFloat32Tif(out, idx, grid); err != nil {
		return
	}
	log.Info(g.logTag+"index computed", zap.String("formula", string(formula)), zap.String("out", out))
	return
}

func evalFormula(f Formula, grid *RasterGrid) (idx []float32, err error) {
	red, green, blue, nir := grid.Bands[BAND_RED], grid.Bands[BAND_GREEN], grid.Bands[BAND_BLUE], grid.Bands[BAND_NIR]
	switch f {
	case ARVI:
		idx = arviIndex(red, blue, nir)
	case VARI:
		idx = variIndex(red, green, blue)
	case VDVI:
		idx = vdviIndex(red, green, blue)
	default:
		err = ErrUnknownFormula
	}
	return
}

// ARVI = (NIR - 2*Red + Blue) / (NIR + 2*Red + Blue)
func arviIndex(red, blue, nir []float32) []float32 {
	out := make([]float32, len(red))
	for i := range out {
		out[i] = (nir[i] - 2*red[i] + blue[i]) / (nir[i] + 2*red[i] + blue[i])
	}
	return out
}

// VARI = (Green' - Red') / (Green' + Red' - Blue')，各波段先按瓦片内极值归一化到[1,2]。
// 归一化以单张瓦片为界，不同瓦片的VARI值不可直接比较。
func variIndex(red, green, blue []float32) []float32 {
	r, gn, b := normalizeBand(red), normalizeBand(green), normalizeBand(blue)
	out := make([]float32, len(r))
	for i := range out {
		out[i] = (gn[i] - r[i]) / (gn[i] + r[i] - b[i])
	}
	return out
}

// VDVI = (2*Green - (Red + Blue)) / (2*Green + (Red + Blue))
func vdviIndex(red, green, blue []float32) []float32 {
	out := make([]float32, len(red))
	for i := range out {
		rb := red[i] + blue[i]
		out[i] = (2*green[i] - rb) / (2*green[i] + rb)
	}
	return out
}

// 1 + (x - min) / (max - min)
func normalizeBand(x []float32) []float32 {
	mn, mx := x[0], x[0]
	for _, v := range x[1:] {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	span := mx - mn
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = 1 + (v-mn)/span
	}
	return out
}
