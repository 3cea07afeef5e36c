package canolib

import (
	"os"

	"github.com/wgdzlh/canolib/log"
	"github.com/wgdzlh/canolib/utils"

	gdal "github.com/airbusgeo/godal"
	"go.uber.org/zap"
)

// 整体读入内存的栅格网格，波段数据为行主序float32
type RasterGrid struct {
	Width        int
	Height       int
	GeoTransform [6]float64
	Projection   string
	Bands        [][]float32
}

func (r *RasterGrid) Pixels() int {
	return r.Width * r.Height
}

func (r *RasterGrid) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// 同一运算中的两个网格必须严格一致，不一致直接报错，绝不隐式重采样
func (r *RasterGrid) AlignedWith(o *RasterGrid) bool {
	return r.Width == o.Width && r.Height == o.Height &&
		r.GeoTransform == o.GeoTransform && r.Projection == o.Projection
}

func (r *RasterGrid) SameShape(o *RasterGrid) bool {
	return r.Width == o.Width && r.Height == o.Height
}

// 读取Tif前bands个波段（不足则报错），波段值统一转为float32
func (g *CanopyToolbox) ReadGrid(tif string, bands int) (grid *RasterGrid, err error) {
	if _, err = os.Stat(tif); err != nil {
		log.Error(g.logTag+"tif not found", zap.String("tif", tif))
		err = ErrInputNotFound
		return
	}
	sds, err := gdal.Open(tif, gdal.RasterOnly())
	if err != nil {
		log.Error(g.logTag+"open tif failed", zap.String("tif", tif), zap.Error(err))
		err = ErrUnsupportedFormat
		return
	}
	defer sds.Close()
	tifBands := sds.Bands()
	if bc := len(tifBands); bc < bands {
		log.Error(g.logTag+"tif bands not enough", zap.String("tif", tif), zap.Int("bands", bc), zap.Int("want", bands))
		err = ErrUnsupportedFormat
		return
	}
	st := sds.Structure()
	grid = &RasterGrid{
		Width:      st.SizeX,
		Height:     st.SizeY,
		Projection: sds.Projection(),
		Bands:      make([][]float32, bands),
	}
	if grid.GeoTransform, err = sds.GeoTransform(); err != nil {
		log.Error(g.logTag+"tif has no geotransform", zap.String("tif", tif), zap.Error(err))
		err = ErrUnsupportedFormat
		return
	}
	if grid.Empty() {
		err = ErrEmptyGrid
		return
	}
	for i := 0; i < bands; i++ {
		buf := make([]float32, grid.Pixels())
		if err = tifBands[i].Read(0, 0, buf, grid.Width, grid.Height); err != nil {
			log.Error(g.logTag+"read tif band failed", zap.String("tif", tif), zap.Int("band", i), zap.Error(err))
			err = ErrUnsupportedFormat
			return
		}
		grid.Bands[i] = buf
	}
	return
}

// 将float32单波段网格写为GTiff，先写临时文件再整体rename
func (g *CanopyToolbox) writeFloat32Tif(out string, data []float32, ref *RasterGrid) (err error) {
	return g.writeTif(out, gdal.Float32, data, ref)
}

// 将byte单波段网格写为GTiff，先写临时文件再整体rename
func (g *CanopyToolbox) writeByteTif(out string, data []uint8, ref *RasterGrid) (err error) {
	return g.writeTif(out, gdal.Byte, data, ref)
}

func (g *CanopyToolbox) writeTif(out string, dt gdal.DataType, data interface{}, ref *RasterGrid) (err error) {
	tmp := utils.TmpSibling(out)
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()
	dds, err := gdal.Create(gdal.GTiff, tmp, 1, dt, ref.Width, ref.Height,
		gdal.CreationOption(TIF_COMPRESS_OPTION))
	if err != nil {
		log.Error(g.logTag+"create tif failed", zap.String("out", out), zap.Error(err))
		err = ErrIOFailure
		return
	}
	if err = dds.SetGeoTransform(ref.GeoTransform); err == nil {
		if ref.Projection != "" {
			err = dds.SetProjection(ref.Projection)
		}
	}
	if err == nil {
		err = dds.Bands()[0].Write(0, 0, data, ref.Width, ref.Height)
	}
	if e := dds.Close(); err == nil {
		err = e
	}
	if err != nil {
		log.Error(g.logTag+"write tif failed", zap.String("out", out), zap.Error(err))
		err = ErrIOFailure
		return
	}
	if err = os.Rename(tmp, out); err != nil {
		log.Error(g.logTag+"rename tif failed", zap.String("out", out), zap.Error(err))
		err = ErrIOFailure
	}
	return
}
