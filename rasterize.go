package canolib

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wgdzlh/canolib/log"
	"github.com/wgdzlh/canolib/utils"

	gdal "github.com/airbusgeo/godal"
	"go.uber.org/zap"
)

const OO_ENCODING_GBK = "ENCODING=GBK"

// 将训练样本矢量面烧录为与参考栅格网格对齐的byte标签栅格。
// 每个像元取绘制顺序上最后覆盖它的面的field字段值；field为空时统一烧1；未覆盖像元保持0。
func (g *CanopyToolbox) RasterizeTraining(vector, field, refRaster, out string) (err error) {
	if _, err = os.Stat(vector); err != nil {
		log.Error(g.logTag+"training vector not found", zap.String("vector", vector))
		err = ErrInputNotFound
		return
	}
	ref, err := g.ReadGrid(refRaster, 1)
	if err != nil {
		if err == ErrEmptyGrid {
			err = ErrAlignmentMismatch
		}
		return
	}
	sds, err := g.openVector(vector)
	if err != nil {
		return
	}
	defer sds.Close()
	layers := sds.Layers()
	if len(layers) == 0 {
		log.Error(g.logTag+"vector has no layer", zap.String("vector", vector))
		err = ErrUnsupportedFormat
		return
	}
	layer := layers[0]
	if err = g.checkVectorRef(layer, ref); err != nil {
		return
	}

	tmp := utils.TmpSibling(out)
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()
	dds, err := gdal.Create(gdal.GTiff, tmp, 1, gdal.Byte, ref.Width, ref.Height,
		gdal.CreationOption(TIF_COMPRESS_OPTION))
	if err != nil {
		log.Error(g.logTag+"create label tif failed", zap.String("out", out), zap.Error(err))
		err = ErrIOFailure
		return
	}
	closed := false
	defer func() {
		if !closed {
			dds.Close()
		}
	}()
	if err = dds.SetGeoTransform(ref.GeoTransform); err == nil && ref.Projection != "" {
		err = dds.SetProjection(ref.Projection)
	}
	if err != nil {
		err = ErrIOFailure
		return
	}

	var (
		feature *gdal.Feature
		burned  int
	)
	layer.ResetReading()
	for {
		if feature = layer.NextFeature(); feature == nil {
			break
		}
		value := 1.0
		if field != "" {
			fld, ok := lookupField(feature.Fields(), field)
			if !ok {
				feature.Close()
				err = fmt.Errorf(ErrFieldMissingTemplate, field)
				return
			}
			value = float64(fld.Int())
		}
		if e := dds.RasterizeGeometry(feature.Geometry(), gdal.Values(value)); e != nil {
			log.Error(g.logTag+"burn feature failed", zap.Int("feature", burned), zap.Error(e))
			feature.Close()
			err = ErrUnsupportedFormat
			return
		}
		feature.Close()
		burned++
	}
	// Close只许调用一次，失败也不能再触发defer里的兜底Close
	closed = true
	if err = dds.Close(); err != nil {
		log.Error(g.logTag+"close label tif failed", zap.Error(err))
		err = ErrIOFailure
		return
	}
	if err = os.Rename(tmp, out); err != nil {
		err = ErrIOFailure
		return
	}
	log.Info(g.logTag+"training vector rasterized", zap.String("out", out),
		zap.Int("features", burned), zap.String("field", field))
	return
}

// 按名查找属性字段。部分GDAL构建的shp驱动不按ENCODING选项转码字段名，
// DBF中的字段名仍是GBK字节，此时做一次GBK→UTF-8回退匹配。
func lookupField(fields map[string]gdal.Field, name string) (fld gdal.Field, ok bool) {
	if fld, ok = fields[name]; ok {
		return
	}
	for k, f := range fields {
		if d, e := utils.GbkStrToUtf8(k); e == nil && d == name {
			return f, true
		}
	}
	return
}

// 打开训练矢量；shp带GBK编码cpg时按GBK读取属性
func (g *CanopyToolbox) openVector(vector string) (sds *gdal.Dataset, err error) {
	opts := []gdal.OpenOption{gdal.VectorOnly()}
	if strings.EqualFold(utils.FILE_EXT_SHP, filepath.Ext(vector)) {
		if enc, utf8 := utils.GetShpEncoding(vector); !utf8 {
			log.Info(g.logTag+"open shp with GBK encoding", zap.String("cpg", enc))
			opts = append(opts, gdal.DriverOpenOption(OO_ENCODING_GBK))
		}
	}
	sds, err = gdal.Open(vector, opts...)
	if err != nil {
		log.Error(g.logTag+"open vector failed", zap.String("vector", vector), zap.Error(err))
		err = ErrUnsupportedFormat
	}
	return
}

// 矢量图层与参考栅格坐标系不一致时直接报错，不做隐式重投影
func (g *CanopyToolbox) checkVectorRef(layer gdal.Layer, ref *RasterGrid) (err error) {
	if ref.Projection == "" {
		return
	}
	lRef := layer.SpatialRef()
	// 矢量未声明坐标系时不拦截，交由结果核对
	if wkt, e := lRef.WKT(); e != nil || wkt == "" {
		return
	}
	rRef, e := gdal.NewSpatialRefFromWKT(ref.Projection)
	if e != nil {
		return
	}
	defer rRef.Close()
	if !lRef.IsSame(rRef) {
		log.Error(g.logTag + "vector srs differs from reference raster")
		err = ErrAlignmentMismatch
	}
	return
}
