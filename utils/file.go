package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	FILE_EXT_TIF = ".tif"
	FILE_EXT_SHP = ".shp"
	FILE_EXT_CPG = ".cpg"

	UTF8  = "UTF8"
	UTF_8 = "UTF-8"
)

// 按固定前缀约定生成派生文件名，如 arvi_tile_01.tif
func DerivedName(prefix, src string) string {
	return prefix + filepath.Base(src)
}

// 同目录下的临时输出路径，计算完成后整体rename，避免出现半成品文件
func TmpSibling(path string) string {
	return filepath.Join(filepath.Dir(path), "."+uuid.NewString()+".tmp"+filepath.Ext(path))
}

func IsTif(path string) bool {
	return strings.EqualFold(filepath.Ext(path), FILE_EXT_TIF)
}

// 读取shp同级的cpg编码声明，为空或非UTF-8时按GBK处理
func GetShpEncoding(shp string) (enc string, utf8 bool) {
	cpg := strings.TrimSuffix(shp, filepath.Ext(shp)) + FILE_EXT_CPG
	raw, err := os.ReadFile(cpg)
	if err != nil || len(raw) == 0 {
		return
	}
	enc = strings.ToUpper(strings.TrimSpace(string(raw)))
	utf8 = enc == UTF_8 || enc == UTF8
	return
}
