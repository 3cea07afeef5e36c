package canolib

import "runtime"

const (
	PREFIX_ARVI = "arvi_"
	PREFIX_VARI = "vari_"
	PREFIX_VDVI = "vdvi_"

	PREFIX_RANDOM_FOREST = "rf_"
	PREFIX_EXTRA_TREES   = "erf_"

	// 输入影像固定波段次序：红、绿、蓝、近红外
	BAND_RED   = 0
	BAND_GREEN = 1
	BAND_BLUE  = 2
	BAND_NIR   = 3
	NAIP_BANDS = 4

	// 分类器固定超参数
	FOREST_TREES    = 50
	FOREST_MIN_LEAF = 10

	// 平滑滤波窗口边长
	SMOOTH_WINDOW = 5

	TIF_COMPRESS_OPTION = "COMPRESS=LZW"
)

// 进程启动时构造一次，之后只读
type Config struct {
	OutputProjection string // 上游重投影工序的目标投影，如EPSG:5070
	Workspace        string // 工作区根目录
	LedgerPath       string // 任务台账sqlite路径，为空则只按文件名探测跳过
	Workers          int    // 批处理并行度
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}
