package canolib

// 植被指数公式
type Formula string

const (
	ARVI Formula = "arvi"
	VARI Formula = "vari"
	VDVI Formula = "vdvi"
)

func (f Formula) Valid() bool {
	switch f {
	case ARVI, VARI, VDVI:
		return true
	}
	return false
}

func (f Formula) Prefix() string {
	return string(f) + "_"
}

// 树集成分类器变体
type Strategy string

const (
	RandomForest Strategy = "rf"
	ExtraTrees   Strategy = "erf"
)

func (s Strategy) Valid() bool {
	switch s {
	case RandomForest, ExtraTrees:
		return true
	}
	return false
}

func (s Strategy) Prefix() string {
	return string(s) + "_"
}

// 单瓦片分类任务：fit+predict+write为一个整体，模型不跨任务复用
type ClassifyJob struct {
	TrainingRaster string   // 烧录好的训练标签栅格
	FitRaster      string   // 与标签对应的指数特征栅格
	InRaster       string   // 待预测的指数特征栅格
	OutDir         string   // 输出目录
	Strategy       Strategy // rf / erf
	Smoothing      bool     // 输出前做5x5中值平滑
	Force          bool     // 已有输出时强制重算
}

// 批处理中单个文件的处理结果
type FileReport struct {
	Input   string `csv:"input"`
	Output  string `csv:"output"`
	Skipped bool   `csv:"skipped"`
	Error   string `csv:"error"`
}

func (r FileReport) Failed() bool {
	return r.Error != "" && !r.Skipped
}

// 一次批处理的汇总结果
type BatchReport struct {
	Files     []FileReport `csv:"-"`
	Succeeded int          `csv:"succeeded"`
	Skipped   int          `csv:"skipped"`
	Failed    int          `csv:"failed"`
}

func (b *BatchReport) add(r FileReport) {
	b.Files = append(b.Files, r)
	switch {
	case r.Skipped: // 含非栅格文件的不支持跳过，Error中留痕
		b.Skipped++
	case r.Failed():
		b.Failed++
	default:
		b.Succeeded++
	}
}
