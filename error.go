package canolib

import "errors"

var (
	// 输入文件/目录/矢量不存在
	ErrInputNotFound = errors.New("input not found")
	// 参与同一运算的栅格网格不一致（尺寸/仿射变换/投影）
	ErrAlignmentMismatch = errors.New("raster alignment mismatch")
	// 训练标签中不足两个类别
	ErrInsufficientClasses = errors.New("insufficient training classes")
	// 输出写入失败
	ErrIOFailure = errors.New("raster io failure")
	// 非预期格式的栅格/矢量文件
	ErrUnsupportedFormat = errors.New("unsupported file format")

	ErrUnknownFormula  = errors.New("unknown index formula")
	ErrUnknownStrategy = errors.New("unknown classifier strategy")
	ErrEmptyGrid       = errors.New("empty raster grid")

	ErrFieldMissingTemplate = `矢量文件中缺失【%s】字段`
)
