package canolib

import (
	"sync"

	gdal "github.com/airbusgeo/godal"
)

type CanopyToolbox struct {
	cfg    Config
	logTag string
}

var registerOnce sync.Once

// 初始化冠层分类工具箱，配置构造后不可变
func NewCanopyToolbox(cfg Config) *CanopyToolbox {
	registerOnce.Do(gdal.RegisterAll)
	return &CanopyToolbox{
		cfg:    cfg,
		logTag: "CanopyToolbox:",
	}
}

func (g *CanopyToolbox) Config() Config {
	return g.cfg
}
