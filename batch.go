package canolib

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/wgdzlh/canolib/log"
	"github.com/wgdzlh/canolib/utils"

	"github.com/gammazero/workerpool"
	"go.uber.org/zap"
)

// 批处理中驱动的单瓦片操作
type batchOp struct {
	name   string // 台账中的操作标识
	prefix string // 派生文件名前缀
	params string // 台账键中的参数串
	force  bool
	run    func(src, out string) error
}

// 遍历输入目录下全部影像，逐张计算指数并写入镜像输出目录。
// 已有产物按文件名与任务台账双重探测跳过；单张失败只记录，不中断批次。
func (g *CanopyToolbox) BatchIndex(inDir, outDir string, formula Formula, force bool, hooks ...func(FileReport)) (rp *BatchReport, err error) {
	if !formula.Valid() {
		err = ErrUnknownFormula
		return
	}
	op := batchOp{
		name:   "index",
		prefix: formula.Prefix(),
		params: "formula=" + string(formula),
		force:  force,
		run: func(src, out string) error {
			return g.computeIndexTo(formula, src, out)
		},
	}
	return g.runBatch(inDir, outDir, op, hooks...)
}

// 遍历输入目录下全部指数影像，逐张fit+predict+write。
// 模板job中的InRaster/OutDir逐文件填充；训练输入的指纹参与台账键，训练数据变化时触发重算。
func (g *CanopyToolbox) BatchClassify(inDir, outDir string, job ClassifyJob, hooks ...func(FileReport)) (rp *BatchReport, err error) {
	if !job.Strategy.Valid() {
		err = ErrUnknownStrategy
		return
	}
	fpTraining, err := FileFingerprint(job.TrainingRaster)
	if err != nil {
		err = ErrInputNotFound
		return
	}
	fpFit, err := FileFingerprint(job.FitRaster)
	if err != nil {
		err = ErrInputNotFound
		return
	}
	params := "strategy=" + string(job.Strategy)
	if job.Smoothing {
		params += ",smoothing"
	}
	params += ",training=" + fpTraining[:8] + ",fit=" + fpFit[:8]
	op := batchOp{
		name:   "classify",
		prefix: job.Strategy.Prefix(),
		params: params,
		force:  job.Force,
		run: func(src, out string) error {
			j := job
			j.InRaster = src
			return g.classifyTo(j, out)
		},
	}
	return g.runBatch(inDir, outDir, op, hooks...)
}

func (g *CanopyToolbox) runBatch(inDir, outDir string, op batchOp, hooks ...func(FileReport)) (rp *BatchReport, err error) {
	st, err := os.Stat(inDir)
	if err != nil || !st.IsDir() {
		log.Error(g.logTag+"input directory not found", zap.String("dir", inDir))
		err = ErrInputNotFound
		return
	}
	// 输出目录创建须幂等，已存在不算错误
	if err = os.MkdirAll(outDir, os.ModePerm); err != nil {
		log.Error(g.logTag+"create output directory failed", zap.String("dir", outDir), zap.Error(err))
		err = ErrIOFailure
		return
	}
	var ledger *JobLedger
	if g.cfg.LedgerPath != "" {
		var e error
		// 台账打开失败时退化为纯文件名探测，不阻塞批次
		if ledger, e = OpenLedger(g.cfg.LedgerPath); e != nil {
			log.Warn(g.logTag+"open job ledger failed, fallback to name probing", zap.Error(e))
		} else {
			defer ledger.Close()
		}
	}

	rp = &BatchReport{}
	var (
		mu sync.Mutex
		wp = workerpool.New(g.cfg.workers())
	)
	// 汇总与回调在同一把锁内，回调对调用方表现为串行
	report := func(r FileReport) {
		mu.Lock()
		defer mu.Unlock()
		rp.add(r)
		for _, h := range hooks {
			h(r)
		}
	}
	log.Info(g.logTag+"batch start", zap.String("op", op.name), zap.String("in", inDir),
		zap.String("out", outDir), zap.String("params", op.params))

	err = filepath.WalkDir(inDir, func(path string, d fs.DirEntry, e error) error {
		if e != nil {
			return e
		}
		if d.IsDir() {
			return nil
		}
		rel, e := filepath.Rel(inDir, path)
		if e != nil {
			return e
		}
		dstDir := filepath.Join(outDir, filepath.Dir(rel))
		if e = os.MkdirAll(dstDir, os.ModePerm); e != nil {
			return e
		}
		if !utils.IsTif(path) {
			log.Warn(g.logTag+"skip non-raster file", zap.String("file", path))
			report(FileReport{Input: path, Skipped: true, Error: ErrUnsupportedFormat.Error()})
			return nil
		}
		out := filepath.Join(dstDir, utils.DerivedName(op.prefix, path))
		if skip := g.shouldSkip(ledger, op, path, out); skip {
			report(FileReport{Input: path, Output: out, Skipped: true})
			return nil
		}
		src := path
		wp.Submit(func() {
			r := FileReport{Input: src, Output: out}
			if e := op.run(src, out); e != nil {
				log.Error(g.logTag+"batch file failed", zap.String("file", src), zap.Error(e))
				r.Error = e.Error()
			} else if ledger != nil {
				if fp, e := FileFingerprint(src); e == nil {
					if e = ledger.Record(op.name, fp, op.params, out); e != nil {
						log.Warn(g.logTag+"record job failed", zap.Error(e))
					}
				}
			}
			report(r)
		})
		return nil
	})
	wp.StopWait()
	if err != nil {
		log.Error(g.logTag+"batch walk failed", zap.Error(err))
		err = ErrIOFailure
		return
	}
	log.Info(g.logTag+"batch done", zap.String("op", op.name), zap.Int("succeeded", rp.Succeeded),
		zap.Int("skipped", rp.Skipped), zap.Int("failed", rp.Failed))
	return
}

// 已有产物且（无台账或台账确认同指纹同参数已完成）时跳过；force则总是重算
func (g *CanopyToolbox) shouldSkip(ledger *JobLedger, op batchOp, src, out string) bool {
	if op.force {
		return false
	}
	if _, err := os.Stat(out); err != nil {
		return false
	}
	if ledger == nil {
		return true
	}
	fp, err := FileFingerprint(src)
	if err != nil {
		return true
	}
	done, err := ledger.Done(op.name, fp, op.params)
	if err != nil {
		return true
	}
	return done
}
