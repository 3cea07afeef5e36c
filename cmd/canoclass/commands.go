package main

import (
	"fmt"
	"os"

	"github.com/wgdzlh/canolib"

	"github.com/gocarina/gocsv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	flagFormula   string
	flagStrategy  string
	flagField     string
	flagTraining  string
	flagFitRaster string
	flagSmoothing bool
	flagForce     bool
	flagReport    string
)

var indexCmd = &cobra.Command{
	Use:   "index <src.tif> <outdir>",
	Short: "计算单张影像的植被指数",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := newToolbox()
		out, skipped, err := g.ComputeIndex(canolib.Formula(flagFormula), args[0], args[1], flagForce)
		if err != nil {
			return err
		}
		if skipped {
			fmt.Printf("skipped: %s\n", out)
		} else {
			fmt.Println(out)
		}
		return nil
	},
}

var trainingCmd = &cobra.Command{
	Use:   "training <vector> <ref.tif> <out.tif>",
	Short: "将训练样本矢量烧录为标签栅格",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := newToolbox()
		if err := g.RasterizeTraining(args[0], flagField, args[1], args[2]); err != nil {
			return err
		}
		fmt.Println(args[2])
		return nil
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify <in.tif> <outdir>",
	Short: "对单张指数影像做监督分类",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := newToolbox()
		out, skipped, err := g.Classify(canolib.ClassifyJob{
			TrainingRaster: flagTraining,
			FitRaster:      flagFitRaster,
			InRaster:       args[0],
			OutDir:         args[1],
			Strategy:       canolib.Strategy(flagStrategy),
			Smoothing:      flagSmoothing,
			Force:          flagForce,
		})
		if err != nil {
			return err
		}
		if skipped {
			fmt.Printf("skipped: %s\n", out)
		} else {
			fmt.Println(out)
		}
		return nil
	},
}

var accuracyCmd = &cobra.Command{
	Use:   "accuracy <classified.tif> <reference.tif>",
	Short: "以参考标签栅格评估分类精度",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := newToolbox()
		acc, err := g.AssessAccuracy(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("overall: %.4f\nkappa:   %.4f\n", acc.Overall, acc.Kappa)
		return nil
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "对目录下全部影像做批处理",
}

var batchIndexCmd = &cobra.Command{
	Use:   "index <indir> <outdir>",
	Short: "批量计算植被指数",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := newToolbox()
		bar := newBar("index")
		rp, err := g.BatchIndex(args[0], args[1], canolib.Formula(flagFormula), flagForce,
			func(canolib.FileReport) { _ = bar.Add(1) })
		if err != nil {
			return err
		}
		return finishBatch(rp)
	},
}

var batchClassifyCmd = &cobra.Command{
	Use:   "classify <indir> <outdir>",
	Short: "批量监督分类",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := newToolbox()
		bar := newBar("classify")
		rp, err := g.BatchClassify(args[0], args[1], canolib.ClassifyJob{
			TrainingRaster: flagTraining,
			FitRaster:      flagFitRaster,
			Strategy:       canolib.Strategy(flagStrategy),
			Smoothing:      flagSmoothing,
			Force:          flagForce,
		}, func(canolib.FileReport) { _ = bar.Add(1) })
		if err != nil {
			return err
		}
		return finishBatch(rp)
	},
}

func init() {
	for _, c := range []*cobra.Command{indexCmd, batchIndexCmd} {
		c.Flags().StringVar(&flagFormula, "formula", "arvi", "指数公式: arvi|vari|vdvi")
	}
	for _, c := range []*cobra.Command{classifyCmd, batchClassifyCmd} {
		c.Flags().StringVar(&flagStrategy, "strategy", "rf", "分类器: rf|erf")
		c.Flags().StringVar(&flagTraining, "training", "", "训练标签栅格")
		c.Flags().StringVar(&flagFitRaster, "fit", "", "训练对应的特征栅格")
		c.Flags().BoolVar(&flagSmoothing, "smoothing", true, "输出前做中值平滑")
		_ = c.MarkFlagRequired("training")
		_ = c.MarkFlagRequired("fit")
	}
	trainingCmd.Flags().StringVar(&flagField, "field", "", "类别属性字段（为空则统一烧1）")
	for _, c := range []*cobra.Command{indexCmd, classifyCmd, batchIndexCmd, batchClassifyCmd} {
		c.Flags().BoolVar(&flagForce, "force", false, "已有输出时强制重算")
	}
	for _, c := range []*cobra.Command{batchIndexCmd, batchClassifyCmd} {
		c.Flags().StringVar(&flagReport, "report", "", "批处理结果CSV输出路径")
	}
}

func newBar(op string) *progressbar.ProgressBar {
	return progressbar.Default(-1, op)
}

func finishBatch(rp *canolib.BatchReport) error {
	fmt.Printf("\nsucceeded: %d, skipped: %d, failed: %d\n", rp.Succeeded, rp.Skipped, rp.Failed)
	if flagReport != "" {
		f, err := os.Create(flagReport)
		if err != nil {
			return err
		}
		defer f.Close()
		if err = gocsv.MarshalFile(&rp.Files, f); err != nil {
			return err
		}
	}
	if rp.Failed > 0 {
		return fmt.Errorf("%d file(s) failed", rp.Failed)
	}
	return nil
}
