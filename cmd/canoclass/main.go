package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/wgdzlh/canolib"
	"github.com/wgdzlh/canolib/log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagWorkspace string
	flagLedger    string
	flagProj      string
	flagWorkers   int
)

func main() {
	defer log.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "canoclass",
	Short:         "NAIP影像植被指数计算与冠层分类工具",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	// .env中的配置仅作为flag缺省值，进程内配置构造一次后不再变化
	_ = godotenv.Load()
	rootCmd.PersistentFlags().StringVar(&flagWorkspace, "workspace", os.Getenv("CANOCLASS_WORKSPACE"), "工作区根目录")
	rootCmd.PersistentFlags().StringVar(&flagLedger, "ledger", os.Getenv("CANOCLASS_LEDGER"), "任务台账sqlite路径（为空则只按文件名探测跳过）")
	rootCmd.PersistentFlags().StringVar(&flagProj, "proj", os.Getenv("CANOCLASS_PROJ"), "上游重投影目标投影，如EPSG:5070")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", envInt("CANOCLASS_WORKERS"), "批处理并行度（缺省为CPU数）")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(trainingCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(accuracyCmd)
	rootCmd.AddCommand(batchCmd)
	batchCmd.AddCommand(batchIndexCmd)
	batchCmd.AddCommand(batchClassifyCmd)
}

func newToolbox() *canolib.CanopyToolbox {
	cfg := canolib.Config{
		OutputProjection: flagProj,
		Workspace:        flagWorkspace,
		LedgerPath:       flagLedger,
		Workers:          flagWorkers,
	}
	return canolib.NewCanopyToolbox(cfg)
}

func envInt(key string) int {
	i, _ := strconv.Atoi(os.Getenv(key))
	return i
}
