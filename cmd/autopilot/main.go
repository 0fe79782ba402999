// Package main 是 Autopilot 服务的命令行入口
//
// 子命令：
//   - serve   HTTP API 与公开函数端点
//   - worker  消费领域事件，清理统计缓存
//   - migrate 数据库迁移
//   - config  查看生效配置
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// 版本信息
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPaths []string
	envFiles    []string
)

var rootCmd = &cobra.Command{
	Use:           "autopilot",
	Short:         "Social Autopilot backend",
	Long:          `Autopilot serves the campaign, lead capture and post generation APIs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime),
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&configPaths, "config", "c", nil, "config file(s), later files override earlier ones")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, ".env file(s) loaded before reading config")

	rootCmd.AddCommand(newServeCmd(), newWorkerCmd(), newMigrateCmd(), newConfigCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
