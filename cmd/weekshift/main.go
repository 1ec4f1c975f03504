// weekshift 周排班命令行工具
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paiban/weekshift/internal/config"
	"github.com/paiban/weekshift/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// globalFlags 所有子命令共享的参数
type globalFlags struct {
	configFile string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "weekshift",
		Short:         "按员工班次偏好生成一周排班",
		Long:          "weekshift 读取员工偏好表（Name,Mon..Sun，单元格为 morning>evening 形式的排序），逐日贪心生成一周排班。",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(logger.Config{
				Level:  flags.logLevel,
				Format: "console",
				Output: "stderr",
			})
		},
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", os.Getenv(config.FileEnv), "YAML 配置文件")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "日志级别 (debug/info/warn/error)")

	root.AddCommand(
		newPlanCmd(flags),
		newAuditCmd(flags),
		newTemplateCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "weekshift %s\nBuild: %s (%s)\n", Version, BuildTime, GitCommit)
		},
	}
}
