package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shiftgrid/config"
	"shiftgrid/internal/service"
	applogger "shiftgrid/pkg/logger"
)

// cliEnv 各子命令共享的运行环境，在 PersistentPreRunE 中初始化
type cliEnv struct {
	configPath string
	verbose    bool

	cfg      *config.Config
	settings service.Settings
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	env := &cliEnv{}

	root := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Registration-to-schedule tooling",
		Long:          "读取员工登记表，输出可用性、提示词、排班网格与导出文件。",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if env.logger != nil {
				_ = env.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&env.configPath, "config", "c", "", "配置文件路径（默认查找 ./config/config.yaml）")
	root.PersistentFlags().BoolVarP(&env.verbose, "verbose", "v", false, "输出调试日志到 stderr")

	root.AddCommand(
		newAvailabilityCmd(env),
		newParseCmd(env),
		newPromptCmd(env),
		newGenerateCmd(env),
		newGridCmd(env),
		newMigrateCmd(env),
		newHashPasswordCmd(),
	)
	return root
}

func (e *cliEnv) init() error {
	e.logger = applogger.NewCLILogger(e.verbose)

	cfg, err := config.LoadTooling(e.configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	settings, err := service.NewSettings(cfg)
	if err != nil {
		return fmt.Errorf("排班配置无效: %w", err)
	}
	e.cfg = cfg
	e.settings = settings
	return nil
}
