// Package cmd contains the command line applications for the project.
package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/yeisme/pdfvault/pkg/configs"
	"github.com/yeisme/pdfvault/pkg/log"
)

var (
	// configPath 配置文件或所在目录.
	configPath string
	// debug 打印更多调试信息.
	debug bool

	rootCmd = &cobra.Command{
		Use:           configs.AppName,
		Short:         "PDF upload service with SQLite metadata storage",
		Version:       configs.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			cfg := configs.GetConfig()
			log.Init(cfg.Log, cfg.Server.Debug || debug)

			return nil
		},
	}
)

func init() {
	cobra.EnableTraverseRunHooks = true

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")

	registerServeCommands()
	registerDBCommands()
	registerFilesCommands()
	registerMQCommands()
	registerConfigsCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteArgs 以指定参数运行命令，输出写入 out.
func ExecuteArgs(ctx context.Context, args []string, out io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	return rootCmd.ExecuteContext(ctx)
}
