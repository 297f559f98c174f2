package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/pdfvault/pkg/configs"
	mq "github.com/yeisme/pdfvault/pkg/internal/storage/mq"
)

var (
	mqCmd = &cobra.Command{
		Use:   "mq",
		Short: "Message queue related commands",
	}

	// 列出可用的后端，当前配置选中的后端以 * 标记.
	mqListCmd = &cobra.Command{
		Use:     "ls",
		Short:   "list all registered mq types",
		Aliases: []string{"list"},
		Run: func(cmd *cobra.Command, args []string) {
			cfg := configs.GetConfig().MQ

			state := "disabled"
			if cfg.Enabled {
				state = "enabled"
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered mq types (events %s):\n", state)

			for _, t := range mq.GetRegisteredMQTypes() {
				mark := " "
				if t == cfg.Type {
					mark = "*"
				}

				fmt.Fprintf(cmd.OutOrStdout(), " %s %s\n", mark, t)
			}
		},
	}
)

// registerMQCommands 注册 MQ 相关命令.
func registerMQCommands() {
	rootCmd.AddCommand(mqCmd)
	mqCmd.AddCommand(mqListCmd)
}
