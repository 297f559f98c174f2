package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/pdfvault/pkg/internal/storage/db"
)

var (
	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "Database related commands",
	}

	dbListCmd = &cobra.Command{
		Use:     "ls",
		Short:   "list all registered database types",
		Aliases: []string{"list"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered database types:")

			for _, dbType := range db.GetRegisteredDBTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), " - "+string(dbType))
			}
		},
	}

	dbInitCmd = &cobra.Command{
		Use:                "init",
		Short:              "create the database file and table if missing",
		PersistentPreRunE:  openStorage,
		PersistentPostRunE: closeStorage,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := managerFrom(cmd)
			if err != nil {
				return err
			}

			// storage.Init 已经建表，这里再检查一次连接
			if err := mgr.DB.Ping(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "schema ready:", mgr.DB.Path())

			return nil
		},
	}
)

// registerDBCommands 注册数据库相关命令.
func registerDBCommands() {
	rootCmd.AddCommand(dbCmd)

	dbCmd.AddCommand(dbListCmd)
	dbCmd.AddCommand(dbInitCmd)
}
