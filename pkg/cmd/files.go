package cmd

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/pdfvault/pkg/internal/model"
)

var (
	filesCmd = &cobra.Command{
		Use:                "files",
		Short:              "inspect stored PDF records",
		PersistentPreRunE:  openStorage,
		PersistentPostRunE: closeStorage,
	}

	filesListCmd = &cobra.Command{
		Use:     "ls",
		Short:   "list every record, newest first",
		Aliases: []string{"list"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := managerFrom(cmd)
			if err != nil {
				return err
			}

			records, err := mgr.DB.ListAll(cmd.Context())
			if err != nil {
				return err
			}

			if records == nil {
				records = []model.FileRecord{}
			}

			return printJSON(cmd, records)
		},
	}

	filesGetCmd = &cobra.Command{
		Use:   "get <uuid>",
		Short: "show the record with the given uuid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := managerFrom(cmd)
			if err != nil {
				return err
			}

			record, found, err := mgr.DB.FindByUUID(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !found {
				return fmt.Errorf("%s: not found", args[0])
			}

			return printJSON(cmd, record)
		},
	}
)

func printJSON(cmd *cobra.Command, v any) error {
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(b))

	return nil
}

// registerFilesCommands 注册记录查询命令.
func registerFilesCommands() {
	rootCmd.AddCommand(filesCmd)

	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesGetCmd)
}
