package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/yeisme/pdfvault/pkg/configs"
	"github.com/yeisme/pdfvault/pkg/internal/storage"
)

// openStorage 打开数据库与上传目录并放入命令的 context，命令行不需要消息队列.
func openStorage(cmd *cobra.Command, _ []string) error {
	cfg := *configs.GetConfig()
	cfg.MQ.Enabled = false

	mgr, err := storage.Init(cmd.Context(), &cfg)
	if err != nil {
		return err
	}

	cmd.SetContext(storage.WithManager(cmd.Context(), mgr))

	return nil
}

// closeStorage 关闭 openStorage 打开的资源.
func closeStorage(cmd *cobra.Command, _ []string) error {
	mgr := storage.GetManagerFromContext(cmd.Context())
	if mgr == nil {
		return nil
	}

	return mgr.Close()
}

// managerFrom 取出 openStorage 注入的存储聚合.
func managerFrom(cmd *cobra.Command) (*storage.Manager, error) {
	mgr := storage.GetManagerFromContext(cmd.Context())
	if mgr == nil {
		return nil, errors.New("storage not initialized")
	}

	return mgr, nil
}
