package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultSchemaCheckInterval 默认数据库结构巡检间隔.
	DefaultSchemaCheckInterval = time.Minute
)

// JobsConfig 后台任务配置.
type JobsConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	SchemaCheckInterval time.Duration `mapstructure:"schema_check_interval" rule:"min=1s"`
}

func (c *JobsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.schema_check_interval", DefaultSchemaCheckInterval.String())
}
