package configs

import (
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	DefaultUploadDir                = "uploads" // 上传文件存放目录（扁平结构）
	DefaultUploadMaxSizeMB          = 100       // 单个文件大小上限（MB），0 表示不限制
	DefaultUploadMaxMultipartMemory = 32        // multipart 解析时内存缓冲上限（MB）
)

// UploadConfig 上传相关配置.
type UploadConfig struct {
	Dir                  string `mapstructure:"dir"                     rule:"required"`
	MaxSizeMB            int64  `mapstructure:"max_size_mb"             rule:"min=0"`
	MaxMultipartMemoryMB int64  `mapstructure:"max_multipart_memory_mb" rule:"min=1"`
}

// GetDir 返回上传目录的绝对路径.
func (c *UploadConfig) GetDir() string {
	if abs, err := filepath.Abs(c.Dir); err == nil {
		return abs
	}

	return c.Dir
}

// GetMaxSize 返回字节为单位的文件大小上限.
func (c *UploadConfig) GetMaxSize() int64 {
	return c.MaxSizeMB << 20
}

// GetMaxMultipartMemory 返回字节为单位的 multipart 内存上限.
func (c *UploadConfig) GetMaxMultipartMemory() int64 {
	return c.MaxMultipartMemoryMB << 20
}

func (c *UploadConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upload.dir", DefaultUploadDir)
	v.SetDefault("upload.max_size_mb", DefaultUploadMaxSizeMB)
	v.SetDefault("upload.max_multipart_memory_mb", DefaultUploadMaxMultipartMemory)
}
