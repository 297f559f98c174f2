package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled  bool   `mapstructure:"enabled"` // 总开关
	Producer string `mapstructure:"producer"`
	// PDFStored 上传并写入数据库后发布 pv.pdf.stored，供后续解析流程（坐标提取等）消费
	PDFStored bool `mapstructure:"pdf_stored"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)
	v.SetDefault("events.producer", AppName)
	v.SetDefault("events.pdf_stored", true)
}
