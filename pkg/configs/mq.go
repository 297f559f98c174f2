package configs

import (
	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeGoChannel MQType = "gochannel" // 进程内发布订阅，无需外部依赖
	MQTypeNATS      MQType = "nats"

	DefaultMQURL          = "nats://localhost:4222"
	DefaultMaxReconnects  = 5          // 默认最大重连次数.
	DefaultReconnectWait  = 5          // 默认重连等待时间（秒）.
	DefaultMQClientID     = "pdfvault" // 默认客户端ID
	DefaultPingInterval   = 20         // 默认ping间隔 (秒)
	DefaultBufferSize     = 32768      // 默认缓冲区大小 (32KB)
	DefaultChannelBuffer  = 64         // gochannel 输出缓冲
	DefaultDurablePrefix  = "pdfvault"
	DefaultSubjectPrefix  = ""
	DefaultJetStreamOnOff = false
)

// MQConfig 消息队列配置.
type MQConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	Type    MQType            `mapstructure:"type"    rule:"oneof=gochannel nats"`
	Channel MQGoChannelConfig `mapstructure:"channel"`
	NATS    MQNATSConfig      `mapstructure:"nats"`
}

// MQGoChannelConfig 进程内发布订阅配置.
type MQGoChannelConfig struct {
	OutputBuffer int64 `mapstructure:"output_buffer" rule:"min=0"`
	Persistent   bool  `mapstructure:"persistent"`
}

// MQNATSConfig NATS MQ 配置.
type MQNATSConfig struct {
	URL              string   `mapstructure:"url"`
	ClusterURLs      []string `mapstructure:"cluster_urls"`
	User             string   `mapstructure:"user"`
	Password         string   `mapstructure:"password"`
	JWT              string   `mapstructure:"jwt"`
	NKey             string   `mapstructure:"nkey"`
	ClientID         string   `mapstructure:"client_id"`
	MaxReconnects    int      `mapstructure:"max_reconnects" rule:"min=0,max=100"`
	ReconnectWait    int      `mapstructure:"reconnect_wait" rule:"min=1,max=300"`
	PingInterval     int      `mapstructure:"ping_interval"  rule:"min=1,max=300"`
	BufferSize       int      `mapstructure:"buffer_size"    rule:"min=1024,max=1048576"`
	JetStreamEnabled bool     `mapstructure:"jetstream_enabled"`
	AutoProvision    bool     `mapstructure:"jetstream_auto_provision"`
	TrackMsgID       bool     `mapstructure:"jetstream_track_msg_id"`
	DurablePrefix    string   `mapstructure:"jetstream_durable_prefix"`
	SubjectPrefix    string   `mapstructure:"subject_prefix"`
}

// GetMQType 返回当前配置的消息队列类型.
func (c *MQConfig) GetMQType() string {
	return string(c.Type)
}

// setDefaults 设置消息队列配置的默认值.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.enabled", true)
	v.SetDefault("mq.type", MQTypeGoChannel)
	v.SetDefault("mq.channel.output_buffer", DefaultChannelBuffer)
	v.SetDefault("mq.channel.persistent", false)
	v.SetDefault("mq.nats.url", DefaultMQURL)
	v.SetDefault("mq.nats.client_id", DefaultMQClientID)
	v.SetDefault("mq.nats.max_reconnects", DefaultMaxReconnects)
	v.SetDefault("mq.nats.reconnect_wait", DefaultReconnectWait)
	v.SetDefault("mq.nats.ping_interval", DefaultPingInterval)
	v.SetDefault("mq.nats.buffer_size", DefaultBufferSize)
	v.SetDefault("mq.nats.jetstream_enabled", DefaultJetStreamOnOff)
	v.SetDefault("mq.nats.jetstream_auto_provision", true)
	v.SetDefault("mq.nats.jetstream_track_msg_id", false)
	v.SetDefault("mq.nats.jetstream_durable_prefix", DefaultDurablePrefix)
	v.SetDefault("mq.nats.subject_prefix", DefaultSubjectPrefix)
}
