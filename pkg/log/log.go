// Package log 提供基于 zerolog 的日志工具，支持 stderr 输出（console 或 json）和文件输出（lumberjack 轮转）.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yeisme/pdfvault/pkg/configs"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init 按配置初始化全局 logger，仅第一次调用生效.
func Init(cfg configs.LogConfig, debug bool) {
	initOnce.Do(func() {
		logger = newLogger(cfg, debug, os.Stderr)
		log.Logger = logger
	})
}

// newLogger 组装 logger：stderr 必选，文件输出可选.
func newLogger(cfg configs.LogConfig, debug bool, stderr io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		if cfg.Level != "" {
			fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", cfg.Level)
		}

		lvl = zerolog.InfoLevel
	}

	if debug {
		lvl = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(lvl)

	writers := []io.Writer{stderr}
	if cfg.Format != configs.LogFormatJSON {
		writers[0] = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = stderr
			w.TimeFormat = time.DateTime
		})
	}

	if cfg.EnableFile {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().
		Timestamp().
		Str("service", configs.AppName)
	if debug {
		ctx = ctx.Caller()
	}

	return ctx.Logger()
}

// SetLevel 运行期调整全局日志级别，用于配置热重载.
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zerolog.SetGlobalLevel(lvl)

	return nil
}

// Logger 返回全局 logger. 未调用 Init 时按默认配置初始化.
func Logger() *zerolog.Logger {
	Init(configs.LogConfig{Level: configs.DefaultLogLevel}, false)

	return &logger
}

// GinWriter 把 gin 写出的文本行转发为 zerolog 事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

// NewGinWriter 以固定级别转发 gin 输出.
func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	w.logger.WithLevel(w.level).Str("component", "gin").Msg(msg)

	return len(p), nil
}
