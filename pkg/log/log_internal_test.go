package log

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yeisme/pdfvault/pkg/configs"
)

func TestNewLoggerJSON(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	var buf bytes.Buffer

	l := newLogger(configs.LogConfig{Level: "warn", Format: configs.LogFormatJSON}, false, &buf)

	l.Info().Msg("dropped")
	l.Warn().Msg("kept")

	out := buf.String()
	if bytes.Contains(buf.Bytes(), []byte("dropped")) {
		t.Errorf("Expected info to be filtered, got %s", out)
	}

	if !bytes.Contains(buf.Bytes(), []byte(`"service":"pdfvault"`)) || !bytes.Contains(buf.Bytes(), []byte(`"message":"kept"`)) {
		t.Errorf("Unexpected json output %s", out)
	}
}

func TestNewLoggerDebugOverridesLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	var buf bytes.Buffer

	l := newLogger(configs.LogConfig{Level: "error", Format: configs.LogFormatJSON}, true, &buf)
	l.Debug().Msg("visible")

	if !bytes.Contains(buf.Bytes(), []byte("visible")) {
		t.Errorf("Expected debug output, got %s", buf.String())
	}
}
