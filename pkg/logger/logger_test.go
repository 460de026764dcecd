package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"eduverse_backend/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	cases := []struct {
		level string
		mode  string
		want  zapcore.Level
	}{
		{"warn", "release", zap.WarnLevel},
		{"error", "release", zap.ErrorLevel},
		{"bogus", "release", zap.InfoLevel},
		{"warn", "debug", zap.DebugLevel},
	}
	for _, tc := range cases {
		cfg := &config.Config{Log: config.LogConfig{Level: tc.level}, Server: config.ServerConfig{Mode: tc.mode}}
		SetLevel(cfg)
		if got := level.Level(); got != tc.want {
			t.Fatalf("level %q mode %q: got %v, want %v", tc.level, tc.mode, got, tc.want)
		}
	}
}

func TestInitLoggerWritesJSONFile(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()

	file := filepath.Join(t.TempDir(), "app.log")
	InitLogger(&config.Config{
		Log:    config.LogConfig{Level: "info", File: file, MaxSize: 1},
		Server: config.ServerConfig{Mode: "release"},
	})
	Log.Info("course completed", zap.String("course_id", "c1"))
	Log.Debug("hidden")
	Log.Sync()

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"course_id":"c1"`) || strings.Contains(out, "hidden") {
		t.Fatalf("unexpected log output %s", out)
	}
}
