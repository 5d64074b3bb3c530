package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"snaketests_backend/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetMode(t *testing.T) {
	tests := []struct {
		mode string
		want zap.AtomicLevel
	}{
		{"debug", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"release", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"test", zap.NewAtomicLevelAt(zap.InfoLevel)},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			SetMode(tt.mode)
			if Level() != tt.want.Level() {
				t.Errorf("SetMode(%q) level = %v, want %v", tt.mode, Level(), tt.want.Level())
			}
		})
	}
}

func TestDefaultLoggerIsUsable(t *testing.T) {
	if Log == nil {
		t.Fatal("Log must not be nil before InitLogger")
	}
	Log.Info("noop logger accepts writes")
}

func TestCoreWritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	cfg := &config.Config{}
	cfg.Server.Mode = "release"
	cfg.Log.File = filepath.Join(t.TempDir(), "app.log")
	cfg.Log.MaxSizeMB = 1

	SetMode(cfg.Server.Mode)
	log := zap.New(newCore(cfg, zapcore.AddSync(&console)))
	log.Debug("hidden")
	log.Info("attempt finished", zap.String("result", "r1"))
	if err := log.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if strings.Contains(console.String(), "hidden") {
		t.Error("debug entry written in release mode")
	}
	var entry map[string]any
	if err := json.Unmarshal(console.Bytes(), &entry); err != nil {
		t.Fatalf("console output is not JSON: %v (%q)", err, console.String())
	}
	if entry["msg"] != "attempt finished" || entry["result"] != "r1" {
		t.Errorf("entry = %v", entry)
	}

	data, err := os.ReadFile(cfg.Log.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"result":"r1"`) {
		t.Errorf("file log = %q", data)
	}
}
