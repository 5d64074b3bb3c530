package logger

import (
	"os"
	"snaketests_backend/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 在 InitLogger 之前为 Nop，测试可以直接使用
var Log = zap.NewNop()

var level = zap.NewAtomicLevelAt(zap.InfoLevel)

func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.MillisDurationEncoder
	return ec
}

// InitLogger 控制台 + 滚动文件双输出，两者共享同一个可热更新的级别
func InitLogger(cfg *config.Config) {
	SetMode(cfg.Server.Mode)
	Log = zap.New(newCore(cfg, zapcore.AddSync(os.Stdout)),
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.Fields(zap.String("mode", cfg.Server.Mode)),
	)
}

func newCore(cfg *config.Config, console zapcore.WriteSyncer) zapcore.Core {
	ec := encoderConfig()

	// 开发时控制台看彩色文本，其余模式输出 JSON 便于采集
	var consoleEncoder zapcore.Encoder
	if cfg.Server.Mode == "debug" {
		dev := ec
		dev.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleEncoder = zapcore.NewConsoleEncoder(dev)
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(ec)
	}
	cores := []zapcore.Core{zapcore.NewCore(consoleEncoder, console, level)}

	if cfg.Log.File != "" {
		file := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(ec), file, level))
	}
	return zapcore.NewTee(cores...)
}

// SetMode 按运行模式调整日志级别，配置热更新时调用
func SetMode(mode string) {
	if mode == "debug" {
		level.SetLevel(zap.DebugLevel)
		return
	}
	level.SetLevel(zap.InfoLevel)
}

func Level() zapcore.Level {
	return level.Level()
}
