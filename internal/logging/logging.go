package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileName     = "bot.log"
	maxSizeMB       = 5
	maxBackups      = 10
	loggerName      = "chat_bot"
	timestampLayout = "2006-01-02 15:04:05"
)

// New builds the process-wide logger: one sink to stdout and one to a
// size-rotated file under dir. Constructed once in main before the
// receive loop starts and injected into every component; torn down only
// at process exit via the returned sync func.
func New(dir string, debug bool) (*zap.SugaredLogger, func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timestampLayout)
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.ConsoleSeparator = " | "
	enc := zapcore.NewConsoleEncoder(encCfg)

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	fileSink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(dir, logFileName),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	})
	consoleSink := zapcore.Lock(os.Stdout)

	core := zapcore.NewTee(
		zapcore.NewCore(enc, fileSink, level),
		zapcore.NewCore(enc, consoleSink, level),
	)

	logger := zap.New(core).Named(loggerName)
	sugar := logger.Sugar()
	return sugar, func() { _ = logger.Sync() }, nil
}
