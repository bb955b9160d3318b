// Package logging builds the process logger. Output goes to a rotated file
// under the base directory so stdout stays free for MCP and CLI output.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hpungsan/yada/internal/config"
)

// FileName is the log file inside baseDir/logs.
const FileName = "yada.log"

// New returns a JSON logger writing to baseDir/logs/yada.log and a function
// that flushes and closes it.
func New(baseDir string, cfg *config.Config) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	logDir := filepath.Join(baseDir, "logs")
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	sink := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, FileName),
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: 3,
		MaxAge:     28,
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(sink), level)

	logger := zap.New(core, zap.AddCaller())
	closeFn := func() {
		_ = logger.Sync()
		_ = sink.Close()
	}
	return logger, closeFn, nil
}
