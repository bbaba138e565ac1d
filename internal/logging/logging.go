// Package logging wires the run log. Every component receives a *zap.Logger
// instead of printing to the process streams, so console output stays free
// for operator interaction.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"edgesearch/internal/appdirs"
)

// New builds a logger that records everything to the file at path and echoes
// warnings and errors to stderr. With verbose set the stderr core drops to
// debug level. The returned close func flushes and releases the file.
func New(path string, verbose bool) (*zap.Logger, func(), error) {
	if err := appdirs.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	consoleLevel := zapcore.WarnLevel
	if verbose {
		consoleLevel = zapcore.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(file), zapcore.DebugLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), consoleLevel),
	)

	logger := zap.New(core)
	closer := func() {
		_ = logger.Sync()
		_ = file.Close()
	}
	return logger, closer, nil
}
