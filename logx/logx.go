// Package logx provides the leveled, process-wide logger used across lsnet.
// It wraps zap with package-level Infof/Warnf/Debugf/Errorf helpers backed
// by a single shared logger, selected by the LOG_LEVEL env var.
package logx

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevelEnv is the environment variable that selects the log level.
const LogLevelEnv = "LOG_LEVEL"

// FileLoggerEnv, when set, redirects logs to a rotated file at that path
// instead of stdout, using lumberjack for rotation.
const FileLoggerEnv = "LOG_FILE"

var (
	sugar   *zap.SugaredLogger
	enabled = true
)

func init() {
	level := zapcore.InfoLevel
	switch os.Getenv(LogLevelEnv) {
	case "NONE":
		level = zapcore.Level(99) // effectively disables all leveled output
	case "WARN":
		level = zapcore.WarnLevel
	case "INFO":
		level = zapcore.InfoLevel
	case "DEBUG":
		level = zapcore.DebugLevel
	case "":
		// default to INFO
	default:
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	var ws zapcore.WriteSyncer
	if path := os.Getenv(FileLoggerEnv); path != "" {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   path,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		})
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder // no ANSI color in file output
	} else {
		ws = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, zap.NewAtomicLevelAt(level))
	sugar = zap.New(core).Sugar()
}

// SetEnable toggles whether Debugf, Infof and Warnf have any effect.
// Errorf and Fatalf always log.
func SetEnable(on bool) {
	enabled = on
}

// Debugf logs a debug-level message.
func Debugf(format string, args ...any) {
	if !enabled {
		return
	}
	sugar.Debugf(format, args...)
}

// Infof logs an info-level message.
func Infof(format string, args ...any) {
	if !enabled {
		return
	}
	sugar.Infof(format, args...)
}

// Warnf logs a warn-level message.
func Warnf(format string, args ...any) {
	if !enabled {
		return
	}
	sugar.Warnf(format, args...)
}

// Errorf logs an error-level message without terminating the process.
// Nothing in a node's error handling is grounds for killing the whole
// process over a single bad neighbor or peer.
func Errorf(format string, args ...any) {
	sugar.Errorf(format, args...)
}

// Fatalf logs and terminates the process. Reserved for unrecoverable
// startup failures such as a socket bind error.
func Fatalf(format string, args ...any) {
	sugar.Fatalf(format, args...)
}
