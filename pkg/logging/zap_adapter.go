package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapConfig defines Zap-specific configuration
type ZapConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "console", "json"
	Output string `yaml:"output"` // "stdout", "stderr"
	Caller bool   `yaml:"caller"` // Include caller information
}

// DefaultZapConfig returns a sensible default Zap configuration
func DefaultZapConfig() ZapConfig {
	return ZapConfig{
		Level:  "info",
		Format: "console",
		Output: "stderr",
		Caller: false,
	}
}

// ZapAdapter provides a Zap backend implementation that hides zap types from users
type ZapAdapter struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

// NewZapAdapter creates a new Zap backend adapter
func NewZapAdapter(config ZapConfig) (*ZapAdapter, error) {
	zapLogger, err := createZapLogger(config)
	if err != nil {
		return nil, err
	}

	return &ZapAdapter{
		logger: zapLogger,
		sugar:  zapLogger.Sugar(),
	}, nil
}

// LogLevelf implements simple logging interface
func (z *ZapAdapter) LogLevelf(level int, format string, args ...interface{}) {
	switch level {
	case LogLevelDebug:
		z.sugar.Debugf(format, args...)
	case LogLevelInfo:
		z.sugar.Infof(format, args...)
	case LogLevelWarn:
		z.sugar.Warnf(format, args...)
	case LogLevelError:
		z.sugar.Errorf(format, args...)
	}
}

// Debugf implements simple logging interface
func (z *ZapAdapter) Debugf(format string, args ...interface{}) {
	z.sugar.Debugf(format, args...)
}

// Infof implements simple logging interface
func (z *ZapAdapter) Infof(format string, args ...interface{}) {
	z.sugar.Infof(format, args...)
}

// Warnf implements simple logging interface
func (z *ZapAdapter) Warnf(format string, args ...interface{}) {
	z.sugar.Warnf(format, args...)
}

// Errorf implements simple logging interface
func (z *ZapAdapter) Errorf(format string, args ...interface{}) {
	z.sugar.Errorf(format, args...)
}

// Funcs exposes the adapter as LogFuncs for prefixed subsystem loggers
func (z *ZapAdapter) Funcs() LogFuncs {
	return LogFuncs{
		LogLevelf: z.LogLevelf,
		Debugf:    z.Debugf,
		Infof:  z.Infof,
		Warnf:  z.Warnf,
		Errorf: z.Errorf,
	}
}

// Sync flushes any buffered log entries
func (z *ZapAdapter) Sync() error {
	return z.logger.Sync()
}

// createZapLogger creates a zap logger from configuration
func createZapLogger(config ZapConfig) (*zap.Logger, error) {
	level, err := getLevelFromString(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	var encoder zapcore.Encoder
	switch config.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default: // "console" or anything else
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	var writeSyncer zapcore.WriteSyncer
	switch config.Output {
	case "stdout":
		writeSyncer = zapcore.Lock(zapcore.AddSync(os.Stdout))
	default: // "stderr" or anything else
		writeSyncer = zapcore.Lock(zapcore.AddSync(os.Stderr))
	}

	core := zapcore.NewCore(encoder, writeSyncer, level)

	opts := []zap.Option{}
	if config.Caller {
		opts = append(opts, zap.AddCaller())
	}

	return zap.New(core, opts...), nil
}

func getLevelFromString(levelStr string) (zapcore.Level, error) {
	switch levelStr {
	case "debug":
		return zap.DebugLevel, nil
	case "info":
		return zap.InfoLevel, nil
	case "warn":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	default:
		return -1, fmt.Errorf("invalid log level: %s", levelStr)
	}
}
