package xlog

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const coreKeyIgnored = ""

type xLogger struct {
	logger              atomic.Pointer[zap.Logger]
	dynamicLevelEnabler zap.AtomicLevel
	encoder             LogEncoderType
}

func (l *xLogger) zap() *zap.Logger {
	return l.logger.Load()
}

// IncreaseLogLevel we can increase or decrease the log level concurrently.
func (l *xLogger) IncreaseLogLevel(level zapcore.Level) {
	l.dynamicLevelEnabler.SetLevel(level)
}

func (l *xLogger) Level() string {
	return l.dynamicLevelEnabler.Level().String()
}

func (l *xLogger) DebugEnabled() bool {
	return l.dynamicLevelEnabler.Enabled(zapcore.DebugLevel)
}

func (l *xLogger) Sync() error {
	return l.logger.Load().Sync()
}

// Named creates a child logger sharing the same level enabler.
func (l *xLogger) Named(name string) XLogger {
	child := &xLogger{
		dynamicLevelEnabler: l.dynamicLevelEnabler,
		encoder:             l.encoder,
	}
	child.logger.Store(l.logger.Load().Named(name))
	return child
}

func (l *xLogger) Debug(msg string, fields ...zap.Field) {
	l.logger.Load().Debug(msg, fields...)
}

func (l *xLogger) Info(msg string, fields ...zap.Field) {
	l.logger.Load().Info(msg, fields...)
}

func (l *xLogger) Warn(msg string, fields ...zap.Field) {
	l.logger.Load().Warn(msg, fields...)
}

func (l *xLogger) Error(err error, msg string, fields ...zap.Field) {
	newFields := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		newFields = append(newFields, zap.String("error", err.Error()))
	}
	newFields = append(newFields, fields...)
	l.logger.Load().Error(msg, newFields...)
}

type loggerCfg struct {
	writer      io.Writer
	encoderType *LogEncoderType
	lvlEncoder  zapcore.LevelEncoder
	tsEncoder   zapcore.TimeEncoder
	level       *zapcore.Level
}

func (cfg *loggerCfg) apply(l *xLogger) {
	if cfg.encoderType != nil {
		l.encoder = *cfg.encoderType
	} else {
		l.encoder = JSON
	}

	if cfg.level != nil {
		l.dynamicLevelEnabler = zap.NewAtomicLevelAt(*cfg.level)
	} else {
		l.dynamicLevelEnabler = zap.NewAtomicLevelAt(getLogLevelOrDefault(os.Getenv("XLOG_LVL")))
	}

	if cfg.lvlEncoder == nil {
		cfg.lvlEncoder = zapcore.CapitalLevelEncoder
	}

	if cfg.tsEncoder == nil {
		cfg.tsEncoder = zapcore.ISO8601TimeEncoder
	}
}

type XLoggerOption func(*loggerCfg) error

func NewXLogger(opts ...XLoggerOption) XLogger {
	cfg := &loggerCfg{}
	for _, o := range opts {
		if err := o(cfg); err != nil {
			panic(err)
		}
	}
	xl := &xLogger{}
	cfg.apply(xl)

	config := zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "lvl",
		EncodeLevel:   cfg.lvlEncoder,
		TimeKey:       "ts",
		EncodeTime:    cfg.tsEncoder,
		CallerKey:     "callAt",
		EncodeCaller:  zapcore.ShortCallerEncoder,
		FunctionKey:   coreKeyIgnored,
		NameKey:       "component",
		EncodeName:    zapcore.FullNameEncoder,
		StacktraceKey: coreKeyIgnored,
	}
	core := zapcore.NewCore(
		getEncoderByType(xl.encoder)(config),
		getOutWriter(cfg.writer),
		xl.dynamicLevelEnabler,
	)
	// Disable zap logger error stack.
	l := zap.New(
		core,
		zap.AddCallerSkip(1),
		zap.AddCaller(),
	)
	xl.logger.Store(l)
	return xl
}

// WithXLoggerWriter redirects the output, stdout by default.
func WithXLoggerWriter(w io.Writer) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if w == nil {
			return errors.New("[xlog] nil writer")
		}
		cfg.writer = w
		return nil
	}
}

func WithXLoggerEncoder(logEnc LogEncoderType) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if logEnc >= _encMax {
			return errors.New("[xlog] unknown xlogger encoder")
		}
		cfg.encoderType = &logEnc
		return nil
	}
}

func WithXLoggerLevel(lvl LogLevel) XLoggerOption {
	return func(cfg *loggerCfg) error {
		_lvl := lvl.zapLevel()
		cfg.level = &_lvl
		return nil
	}
}

func WithXLoggerLevelEncoder(lvlEnc zapcore.LevelEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if lvlEnc == nil {
			lvlEnc = zapcore.CapitalColorLevelEncoder
		}
		cfg.lvlEncoder = lvlEnc
		return nil
	}
}

func WithXLoggerTimeEncoder(tsEnc zapcore.TimeEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if tsEnc == nil {
			tsEnc = zapcore.ISO8601TimeEncoder
		}
		cfg.tsEncoder = tsEnc
		return nil
	}
}

func getLogLevelOrDefault(level string) zapcore.Level {
	if len(strings.TrimSpace(level)) == 0 {
		return zapcore.DebugLevel
	}

	switch strings.ToUpper(level) {
	case LogLevelInfo.String():
		return zapcore.InfoLevel
	case LogLevelWarn.String():
		return zapcore.WarnLevel
	case LogLevelError.String():
		return zapcore.ErrorLevel
	case LogLevelDebug.String():
		fallthrough
	default:
	}
	return zapcore.DebugLevel
}

// ParseLogLevel maps the case-insensitive level name, the unknown name
// falls back to DEBUG.
func ParseLogLevel(level string) LogLevel {
	switch lvl := getLogLevelOrDefault(level); lvl {
	case zapcore.InfoLevel:
		return LogLevelInfo
	case zapcore.WarnLevel:
		return LogLevelWarn
	case zapcore.ErrorLevel:
		return LogLevelError
	default:
	}
	return LogLevelDebug
}
