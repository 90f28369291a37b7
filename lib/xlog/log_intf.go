package xlog

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

func (lvl LogLevel) zapLevel() zapcore.Level {
	switch lvl {
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelDebug:
		fallthrough
	default:
	}
	return zapcore.DebugLevel
}

func (lvl LogLevel) String() string {
	return string(lvl)
}

type LogEncoderType uint8

const (
	JSON LogEncoderType = iota
	PlainText
	_encMax
)

var encoderMap = map[LogEncoderType]func(cfg zapcore.EncoderConfig) zapcore.Encoder{
	JSON:      zapcore.NewJSONEncoder,
	PlainText: zapcore.NewConsoleEncoder,
}

func getEncoderByType(typ LogEncoderType) func(cfg zapcore.EncoderConfig) zapcore.Encoder {
	enc, ok := encoderMap[typ]
	if !ok {
		return zapcore.NewJSONEncoder
	}
	return enc
}

func getOutWriter(w io.Writer) zapcore.WriteSyncer {
	if w == nil {
		return zapcore.Lock(os.Stdout)
	}
	if ws, ok := w.(zapcore.WriteSyncer); ok {
		return ws
	}
	return zapcore.AddSync(w)
}

// XLogger is the wrapper of Uber zap logger.
//
// The red-black tree traces its rebalancing cases through DebugEnabled
// and Debug, so the fields are only built when debug level is on.
type XLogger interface {
	zap() *zap.Logger

	IncreaseLogLevel(level zapcore.Level)
	Level() string
	DebugEnabled() bool
	Sync() error
	Named(name string) XLogger

	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(err error, msg string, fields ...zap.Field)
}
