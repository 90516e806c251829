package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Field is a typed key/value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field         { return Field{Key: key, Value: value} }
func Int(key string, value int) Field        { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field    { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field      { return Field{Key: key, Value: value} }
func Error(err error) Field                  { return Field{Key: "error", Value: err} }
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger wraps zerolog with structured fields and an optional collector
// that keeps the most recent records for the diagnostics endpoint.
type Logger struct {
	zl        zerolog.Logger
	collector *Collector
}

type Option func(*options)

type options struct {
	level     Level
	pretty    bool
	writer    io.Writer
	collector *Collector
}

func WithLevel(level Level) Option {
	return func(o *options) { o.level = level }
}

func WithPretty(pretty bool) Option {
	return func(o *options) { o.pretty = pretty }
}

func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writer = w }
}

func WithCollector(c *Collector) Option {
	return func(o *options) { o.collector = c }
}

func New(opts ...Option) *Logger {
	o := &options{
		level:  LevelInfo,
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}

	var w io.Writer = o.writer
	if o.pretty {
		w = zerolog.ConsoleWriter{Out: o.writer, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(w).
		Level(parseLevel(o.level)).
		With().
		Timestamp().
		Caller().
		Logger()

	zerolog.CallerMarshalFunc = shortCaller

	return &Logger{zl: zl, collector: o.collector}
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func parseLevel(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// shortCaller trims the caller path to the part inside the module.
func shortCaller(pc uintptr, file string, line int) string {
	if idx := strings.Index(file, "CoinSight/"); idx >= 0 {
		file = file[idx+len("CoinSight/"):]
	}
	return fmt.Sprintf("%s:%d", file, line)
}

func (l *Logger) With(fields ...Field) *Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &Logger{zl: ctx.Logger(), collector: l.collector}
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.emit(l.zl.Debug(), LevelDebug, msg, fields)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.emit(l.zl.Info(), LevelInfo, msg, fields)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.emit(l.zl.Warn(), LevelWarn, msg, fields)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.emit(l.zl.Error(), LevelError, msg, fields)
}

func (l *Logger) Fatal(msg string, fields ...Field) {
	l.emit(l.zl.Fatal(), LevelError, msg, fields)
}

func (l *Logger) emit(ev *zerolog.Event, level Level, msg string, fields []Field) {
	for _, f := range fields {
		if err, ok := f.Value.(error); ok && f.Key == "error" {
			ev = ev.Err(err)
			continue
		}
		ev = ev.Interface(f.Key, f.Value)
	}
	if l.collector != nil {
		l.collector.Record(level, msg, fields)
	}
	ev.Msg(msg)
}
