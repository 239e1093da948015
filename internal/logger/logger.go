// Package logger provides the process-wide structured logging singleton
// (C12): zerolog with a console+rotating-file multi-writer.
package logger

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	instance *Logger
	once     sync.Once
)

type Logger struct {
	logger     zerolog.Logger
	mu         sync.RWMutex
	level      zerolog.Level
	outputs    []io.Writer
	fileWriter *lumberjack.Logger
}

type Config struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
	JSONFormat bool
	Caller     bool
}

func Get() *Logger {
	once.Do(func() {
		instance = &Logger{}
		instance.initialize(DefaultConfig())
	})
	return instance
}

func Initialize(cfg Config) {
	Get().initialize(cfg)
}

func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(getDataDir(), "logs", "audioengine.log"),
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
		JSONFormat: false,
		Caller:     true,
	}
}

func (l *Logger) initialize(cfg Config) {
	l.mu.Lock()
	defer l.mu.Unlock()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	l.level = level
	l.outputs = buildWriters(cfg, &l.fileWriter)

	multi := zerolog.MultiLevelWriter(l.outputs...)
	l.logger = zerolog.New(multi).Level(level).With().Timestamp().Logger()
	if cfg.Caller {
		l.logger = l.logger.With().Caller().Logger()
	}
	log.Logger = l.logger
}

// Zerolog builds a standalone zerolog.Logger from cfg, for injection into
// components (loader, cache, engine) that take a zerolog.Logger directly
// rather than going through this package's singleton convenience API.
func Zerolog(cfg Config) zerolog.Logger {
	var fileWriter *lumberjack.Logger
	outputs := buildWriters(cfg, &fileWriter)
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	multi := zerolog.MultiLevelWriter(outputs...)
	logger := zerolog.New(multi).Level(level).With().Timestamp().Logger()
	if cfg.Caller {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

func buildWriters(cfg Config, fileWriter **lumberjack.Logger) []io.Writer {
	var outputs []io.Writer

	if cfg.Console {
		var consoleWriter io.Writer
		if cfg.JSONFormat {
			consoleWriter = os.Stdout
		} else {
			consoleWriter = zerolog.ConsoleWriter{
				Out:        os.Stdout,
				TimeFormat: "15:04:05",
				FormatLevel: func(i interface{}) string {
					return strings.ToUpper(fmt.Sprintf("%-5s", i))
				},
			}
		}
		outputs = append(outputs, consoleWriter)
	}

	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			fmt.Printf("logger: failed to create log directory: %v\n", err)
		}
		*fileWriter = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		outputs = append(outputs, *fileWriter)
	}

	return outputs
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(zerolog.DebugLevel, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(zerolog.InfoLevel, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(zerolog.WarnLevel, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(zerolog.ErrorLevel, msg, fields) }
func (l *Logger) Fatal(msg string, fields ...Field) { l.log(zerolog.FatalLevel, msg, fields) }

func (l *Logger) log(level zerolog.Level, msg string, fields []Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	event := l.logger.WithLevel(level)
	for _, field := range fields {
		event = field.Apply(event)
	}
	event.Msg(msg)
}

func (l *Logger) SetLevel(level string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return err
	}
	l.level = lvl
	l.logger = l.logger.Level(lvl)
	return nil
}

func (l *Logger) GetLevel() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level.String()
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fileWriter != nil {
		return l.fileWriter.Close()
	}
	return nil
}

type Field struct {
	Key   string
	Value interface{}
}

func (f Field) Apply(event *zerolog.Event) *zerolog.Event {
	return event.Interface(f.Key, f.Value)
}

func String(key, value string) Field        { return Field{Key: key, Value: value} }
func Int(key string, value int) Field       { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field   { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field     { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }
func Error(err error) Field                 { return Field{Key: "error", Value: err} }

func Debug(msg string, fields ...Field) { Get().Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { Get().Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { Get().Warn(msg, fields...) }
func ErrorLog(msg string, fields ...Field) { Get().Error(msg, fields...) }
func Fatal(msg string, fields ...Field) { Get().Fatal(msg, fields...) }

func getDataDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "audioengine")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "audioengine")
}

// HTTPMiddleware logs each request's method, path, status and duration.
// internal/transport/http does not use it: its gin router logs the same
// fields through its own gin middleware (requestLogger in server.go).
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		Get().Info("http request",
			String("method", r.Method),
			String("path", r.URL.Path),
			Int("status", wrapped.status),
			Duration("duration", time.Since(start)),
			String("remote_addr", r.RemoteAddr),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}
