package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// ANSI color codes
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Gray    = "\033[90m"

	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"
)

// ColoredLogger wraps zap.Logger with component-tagged, optionally colored output.
type ColoredLogger struct {
	*zap.Logger
	enableColors bool
	closer       io.Closer
}

// Component represents different parts of the viewer for color coding
type Component string

const (
	ComponentSource   Component = "SOURCE"
	ComponentParser   Component = "PARSER"
	ComponentPipeline Component = "PIPELINE"
	ComponentViewer   Component = "VIEWER"
	ComponentAPI      Component = "API"
	ComponentGeneral  Component = "GENERAL"
)

func getComponentColor(component Component) string {
	switch component {
	case ComponentSource:
		return BrightBlue
	case ComponentParser:
		return BrightMagenta
	case ComponentPipeline:
		return BrightCyan
	case ComponentViewer:
		return BrightYellow
	case ComponentAPI:
		return BrightGreen
	case ComponentGeneral:
		return Yellow
	default:
		return White
	}
}

func getLevelColor(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return Gray
	case zapcore.InfoLevel:
		return BrightWhite
	case zapcore.WarnLevel:
		return BrightYellow
	case zapcore.ErrorLevel:
		return BrightRed
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return Red
	default:
		return White
	}
}

var levelLetters = map[zapcore.Level]string{
	zapcore.DebugLevel: "D",
	zapcore.InfoLevel:  "I",
	zapcore.WarnLevel:  "W",
	zapcore.ErrorLevel: "E",
}

// coloredConsoleEncoder builds the compact console encoder: HH:MM:SS, one
// letter level, bare caller file name.
func coloredConsoleEncoder(enableColors bool) zapcore.Encoder {
	config := zap.NewDevelopmentEncoderConfig()

	config.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		timeStr := t.Format("15:04:05")
		if enableColors {
			enc.AppendString(Dim + timeStr + Reset)
		} else {
			enc.AppendString(timeStr)
		}
	}

	config.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		levelStr := levelLetters[level]
		if levelStr == "" {
			levelStr = "?"
		}
		if enableColors {
			enc.AppendString(getLevelColor(level) + Bold + levelStr + Reset)
		} else {
			enc.AppendString(levelStr)
		}
	}

	config.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		file := caller.File
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}
		file = strings.TrimSuffix(file, ".go")
		if enableColors {
			enc.AppendString(Dim + file + Reset)
		} else {
			enc.AppendString(file)
		}
	}

	return zapcore.NewConsoleEncoder(config)
}

func jsonEncoder() zapcore.Encoder {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(config)
}

// ParseLevel maps a config level name onto a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// Options selects the sink and encoding of a logger.
type Options struct {
	Level  string
	Format string // console or json
	Colors bool
}

// NewWriterLogger creates a logger writing to w. Colors only apply to the
// console format.
func NewWriterLogger(w io.Writer, opts Options) (*ColoredLogger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var encoder zapcore.Encoder
	colors := opts.Colors
	switch strings.ToLower(opts.Format) {
	case "", "console":
		encoder = coloredConsoleEncoder(colors)
	case "json":
		encoder = jsonEncoder()
		colors = false
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	return &ColoredLogger{
		Logger:       logger,
		enableColors: colors,
	}, nil
}

// NewColoredLogger creates a debug-level console logger on stderr.
func NewColoredLogger(enableColors bool) (*ColoredLogger, error) {
	return NewWriterLogger(os.Stderr, Options{Level: "debug", Colors: enableColors})
}

// NewDefaultLogger creates a stderr logger with color auto-detection.
func NewDefaultLogger(level string) (*ColoredLogger, error) {
	return NewWriterLogger(os.Stderr, Options{Level: level, Colors: IsTerminal(os.Stderr)})
}

// NewFileLogger creates a logger that appends to a file. It never colors.
func NewFileLogger(filePath string, opts Options) (*ColoredLogger, error) {
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}
	opts.Colors = false
	logger, err := NewWriterLogger(file, opts)
	if err != nil {
		file.Close()
		return nil, err
	}
	logger.closer = file
	return logger, nil
}

// Close flushes buffered entries and releases the log file, if any. It is
// safe to call more than once.
func (l *ColoredLogger) Close() error {
	_ = l.Sync()
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// NewNop returns a logger that discards everything. The terminal viewer uses
// it when no log file is configured since it owns the screen.
func NewNop() *ColoredLogger {
	return &ColoredLogger{Logger: zap.NewNop()}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (l *ColoredLogger) tag(component Component, msg string) string {
	if l.enableColors {
		return fmt.Sprintf("%s[%s]%s %s", getComponentColor(component), component, Reset, msg)
	}
	return fmt.Sprintf("[%s] %s", component, msg)
}

// Component-specific logging methods
func (l *ColoredLogger) ComponentInfo(component Component, msg string, fields ...zap.Field) {
	l.Info(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentWarn(component Component, msg string, fields ...zap.Field) {
	l.Warn(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentError(component Component, msg string, fields ...zap.Field) {
	l.Error(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentDebug(component Component, msg string, fields ...zap.Field) {
	l.Debug(l.tag(component, msg), fields...)
}

// StandardLogger adapts a ColoredLogger to Print-style interfaces such as
// chi's request logger.
type StandardLogger struct {
	logger    *ColoredLogger
	component Component
}

// NewStandardLogger wraps logger for a single component.
func NewStandardLogger(logger *ColoredLogger, component Component) *StandardLogger {
	return &StandardLogger{
		logger:    logger,
		component: component,
	}
}

func (s *StandardLogger) Printf(format string, v ...interface{}) {
	s.logger.ComponentInfo(s.component, strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}

func (s *StandardLogger) Print(v ...interface{}) {
	s.logger.ComponentInfo(s.component, strings.TrimSuffix(fmt.Sprint(v...), "\n"))
}

func (s *StandardLogger) Println(v ...interface{}) {
	s.logger.ComponentInfo(s.component, strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (s *StandardLogger) Errorf(format string, v ...interface{}) {
	s.logger.ComponentError(s.component, strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}
