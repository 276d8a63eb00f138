package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel names a logging severity.
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

const (
	LogRetentionDays = 7 // retained log files, hardcoded to one week
)

var DefaultLogger *Logger

type LogCfg struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
	LogDir   string `yaml:"log_dir" json:"log_dir"`
	LogFile  string `yaml:"log_file" json:"log_file"`
}

// CustomTextHandler renders colored, human readable console output.
type CustomTextHandler struct {
	writer io.Writer
	level  slog.Level
	mu     sync.Mutex
}

var (
	colorReset = "\x1b[0m"
	colorTime  = "\x1b[90m"
	colorDebug = "\x1b[36m"
	colorInfo  = "\x1b[32m"
	colorWarn  = "\x1b[33m"
	colorError = "\x1b[31m"
)

// moduleColors maps the log tag of each subsystem to its console color.
var moduleColors = map[string]string{
	"[Bootstrap]": "\x1b[96m",
	"[HTTP]":      "\x1b[95m",
	"[Gateway]":   "\x1b[94m",
	"[Provider]":  "\x1b[34m",
	"[Image]":     "\x1b[35m",
	"[Events]":    "\x1b[92m",
	"[Config]":    "\x1b[97m",
}

func (h *CustomTextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *CustomTextHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	timeStr := r.Time.Format("2006-01-02 15:04:05.000")

	var levelStr string
	var levelColor string
	switch r.Level {
	case slog.LevelDebug:
		levelStr, levelColor = "DEBUG", colorDebug
	case slog.LevelInfo:
		levelStr, levelColor = "INFO", colorInfo
	case slog.LevelWarn:
		levelStr, levelColor = "WARN", colorWarn
	case slog.LevelError:
		levelStr, levelColor = "ERROR", colorError
	default:
		levelStr, levelColor = "INFO", colorInfo
	}

	msg := r.Message
	var moduleColor string
	var isModuleLog bool
	for prefix, color := range moduleColors {
		if strings.HasPrefix(msg, prefix) {
			moduleColor = color
			isModuleLog = true
			break
		}
	}

	var output string
	if isModuleLog {
		// module log format: [time] [tag] message
		output = fmt.Sprintf("%s[%s]%s %s%s%s",
			colorTime, timeStr, colorReset,
			moduleColor, msg, colorReset)
	} else {
		// plain log format: [time] [level] message
		output = fmt.Sprintf("%s[%s]%s %s[%s]%s %s",
			colorTime, timeStr, colorReset,
			levelColor, levelStr, colorReset,
			msg)
	}

	if r.NumAttrs() > 0 {
		output += " {"
		r.Attrs(func(a slog.Attr) bool {
			output += fmt.Sprintf(" %s=%v", a.Key, a.Value)
			return true
		})
		output += " }"
	}
	output += "\n"

	_, err := h.writer.Write([]byte(output))
	return err
}

func (h *CustomTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *CustomTextHandler) WithGroup(name string) slog.Handler {
	return h
}

// Logger writes JSON records to a rotating file and colored text to stdout.
type Logger struct {
	config      *LogCfg
	jsonLogger  *slog.Logger
	textLogger  *slog.Logger
	logFile     *os.File
	currentDate string
	mu          sync.RWMutex
	ticker      *time.Ticker
	stopCh      chan struct{}
}

func configLogLevelToSlogLevel(configLevel string) slog.Level {
	switch strings.ToLower(configLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a new logger instance.
func NewLogger(config *LogCfg) (*Logger, error) {
	if err := os.MkdirAll(config.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	logPath := filepath.Join(config.LogDir, config.LogFile)
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	slogLevel := configLogLevelToSlogLevel(config.LogLevel)

	jsonHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: slogLevel,
	})

	customHandler := &CustomTextHandler{
		writer: os.Stdout,
		level:  slogLevel,
	}

	logger := &Logger{
		config:      config,
		jsonLogger:  slog.New(jsonHandler),
		textLogger:  slog.New(customHandler),
		logFile:     file,
		currentDate: time.Now().Format("2006-01-02"),
		stopCh:      make(chan struct{}),
	}

	logger.startRotationChecker()
	if DefaultLogger == nil {
		DefaultLogger = logger
	}

	return logger, nil
}

func (l *Logger) startRotationChecker() {
	l.ticker = time.NewTicker(1 * time.Minute)
	go func() {
		for {
			select {
			case <-l.ticker.C:
				l.checkAndRotate()
			case <-l.stopCh:
				return
			}
		}
	}()
}

func (l *Logger) checkAndRotate() {
	today := time.Now().Format("2006-01-02")
	if today != l.currentDate {
		l.rotateLogFile(today)
		l.cleanOldLogs()
	}
}

func (l *Logger) rotateLogFile(newDate string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		l.logFile.Close()
	}

	logDir := l.config.LogDir
	currentLogPath := filepath.Join(logDir, l.config.LogFile)

	baseFileName := strings.TrimSuffix(l.config.LogFile, filepath.Ext(l.config.LogFile))
	ext := filepath.Ext(l.config.LogFile)
	archivedLogPath := filepath.Join(logDir, fmt.Sprintf("%s-%s%s", baseFileName, l.currentDate, ext))

	if _, err := os.Stat(currentLogPath); err == nil {
		if err := os.Rename(currentLogPath, archivedLogPath); err != nil {
			l.textLogger.Error("rename log file failed", slog.String("error", err.Error()))
		}
	}

	file, err := os.OpenFile(currentLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.textLogger.Error("create new log file failed", slog.String("error", err.Error()))
		return
	}

	l.logFile = file
	l.currentDate = newDate

	slogLevel := configLogLevelToSlogLevel(l.config.LogLevel)
	jsonHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: slogLevel,
	})
	l.jsonLogger = slog.New(jsonHandler)

	l.textLogger.Info("log file rotated", slog.String("new_date", newDate))
}

func (l *Logger) cleanOldLogs() {
	logDir := l.config.LogDir

	entries, err := os.ReadDir(logDir)
	if err != nil {
		l.textLogger.Error("read log directory failed", slog.String("error", err.Error()))
		return
	}

	cutoffDate := time.Now().AddDate(0, 0, -LogRetentionDays)
	baseFileName := strings.TrimSuffix(l.config.LogFile, filepath.Ext(l.config.LogFile))
	ext := filepath.Ext(l.config.LogFile)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()
		// archived logs follow the pattern server-YYYY-MM-DD.log
		if strings.HasPrefix(fileName, baseFileName+"-") && strings.HasSuffix(fileName, ext) {
			dateStr := strings.TrimPrefix(fileName, baseFileName+"-")
			dateStr = strings.TrimSuffix(dateStr, ext)

			fileDate, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				continue
			}

			if fileDate.Before(cutoffDate) {
				filePath := filepath.Join(logDir, fileName)
				if err := os.Remove(filePath); err != nil {
					l.textLogger.Error("remove old log file failed",
						slog.String("file", fileName),
						slog.String("error", err.Error()))
				} else {
					l.textLogger.Info("removed old log file", slog.String("file", fileName))
				}
			}
		}
	}
}

// Close stops rotation and closes the log file.
func (l *Logger) Close() error {
	if l.ticker != nil {
		l.ticker.Stop()
	}
	close(l.stopCh)
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

func (l *Logger) log(level slog.Level, msg string, fields ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var attrs []slog.Attr
	if len(fields) > 0 && fields[0] != nil {
		if fieldsMap, ok := fields[0].(map[string]interface{}); ok {
			keys := make([]string, 0, len(fieldsMap))
			for k := range fieldsMap {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			for _, k := range keys {
				attrs = append(attrs, slog.Any(k, fieldsMap[k]))
			}
		} else {
			attrs = append(attrs, slog.Any("fields", fields[0]))
		}
	}

	ctx := context.Background()
	l.jsonLogger.LogAttrs(ctx, level, msg, attrs...)
	l.textLogger.LogAttrs(ctx, level, msg, attrs...)
}

// Debug logs a debug level message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	if l == nil {
		return
	}
	if strings.EqualFold(l.config.LogLevel, "debug") {
		if len(args) > 0 && containsFormatPlaceholders(msg) {
			l.log(slog.LevelDebug, fmt.Sprintf(msg, args...))
		} else {
			l.log(slog.LevelDebug, msg, args...)
		}
	}
}

func containsFormatPlaceholders(s string) bool {
	return strings.Contains(s, "%")
}

// FormatLog builds a message carrying a single category tag, e.g.
// FormatLog("Gateway", "request accepted") -> "[Gateway] request accepted".
// Messages that already start with "[" are returned unchanged.
func FormatLog(tag, message string) string {
	tag = strings.TrimSpace(tag)
	message = strings.TrimSpace(message)
	if tag == "" {
		return message
	}
	if strings.HasPrefix(message, "[") {
		return message
	}
	return fmt.Sprintf("[%s] %s", tag, message)
}

func (l *Logger) logWithTag(level slog.Level, tag, msg string, args ...interface{}) {
	switch level {
	case slog.LevelDebug:
		l.Debug(FormatLog(tag, msg), args...)
	case slog.LevelInfo:
		l.Info(FormatLog(tag, msg), args...)
	case slog.LevelWarn:
		l.Warn(FormatLog(tag, msg), args...)
	case slog.LevelError:
		l.Error(FormatLog(tag, msg), args...)
	default:
		l.Info(FormatLog(tag, msg), args...)
	}
}

// DebugTag logs a tagged debug message.
func (l *Logger) DebugTag(tag, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logWithTag(slog.LevelDebug, tag, msg, args...)
}

// Info logs an info level message. With format placeholders the args are
// interpolated, otherwise they are attached as structured fields.
func (l *Logger) Info(msg string, args ...interface{}) {
	if l == nil {
		return
	}
	if len(args) > 0 && containsFormatPlaceholders(msg) {
		l.log(slog.LevelInfo, fmt.Sprintf(msg, args...))
	} else {
		l.log(slog.LevelInfo, msg, args...)
	}
}

// Warn logs a warning level message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	if l == nil {
		return
	}
	if len(args) > 0 && containsFormatPlaceholders(msg) {
		l.log(slog.LevelWarn, fmt.Sprintf(msg, args...))
	} else {
		l.log(slog.LevelWarn, msg, args...)
	}
}

// Error logs an error level message.
func (l *Logger) Error(msg string, args ...interface{}) {
	if l == nil {
		return
	}
	if len(args) > 0 && containsFormatPlaceholders(msg) {
		l.log(slog.LevelError, fmt.Sprintf(msg, args...))
	} else {
		l.log(slog.LevelError, msg, args...)
	}
}

// InfoTag logs a tagged info message.
func (l *Logger) InfoTag(tag, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logWithTag(slog.LevelInfo, tag, msg, args...)
}

// WarnTag logs a tagged warning message.
func (l *Logger) WarnTag(tag, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logWithTag(slog.LevelWarn, tag, msg, args...)
}

// ErrorTag logs a tagged error message.
func (l *Logger) ErrorTag(tag, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logWithTag(slog.LevelError, tag, msg, args...)
}

// Slog exposes the underlying slog text logger for structured integrations.
func (l *Logger) Slog() *slog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.textLogger
}
