// Package logger writes structured logs through log/slog and mirrors them to
// an optional chat sink such as a Telegram log channel.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	mu        sync.RWMutex
	base      = newLogger(os.Stderr, "info", "text")
	sink      Sink
	channelID int64
)

// Sink receives formatted log lines. The Telegram bot implements it.
type Sink interface {
	SendMessage(chatID int64, text string) error
}

// Init configures the local logger. level is one of debug, info, warn, error;
// format is text or json.
func Init(level, format string) {
	InitWithWriter(os.Stderr, level, format)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(w io.Writer, level, format string) {
	mu.Lock()
	defer mu.Unlock()
	base = newLogger(w, level, format)
}

// SetSink mirrors every log line to chatID through s. A nil sink disables mirroring.
func SetSink(s Sink, chatID int64) {
	mu.Lock()
	defer mu.Unlock()
	sink = s
	channelID = chatID
}

// Logger returns the underlying slog logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func Info(message string, args ...any) {
	Logger().Info(message, args...)
	sendLog("ℹ️ INFO", message, args)
}

func Error(message string, args ...any) {
	Logger().Error(message, args...)
	sendLog("❌ ERROR", message, args)
}

func Debug(message string, args ...any) {
	Logger().Debug(message, args...)
	sendLog("🔍 DEBUG", message, args)
}

// Success is an info-level record flagged as a completed operation.
func Success(message string, args ...any) {
	Logger().Info(message, append([]any{"success", true}, args...)...)
	sendLog("✅ SUCCESS", message, args)
}

// LogWithErr logs message at info level when err is nil and at error level
// otherwise, returning err wrapped with message.
func LogWithErr(message string, err error) error {
	if err == nil {
		Info(message)
		return nil
	}

	Error(message, "error", err)
	return fmt.Errorf("%s: %w", message, err)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func sendLog(prefix, message string, args []any) {
	mu.RLock()
	s, chatID := sink, channelID
	mu.RUnlock()
	if s == nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	logMessage := fmt.Sprintf("[%s] %s\n%s%s", timestamp, prefix, message, formatArgs(args))

	go func() {
		if err := s.SendMessage(chatID, logMessage); err != nil {
			Logger().Warn("failed to send log to channel", "error", err)
		}
	}()
}

func formatArgs(args []any) string {
	var b strings.Builder
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, "\n%v: %v", args[i], args[i+1])
	}
	return b.String()
}
