package applog

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxFileSizeMB = 5
	maxBackups    = 3
	maxValueLen   = 200
	truncSuffix   = "…"
)

var (
	mu     sync.Mutex
	logger *lumberjack.Logger
)

// Init opens tabask.log in dir for appending. Call once at startup.
// The file is rotated by lumberjack once it exceeds 5 MB.
// Safe to skip: log calls are no-ops until Init succeeds.
func Init(dir string) error {
	l := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "tabask.log"),
		MaxSize:    maxFileSizeMB,
		MaxBackups: maxBackups,
		LocalTime:  false,
	}
	// Touch the file now so permission problems surface at startup.
	if _, err := l.Write(nil); err != nil {
		return err
	}

	mu.Lock()
	logger = l
	mu.Unlock()
	return nil
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		logger.Close()
		logger = nil
	}
}

// Info logs a structured event line.
//
//	applog.Info("ws.connected", "remote", addr)
//	applog.Info("ask.done", "tabs", 12, "target", 3)
func Info(event string, kv ...any) {
	write("INFO", event, nil, kv)
}

// Error logs an event with an error.
//
//	applog.Error("ask.error", err, "source", "live")
func Error(event string, err error, kv ...any) {
	write("ERROR", event, err, kv)
}

func write(level, event string, err error, kv []any) {
	mu.Lock()
	l := logger
	mu.Unlock()
	if l == nil {
		return
	}

	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		logger.Write([]byte(format(time.Now(), level, event, err, kv)))
	}
}

func format(now time.Time, level, event string, err error, kv []any) string {
	var b strings.Builder
	b.WriteString(now.UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteByte(' ')
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(event)

	if err != nil {
		b.WriteString(" err=")
		b.WriteString(quote(err.Error()))
	}

	for i := 0; i+1 < len(kv); i += 2 {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprint(kv[i]))
		b.WriteByte('=')
		b.WriteString(quote(fmt.Sprint(kv[i+1])))
	}
	b.WriteByte('\n')
	return b.String()
}

func quote(s string) string {
	if len(s) > maxValueLen {
		s = s[:maxValueLen] + truncSuffix
	}
	if strings.ContainsAny(s, " \t\n\"") {
		return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
	}
	return s
}
