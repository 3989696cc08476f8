package main

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Logger is a small leveled console logger. It is passed to each component
// rather than living in a package global so flows can be tested against a
// buffer.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	debug bool
}

func NewLogger(out io.Writer, debug bool) *Logger {
	return &Logger{out: out, debug: debug}
}

// Trace logs only when debug mode is enabled.
func (l *Logger) Trace(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.logf("TRACE", format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.logf("INFO", format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf("WARN", format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.logf("ERROR", format, args...)
}

func (l *Logger) logf(level, format string, args ...interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "[%s] [%s] %s\n", time.Now().Format("15:04:05"), level, msg)
}
