package logging

import (
	"io"
	"log"
	"os"
	"strings"
)

var levels = map[string]int{"debug": 10, "info": 20, "warn": 30, "error": 40}

// Logger is a small leveled logger over the stdlib log package. Levels below
// the configured threshold are dropped.
type Logger struct {
	level int
	base  *log.Logger
}

func New(level string) *Logger {
	return NewWithOutput(level, os.Stdout)
}

func NewWithOutput(level string, out io.Writer) *Logger {
	lv, ok := levels[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		lv = levels["info"]
	}
	return &Logger{level: lv, base: log.New(out, "", log.LstdFlags)}
}

func (l *Logger) enabled(level string) bool {
	return levels[level] >= l.level
}

func (l *Logger) Debugf(format string, args ...any) {
	if l.enabled("debug") {
		l.base.Printf("[DEBUG] "+format, args...)
	}
}

func (l *Logger) Infof(format string, args ...any) {
	if l.enabled("info") {
		l.base.Printf("[INFO] "+format, args...)
	}
}

func (l *Logger) Warnf(format string, args ...any) {
	if l.enabled("warn") {
		l.base.Printf("[WARN] "+format, args...)
	}
}

func (l *Logger) Errorf(format string, args ...any) {
	if l.enabled("error") {
		l.base.Printf("[ERROR] "+format, args...)
	}
}
