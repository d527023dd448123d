// Package log provides a global logger with a configurable level, intended
// for use while developing against a live vehicle connection.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type Level int

const (
	LevelNone    Level = iota // Disables logging.
	LevelError                // Logs anomalies that are not expected to occur during normal use.
	LevelWarning              // Logs anomalies that are expected to occur occasionally during normal use.
	LevelInfo                 // Logs major events: connects, handshakes, session invalidation.
	LevelDebug                // Logs detailed IO, including raw frames.
)

var (
	mu     sync.Mutex
	level  Level
	output io.Writer = os.Stderr
)

var labels = map[Level]string{
	LevelDebug:   "[debug]",
	LevelInfo:    "[info ]",
	LevelWarning: "[warn ]",
	LevelError:   "[error]",
}

// SetLevel adjusts the global log level. It is safe to call concurrently.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetOutput redirects log output, primarily useful for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func currentLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return level
}

func emit(l Level, format string, a ...interface{}) {
	if l > currentLevel() {
		return
	}
	mu.Lock()
	w := output
	mu.Unlock()
	msg := fmt.Sprintf("%s %s ", time.Now().Format(time.RFC3339), labels[l])
	msg += fmt.Sprintf(format, a...)
	fmt.Fprintln(w, msg)
}

func Debug(format string, a ...interface{})   { emit(LevelDebug, format, a...) }
func Info(format string, a ...interface{})    { emit(LevelInfo, format, a...) }
func Warning(format string, a ...interface{}) { emit(LevelWarning, format, a...) }
func Error(format string, a ...interface{})   { emit(LevelError, format, a...) }
