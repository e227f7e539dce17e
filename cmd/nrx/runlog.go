package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
)

var levelNames = map[string]logLevel{
	"debug": levelDebug,
	"info":  levelInfo,
	"warn":  levelWarn,
	"error": levelError,
}

func (l logLevel) String() string {
	for name, level := range levelNames {
		if level == l {
			return name
		}
	}
	return "unknown"
}

// RunLogEntry represents one script execution
type RunLogEntry struct {
	Timestamp  string `json:"timestamp"`
	Level      string `json:"level"`
	Source     string `json:"source"`
	Status     string `json:"status"` // ok, error, timeout
	Result     string `json:"result,omitempty"`
	Class      string `json:"class,omitempty"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
	Line       int    `json:"line,omitempty"`
	Duration   string `json:"duration"`
	DurationMs int64  `json:"duration_ms"`
}

func (e *RunLogEntry) setDuration(d time.Duration) {
	e.Duration = d.String()
	e.DurationMs = d.Milliseconds()
}

// runLogger writes run records at or above a minimum level.
type runLogger struct {
	output io.Writer
	format string // "json" or "text"
	min    logLevel
}

func newRunLogger(output io.Writer, format, level string) *runLogger {
	if format == "" {
		format = "text"
	}
	min, ok := levelNames[level]
	if !ok {
		min = levelWarn
	}
	return &runLogger{output: output, format: format, min: min}
}

func (rl *runLogger) enabled(level logLevel) bool {
	return rl != nil && level >= rl.min
}

func (rl *runLogger) write(level logLevel, entry RunLogEntry) {
	if !rl.enabled(level) {
		return
	}
	entry.Level = level.String()
	if rl.format == "json" {
		rl.writeJSON(entry)
	} else {
		rl.writeText(entry)
	}
}

// debug writes a free-form message at debug level.
func (rl *runLogger) debug(source, message string) {
	rl.write(levelDebug, RunLogEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Source:    source,
		Status:    "ok",
		Message:   message,
	})
}

func (rl *runLogger) writeJSON(entry RunLogEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	fmt.Fprintf(rl.output, "%s\n", data)
}

func (rl *runLogger) writeText(entry RunLogEntry) {
	fmt.Fprintf(rl.output, "%s %s %s %s",
		entry.Timestamp,
		entry.Level,
		entry.Source,
		entry.Status,
	)
	if entry.Duration != "" {
		fmt.Fprintf(rl.output, " %s", entry.Duration)
	}
	if entry.Code != "" {
		fmt.Fprintf(rl.output, " %s line %d", entry.Code, entry.Line)
	}
	if entry.Message != "" {
		fmt.Fprintf(rl.output, ": %s", entry.Message)
	}
	fmt.Fprintln(rl.output)
}
