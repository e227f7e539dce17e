package nrx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/evaluator"
)

// Logger receives the values of print statements, one call per statement.
type Logger interface {
	Print(v evaluator.Value)
}

// LoggerFunc adapts a plain function to Logger.
type LoggerFunc func(v evaluator.Value)

func (f LoggerFunc) Print(v evaluator.Value) { f(v) }

// StdoutLogger prints to standard output.
func StdoutLogger() Logger {
	return WriterLogger(os.Stdout)
}

// WriterLogger writes each printed value on its own line. Writes are
// serialized, so one writer may be shared by several interpreters.
func WriterLogger(w io.Writer) Logger {
	return &writerLogger{w: w}
}

type writerLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *writerLogger) Print(v evaluator.Value) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, v.Inspect())
}

// BufferedLogger keeps printed values in memory. Hosts use it to collect
// script output, and tests to assert on it.
type BufferedLogger struct {
	mu     sync.Mutex
	values []evaluator.Value
}

func NewBufferedLogger() *BufferedLogger {
	return &BufferedLogger{}
}

func (l *BufferedLogger) Print(v evaluator.Value) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values = append(l.values, v)
}

// Values returns the printed values in order.
func (l *BufferedLogger) Values() []evaluator.Value {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]evaluator.Value(nil), l.values...)
}

// Lines returns the printed values rendered as text.
func (l *BufferedLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	lines := make([]string, len(l.values))
	for i, v := range l.values {
		lines[i] = v.Inspect()
	}
	return lines
}

// String joins all lines, each terminated by a newline.
func (l *BufferedLogger) String() string {
	var sb strings.Builder
	for _, line := range l.Lines() {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (l *BufferedLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values = nil
}

// NullLogger discards everything.
func NullLogger() Logger {
	return LoggerFunc(func(evaluator.Value) {})
}

// PrintSink adapts a Logger to the interpreter's print hook.
func PrintSink(l Logger) func(evaluator.Value) {
	if l == nil {
		return nil
	}
	return l.Print
}
