// Package repl implements the interactive NRX shell.
package repl

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/peterh/liner"

	nrxerrors "github.com/NikolaiRuhe/NRExpressions/pkg/nrx/errors"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/evaluator"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/lexer"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/parser"
)

const PROMPT = ">> "
const PROMPT_RAW = ":> "
const CONTINUATION_PROMPT = ".. "

const LOGO = `
█▄░█ █▀█ ▀▄▀
█░▀█ █▀▄ █░█ `

// Options configures Start.
type Options struct {
	Prompt      string
	HistoryFile string // Empty disables history
	// NewInterpreter creates the interpreter for a session and for :clear.
	NewInterpreter func() *evaluator.Interpreter
}

// Start runs the REPL with line editing, history, and tab completion
func Start(out io.Writer, version string, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	session := NewSession(out, opts.NewInterpreter)
	line.SetCompleter(session.Complete)

	if opts.HistoryFile != "" {
		if f, err := os.Open(opts.HistoryFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(opts.HistoryFile); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	basePrompt := opts.Prompt
	if basePrompt == "" {
		basePrompt = PROMPT
	}

	fmt.Fprintf(out, "%s", LOGO)
	fmt.Fprintln(out, "v", version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	for {
		prompt := basePrompt
		if session.RawMode() {
			prompt = PROMPT_RAW
		}
		if session.Pending() {
			prompt = CONTINUATION_PROMPT
		}

		input, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C clears buffered input and returns to the main prompt
				if session.Pending() {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				session.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		entry, quit := session.Feed(input)
		if entry != "" {
			line.AppendHistory(entry)
		}
		if quit {
			return
		}
	}
}

// Session holds the state of one REPL: its interpreter, the buffered
// multi-line input and the output mode.
type Session struct {
	out            io.Writer
	in             *evaluator.Interpreter
	newInterpreter func() *evaluator.Interpreter
	input          strings.Builder
	rawMode        bool
}

// NewSession creates a session writing to out. Print statements write to
// out as well.
func NewSession(out io.Writer, newInterpreter func() *evaluator.Interpreter) *Session {
	if newInterpreter == nil {
		newInterpreter = evaluator.New
	}
	s := &Session{out: out, newInterpreter: newInterpreter}
	s.resetInterpreter()
	return s
}

func (s *Session) resetInterpreter() {
	s.in = s.newInterpreter()
	s.in.Print = func(v evaluator.Value) {
		fmt.Fprintln(s.out, v.Inspect())
	}
}

// Pending reports whether a multi-line input is being collected.
func (s *Session) Pending() bool { return s.input.Len() > 0 }

// RawMode reports whether results are shown the way print shows them.
func (s *Session) RawMode() bool { return s.rawMode }

// Reset drops buffered input.
func (s *Session) Reset() { s.input.Reset() }

// Feed processes one line of input. It returns the completed entry for the
// history (empty while input is incomplete) and whether the user asked to
// quit.
func (s *Session) Feed(line string) (entry string, quit bool) {
	trimmed := strings.TrimSpace(line)
	if !s.Pending() {
		switch {
		case trimmed == "exit" || trimmed == "quit":
			fmt.Fprintln(s.out, "Goodbye!")
			return "", true
		case strings.HasPrefix(trimmed, ":"):
			s.handleCommand(trimmed)
			return trimmed, false
		case trimmed == "":
			return "", false
		}
	}

	if s.Pending() {
		s.input.WriteString("\n")
	}
	s.input.WriteString(line)

	source := s.input.String()
	if needsMoreInput(source) {
		return "", false
	}
	s.input.Reset()

	s.eval(source)
	return source, false
}

func (s *Session) eval(source string) {
	program, perr := parser.Parse(source)
	if perr != nil {
		io.WriteString(s.out, perr.PrettyString())
		io.WriteString(s.out, "\n")
		return
	}

	switch result := s.in.Run(program).(type) {
	case *evaluator.Error:
		printRuntimeError(s.out, result.ToNRXError())
	case *evaluator.TimeoutSignal:
		fmt.Fprintf(s.out, "Timeout\n  %s\n", result.Inspect())
	case *evaluator.Null:
		if !s.rawMode {
			io.WriteString(s.out, "OK\n")
		}
	default:
		if s.rawMode {
			fmt.Fprintln(s.out, result.Inspect())
		} else {
			fmt.Fprintln(s.out, literal(result))
		}
	}
}

// literal renders a result the way it would be written in source.
func literal(v evaluator.Value) string {
	if s, ok := v.(*evaluator.String); ok {
		return strconv.Quote(s.Value)
	}
	return v.Inspect()
}

// handleCommand handles REPL meta-commands that start with ':'
func (s *Session) handleCommand(cmd string) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "REPL Commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(s.out, "  :env            Show variables in scope")
		fmt.Fprintln(s.out, "  :clear          Clear all user variables")
		fmt.Fprintln(s.out, "  :raw            Toggle raw output mode (print-style output)")
		fmt.Fprintln(s.out, "  exit, quit      Exit the REPL")

	case ":env":
		s.printEnvironment()

	case ":clear":
		s.resetInterpreter()
		fmt.Fprintln(s.out, "Environment cleared")

	case ":raw":
		s.rawMode = !s.rawMode
		if s.rawMode {
			fmt.Fprintln(s.out, "Raw output mode ON (print-style output)")
		} else {
			fmt.Fprintln(s.out, "Raw output mode OFF (literal output)")
		}

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// userVariables returns the global names that are not untouched builtins.
func (s *Session) userVariables() []string {
	builtins := evaluator.DefaultGlobalScope()
	var names []string
	for _, name := range s.in.Globals.Names() {
		v, _ := s.in.Globals.Get(name)
		if b, ok := builtins.Get(name); ok && v.TypeString() == b.TypeString() && v.Inspect() == b.Inspect() {
			continue
		}
		names = append(names, name)
	}
	return names
}

// printEnvironment displays all user-defined variables
func (s *Session) printEnvironment() {
	names := s.userVariables()
	if len(names) == 0 {
		fmt.Fprintln(s.out, "(no user variables)")
		return
	}

	for _, name := range names {
		v, _ := s.in.Globals.Get(name)
		value := literal(v)
		if len(value) > 60 {
			value = value[:57] + "..."
		}
		fmt.Fprintf(s.out, "  %s: %s = %s\n", name, v.TypeString(), value)
	}
}

// Complete returns completion suggestions for the word being typed.
func (s *Session) Complete(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	// Don't complete if line ends with whitespace (including tabs from pasting)
	if last := line[len(line)-1]; last == ' ' || last == '\t' {
		return nil
	}

	words := strings.FieldsFunc(line, func(r rune) bool {
		return !(r == '_' || r == '$' || r == '*' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	if len(words) == 0 {
		return nil
	}
	lastWord := words[len(words)-1]
	prefix := line[:len(line)-len(lastWord)]

	candidates := append(lexer.Keywords(), "true", "false", "null", "not", "and", "or",
		"in", "where", "map", "contains")
	candidates = append(candidates, s.in.Globals.Names()...)
	sort.Strings(candidates)

	var matches []string
	seen := make(map[string]bool)
	for _, word := range candidates {
		if strings.HasPrefix(word, lastWord) && !seen[word] {
			seen[word] = true
			matches = append(matches, prefix+word)
		}
	}
	return matches
}

// needsMoreInput checks if the input has unclosed braces, brackets or
// parentheses outside strings and comments.
func needsMoreInput(input string) bool {
	depth := 0
	inString := false
	inComment := false

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if inComment {
			if ch == '\n' {
				inComment = false
			}
			continue
		}
		if inString {
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '#':
			inComment = true
		case '/':
			if i+1 < len(input) && input[i+1] == '/' {
				inComment = true
			}
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		}
	}
	return depth > 0
}

// printRuntimeError prints a runtime error with structured formatting
func printRuntimeError(out io.Writer, err *nrxerrors.NRXError) {
	io.WriteString(out, string(err.Class))

	if err.Line > 0 {
		fmt.Fprintf(out, ": line %d, column %d\n  %s\n", err.Line, err.Column, err.Message)
	} else {
		io.WriteString(out, "\n  "+err.Message+"\n")
	}

	for _, hint := range err.Hints {
		io.WriteString(out, "  hint: "+hint+"\n")
	}
}
