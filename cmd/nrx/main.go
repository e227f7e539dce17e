package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/NikolaiRuhe/NRExpressions/config"
	nrxerrors "github.com/NikolaiRuhe/NRExpressions/pkg/nrx/errors"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/evaluator"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/nrx"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/parser"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/repl"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/sqldelegate"
)

// Version is set at compile time via -ldflags
var Version = "0.3.0"

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1 // Syntax, runtime or timeout
	exitUsage   = 2 // Bad flags, config or unreadable files
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}

// cli carries the state of one invocation.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	cfg      *config.Config
	raw      bool
	delegate *sqldelegate.Delegate
	print    io.Writer
	runLog   *runLogger
	closers  []io.Closer
}

func run(args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	// Subcommands come before flag parsing
	if len(args) > 0 && args[0] == "fmt" {
		return fmtCommand(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("nrx", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		// Display flags
		helpFlag    = fs.Bool("h", false, "Show help message")
		helpLong    = fs.Bool("help", false, "Show help message")
		versionFlag = fs.Bool("V", false, "Show version information")
		versionLong = fs.Bool("version", false, "Show version information")

		// Evaluation flags
		evalFlag  = fs.String("e", "", "Evaluate code string")
		evalLong  = fs.String("eval", "", "Evaluate code string")
		rawFlag   = fs.Bool("r", false, "Output raw print string")
		rawLong   = fs.Bool("raw", false, "Output raw print string")
		checkFlag = fs.Bool("check", false, "Check syntax without executing")
		watchFlag = fs.Bool("watch", false, "Re-run the script whenever it changes")

		// Configuration flags
		configFlag   = fs.String("config", "", "Path to nrx.yaml")
		profileFlag  = fs.String("profile", "", "Apply a named config profile")
		strictFlag   = fs.Bool("strict", false, "Treat unbound symbols as errors")
		timeoutFlag  = fs.Duration("timeout", 0, "Maximum evaluation time (0 disables)")
		maxDepthFlag = fs.Int("max-depth", 0, "Maximum call depth (0 disables)")
	)
	fs.Usage = func() { printHelp(stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if *helpFlag || *helpLong {
		printHelp(stdout)
		return exitOK
	}
	if *versionFlag || *versionLong {
		fmt.Fprintf(stdout, "nrx version %s\n", Version)
		return exitOK
	}

	c := &cli{stdout: stdout, stderr: stderr, raw: *rawFlag || *rawLong}
	defer c.close()

	// --check only parses, so it needs no configuration
	if *checkFlag {
		if fs.NArg() == 0 {
			fmt.Fprintln(stderr, "Error: --check requires at least one file")
			return exitUsage
		}
		return c.checkFiles(fs.Args())
	}

	cfg, err := loadConfig(*configFlag, *profileFlag, getenv)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	// Explicit flags override the config file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strict":
			cfg.Interpreter.StrictSymbols = *strictFlag
		case "timeout":
			cfg.Interpreter.MaxEvaluationTime = *timeoutFlag
		case "max-depth":
			cfg.Interpreter.MaxCallDepth = *maxDepthFlag
		}
	})
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if err := c.setup(cfg); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	evalCode := *evalFlag
	if evalCode == "" {
		evalCode = *evalLong
	}

	switch {
	case evalCode != "":
		return c.execute("", evalCode, true)
	case fs.NArg() > 0:
		filename := fs.Arg(0)
		if *watchFlag {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return c.watch(ctx, filename)
		}
		return c.executeFile(filename)
	default:
		repl.Start(stdout, Version, repl.Options{
			Prompt:         cfg.REPL.Prompt,
			HistoryFile:    config.ExpandHome(cfg.REPL.HistoryFile),
			NewInterpreter: func() *evaluator.Interpreter { return nrx.NewInterpreter(c.options("")...) },
		})
		return exitOK
	}
}

// loadConfig loads the config file, falling back to defaults when none is
// found in the default locations.
func loadConfig(path, profile string, getenv func(string) string) (*config.Config, error) {
	cfg, err := config.Load(path, getenv)
	if errors.Is(err, config.ErrNotFound) {
		cfg, err = config.Defaults(), nil
	}
	if err != nil {
		return nil, err
	}
	if profile != "" {
		if err := config.ApplyProfile(cfg, profile); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setup opens the outputs and the database named by the configuration.
func (c *cli) setup(cfg *config.Config) error {
	c.cfg = cfg

	printOut, err := c.openOutput(cfg.Logging.Print)
	if err != nil {
		return fmt.Errorf("logging.print: %w", err)
	}
	c.print = printOut

	logOut, err := c.openOutput(cfg.Logging.Output)
	if err != nil {
		return fmt.Errorf("logging.output: %w", err)
	}
	c.runLog = newRunLogger(logOut, cfg.Logging.Format, cfg.Logging.Level)

	if cfg.Delegate.Enabled() {
		d, err := sqldelegate.Open(cfg.Delegate.Driver, cfg.Delegate.DSN, cfg.Delegate.SymbolsTable)
		if err != nil {
			return err
		}
		c.delegate = d
		c.closers = append(c.closers, d)
		c.runLog.debug("delegate", fmt.Sprintf("%s database connected", cfg.Delegate.Driver))
	}
	return nil
}

// openOutput maps "stdout", "stderr" or a file path to a writer. Files are
// opened for appending.
func (c *cli) openOutput(name string) (io.Writer, error) {
	switch name {
	case "", "stdout":
		return c.stdout, nil
	case "stderr":
		return c.stderr, nil
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, f)
	return f, nil
}

func (c *cli) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i].Close()
	}
}

// options turns the configuration into evaluation options.
func (c *cli) options(filename string) []nrx.Option {
	opts := []nrx.Option{
		nrx.WithLogger(nrx.WriterLogger(c.print)),
		nrx.WithTimeout(c.cfg.Interpreter.MaxEvaluationTime),
		nrx.WithMaxDepth(c.cfg.Interpreter.MaxCallDepth),
		nrx.WithStrictSymbols(c.cfg.Interpreter.StrictSymbols),
		nrx.WithGlobals(c.cfg.Globals),
	}
	if filename != "" {
		opts = append(opts, nrx.WithFilename(filename))
	}
	if c.delegate != nil {
		opts = append(opts, nrx.WithDelegate(c.delegate))
	}
	return opts
}

// executeFile reads and executes a script file
func (c *cli) executeFile(filename string) int {
	source, err := nrx.ReadSource(filename)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error reading file '%s': %v\n", filename, err)
		return exitUsage
	}
	return c.execute(filename, source, false)
}

// execute parses and runs source. Inline code shows null results; scripts
// only print non-null results.
func (c *cli) execute(filename, source string, inline bool) int {
	start := time.Now()
	entry := RunLogEntry{Timestamp: start.Format(time.RFC3339), Source: sourceName(filename)}

	result, err := nrx.Evaluate(source, c.options(filename)...)
	entry.setDuration(time.Since(start))

	var nerr *nrx.Error
	var timeout *nrx.TimeoutError
	switch {
	case errors.As(err, &timeout):
		entry.Status = "timeout"
		entry.Message = timeout.Inspect()
		c.runLog.write(levelError, entry)
		fmt.Fprintf(c.stderr, "Timeout: %s\n", timeout.Inspect())
		return exitFailure

	case errors.As(err, &nerr):
		entry.Status = "error"
		entry.Class, entry.Code, entry.Message, entry.Line = string(nerr.Class), nerr.Code, nerr.Message, nerr.Line
		c.runLog.write(levelError, entry)
		if nerr.IsParseError() {
			printStructuredError(c.stderr, source, nerr)
		} else {
			printRuntimeError(c.stderr, filename, source, nerr)
		}
		return exitFailure

	case err != nil:
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}

	entry.Status = "ok"
	entry.Result = result.TypeString()
	c.runLog.write(levelInfo, entry)

	if _, isNull := result.(*evaluator.Null); isNull && !inline {
		return exitOK
	}
	fmt.Fprintln(c.print, c.render(result))
	return exitOK
}

// render formats a result. Strings are quoted unless raw output was requested.
func (c *cli) render(v evaluator.Value) string {
	if s, ok := v.(*evaluator.String); ok && !c.raw {
		return strconv.Quote(s.Value)
	}
	return v.Inspect()
}

// checkFiles parses files without executing them
func (c *cli) checkFiles(files []string) int {
	code := exitOK
	for _, filename := range files {
		source, err := nrx.ReadSource(filename)
		if err != nil {
			fmt.Fprintf(c.stderr, "Error reading %s: %v\n", filename, err)
			return exitUsage
		}
		if _, perr := parser.ParseFile(source, filename); perr != nil {
			printStructuredError(c.stderr, source, perr)
			code = exitFailure
			continue
		}
		fmt.Fprintf(c.stdout, "%s: OK\n", filename)
	}
	return code
}

func sourceName(filename string) string {
	if filename == "" {
		return "<eval>"
	}
	return filename
}

// printStructuredError prints a parser error with source context
func printStructuredError(w io.Writer, source string, err *nrxerrors.NRXError) {
	fmt.Fprintln(w, err.PrettyString())
	printSourceContext(w, strings.Split(source, "\n"), err.Line, err.Column)
}

// printRuntimeError prints a runtime error with source context
func printRuntimeError(w io.Writer, filename, source string, err *nrxerrors.NRXError) {
	fmt.Fprint(w, err.Class)
	if filename != "" && err.Line > 0 {
		fmt.Fprintf(w, " in %s: line %d, column %d\n", filename, err.Line, err.Column)
	} else if err.Line > 0 {
		fmt.Fprintf(w, ": line %d, column %d\n", err.Line, err.Column)
	} else if filename != "" {
		fmt.Fprintf(w, " in %s\n", filename)
	} else {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  %s\n", err.Message)

	for _, hint := range err.Hints {
		fmt.Fprintf(w, "  hint: %s\n", hint)
	}

	if err.Line > 0 {
		printSourceContext(w, strings.Split(source, "\n"), err.Line, err.Column)
	}
}

// printSourceContext prints the source line and a pointer to the column.
// Leading indentation is trimmed; tabs count as 8 columns.
func printSourceContext(w io.Writer, lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}
	sourceLine := lines[lineNum-1]

	indent := 0
	for i := 0; i < len(sourceLine) && (sourceLine[i] == ' ' || sourceLine[i] == '\t'); i++ {
		indent += columnWidth(sourceLine[i])
	}
	fmt.Fprintf(w, "    %s\n", strings.TrimLeft(sourceLine, " \t"))

	if colNum > 0 {
		visualCol := 0
		for i := 0; i < colNum-1 && i < len(sourceLine); i++ {
			visualCol += columnWidth(sourceLine[i])
		}
		fmt.Fprintf(w, "    %s^\n", strings.Repeat(" ", max(visualCol-indent, 0)))
	}
}

func columnWidth(ch byte) int {
	if ch == '\t' {
		return 8
	}
	return 1
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `nrx - NRX expression interpreter version %s

Usage:
  nrx [options] [file]
  nrx -e "code"
  nrx --check <file>...
  nrx fmt [-w|-l|-d] <file>...

Commands:
  fmt                   Format NRX source files

Display Options:
  -h, --help            Show this help message
  -V, --version         Show version information

Evaluation Options:
  -e, --eval <code>     Evaluate code string
  -r, --raw             Print string results without quotes
  --check               Check syntax without executing (can specify multiple files)
  --watch               Re-run the script whenever the file changes

Configuration Options:
  --config <path>       Config file (default: $NRX_CONFIG, ./nrx.yaml, ~/.config/nrx/nrx.yaml)
  --profile <name>      Apply a named profile from the config file
  --strict              Reading an unbound symbol is a LookupError
  --timeout <duration>  Maximum evaluation time, e.g. 500ms (0 disables)
  --max-depth <n>       Maximum call depth (0 disables)

Scripts may be plain text, gzip (.gz) or zstd (.zst) compressed.

Examples:
  nrx                          Start interactive REPL
  nrx script.nrx               Execute a script
  nrx -e "1 + 2"               Evaluate inline code (outputs: 3)
  nrx --timeout 1s script.nrx  Stop a script after one second
  nrx --check *.nrx            Check multiple files
  nrx --watch script.nrx       Re-run on every save
  nrx fmt -w script.nrx        Format a script in place
`, Version)
}
