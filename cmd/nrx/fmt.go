package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/format"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/nrx"
)

var errHasComments = errors.New("file contains comments, which the formatter does not preserve")

// fmtCommand handles the 'nrx fmt' subcommand
func fmtCommand(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(stderr)
	writeFlag := fs.Bool("w", false, "Write result to source file instead of stdout")
	diffFlag := fs.Bool("d", false, "Display diffs instead of rewriting files")
	listFlag := fs.Bool("l", false, "List files whose formatting differs from nrx fmt's")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `nrx fmt - format NRX source files

Usage:
  nrx fmt [options] <file>...

Options:
  -w    Write result to source file instead of stdout
  -d    Display diffs instead of rewriting files
  -l    List files whose formatting differs from nrx fmt's

Comments are not preserved, so -w refuses to rewrite files that have them.
`)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		fs.Usage()
		return exitUsage
	}

	code := exitOK
	for _, filename := range files {
		if err := formatFile(filename, *writeFlag, *diffFlag, *listFlag, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "Error formatting %s: %v\n", filename, err)
			code = exitFailure
		}
	}
	return code
}

// formatFile formats a single file
func formatFile(filename string, write, diff, list bool, stdout, stderr io.Writer) error {
	source, err := nrx.ReadSource(filename)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	formatted, perr := format.Source(source)
	if perr != nil {
		printStructuredError(stderr, source, perr)
		return fmt.Errorf("parse errors")
	}
	changed := formatted != source

	switch {
	case list:
		if changed {
			fmt.Fprintln(stdout, filename)
		}
	case diff:
		if changed {
			showDiff(stdout, filename, source, formatted)
		}
	case write:
		if !changed {
			return nil
		}
		if format.HasComments(source) {
			return errHasComments
		}
		if strings.HasSuffix(filename, ".gz") || strings.HasSuffix(filename, ".zst") {
			return fmt.Errorf("cannot rewrite compressed files")
		}
		if err := os.WriteFile(filename, []byte(formatted), 0644); err != nil {
			return fmt.Errorf("writing file: %w", err)
		}
	default:
		fmt.Fprint(stdout, formatted)
	}
	return nil
}

// showDiff displays a simple line-by-line diff
func showDiff(w io.Writer, filename, original, formatted string) {
	fmt.Fprintf(w, "diff %s\n", filename)

	origLines := strings.Split(original, "\n")
	fmtLines := strings.Split(formatted, "\n")

	for i, n := 0, max(len(origLines), len(fmtLines)); i < n; i++ {
		origLine, fmtLine := "", ""
		if i < len(origLines) {
			origLine = origLines[i]
		}
		if i < len(fmtLines) {
			fmtLine = fmtLines[i]
		}
		if origLine == fmtLine {
			continue
		}
		if origLine != "" {
			fmt.Fprintf(w, "-%d: %s\n", i+1, origLine)
		}
		if fmtLine != "" {
			fmt.Fprintf(w, "+%d: %s\n", i+1, fmtLine)
		}
	}
}
