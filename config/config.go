package config

import "time"

// Config represents the complete NRX configuration
type Config struct {
	BaseDir     string                   `yaml:"-"` // Directory containing config file, for resolving relative paths
	Interpreter InterpreterConfig        `yaml:"interpreter"`
	Globals     map[string]any           `yaml:"globals"` // Seeded into the global scope of every run
	Delegate    DelegateConfig           `yaml:"delegate"`
	Logging     LoggingConfig            `yaml:"logging"`
	REPL        REPLConfig               `yaml:"repl"`
	Profiles    map[string]ProfileConfig `yaml:"profiles"` // Named overrides selected with --profile
}

// InterpreterConfig holds the evaluation budgets
type InterpreterConfig struct {
	MaxEvaluationTime time.Duration `yaml:"max_evaluation_time"` // Wall-clock budget per run, 0 disables (default: 10s)
	MaxCallDepth      int           `yaml:"max_call_depth"`      // Nested call limit, 0 disables (default: 500)
	StrictSymbols     bool          `yaml:"strict_symbols"`      // Unbound symbols raise LookupError instead of reading as null
}

// DelegateConfig selects the SQL database that resolves unbound symbols and
// $lookup paths
type DelegateConfig struct {
	Driver       string `yaml:"driver"`        // sqlite, postgres or mysql (default: sqlite)
	DSN          string `yaml:"dsn"`           // Connection string; empty disables the delegate
	SymbolsTable string `yaml:"symbols_table"` // Table with name/value columns (default: "symbols")
}

// Enabled reports whether a database is configured.
func (d DelegateConfig) Enabled() bool {
	return d.DSN != ""
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
	Output string `yaml:"output"` // stderr, stdout, or file path for run records
	Print  string `yaml:"print"`  // stdout, stderr, or file path for print output
}

// REPLConfig holds interactive shell settings
type REPLConfig struct {
	HistoryFile string `yaml:"history_file"` // Empty disables history
	Prompt      string `yaml:"prompt"`
}

// ProfileConfig holds per-profile overrides.
// All fields are optional - only non-zero values override the base config
type ProfileConfig struct {
	MaxEvaluationTime time.Duration `yaml:"max_evaluation_time"`
	MaxCallDepth      int           `yaml:"max_call_depth"`
	StrictSymbols     bool          `yaml:"strict_symbols"`
	DSN               string        `yaml:"dsn"`
	Logging           LoggingConfig `yaml:"logging"`
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Interpreter: InterpreterConfig{
			MaxEvaluationTime: 10 * time.Second,
			MaxCallDepth:      500,
		},
		Delegate: DelegateConfig{
			Driver:       "sqlite",
			SymbolsTable: "symbols",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
			Print:  "stdout",
		},
		REPL: REPLConfig{
			HistoryFile: "~/.nrx_history",
			Prompt:      ">> ",
		},
	}
}
