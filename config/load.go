package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no config file was given and none exists in
// the default locations.
var ErrNotFound = errors.New("no config file found (tried NRX_CONFIG, nrx.yaml, ~/.config/nrx/nrx.yaml)")

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the resolved path.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data, getenv)
	if err != nil {
		return nil, "", err
	}
	cfg.BaseDir = filepath.Dir(absPath)
	cfg.resolvePaths()

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, absPath, nil
}

// Parse decodes YAML config data over the defaults after interpolating
// environment variables. Relative paths are left as they are.
func Parse(data []byte, getenv func(string) string) (*Config, error) {
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// resolvePaths makes file paths relative to the config file's directory.
func (cfg *Config) resolvePaths() {
	if cfg.Delegate.Driver == "sqlite" && isFilePath(cfg.Delegate.DSN) {
		cfg.Delegate.DSN = cfg.resolve(cfg.Delegate.DSN)
	}
	if isFilePath(cfg.Logging.Output) {
		cfg.Logging.Output = cfg.resolve(cfg.Logging.Output)
	}
	if isFilePath(cfg.Logging.Print) {
		cfg.Logging.Print = cfg.resolve(cfg.Logging.Print)
	}
	if cfg.REPL.HistoryFile != "" && !strings.HasPrefix(cfg.REPL.HistoryFile, "~") {
		cfg.REPL.HistoryFile = cfg.resolve(cfg.REPL.HistoryFile)
	}
}

func (cfg *Config) resolve(path string) string {
	if filepath.IsAbs(path) || cfg.BaseDir == "" {
		return path
	}
	return filepath.Join(cfg.BaseDir, path)
}

// isFilePath reports whether a DSN or output setting names a plain file.
func isFilePath(s string) bool {
	switch s {
	case "", "stdout", "stderr", ":memory:":
		return false
	}
	return !strings.HasPrefix(s, "file:")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > NRX_CONFIG env > ./nrx.yaml > ~/.config/nrx/nrx.yaml
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("NRX_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("NRX_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("nrx.yaml"); err == nil {
		return "nrx.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "nrx", "nrx.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", ErrNotFound
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}
		return []byte(value)
	})
}

// Validate checks the configuration for errors.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Interpreter.MaxEvaluationTime < 0 {
		errs = append(errs, fmt.Sprintf("invalid max_evaluation_time: %s (must not be negative)", cfg.Interpreter.MaxEvaluationTime))
	}
	if cfg.Interpreter.MaxCallDepth < 0 {
		errs = append(errs, fmt.Sprintf("invalid max_call_depth: %d (must not be negative)", cfg.Interpreter.MaxCallDepth))
	}

	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if cfg.Delegate.Enabled() && !validDrivers[cfg.Delegate.Driver] {
		errs = append(errs, fmt.Sprintf("invalid delegate driver: %s (must be sqlite, postgres, or mysql)", cfg.Delegate.Driver))
	}
	if cfg.Delegate.SymbolsTable != "" && !identifierPattern.MatchString(cfg.Delegate.SymbolsTable) {
		errs = append(errs, fmt.Sprintf("invalid symbols_table: %q (must be a plain identifier)", cfg.Delegate.SymbolsTable))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be json or text)", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ApplyProfile applies a named profile to the configuration.
// Only non-zero values in the profile override the base config.
// Returns an error if the profile name doesn't exist.
func ApplyProfile(cfg *Config, profileName string) error {
	if cfg.Profiles == nil {
		return fmt.Errorf("no profiles defined in config")
	}

	profile, ok := cfg.Profiles[profileName]
	if !ok {
		var names []string
		for name := range cfg.Profiles {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("unknown profile %q (available: %s)", profileName, strings.Join(names, ", "))
	}

	if profile.MaxEvaluationTime != 0 {
		cfg.Interpreter.MaxEvaluationTime = profile.MaxEvaluationTime
	}
	if profile.MaxCallDepth != 0 {
		cfg.Interpreter.MaxCallDepth = profile.MaxCallDepth
	}
	if profile.StrictSymbols {
		cfg.Interpreter.StrictSymbols = true
	}
	if profile.DSN != "" {
		cfg.Delegate.DSN = profile.DSN
		if cfg.Delegate.Driver == "sqlite" && isFilePath(profile.DSN) {
			cfg.Delegate.DSN = cfg.resolve(profile.DSN)
		}
	}

	if profile.Logging.Level != "" {
		cfg.Logging.Level = profile.Logging.Level
	}
	if profile.Logging.Format != "" {
		cfg.Logging.Format = profile.Logging.Format
	}
	if profile.Logging.Output != "" {
		cfg.Logging.Output = profile.Logging.Output
	}
	if profile.Logging.Print != "" {
		cfg.Logging.Print = profile.Logging.Print
	}

	return Validate(cfg)
}
