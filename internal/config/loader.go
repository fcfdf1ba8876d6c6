package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
)

const (
	// ConfigFileName is the canonical config file name.
	ConfigFileName = "mcp-security.json"

	trueValue = "true"
)

// Environment variable overrides, applied after the file merge and before
// the platform override merge.
const (
	EnvEnabled        = "MCP_SECURITY_ENABLED"
	EnvMode           = "MCP_SECURITY_MODE"
	EnvConfirmation   = "MCP_SECURITY_CONFIRMATION"
	EnvAutoApproveDev = "MCP_SECURITY_AUTO_APPROVE_DEV"
	EnvLogPath        = "MCP_SECURITY_LOG_PATH"
)

// candidateLocations returns the ordered list of places a config file is
// looked for when no explicit path is given.
func candidateLocations() []string {
	locations := []string{
		ConfigFileName,
		filepath.Join("config", ConfigFileName),
		"." + ConfigFileName,
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, "."+ConfigFileName))
	}
	return locations
}

// Load builds the effective configuration: built-in defaults, overlaid by
// the first discovered config file, then environment variables, then the
// platform override block for the running OS. A missing or unreadable file
// is never fatal; the loader logs a warning and continues with what it has.
// Validation failures on the fully-merged result are returned to the caller.
func Load(logger *zap.Logger) (*SecurityConfig, error) {
	return load("", logger)
}

// LoadFromFile is Load with an explicit config file path. The file must
// parse if it exists; discovery is skipped.
func LoadFromFile(path string, logger *zap.Logger) (*SecurityConfig, error) {
	return load(path, logger)
}

func load(explicitPath string, logger *zap.Logger) (*SecurityConfig, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := DefaultConfig()

	path := explicitPath
	if path == "" {
		path = discoverConfigFile()
	}
	if path != "" {
		if err := loadConfigFile(path, cfg); err != nil {
			// Corrupt or unreadable config files fall back to defaults so
			// a bad file never blocks process startup.
			logger.Warn("failed to load security config file, using defaults",
				zap.String("path", path),
				zap.Error(err))
			cfg = DefaultConfig()
		} else {
			logger.Debug("loaded security config file", zap.String("path", path))
		}
	}

	applyEnvOverrides(cfg)
	applyPlatformOverride(cfg, runtime.GOOS)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func discoverConfigFile() string {
	for _, location := range candidateLocations() {
		if info, err := os.Stat(location); err == nil && !info.IsDir() {
			return location
		}
	}
	return ""
}

func loadConfigFile(path string, cfg *SecurityConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// An empty file means "use defaults only".
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies the fixed set of environment variable overrides.
func applyEnvOverrides(cfg *SecurityConfig) {
	if value := os.Getenv(EnvEnabled); value != "" {
		cfg.Enabled = value == trueValue || value == "1"
	}

	if value := os.Getenv(EnvMode); value != "" {
		cfg.Mode = Mode(value)
	}

	if value := os.Getenv(EnvConfirmation); value != "" {
		if cfg.Confirmation == nil {
			cfg.Confirmation = &ConfirmationConfig{}
		}
		cfg.Confirmation.Strategy = value
	}

	if value := os.Getenv(EnvAutoApproveDev); value != "" {
		if cfg.Confirmation == nil {
			cfg.Confirmation = &ConfirmationConfig{}
		}
		cfg.Confirmation.AutoApproveInDev = value == trueValue || value == "1"
	}

	if value := os.Getenv(EnvLogPath); value != "" {
		if cfg.Logging == nil {
			cfg.Logging = &LoggingConfig{}
		}
		cfg.Logging.AuditPath = value
	}
}

// applyPlatformOverride merges the override block matching the running OS,
// if any. Config files use node-style platform keys (darwin, win32, linux);
// "windows" is accepted as an alias for win32.
func applyPlatformOverride(cfg *SecurityConfig, goos string) {
	if len(cfg.PlatformOverrides) == 0 {
		return
	}

	keys := []string{goos}
	if goos == "windows" {
		keys = append(keys, "win32")
	}

	for _, key := range keys {
		if patch, ok := cfg.PlatformOverrides[key]; ok {
			ApplyPatch(cfg, patch)
			return
		}
	}
}

// Save writes the configuration as pretty-printed JSON. When path is empty
// the canonical home-directory location is used. The file is written to a
// temporary sibling and renamed so a concurrent reader never observes a
// partially-written config.
func Save(cfg *SecurityConfig, path string) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, "."+ConfigFileName)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close config file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace config file: %w", err)
	}

	return nil
}
