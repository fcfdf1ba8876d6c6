// Package config loads, merges, and validates the security policy that
// drives the guardrail pipeline. The merged configuration is built once at
// process start from defaults, an optional JSON config file, environment
// variables, and a platform-specific override block, in that order of
// precedence.
package config

import (
	"fmt"
)

// Mode sets the risk level the guard assigns to commands no rule table
// recognizes: strict treats them as high risk, moderate as medium,
// permissive as low. Unknown commands require confirmation in every mode;
// the mode only shifts how risk-based strategies resolve that ask.
type Mode string

const (
	ModeStrict     Mode = "strict"
	ModeModerate   Mode = "moderate"
	ModePermissive Mode = "permissive"
)

// Known confirmation strategy names.
const (
	StrategyInteractive = "interactive"
	StrategyPolicy      = "policy"
	StrategyLogging     = "logging"
	// StrategyDisabled switches the approval channel off, not the checks:
	// any operation that reaches confirmation is denied. To skip guard
	// validation entirely, set Enabled to false instead.
	StrategyDisabled = "disabled"
)

// SecurityConfig is the root configuration structure.
type SecurityConfig struct {
	Enabled bool `json:"enabled"`
	Mode    Mode `json:"mode"`

	Commands     *CommandsConfig     `json:"commands,omitempty"`
	Filesystem   *FilesystemConfig   `json:"filesystem,omitempty"`
	Confirmation *ConfirmationConfig `json:"confirmation,omitempty"`
	Logging      *LoggingConfig      `json:"logging,omitempty"`

	// PlatformOverrides are partial configs applied on top of everything
	// else when the running OS matches the key (darwin, win32, linux).
	PlatformOverrides map[string]*Patch `json:"platformOverrides,omitempty"`
}

// CommandsConfig tunes command validation.
type CommandsConfig struct {
	// SafeList extends the built-in safe command allowlist.
	SafeList []string `json:"safe_list,omitempty"`
	// BlockedPatterns extends the built-in dangerous substring list.
	BlockedPatterns []string `json:"blocked_patterns,omitempty"`
	// TimeoutMs is an advisory execution timeout surfaced to callers.
	TimeoutMs int64 `json:"timeout_ms,omitempty"`
}

// FilesystemConfig tunes path validation.
type FilesystemConfig struct {
	// AllowedPaths are roots where all operations are permitted. The
	// project root is always included by the guard.
	AllowedPaths []string `json:"allowed_paths,omitempty"`
	// BlockedPaths extend the built-in OS-critical directory list.
	BlockedPaths []string `json:"blocked_paths,omitempty"`
	// SensitivePaths extend the built-in read-only sensitive directories.
	SensitivePaths []string `json:"sensitive_paths,omitempty"`
}

// ConfirmationConfig tunes the confirmation workflow.
type ConfirmationConfig struct {
	Strategy  string `json:"strategy"`
	TimeoutMs int64  `json:"timeout_ms"`
	// AutoApprove is the fixed decision used by the logging strategy.
	AutoApprove bool `json:"auto_approve"`
	// AutoApproveInDev lets the policy strategy approve medium-risk
	// operations without asking. Off by default; opt-in only.
	AutoApproveInDev bool `json:"auto_approve_in_dev"`
	MaxHistory       int  `json:"max_history"`
}

// LoggingConfig mirrors the logger setup knobs.
type LoggingConfig struct {
	Level         string `json:"level"`
	EnableFile    bool   `json:"enable_file"`
	EnableConsole bool   `json:"enable_console"`
	Filename      string `json:"filename"`
	LogDir        string `json:"log_dir,omitempty"`
	MaxSize       int    `json:"max_size"`    // MB
	MaxBackups    int    `json:"max_backups"` // number of backup files
	MaxAge        int    `json:"max_age"`     // days
	Compress      bool   `json:"compress"`
	JSONFormat    bool   `json:"json_format"`
	// AuditPath is where the audit store keeps its database.
	AuditPath string `json:"audit_path,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *SecurityConfig {
	return &SecurityConfig{
		Enabled: true,
		Mode:    ModeModerate,
		Commands: &CommandsConfig{
			TimeoutMs: 30000,
		},
		Filesystem: &FilesystemConfig{},
		Confirmation: &ConfirmationConfig{
			Strategy:         StrategyInteractive,
			TimeoutMs:        30000,
			AutoApprove:      false,
			AutoApproveInDev: false,
			MaxHistory:       100,
		},
		Logging: &LoggingConfig{
			Level:         "info",
			EnableFile:    false,
			EnableConsole: true,
			Filename:      "mcpguard.log",
			MaxSize:       10,
			MaxBackups:    5,
			MaxAge:        30,
			Compress:      true,
			JSONFormat:    false,
		},
	}
}

// ValidationError describes a configuration field that failed validation.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s (got %v)", e.Field, e.Message, e.Value)
}

// Validate checks the merged configuration. It is called after all merge
// layers have been applied and before the config is handed to callers.
func (c *SecurityConfig) Validate() error {
	switch c.Mode {
	case ModeStrict, ModeModerate, ModePermissive:
	default:
		return &ValidationError{
			Field:   "mode",
			Value:   c.Mode,
			Message: "must be one of strict, moderate, permissive",
		}
	}

	if c.Confirmation != nil {
		switch c.Confirmation.Strategy {
		case StrategyInteractive, StrategyPolicy, StrategyLogging, StrategyDisabled:
		default:
			return &ValidationError{
				Field:   "confirmation.strategy",
				Value:   c.Confirmation.Strategy,
				Message: "must be one of interactive, policy, logging, disabled",
			}
		}
		if c.Confirmation.TimeoutMs < 0 {
			return &ValidationError{
				Field:   "confirmation.timeout_ms",
				Value:   c.Confirmation.TimeoutMs,
				Message: "must be non-negative",
			}
		}
	}

	if c.Commands != nil && c.Commands.TimeoutMs < 0 {
		return &ValidationError{
			Field:   "commands.timeout_ms",
			Value:   c.Commands.TimeoutMs,
			Message: "must be non-negative",
		}
	}

	return nil
}
