package config

// Patch is a partial SecurityConfig. Scalar fields are pointers so an
// overlay can distinguish "unset" from an explicit zero value; slice fields
// replace the base wholesale when present (nil means untouched).
type Patch struct {
	Enabled *bool `json:"enabled,omitempty"`
	Mode    *Mode `json:"mode,omitempty"`

	Commands     *CommandsPatch     `json:"commands,omitempty"`
	Filesystem   *FilesystemPatch   `json:"filesystem,omitempty"`
	Confirmation *ConfirmationPatch `json:"confirmation,omitempty"`
	Logging      *LoggingPatch      `json:"logging,omitempty"`
}

// CommandsPatch is a partial CommandsConfig.
type CommandsPatch struct {
	SafeList        []string `json:"safe_list,omitempty"`
	BlockedPatterns []string `json:"blocked_patterns,omitempty"`
	TimeoutMs       *int64   `json:"timeout_ms,omitempty"`
}

// FilesystemPatch is a partial FilesystemConfig.
type FilesystemPatch struct {
	AllowedPaths   []string `json:"allowed_paths,omitempty"`
	BlockedPaths   []string `json:"blocked_paths,omitempty"`
	SensitivePaths []string `json:"sensitive_paths,omitempty"`
}

// ConfirmationPatch is a partial ConfirmationConfig.
type ConfirmationPatch struct {
	Strategy         *string `json:"strategy,omitempty"`
	TimeoutMs        *int64  `json:"timeout_ms,omitempty"`
	AutoApprove      *bool   `json:"auto_approve,omitempty"`
	AutoApproveInDev *bool   `json:"auto_approve_in_dev,omitempty"`
	MaxHistory       *int    `json:"max_history,omitempty"`
}

// LoggingPatch is a partial LoggingConfig.
type LoggingPatch struct {
	Level         *string `json:"level,omitempty"`
	EnableFile    *bool   `json:"enable_file,omitempty"`
	EnableConsole *bool   `json:"enable_console,omitempty"`
	Filename      *string `json:"filename,omitempty"`
	LogDir        *string `json:"log_dir,omitempty"`
	MaxSize       *int    `json:"max_size,omitempty"`
	MaxBackups    *int    `json:"max_backups,omitempty"`
	MaxAge        *int    `json:"max_age,omitempty"`
	Compress      *bool   `json:"compress,omitempty"`
	JSONFormat    *bool   `json:"json_format,omitempty"`
	AuditPath     *string `json:"audit_path,omitempty"`
}

// ApplyPatch merges a partial config onto the base, field by field for the
// top level plus the four known sub-sections. Unset overlay fields leave
// the base value untouched. Array-valued fields replace wholesale.
func ApplyPatch(base *SecurityConfig, patch *Patch) {
	if patch == nil {
		return
	}

	if patch.Enabled != nil {
		base.Enabled = *patch.Enabled
	}
	if patch.Mode != nil {
		base.Mode = *patch.Mode
	}

	if p := patch.Commands; p != nil {
		if base.Commands == nil {
			base.Commands = &CommandsConfig{}
		}
		if p.SafeList != nil {
			base.Commands.SafeList = p.SafeList
		}
		if p.BlockedPatterns != nil {
			base.Commands.BlockedPatterns = p.BlockedPatterns
		}
		if p.TimeoutMs != nil {
			base.Commands.TimeoutMs = *p.TimeoutMs
		}
	}

	if p := patch.Filesystem; p != nil {
		if base.Filesystem == nil {
			base.Filesystem = &FilesystemConfig{}
		}
		if p.AllowedPaths != nil {
			base.Filesystem.AllowedPaths = p.AllowedPaths
		}
		if p.BlockedPaths != nil {
			base.Filesystem.BlockedPaths = p.BlockedPaths
		}
		if p.SensitivePaths != nil {
			base.Filesystem.SensitivePaths = p.SensitivePaths
		}
	}

	if p := patch.Confirmation; p != nil {
		if base.Confirmation == nil {
			base.Confirmation = &ConfirmationConfig{}
		}
		if p.Strategy != nil {
			base.Confirmation.Strategy = *p.Strategy
		}
		if p.TimeoutMs != nil {
			base.Confirmation.TimeoutMs = *p.TimeoutMs
		}
		if p.AutoApprove != nil {
			base.Confirmation.AutoApprove = *p.AutoApprove
		}
		if p.AutoApproveInDev != nil {
			base.Confirmation.AutoApproveInDev = *p.AutoApproveInDev
		}
		if p.MaxHistory != nil {
			base.Confirmation.MaxHistory = *p.MaxHistory
		}
	}

	if p := patch.Logging; p != nil {
		if base.Logging == nil {
			base.Logging = &LoggingConfig{}
		}
		if p.Level != nil {
			base.Logging.Level = *p.Level
		}
		if p.EnableFile != nil {
			base.Logging.EnableFile = *p.EnableFile
		}
		if p.EnableConsole != nil {
			base.Logging.EnableConsole = *p.EnableConsole
		}
		if p.Filename != nil {
			base.Logging.Filename = *p.Filename
		}
		if p.LogDir != nil {
			base.Logging.LogDir = *p.LogDir
		}
		if p.MaxSize != nil {
			base.Logging.MaxSize = *p.MaxSize
		}
		if p.MaxBackups != nil {
			base.Logging.MaxBackups = *p.MaxBackups
		}
		if p.MaxAge != nil {
			base.Logging.MaxAge = *p.MaxAge
		}
		if p.Compress != nil {
			base.Logging.Compress = *p.Compress
		}
		if p.JSONFormat != nil {
			base.Logging.JSONFormat = *p.JSONFormat
		}
		if p.AuditPath != nil {
			base.Logging.AuditPath = *p.AuditPath
		}
	}
}
