// Package guard classifies shell commands and filesystem paths requested
// by an agent before they execute. It decides allow/block/needs-confirmation
// and assigns a risk level; it never performs the operation itself.
package guard

// RiskLevel represents the assessed risk of an operation.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Severity returns a numeric rank for ordering risk levels.
// Higher value = more severe.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	default:
		return 0
	}
}

// Op is the kind of filesystem operation being validated.
type Op string

const (
	OpRead   Op = "read"
	OpWrite  Op = "write"
	OpDelete Op = "delete"
)

// Context identifies who is asking. It is carried through every decision
// for audit correlation and is immutable per call.
type Context struct {
	AgentID     string   `json:"agent_id"`
	ChannelID   string   `json:"channel_id"`
	RequestID   string   `json:"request_id"`
	UserID      string   `json:"user_id,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// CommandResult is the verdict for a command validation.
// Allowed=false is terminal: a blocked command never carries
// RequiresConfirmation=true.
type CommandResult struct {
	Allowed              bool      `json:"allowed"`
	Reason               string    `json:"reason,omitempty"`
	RequiresConfirmation bool      `json:"requires_confirmation,omitempty"`
	Risk                 RiskLevel `json:"risk_level,omitempty"`
}

// PathResult is the verdict for a path validation. ResolvedPath is the
// canonical absolute path the checks actually ran against, so callers can
// audit the real target rather than the raw input.
type PathResult struct {
	Allowed      bool   `json:"allowed"`
	Reason       string `json:"reason,omitempty"`
	ResolvedPath string `json:"resolved_path,omitempty"`
}
