package guard

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mcp-guard/mcpguard-go/internal/config"
)

// ValidateCommand classifies a raw command string. Checks run in a fixed
// priority order; the first match wins:
//
//  1. safe allowlist (still scanned for dangerous patterns)
//  2. cross-platform dangerous substrings
//  3. platform rule table (blocked, then restricted)
//  4. shell metacharacters
//  5. ask-by-default fallback for anything unrecognized
func (g *Guard) ValidateCommand(raw string, ctx Context) CommandResult {
	if !g.enabled {
		return CommandResult{
			Allowed: true,
			Reason:  "security validation is disabled",
			Risk:    RiskLow,
		}
	}

	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return CommandResult{
			Allowed: false,
			Reason:  "empty command",
			Risk:    RiskLow,
		}
	}

	fields := strings.Fields(normalized)
	base := fields[0]

	result := g.classifyCommand(normalized, base)

	g.logger.Debug("command validated",
		zap.String("agent_id", ctx.AgentID),
		zap.String("request_id", ctx.RequestID),
		zap.String("base_command", base),
		zap.Bool("allowed", result.Allowed),
		zap.Bool("requires_confirmation", result.RequiresConfirmation),
		zap.String("risk", string(result.Risk)))

	return result
}

func (g *Guard) classifyCommand(normalized, base string) CommandResult {
	// Safe base commands still get the dangerous-pattern scan: "find / rm"
	// tricks and pipe-to-shell payloads hide behind harmless first tokens.
	if safeCommands[base] || g.extraSafe[base] {
		if pattern := matchDangerousPattern(normalized); pattern != "" {
			return CommandResult{
				Allowed: false,
				Reason:  fmt.Sprintf("command matches dangerous pattern: %s", pattern),
				Risk:    RiskCritical,
			}
		}
		return CommandResult{
			Allowed: true,
			Risk:    RiskLow,
		}
	}

	for _, substr := range dangerousSubstrings {
		if strings.Contains(normalized, substr) {
			return CommandResult{
				Allowed: false,
				Reason:  fmt.Sprintf("command contains dangerous operation: %q", substr),
				Risk:    RiskCritical,
			}
		}
	}
	for _, substr := range g.extraBlocked {
		if strings.Contains(normalized, strings.ToLower(substr)) {
			return CommandResult{
				Allowed: false,
				Reason:  fmt.Sprintf("command blocked by configured pattern: %q", substr),
				Risk:    RiskCritical,
			}
		}
	}

	rules := commandRules[g.platform]
	for _, substr := range rules.blocked {
		if strings.Contains(normalized, substr) {
			return CommandResult{
				Allowed: false,
				Reason:  fmt.Sprintf("command is blocked on %s: %q", g.platform, substr),
				Risk:    RiskCritical,
			}
		}
	}
	for _, restricted := range rules.restricted {
		if base == restricted.command {
			return CommandResult{
				Allowed:              true,
				Reason:               fmt.Sprintf("%s is restricted on %s", base, g.platform),
				RequiresConfirmation: true,
				Risk:                 restricted.risk,
			}
		}
	}

	if meta := matchShellMetacharacter(normalized); meta != "" {
		return CommandResult{
			Allowed:              true,
			Reason:               fmt.Sprintf("command uses shell control operator %q", meta),
			RequiresConfirmation: true,
			Risk:                 g.fallbackRisk(),
		}
	}

	// Unknown commands are never silently auto-approved: fail toward
	// asking rather than toward blocking or allowing.
	return CommandResult{
		Allowed:              true,
		Reason:               fmt.Sprintf("unrecognized command %q requires confirmation", base),
		RequiresConfirmation: true,
		Risk:                 g.fallbackRisk(),
	}
}

// fallbackRisk is the risk assigned to commands no table recognizes. The
// mode knob moves it: strict pushes unknowns to high so risk-based
// strategies deny them, permissive drops them to low so they pass, and
// moderate leaves the decision to the strategy's medium handling.
func (g *Guard) fallbackRisk() RiskLevel {
	switch g.mode {
	case config.ModeStrict:
		return RiskHigh
	case config.ModePermissive:
		return RiskLow
	default:
		return RiskMedium
	}
}

func matchDangerousPattern(normalized string) string {
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(normalized) {
			return pattern.String()
		}
	}
	return ""
}

func matchShellMetacharacter(normalized string) string {
	for _, meta := range shellMetacharacters {
		if strings.Contains(normalized, meta) {
			return meta
		}
	}
	return ""
}
