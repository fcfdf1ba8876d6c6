package confirm

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mcp-guard/mcpguard-go/internal/guard"
)

// Rule is a deterministic predicate over a request's details. The first
// matching rule for the request's type decides the outcome.
type Rule struct {
	Name    string
	Matches func(*Request) bool
	Approve bool
}

// Policy resolves requests synchronously from rule tables keyed by request
// type, falling back to a risk-based default when no rule matches: low
// approves, medium approves only when the host is flagged as a development
// environment, high and critical always deny.
type Policy struct {
	logger         *zap.Logger
	autoApproveDev bool
	projectRoot    string
	rules          map[Type][]Rule
}

// NewPolicy creates a policy strategy with the default rule tables.
// autoApproveDev is the explicit opt-in for approving medium-risk
// operations without asking; it should be false outside development.
// projectRoot bounds the file-operation rule; when empty, no file write is
// auto-approved by path.
func NewPolicy(autoApproveDev bool, projectRoot string, logger *zap.Logger) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}
	if projectRoot != "" {
		projectRoot = filepath.Clean(projectRoot)
	}
	p := &Policy{
		logger:         logger,
		autoApproveDev: autoApproveDev,
		projectRoot:    projectRoot,
	}
	p.rules = p.defaultRules()
	return p
}

// Name implements Strategy.
func (s *Policy) Name() string { return "policy" }

// AddRule appends a rule to the table for the given request type. Custom
// rules are consulted after the defaults.
func (s *Policy) AddRule(typ Type, rule Rule) {
	s.rules[typ] = append(s.rules[typ], rule)
}

// Decide implements Strategy.
func (s *Policy) Decide(req *Request) (bool, error) {
	for _, rule := range s.rules[req.Type] {
		if rule.Matches(req) {
			s.logger.Debug("policy rule matched",
				zap.String("request_id", req.ID),
				zap.String("rule", rule.Name),
				zap.Bool("approve", rule.Approve))
			return rule.Approve, nil
		}
	}

	switch req.Details.Risk {
	case guard.RiskLow:
		return true, nil
	case guard.RiskMedium:
		return s.autoApproveDev, nil
	default:
		return false, nil
	}
}

// packageManagers are base commands whose read-only subcommands are safe to
// auto-approve.
var packageManagers = map[string]bool{
	"npm":    true,
	"yarn":   true,
	"pnpm":   true,
	"pip":    true,
	"pip3":   true,
	"go":     true,
	"cargo":  true,
	"gem":    true,
	"brew":   true,
	"poetry": true,
}

// readOnlySubcommands are package-manager subcommands that only inspect
// state.
var readOnlySubcommands = map[string]bool{
	"list":      true,
	"ls":        true,
	"info":      true,
	"show":      true,
	"view":      true,
	"search":    true,
	"outdated":  true,
	"audit":     true,
	"verify":    true,
	"version":   true,
	"--version": true,
	"help":      true,
	"--help":    true,
}

func (s *Policy) defaultRules() map[Type][]Rule {
	return map[Type][]Rule{
		TypeCommand: {
			{
				Name:    "package-manager-read",
				Approve: true,
				Matches: func(req *Request) bool {
					fields := strings.Fields(strings.ToLower(req.Details.Command))
					if len(fields) < 2 {
						return false
					}
					return packageManagers[fields[0]] && readOnlySubcommands[fields[1]]
				},
			},
			{
				Name:    "git-operation",
				Approve: true,
				Matches: func(req *Request) bool {
					fields := strings.Fields(strings.ToLower(req.Details.Command))
					return len(fields) > 0 && fields[0] == "git"
				},
			},
		},
		TypeFileOperation: {
			{
				Name:    "in-project-write",
				Approve: true,
				Matches: func(req *Request) bool {
					if req.Details.Action == string(guard.OpDelete) {
						return false
					}
					if req.Details.Risk.Severity() > guard.RiskMedium.Severity() {
						return false
					}
					return s.underProject(req.Details.Path)
				},
			},
		},
	}
}

// underProject reports whether path sits at or beneath the configured
// project root.
func (s *Policy) underProject(path string) bool {
	if s.projectRoot == "" || path == "" {
		return false
	}
	path = filepath.Clean(path)
	if path == s.projectRoot {
		return true
	}
	return strings.HasPrefix(path, s.projectRoot+string(filepath.Separator))
}
