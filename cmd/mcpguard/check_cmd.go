package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mcp-guard/mcpguard-go/internal/audit"
	"github.com/mcp-guard/mcpguard-go/internal/confirm"
	"github.com/mcp-guard/mcpguard-go/internal/config"
	"github.com/mcp-guard/mcpguard-go/internal/guard"
	"github.com/mcp-guard/mcpguard-go/internal/logs"
)

var (
	agentID        string
	confirmTimeout time.Duration
	autoApprove    bool
)

func checkCommandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-command <command...>",
		Short: "Validate a shell command against the security policy",
		Long: `Validate a shell command. If the policy requires confirmation, the
configured strategy resolves it: interactive prompts on the terminal,
policy applies deterministic rules, logging records and auto-decides,
and disabled denies anything that asks (turn off the enabled flag to
skip validation entirely).`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheckCommand,
	}
	cmd.Flags().StringVar(&agentID, "agent-id", "cli", "Agent identifier recorded in the audit trail")
	cmd.Flags().DurationVar(&confirmTimeout, "timeout", 0, "Confirmation timeout (default: from config)")
	cmd.Flags().BoolVar(&autoApprove, "yes", false, "Force the logging strategy with auto-approve")
	return cmd
}

func checkPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "check-path <read|write|delete> <path>",
		Short:     "Validate a filesystem path against the security policy",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"read", "write", "delete"},
		RunE:      runCheckPath,
	}
	cmd.Flags().StringVar(&agentID, "agent-id", "cli", "Agent identifier recorded in the audit trail")
	return cmd
}

type pipeline struct {
	cfg     *config.SecurityConfig
	logger  *zap.Logger
	guard   *guard.Guard
	manager *confirm.Manager
	store   *audit.Store
}

func (p *pipeline) close() {
	if p.store != nil {
		p.store.Close()
	}
	_ = p.logger.Sync()
}

func buildPipeline(forceAutoApprove bool) (*pipeline, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logs.SetupCommandLogger(logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	p := &pipeline{
		cfg:    cfg,
		logger: logger,
		guard:  guard.New(cfg, resolveProjectRoot(), logger),
	}

	if cfg.Logging != nil && cfg.Logging.AuditPath != "" {
		store, err := audit.NewStore(cfg.Logging.AuditPath, logger)
		if err != nil {
			logger.Warn("audit store unavailable, continuing without it", zap.Error(err))
		} else {
			p.store = store
		}
	}

	strategyName := config.StrategyInteractive
	if cfg.Confirmation != nil && cfg.Confirmation.Strategy != "" {
		strategyName = cfg.Confirmation.Strategy
	}
	if forceAutoApprove {
		strategyName = config.StrategyLogging
	}

	var strategy confirm.Strategy
	switch strategyName {
	case config.StrategyPolicy:
		strategy = confirm.NewPolicy(cfg.Confirmation != nil && cfg.Confirmation.AutoApproveInDev, resolveProjectRoot(), logger)
	case config.StrategyLogging:
		approve := forceAutoApprove || (cfg.Confirmation != nil && cfg.Confirmation.AutoApprove)
		var sink confirm.AuditSink
		if p.store != nil {
			sink = p.store
		}
		strategy = confirm.NewLogging(approve, sink, logger)
	case config.StrategyDisabled:
		strategy = confirm.NewLogging(false, nil, logger)
	default:
		interactive := confirm.NewInteractive(logger)
		go promptLoop(interactive)
		strategy = interactive
	}

	var opts []confirm.Option
	if cfg.Confirmation != nil && cfg.Confirmation.MaxHistory > 0 {
		opts = append(opts, confirm.WithMaxHistory(cfg.Confirmation.MaxHistory))
	}
	p.manager = confirm.NewManager(strategy, logger, opts...)

	return p, nil
}

func (p *pipeline) timeout() time.Duration {
	if confirmTimeout > 0 {
		return confirmTimeout
	}
	if p.cfg.Confirmation != nil && p.cfg.Confirmation.TimeoutMs > 0 {
		return time.Duration(p.cfg.Confirmation.TimeoutMs) * time.Millisecond
	}
	return 30 * time.Second
}

func runCheckCommand(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline(autoApprove)
	if err != nil {
		return err
	}
	defer p.close()

	command := strings.Join(args, " ")
	ctx := guard.Context{
		AgentID:   agentID,
		RequestID: uuid.NewString(),
	}

	result := p.guard.ValidateCommand(command, ctx)
	p.recordVerdict(&audit.Verdict{
		Kind:    audit.VerdictCommand,
		Input:   command,
		Allowed: result.Allowed,
		Reason:  result.Reason,
		Risk:    result.Risk,
		Context: ctx,
	})

	printResult(result)

	if !result.Allowed {
		return exitWithCode(ExitCodeBlocked)
	}

	if result.RequiresConfirmation {
		approved := p.manager.Request(confirm.TypeCommand, "execute command", confirm.Details{
			Command: command,
			Risk:    result.Risk,
			Reason:  result.Reason,
		}, ctx, p.timeout())
		if !approved {
			fmt.Println("operation not confirmed in time")
			return exitWithCode(ExitCodeDenied)
		}
		fmt.Println("confirmed")
	}

	return nil
}

func runCheckPath(cmd *cobra.Command, args []string) error {
	op := guard.Op(args[0])
	switch op {
	case guard.OpRead, guard.OpWrite, guard.OpDelete:
	default:
		return fmt.Errorf("unknown operation %q, expected read, write, or delete", args[0])
	}

	p, err := buildPipeline(false)
	if err != nil {
		return err
	}
	defer p.close()

	ctx := guard.Context{
		AgentID:   agentID,
		RequestID: uuid.NewString(),
	}

	result := p.guard.ValidatePath(args[1], op, ctx)
	p.recordVerdict(&audit.Verdict{
		Kind:         audit.VerdictPath,
		Input:        args[1],
		Operation:    string(op),
		Allowed:      result.Allowed,
		Reason:       result.Reason,
		ResolvedPath: result.ResolvedPath,
		Context:      ctx,
	})

	printResult(result)

	if !result.Allowed {
		return exitWithCode(ExitCodeBlocked)
	}
	return nil
}

func (p *pipeline) recordVerdict(v *audit.Verdict) {
	if p.store == nil {
		return
	}
	if err := p.store.RecordVerdict(v); err != nil {
		p.logger.Warn("failed to record verdict", zap.Error(err))
	}
}

func printResult(result any) {
	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err == nil {
			fmt.Println(string(data))
		}
		return
	}

	switch r := result.(type) {
	case guard.CommandResult:
		if !r.Allowed {
			fmt.Printf("BLOCKED (%s): %s\n", r.Risk, r.Reason)
		} else if r.RequiresConfirmation {
			fmt.Printf("NEEDS CONFIRMATION (%s): %s\n", r.Risk, r.Reason)
		} else {
			fmt.Printf("ALLOWED (%s)\n", r.Risk)
		}
	case guard.PathResult:
		if !r.Allowed {
			fmt.Printf("BLOCKED: %s\n", r.Reason)
		} else {
			fmt.Printf("ALLOWED: %s\n", r.ResolvedPath)
		}
	}
}
