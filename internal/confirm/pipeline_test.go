package confirm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcp-guard/mcpguard-go/internal/config"
	"github.com/mcp-guard/mcpguard-go/internal/guard"
)

// countingStrategy records whether the manager ever consulted it.
type countingStrategy struct {
	inner Strategy
	calls int
}

func (s *countingStrategy) Name() string { return s.inner.Name() }

func (s *countingStrategy) Decide(req *Request) (bool, error) {
	s.calls++
	return s.inner.Decide(req)
}

// Exercises the full decision flow the CLI runs: guard verdict first, and
// the confirmation manager only for verdicts that ask for it.
func TestGuardThenConfirmationFlow(t *testing.T) {
	g := guard.NewForPlatform("linux", config.DefaultConfig(), t.TempDir(), nil)
	strategy := &countingStrategy{inner: NewPolicy(false, "", nil)}
	m := NewManager(strategy, nil)

	ctx := guard.Context{AgentID: "agent-1", RequestID: "req-1"}

	run := func(command string) (guard.CommandResult, bool) {
		verdict := g.ValidateCommand(command, ctx)
		if !verdict.Allowed {
			return verdict, false
		}
		if !verdict.RequiresConfirmation {
			return verdict, true
		}
		approved := m.Request(TypeCommand, "run command", Details{
			Command: command,
			Risk:    verdict.Risk,
			Reason:  verdict.Reason,
		}, ctx, time.Minute)
		return verdict, approved
	}

	t.Run("safe command skips confirmation entirely", func(t *testing.T) {
		verdict, ok := run("ls -la")
		assert.True(t, verdict.Allowed)
		assert.False(t, verdict.RequiresConfirmation)
		assert.True(t, ok)
		assert.Zero(t, strategy.calls)
	})

	t.Run("blocked command never reaches the manager", func(t *testing.T) {
		before := strategy.calls
		verdict, ok := run("sudo rm -rf /")
		assert.False(t, verdict.Allowed)
		assert.False(t, verdict.RequiresConfirmation)
		assert.False(t, ok)
		assert.Equal(t, before, strategy.calls)
		assert.Empty(t, m.History(Filter{}), "no confirmation request is ever created for a blocked command")
	})

	t.Run("unknown command asks and the policy decides", func(t *testing.T) {
		verdict, ok := run("npm list")
		require.True(t, verdict.Allowed)
		require.True(t, verdict.RequiresConfirmation)
		assert.True(t, ok, "package-manager read is auto-approved by policy")

		history := m.History(Filter{})
		require.Len(t, history, 1)
		assert.Equal(t, StatusApproved, history[0].Status())
	})

	t.Run("unknown destructive-looking command is denied by policy", func(t *testing.T) {
		verdict, ok := run("terraform apply -auto-approve")
		require.True(t, verdict.Allowed)
		require.True(t, verdict.RequiresConfirmation)
		assert.False(t, ok, "medium risk falls through to deny when dev auto-approve is off")
	})
}

// The security mode shifts the risk the guard assigns to unrecognized
// commands, which in turn decides how the policy strategy's risk fallback
// resolves them.
func TestModeDrivesPolicyFallbackForUnknownCommands(t *testing.T) {
	tests := []struct {
		mode     config.Mode
		approved bool
	}{
		{config.ModeStrict, false},
		{config.ModeModerate, false},
		{config.ModePermissive, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Mode = tt.mode
			g := guard.NewForPlatform("linux", cfg, t.TempDir(), nil)
			m := NewManager(NewPolicy(false, "", nil), nil)

			verdict := g.ValidateCommand("frobnicate --all", guard.Context{})
			require.True(t, verdict.Allowed)
			require.True(t, verdict.RequiresConfirmation)

			approved := m.Request(TypeCommand, "run command", Details{
				Command: "frobnicate --all",
				Risk:    verdict.Risk,
			}, guard.Context{}, time.Minute)
			assert.Equal(t, tt.approved, approved)
		})
	}
}

func TestSetStrategyAffectsSubsequentRequestsOnly(t *testing.T) {
	strategy := NewInteractive(nil)
	m := NewManager(strategy, nil)

	started := make(chan struct{})
	result := make(chan bool, 1)
	go func() {
		close(started)
		result <- m.Request(TypeCommand, "run", Details{Command: "slow"}, guard.Context{}, 2*time.Second)
	}()
	<-started

	// Wait until the in-flight request is registered with the interactive
	// strategy before swapping it out.
	var req *Request
	select {
	case req = <-strategy.Requests():
	case <-time.After(time.Second):
		t.Fatal("request never reached the interactive strategy")
	}

	m.SetStrategy(NewLogging(false, nil, nil))

	// The in-flight request still resolves through the strategy that
	// received it.
	assert.True(t, strategy.Resolve(req.ID, true))
	assert.True(t, <-result)

	// New requests use the replacement strategy, which always denies here.
	assert.False(t, m.Request(TypeCommand, "run", Details{Command: "next"}, guard.Context{}, time.Minute))
}
