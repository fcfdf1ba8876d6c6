package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcp-guard/mcpguard-go/internal/confirm"
	"github.com/mcp-guard/mcpguard-go/internal/guard"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "audit", "mcpguard.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_ConfirmationRoundTrip(t *testing.T) {
	store := newTestStore(t)

	// Run a real request through a manager so the stored record carries a
	// resolved status.
	m := confirm.NewManager(confirm.NewLogging(true, store, nil), nil)
	ok := m.Request(confirm.TypeCommand, "run command",
		confirm.Details{Command: "make deploy", Risk: guard.RiskMedium},
		guard.Context{AgentID: "agent-7"}, time.Minute)
	require.True(t, ok)

	records, err := store.ListConfirmations(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "run command", records[0].Operation)
	assert.Equal(t, "make deploy", records[0].Details.Command)
	assert.Equal(t, "agent-7", records[0].Context.AgentID)
	// The sink records before the manager resolves, so the stored status is
	// the pending snapshot.
	assert.Equal(t, string(confirm.StatusPending), records[0].Status)
}

func TestStore_VerdictRoundTripNewestFirst(t *testing.T) {
	store := newTestStore(t)

	for i, input := range []string{"ls -la", "rm -rf /", "cat notes.txt"} {
		allowed := i != 1
		require.NoError(t, store.RecordVerdict(&Verdict{
			Kind:    VerdictCommand,
			Input:   input,
			Allowed: allowed,
			Risk:    guard.RiskLow,
			Context: guard.Context{AgentID: "agent-7"},
		}))
	}

	records, err := store.ListVerdicts(0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "cat notes.txt", records[0].Input)
	assert.Equal(t, "rm -rf /", records[1].Input)
	assert.False(t, records[1].Allowed)
	assert.Equal(t, "ls -la", records[2].Input)
	for _, r := range records {
		assert.False(t, r.Timestamp.IsZero())
	}
}

func TestStore_ListLimit(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordVerdict(&Verdict{
			Kind:  VerdictPath,
			Input: "/tmp/file",
		}))
	}

	records, err := store.ListVerdicts(2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestStore_EmptyDatabase(t *testing.T) {
	store := newTestStore(t)

	confirmations, err := store.ListConfirmations(10)
	require.NoError(t, err)
	assert.Empty(t, confirmations)

	verdicts, err := store.ListVerdicts(10)
	require.NoError(t, err)
	assert.Empty(t, verdicts)
}
