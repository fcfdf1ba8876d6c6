package confirm

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcp-guard/mcpguard-go/internal/guard"
)

func TestInteractive_TimeoutExpires(t *testing.T) {
	strategy := NewInteractive(nil)
	m := NewManager(strategy, nil)

	start := time.Now()
	ok := m.Request(TypeCommand, "run", Details{Command: "deploy"}, guard.Context{}, 50*time.Millisecond)
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)

	history := m.History(Filter{})
	require.Len(t, history, 1)
	assert.Equal(t, StatusExpired, history[0].Status())
}

func TestInteractive_EarlyApprovalDoesNotWaitForTimer(t *testing.T) {
	strategy := NewInteractive(nil)
	m := NewManager(strategy, nil)

	go func() {
		req := <-strategy.Requests()
		strategy.Resolve(req.ID, true)
	}()

	start := time.Now()
	ok := m.Request(TypeCommand, "run", Details{Command: "make"}, guard.Context{}, 10*time.Second)

	assert.True(t, ok)
	assert.Less(t, time.Since(start), 5*time.Second, "an instantaneous approval must not wait out the timeout")
	assert.Equal(t, StatusApproved, m.History(Filter{})[0].Status())
}

func TestInteractive_ExternalDenial(t *testing.T) {
	strategy := NewInteractive(nil)
	m := NewManager(strategy, nil)

	go func() {
		req := <-strategy.Requests()
		strategy.Resolve(req.ID, false)
	}()

	ok := m.Request(TypeFileOperation, "delete file", Details{Path: "/tmp/x"}, guard.Context{}, 10*time.Second)
	assert.False(t, ok)
	assert.Equal(t, StatusDenied, m.History(Filter{})[0].Status())
}

func TestInteractive_ResolveUnknownIDIsNoop(t *testing.T) {
	strategy := NewInteractive(nil)
	assert.False(t, strategy.Resolve("never-seen", true))
}

func TestInteractive_LateResolutionDoesNotFlipExpired(t *testing.T) {
	strategy := NewInteractive(nil)
	m := NewManager(strategy, nil)

	var reqID string
	done := make(chan struct{})
	go func() {
		req := <-strategy.Requests()
		reqID = req.ID
		close(done)
	}()

	ok := m.Request(TypeCommand, "run", Details{}, guard.Context{}, 30*time.Millisecond)
	assert.False(t, ok)
	<-done

	// Too late: the request already expired and its entry was cleaned up.
	assert.False(t, strategy.Resolve(reqID, true))
	assert.Equal(t, StatusExpired, m.History(Filter{})[0].Status())
}

func TestInteractive_ConcurrentIndependentRequests(t *testing.T) {
	strategy := NewInteractive(nil)
	m := NewManager(strategy, nil, WithMaxHistory(100))

	// Approve every other request by operation name.
	go func() {
		for req := range strategy.Requests() {
			strategy.Resolve(req.ID, req.Operation == "approve-me")
		}
	}()

	var wg sync.WaitGroup
	results := make([]bool, 12)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			op := "approve-me"
			if i%2 == 1 {
				op = "deny-me"
			}
			results[i] = m.Request(TypeCommand, op, Details{}, guard.Context{}, 5*time.Second)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, i%2 == 0, got, "request %d", i)
	}
}
