package confirm

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mcp-guard/mcpguard-go/internal/guard"
)

// Strategy resolves a confirmation request to a boolean decision.
// Decide may block (interactive) or return immediately (policy, logging);
// the manager treats both the same.
type Strategy interface {
	Name() string
	Decide(req *Request) (bool, error)
}

const defaultMaxHistory = 100

// Manager orchestrates confirmation requests: it constructs each Request,
// delegates to the active strategy, enforces fail-closed error handling,
// and retains resolved requests in a bounded FIFO history.
type Manager struct {
	logger *zap.Logger

	mu         sync.Mutex
	strategy   Strategy
	history    []*Request
	maxHistory int
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxHistory caps the number of resolved requests retained.
func WithMaxHistory(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxHistory = n
		}
	}
}

// NewManager creates a Manager with the given initial strategy.
func NewManager(strategy Strategy, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		logger:     logger,
		strategy:   strategy,
		maxHistory: defaultMaxHistory,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetStrategy swaps the active strategy. The swap takes effect for
// subsequent requests only; in-flight requests keep the strategy that was
// active when they were submitted.
func (m *Manager) SetStrategy(strategy Strategy) {
	m.mu.Lock()
	m.strategy = strategy
	m.mu.Unlock()
}

// Request submits a confirmation request and blocks until the active
// strategy resolves it or the timeout elapses. Any error or panic during
// resolution marks the request denied and returns false: approval paths
// fail closed, never open.
func (m *Manager) Request(typ Type, operation string, details Details, ctx guard.Context, timeout time.Duration) bool {
	now := time.Now()
	req := &Request{
		ID:        uuid.NewString(),
		Type:      typ,
		Operation: operation,
		Details:   details,
		Context:   ctx,
		Timestamp: now,
		ExpiresAt: now.Add(timeout),
		status:    StatusPending,
	}

	m.mu.Lock()
	strategy := m.strategy
	m.mu.Unlock()

	approved, err := decide(strategy, req)
	if err != nil {
		m.logger.Warn("confirmation strategy failed, denying request",
			zap.String("request_id", req.ID),
			zap.String("operation", operation),
			zap.Error(err))
		approved = false
	}

	if approved {
		req.resolve(StatusApproved)
	} else {
		// The interactive strategy marks timeouts expired itself; this
		// transition is a no-op in that case.
		req.resolve(StatusDenied)
	}

	m.appendHistory(req)

	m.logger.Info("confirmation resolved",
		zap.String("request_id", req.ID),
		zap.String("type", string(typ)),
		zap.String("operation", operation),
		zap.String("agent_id", ctx.AgentID),
		zap.String("status", string(req.Status())))

	return approved
}

// decide invokes the strategy with panic containment. A nil strategy
// denies everything.
func decide(strategy Strategy, req *Request) (approved bool, err error) {
	if strategy == nil {
		return false, fmt.Errorf("no confirmation strategy configured")
	}
	defer func() {
		if r := recover(); r != nil {
			approved = false
			err = fmt.Errorf("confirmation strategy %s panicked: %v", strategy.Name(), r)
		}
	}()
	return strategy.Decide(req)
}

func (m *Manager) appendHistory(req *Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, req)
	if over := len(m.history) - m.maxHistory; over > 0 {
		m.history = append([]*Request(nil), m.history[over:]...)
	}
}

// Filter selects history entries. Zero-valued fields match everything.
type Filter struct {
	AgentID string
	Status  Status
	Since   time.Time
}

// History returns resolved requests matching the filter, oldest first.
func (m *Manager) History(filter Filter) []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*Request
	for _, req := range m.history {
		if filter.AgentID != "" && req.Context.AgentID != filter.AgentID {
			continue
		}
		if filter.Status != "" && req.Status() != filter.Status {
			continue
		}
		if !filter.Since.IsZero() && req.Timestamp.Before(filter.Since) {
			continue
		}
		out = append(out, req)
	}
	return out
}

// PruneHistory drops entries older than maxAge and reports how many were
// removed.
func (m *Manager) PruneHistory(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.history[:0]
	for _, req := range m.history {
		if !req.Timestamp.Before(cutoff) {
			kept = append(kept, req)
		}
	}
	removed := len(m.history) - len(kept)
	m.history = kept
	return removed
}
