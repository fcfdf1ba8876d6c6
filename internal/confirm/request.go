// Package confirm implements the approval workflow for operations the
// guard flags as requiring confirmation. A Manager resolves each request to
// a boolean through a pluggable Strategy; requests move through a one-way
// state machine (pending → approved | denied | expired) and are retained in
// a bounded in-memory history.
package confirm

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/mcp-guard/mcpguard-go/internal/guard"
)

// Type categorizes what kind of operation is being confirmed.
type Type string

const (
	TypeCommand       Type = "command"
	TypeFileOperation Type = "file_operation"
	TypeSystemChange  Type = "system_change"
)

// Status is the lifecycle state of a confirmation request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
	StatusExpired  Status = "expired"
)

// Details carries the operation-specific fields of a request.
type Details struct {
	Command string          `json:"command,omitempty"`
	Path    string          `json:"path,omitempty"`
	Action  string          `json:"action,omitempty"`
	Risk    guard.RiskLevel `json:"risk_level"`
	Reason  string          `json:"reason,omitempty"`
}

// Request is a single confirmation request. Status transitions are one-way
// and terminal: once resolved, a request can never change its outcome.
type Request struct {
	ID        string        `json:"id"`
	Type      Type          `json:"type"`
	Operation string        `json:"operation"`
	Details   Details       `json:"details"`
	Context   guard.Context `json:"context"`
	Timestamp time.Time     `json:"timestamp"`
	ExpiresAt time.Time     `json:"expires_at"`

	mu     sync.Mutex
	status Status
}

// Status returns the current lifecycle state.
func (r *Request) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// resolve transitions the request from pending to a terminal state.
// It reports whether this call performed the transition; a request that
// already reached a terminal state is left untouched.
func (r *Request) resolve(to Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusPending {
		return false
	}
	r.status = to
	return true
}

// MarshalJSON includes the status field alongside the exported ones.
func (r *Request) MarshalJSON() ([]byte, error) {
	type alias struct {
		ID        string        `json:"id"`
		Type      Type          `json:"type"`
		Operation string        `json:"operation"`
		Details   Details       `json:"details"`
		Context   guard.Context `json:"context"`
		Timestamp time.Time     `json:"timestamp"`
		ExpiresAt time.Time     `json:"expires_at"`
		Status    Status        `json:"status"`
	}
	return json.Marshal(alias{
		ID:        r.ID,
		Type:      r.Type,
		Operation: r.Operation,
		Details:   r.Details,
		Context:   r.Context,
		Timestamp: r.Timestamp,
		ExpiresAt: r.ExpiresAt,
		Status:    r.Status(),
	})
}
