package confirm

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// notifyBuffer bounds the subscription channel so a slow or absent listener
// never blocks a decision; an undelivered notification simply times out.
const notifyBuffer = 16

// Interactive suspends each request until an external caller supplies a
// decision for its id or the deadline elapses, whichever happens first.
// A UI or CLI subscribes via Requests and answers via Resolve; this is the
// only bidirectional seam at the package boundary.
type Interactive struct {
	logger *zap.Logger
	notify chan *Request

	mu      sync.Mutex
	pending map[string]chan bool
}

// NewInteractive creates an interactive strategy with no listener attached.
func NewInteractive(logger *zap.Logger) *Interactive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interactive{
		logger:  logger,
		notify:  make(chan *Request, notifyBuffer),
		pending: make(map[string]chan bool),
	}
}

// Name implements Strategy.
func (s *Interactive) Name() string { return "interactive" }

// Requests is the subscription point emitting each request as it is
// created. Consume it from the process that presents the prompt.
func (s *Interactive) Requests() <-chan *Request {
	return s.notify
}

// Resolve supplies the decision for a pending request. It reports whether
// a request with that id was still waiting; late or duplicate resolutions
// are no-ops.
func (s *Interactive) Resolve(id string, approved bool) bool {
	s.mu.Lock()
	ch, ok := s.pending[id]
	s.mu.Unlock()
	if !ok {
		return false
	}

	select {
	case ch <- approved:
		return true
	default:
		// Already resolved by a racing caller.
		return false
	}
}

// Decide implements Strategy. It races the external decision against the
// request deadline; the loser is discarded with no further effect.
func (s *Interactive) Decide(req *Request) (bool, error) {
	decision := make(chan bool, 1)

	s.mu.Lock()
	s.pending[req.ID] = decision
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, req.ID)
		s.mu.Unlock()
	}()

	select {
	case s.notify <- req:
	default:
		s.logger.Warn("confirmation listener not keeping up, request will rely on timeout",
			zap.String("request_id", req.ID))
	}

	timer := time.NewTimer(time.Until(req.ExpiresAt))
	defer timer.Stop()

	select {
	case approved := <-decision:
		return approved, nil
	case <-timer.C:
		req.resolve(StatusExpired)
		s.logger.Info("confirmation request expired",
			zap.String("request_id", req.ID),
			zap.String("operation", req.Operation))
		return false, nil
	}
}
