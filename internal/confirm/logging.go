package confirm

import (
	"fmt"

	"go.uber.org/zap"
)

// AuditSink receives every request seen by the logging strategy before it
// is resolved. The audit package provides a durable implementation.
type AuditSink interface {
	RecordConfirmation(req *Request) error
}

// Logging resolves every request to a fixed configured decision, but only
// after writing it to the audit record. Used for dry-run and observability
// deployments where a human reviews decisions after the fact.
type Logging struct {
	logger      *zap.Logger
	autoApprove bool
	sink        AuditSink
}

// NewLogging creates a logging strategy. sink may be nil, in which case
// requests are only written to the structured log.
func NewLogging(autoApprove bool, sink AuditSink, logger *zap.Logger) *Logging {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logging{
		logger:      logger,
		autoApprove: autoApprove,
		sink:        sink,
	}
}

// Name implements Strategy.
func (s *Logging) Name() string { return "logging" }

// Decide implements Strategy. A sink failure is surfaced as an error so
// the manager denies the request: an unauditable approval is worse than a
// denied one.
func (s *Logging) Decide(req *Request) (bool, error) {
	if s.sink != nil {
		if err := s.sink.RecordConfirmation(req); err != nil {
			return false, fmt.Errorf("audit sink rejected request %s: %w", req.ID, err)
		}
	}

	s.logger.Info("confirmation auto-decided",
		zap.String("request_id", req.ID),
		zap.String("type", string(req.Type)),
		zap.String("operation", req.Operation),
		zap.String("command", req.Details.Command),
		zap.String("path", req.Details.Path),
		zap.String("risk", string(req.Details.Risk)),
		zap.String("agent_id", req.Context.AgentID),
		zap.Bool("auto_approve", s.autoApprove))

	return s.autoApprove, nil
}
