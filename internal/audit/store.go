// Package audit persists resolved confirmation requests and guard verdicts
// to a local bbolt database. The core pipeline keeps its history in memory;
// this store is the durable collaborator deployments can attach when they
// need an audit trail that survives restarts.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/mcp-guard/mcpguard-go/internal/confirm"
	"github.com/mcp-guard/mcpguard-go/internal/guard"
)

var (
	bucketConfirmations = []byte("confirmations")
	bucketVerdicts      = []byte("verdicts")
)

// Store wraps the bbolt database holding audit records. Keys are ULIDs, so
// iteration order is creation order.
type Store struct {
	db     *bbolt.DB
	logger *zap.Logger
}

// NewStore opens (or creates) the audit database at path.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketConfirmations, bucketVerdicts} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit buckets: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordConfirmation persists a confirmation request. Implements
// confirm.AuditSink.
func (s *Store) RecordConfirmation(req *confirm.Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation record: %w", err)
	}

	key := []byte(ulid.Make().String())
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketConfirmations).Put(key, data)
	})
	if err != nil {
		return fmt.Errorf("failed to store confirmation record: %w", err)
	}

	s.logger.Debug("recorded confirmation",
		zap.String("request_id", req.ID),
		zap.String("operation", req.Operation))
	return nil
}

// VerdictKind distinguishes what the guard evaluated.
type VerdictKind string

const (
	VerdictCommand VerdictKind = "command"
	VerdictPath    VerdictKind = "path"
)

// Verdict is one recorded guard decision.
type Verdict struct {
	Kind         VerdictKind     `json:"kind"`
	Input        string          `json:"input"`
	Operation    string          `json:"operation,omitempty"`
	Allowed      bool            `json:"allowed"`
	Reason       string          `json:"reason,omitempty"`
	Risk         guard.RiskLevel `json:"risk_level,omitempty"`
	ResolvedPath string          `json:"resolved_path,omitempty"`
	Context      guard.Context   `json:"context"`
	Timestamp    time.Time       `json:"timestamp"`
}

// RecordVerdict persists a guard decision.
func (s *Store) RecordVerdict(v *Verdict) error {
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now()
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal verdict record: %w", err)
	}

	key := []byte(ulid.Make().String())
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketVerdicts).Put(key, data)
	})
	if err != nil {
		return fmt.Errorf("failed to store verdict record: %w", err)
	}
	return nil
}

// ConfirmationRecord is a stored confirmation request as read back from the
// database.
type ConfirmationRecord struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Operation string          `json:"operation"`
	Details   confirm.Details `json:"details"`
	Context   guard.Context   `json:"context"`
	Timestamp time.Time       `json:"timestamp"`
	ExpiresAt time.Time       `json:"expires_at"`
	Status    string          `json:"status"`
}

// ListConfirmations returns up to limit confirmation records, newest first.
// limit <= 0 returns everything.
func (s *Store) ListConfirmations(limit int) ([]*ConfirmationRecord, error) {
	var records []*ConfirmationRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketConfirmations).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var record ConfirmationRecord
			if err := json.Unmarshal(v, &record); err != nil {
				s.logger.Warn("skipping corrupt confirmation record", zap.ByteString("key", k), zap.Error(err))
				continue
			}
			records = append(records, &record)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmation records: %w", err)
	}

	return records, nil
}

// ListVerdicts returns up to limit verdict records, newest first.
func (s *Store) ListVerdicts(limit int) ([]*Verdict, error) {
	var records []*Verdict

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketVerdicts).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var record Verdict
			if err := json.Unmarshal(v, &record); err != nil {
				s.logger.Warn("skipping corrupt verdict record", zap.ByteString("key", k), zap.Error(err))
				continue
			}
			records = append(records, &record)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list verdict records: %w", err)
	}

	return records, nil
}
