// Package recovery persists bounded job snapshots so an interrupted or
// unacknowledged import can still be inspected after the operator's UI state
// is gone. It never resumes the streaming connection itself.
package recovery

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/importjob"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/kv"
)

const (
	DefaultTTL       = 24 * time.Hour
	DefaultMaxLogs   = 1000
	DefaultMaxSample = 2000
)

type Options struct {
	TTL       time.Duration
	MaxLogs   int
	MaxSample int
	Now       func() time.Time
}

// Store is a key-scoped snapshot cache: one snapshot per scope (the
// operator's tab/session key). Every write replaces the whole blob since the
// backing store has no partial-update primitive.
type Store struct {
	kv        kv.Store
	ttl       time.Duration
	maxLogs   int
	maxSample int
	now       func() time.Time
}

func NewStore(backend kv.Store, opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxLogs <= 0 {
		opts.MaxLogs = DefaultMaxLogs
	}
	if opts.MaxSample <= 0 {
		opts.MaxSample = DefaultMaxSample
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		kv:        backend,
		ttl:       opts.TTL,
		maxLogs:   opts.MaxLogs,
		maxSample: opts.MaxSample,
		now:       opts.Now,
	}
}

// Start creates a fresh running snapshot for the scope, replacing whatever
// was there, and returns the new session id.
func (s *Store) Start(ctx context.Context, scope string, kind importjob.Kind, file importjob.FileIdentity) (uuid.UUID, error) {
	now := s.now()
	snapshot := &importjob.Snapshot{
		SessionID:    uuid.New(),
		Kind:         kind,
		File:         file,
		StartedAt:    now,
		LastActivity: now,
		Running:      true,
	}
	if err := s.write(ctx, scope, snapshot); err != nil {
		return uuid.Nil, err
	}
	return snapshot.SessionID, nil
}

func (s *Store) SaveProgress(ctx context.Context, scope string, progress importjob.Progress, stats importjob.Stats) error {
	return s.update(ctx, scope, func(snapshot *importjob.Snapshot) {
		snapshot.Progress = progress
		snapshot.Stats = stats
	})
}

// SaveLogs replaces the snapshot's log tail, truncated to the most recent
// maxLogs entries to bound blob size.
func (s *Store) SaveLogs(ctx context.Context, scope string, entries []importjob.LogEntry) error {
	if len(entries) > s.maxLogs {
		entries = entries[len(entries)-s.maxLogs:]
	}
	return s.update(ctx, scope, func(snapshot *importjob.Snapshot) {
		snapshot.Logs = entries
	})
}

// SaveSourceSample caches source rows for later verification, truncated to
// maxSample rows.
func (s *Store) SaveSourceSample(ctx context.Context, scope string, rows []importjob.SourceRow) error {
	if len(rows) > s.maxSample {
		rows = rows[:s.maxSample]
	}
	return s.update(ctx, scope, func(snapshot *importjob.Snapshot) {
		snapshot.SampleRows = rows
	})
}

// Complete marks the snapshot finished and attaches the result. The snapshot
// stays recoverable until explicitly discarded or expired.
func (s *Store) Complete(ctx context.Context, scope string, result *importjob.Result) error {
	return s.update(ctx, scope, func(snapshot *importjob.Snapshot) {
		snapshot.Running = false
		snapshot.Result = result
	})
}

func (s *Store) Acknowledge(ctx context.Context, scope string) error {
	return s.update(ctx, scope, func(snapshot *importjob.Snapshot) {
		snapshot.Acknowledged = true
	})
}

// GetRecoverable returns the scope's snapshot when it is worth surfacing.
// Reading an expired snapshot deletes it and reports none, so stale state is
// never resurrected.
func (s *Store) GetRecoverable(ctx context.Context, scope string) (*importjob.Snapshot, error) {
	snapshot, err := s.read(ctx, scope)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !snapshot.Recoverable(s.now(), s.ttl) {
		if delErr := s.kv.Delete(ctx, key(scope)); delErr != nil {
			return nil, delErr
		}
		return nil, nil
	}
	return snapshot, nil
}

func (s *Store) HasRecoverable(ctx context.Context, scope string) (bool, error) {
	snapshot, err := s.GetRecoverable(ctx, scope)
	if err != nil {
		return false, err
	}
	return snapshot != nil, nil
}

// Discard clears the scope's snapshot entirely.
func (s *Store) Discard(ctx context.Context, scope string) error {
	return s.kv.Delete(ctx, key(scope))
}

func key(scope string) string {
	return "inventory:session:" + scope
}

func (s *Store) read(ctx context.Context, scope string) (*importjob.Snapshot, error) {
	data, err := s.kv.Get(ctx, key(scope))
	if err != nil {
		return nil, err
	}
	var snapshot importjob.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, errors.Wrap(err, "failed to decode snapshot")
	}
	return &snapshot, nil
}

func (s *Store) write(ctx context.Context, scope string, snapshot *importjob.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "failed to encode snapshot")
	}
	return s.kv.Set(ctx, key(scope), data, s.ttl)
}

func (s *Store) update(ctx context.Context, scope string, mutate func(*importjob.Snapshot)) error {
	snapshot, err := s.read(ctx, scope)
	if err != nil {
		return err
	}
	mutate(snapshot)
	snapshot.LastActivity = s.now()
	return s.write(ctx, scope, snapshot)
}
