package recovery

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/importjob"
)

// Recorder is the coordinator-side writer for one scope. Persistence
// failures (backend down, quota exceeded) are logged and swallowed: losing
// recovery capability must never abort an otherwise-successful import.
type Recorder struct {
	store  *Store
	scope  string
	logger *logrus.Entry
	logs   []importjob.LogEntry
}

func NewRecorder(store *Store, scope string, logger *logrus.Entry) *Recorder {
	return &Recorder{store: store, scope: scope, logger: logger}
}

func (r *Recorder) Start(ctx context.Context, kind importjob.Kind, file importjob.FileIdentity) {
	if _, err := r.store.Start(ctx, r.scope, kind, file); err != nil {
		r.logger.WithError(err).Warn("recovery: failed to start snapshot")
	}
}

func (r *Recorder) Progress(ctx context.Context, progress importjob.Progress, stats importjob.Stats) {
	if err := r.store.SaveProgress(ctx, r.scope, progress, stats); err != nil {
		r.logger.WithError(err).Warn("recovery: failed to save progress")
	}
}

// Log appends to the in-memory tail and persists it, truncated to the
// store's cap.
func (r *Recorder) Log(ctx context.Context, level, message string) {
	r.logs = append(r.logs, importjob.LogEntry{At: time.Now(), Level: level, Message: message})
	if len(r.logs) > r.store.maxLogs {
		r.logs = r.logs[len(r.logs)-r.store.maxLogs:]
	}
	if err := r.store.SaveLogs(ctx, r.scope, r.logs); err != nil {
		r.logger.WithError(err).Warn("recovery: failed to save logs")
	}
}

func (r *Recorder) SourceSample(ctx context.Context, rows []importjob.SourceRow) {
	if err := r.store.SaveSourceSample(ctx, r.scope, rows); err != nil {
		r.logger.WithError(err).Warn("recovery: failed to save source sample")
	}
}

func (r *Recorder) Complete(ctx context.Context, result *importjob.Result) {
	if err := r.store.Complete(ctx, r.scope, result); err != nil {
		r.logger.WithError(err).Warn("recovery: failed to save result")
	}
}
