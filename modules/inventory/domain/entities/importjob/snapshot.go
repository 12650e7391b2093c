package importjob

import (
	"time"

	"github.com/google/uuid"
)

// LogEntry is one line of the snapshot's bounded log tail.
type LogEntry struct {
	At      time.Time `json:"at"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// Snapshot is the full serialized state of one job as the recovery store
// persists it. The store holds a copy; it never aliases the live job.
type Snapshot struct {
	SessionID    uuid.UUID    `json:"sessionId"`
	Kind         Kind         `json:"kind"`
	File         FileIdentity `json:"file"`
	StartedAt    time.Time    `json:"startedAt"`
	LastActivity time.Time    `json:"lastActivity"`
	Running      bool         `json:"running"`
	Progress     Progress     `json:"progress"`
	Stats        Stats        `json:"stats"`
	Logs         []LogEntry   `json:"logs,omitempty"`
	SampleRows   []SourceRow  `json:"sampleRows,omitempty"`
	Result       *Result      `json:"result,omitempty"`
	Acknowledged bool         `json:"acknowledged"`
}

// Recoverable reports whether the snapshot is worth surfacing to an operator:
// still inside the expiry window and either interrupted mid-run or finished
// with a result nobody acknowledged yet.
func (s *Snapshot) Recoverable(now time.Time, ttl time.Duration) bool {
	if now.Sub(s.LastActivity) > ttl {
		return false
	}
	return s.Running || s.Result != nil
}
