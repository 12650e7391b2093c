// Package importjob holds the import pipeline's job state, the typed events
// the coordinator emits, and the snapshot shape the recovery store persists.
package importjob

import (
	"time"

	"github.com/google/uuid"
)

// Kind selects the job shape: a full catalog replacement or a price/stock
// patch against existing products.
type Kind string

const (
	KindImport Kind = "import"
	KindUpdate Kind = "update"
)

func (k Kind) Valid() bool {
	return k == KindImport || k == KindUpdate
}

// State is the coordinator's lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateFailed    State = "failed"
)

// FileIdentity identifies the uploaded source file. Used only to recognize
// "the same file" on recovery; the file is never re-read from it.
type FileIdentity struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

type Stats struct {
	Updated       int     `json:"updated"`
	Created       int     `json:"created"`
	NotFound      int     `json:"notFound"`
	Skipped       int     `json:"skipped"`
	Errors        int     `json:"errors"`
	EstimatedCost float64 `json:"estimatedCost"`
}

// SampleRow is one before/after row included in the complete event for
// operator spot-checking.
type SampleRow struct {
	Index       int    `json:"index"`
	SKU         string `json:"sku"`
	Description string `json:"description"`
	Method      string `json:"method"`
	Confidence  int    `json:"confidence"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
}

// Result is attached to a job once it finishes.
type Result struct {
	Stats      Stats       `json:"stats"`
	Cost       float64     `json:"cost"`
	Sample     []SampleRow `json:"sample"`
	FinishedAt time.Time   `json:"finishedAt"`
}

// Job is one run's mutable state. The coordinator owns every mutation while
// running; everyone else sees copies (events, snapshots).
type Job struct {
	ID           uuid.UUID    `json:"id"`
	Kind         Kind         `json:"kind"`
	File         FileIdentity `json:"file"`
	State        State        `json:"state"`
	StartedAt    time.Time    `json:"startedAt"`
	LastActivity time.Time    `json:"lastActivity"`
	Progress     Progress     `json:"progress"`
	Stats        Stats        `json:"stats"`
	Result       *Result      `json:"result,omitempty"`
}

func NewJob(kind Kind, file FileIdentity) *Job {
	now := time.Now()
	return &Job{
		ID:           uuid.New(),
		Kind:         kind,
		File:         file,
		State:        StateIdle,
		StartedAt:    now,
		LastActivity: now,
	}
}

func (j *Job) Touch() {
	j.LastActivity = time.Now()
}

func (j *Job) SetProgress(current, total int) {
	percent := 0
	if total > 0 {
		percent = current * 100 / total
	}
	j.Progress = Progress{Current: current, Total: total, Percent: percent}
	j.Touch()
}
