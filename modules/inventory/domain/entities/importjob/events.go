package importjob

// EventType names the frames of the streaming transport. Events are ordered:
// at most one start, complete always last (and absent entirely when the job
// is cancelled).
type EventType string

const (
	EventStart    EventType = "start"
	EventProgress EventType = "progress"
	EventWarning  EventType = "warning"
	EventError    EventType = "error"
	EventComplete EventType = "complete"
)

// Event is one coordinator state change. Payload is the JSON body of the
// corresponding frame.
type Event struct {
	Type    EventType
	Payload any
}

type StartPayload struct {
	JobID string `json:"jobId"`
	Total int    `json:"total"`
	Model string `json:"model"`
}

type ProgressPayload struct {
	Row        int      `json:"row"`
	Message    string   `json:"message"`
	SKU        string   `json:"sku,omitempty"`
	Method     string   `json:"method,omitempty"`
	Confidence *int     `json:"confidence,omitempty"`
	Progress   Progress `json:"progress"`
	Stats      Stats    `json:"stats"`
}

type WarningPayload struct {
	Row     int    `json:"row"`
	SKU     string `json:"sku"`
	Message string `json:"message"`
}

type ErrorPayload struct {
	Row     int    `json:"row"`
	SKU     string `json:"sku,omitempty"`
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}

type CompletePayload struct {
	Stats  Stats       `json:"stats"`
	Cost   float64     `json:"cost"`
	Sample []SampleRow `json:"sample"`
}

// Emitter receives every event the coordinator produces, in emission order.
type Emitter func(Event)

func NewStartEvent(p StartPayload) Event       { return Event{Type: EventStart, Payload: p} }
func NewProgressEvent(p ProgressPayload) Event { return Event{Type: EventProgress, Payload: p} }
func NewWarningEvent(p WarningPayload) Event   { return Event{Type: EventWarning, Payload: p} }
func NewErrorEvent(p ErrorPayload) Event       { return Event{Type: EventError, Payload: p} }
func NewCompleteEvent(p CompletePayload) Event { return Event{Type: EventComplete, Payload: p} }

// ImportStartedEvent and ImportCompletedEvent are published on the
// application event bus so other modules can observe job lifecycle without
// coupling to the coordinator.
type ImportStartedEvent struct {
	Job *Job
}

type ImportCompletedEvent struct {
	Job    *Job
	Result *Result
}
