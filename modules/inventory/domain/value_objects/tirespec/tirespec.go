// Package tirespec turns free-text tire descriptions into structured
// specifications. Extraction is pure and deterministic; the AI fallback only
// fills the same shape with a different method marker.
package tirespec

// Method records how a specification was obtained.
type Method string

const (
	MethodRegex Method = "regex"
	MethodAI    Method = "ai"
)

// Specification is the parsed shape of one tire description. Nil pointer
// fields mean the field could not be extracted.
type Specification struct {
	Width        *int    `json:"width"`
	AspectRatio  *int    `json:"aspectRatio"`
	RimDiameter  *int    `json:"rimDiameter"`
	Construction *string `json:"construction"`
	LoadIndex    *int    `json:"loadIndex"`
	SpeedRating  *string `json:"speedRating"`

	// Confidence is an integer 0-100. For regex extraction it is computed
	// from the matched fields; for AI extraction it is whatever the
	// classifier returned, never invented.
	Confidence int    `json:"confidence"`
	Method     Method `json:"method"`
	AIModel    string `json:"aiModel,omitempty"`
}

// FieldCount returns how many of the six spec fields are present.
func (s Specification) FieldCount() int {
	n := 0
	if s.Width != nil {
		n++
	}
	if s.AspectRatio != nil {
		n++
	}
	if s.RimDiameter != nil {
		n++
	}
	if s.Construction != nil {
		n++
	}
	if s.LoadIndex != nil {
		n++
	}
	if s.SpeedRating != nil {
		n++
	}
	return n
}

func IntPtr(v int) *int       { return &v }
func StrPtr(v string) *string { return &v }
