package analysis

import "time"

// Interaction represents an exogenous user-interaction signal reported by a
// client surface. Absence of a signal is modeled by a nil pointer at the
// estimation call site, which substitutes the neutral default factor score.
type Interaction struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       string    `json:"type"`
	DurationMs int64     `json:"duration_ms,omitempty"`
}
