package monitor

import "time"

// ComponentStatus is the outcome of one named check.
type ComponentStatus struct {
	Name    string      `json:"name"`
	Healthy bool        `json:"healthy"`
	Detail  interface{} `json:"detail,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Status aggregates every registered check.
type Status struct {
	Healthy    bool              `json:"healthy"`
	Components []ComponentStatus `json:"components"`
	CheckedAt  time.Time         `json:"checked_at"`
}
