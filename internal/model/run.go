package model

import "time"

// RunStatus represents the lifecycle state of a validation run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records a single validation invocation for history and auditing.
// The engine itself is stateless; runs exist only in the store.
type Run struct {
	ID        string            `json:"id"`
	Source    string            `json:"source"` // filename or "http-upload"
	Status    RunStatus         `json:"status"`
	Report    *ValidationReport `json:"report,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
