package models

import "time"

// Event is an audit log entry for an action taken against the service.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "student.create", "user.login.fail"
	Level     string    `json:"level"` // e.g., "info", "warn", "error"
	Message   string    `json:"message"`
	Actor     string    `json:"actor,omitempty"`
	StudentID *string   `json:"studentId,omitempty"` // Nullable for account and system events
	CreatedAt time.Time `json:"createdAt"`
}
