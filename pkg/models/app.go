// Package models contains domain types for appforge-engine.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AppStatus tracks an App through the generation pipeline.
type AppStatus string

const (
	StatusPlanning  AppStatus = "planning"
	StatusDesigning AppStatus = "designing"
	StatusCoding    AppStatus = "coding"
	StatusCompleted AppStatus = "completed"
	StatusError     AppStatus = "error"
)

// allowedTransitions is the full forward path of the pipeline. StatusError is
// reachable from any non-terminal state and is handled in CanTransitionTo
// rather than listed per state.
var allowedTransitions = map[AppStatus]AppStatus{
	StatusPlanning:  StatusDesigning,
	StatusDesigning: StatusCoding,
	StatusCoding:    StatusCompleted,
}

// CanTransitionTo reports whether the pipeline may move from s to next.
// Status only advances forward; the sole exception is the terminal error
// branch. Re-running an already-passed stage is not a legal transition.
func (s AppStatus) CanTransitionTo(next AppStatus) bool {
	if next == StatusError {
		return s != StatusCompleted && s != StatusError
	}
	return allowedTransitions[s] == next
}

// Next returns the status that follows s on the happy path, or s itself when
// s is terminal.
func (s AppStatus) Next() AppStatus {
	if next, ok := allowedTransitions[s]; ok {
		return next
	}
	return s
}

// Valid reports whether s is one of the known statuses.
func (s AppStatus) Valid() bool {
	switch s {
	case StatusPlanning, StatusDesigning, StatusCoding, StatusCompleted, StatusError:
		return true
	}
	return false
}

// App is one end-to-end generation job. The three data columns hold
// vendor-shaped JSON that this system stores and forwards without validating
// against a fixed schema.
type App struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Prompt      string          `json:"prompt"`
	Status      AppStatus       `json:"status"`
	PlanData    json.RawMessage `json:"plan_data,omitempty"`
	UIData      json.RawMessage `json:"ui_data,omitempty"`
	CodeData    json.RawMessage `json:"code_data,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
