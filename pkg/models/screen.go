package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AppScreen is one screen of a generated app. Rows are created in bulk by
// the UI composer and receive their code from the code generator. (AppID,
// Name) is unique so that re-running the UI stage upserts instead of
// duplicating.
type AppScreen struct {
	ID            uuid.UUID       `json:"id"`
	AppID         uuid.UUID       `json:"app_id"`
	Name          string          `json:"name"`
	ComponentName string          `json:"component_name"`
	LayoutData    json.RawMessage `json:"layout_data,omitempty"`
	Code          string          `json:"code"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AppComponent is one reusable component of a generated app. Same lifecycle
// and uniqueness rule as AppScreen.
type AppComponent struct {
	ID          uuid.UUID       `json:"id"`
	AppID       uuid.UUID       `json:"app_id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	PropsSchema json.RawMessage `json:"props_schema,omitempty"`
	Code        string          `json:"code"`
	CreatedAt   time.Time       `json:"created_at"`
}
