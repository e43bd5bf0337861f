package models

import (
	"time"

	"github.com/google/uuid"
)

// AnonKey groups saved projects by the caller's best-effort client IP.
//
// This is not an identity. The value is taken from a spoofable header or the
// socket address, is shared by everyone behind the same NAT, and changes when
// the client moves networks. It provides weak grouping only, pending real
// authentication.
type AnonKey string

// UserProject is a one-shot generation result a visitor chose to keep.
// Independent of the App pipeline tables.
type UserProject struct {
	ID            uuid.UUID `json:"id"`
	AnonKey       AnonKey   `json:"-"`
	ProjectName   string    `json:"project_name"`
	Prompt        string    `json:"prompt"`
	GeneratedCode string    `json:"generated_code"`
	CreatedAt     time.Time `json:"created_at"`
}
