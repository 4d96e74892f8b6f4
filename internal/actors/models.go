package actors

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Notebook statuses written by the refresh pipeline.
const (
	StatusIdle    = "idle"
	StatusRunning = "running"
	StatusReady   = "ready"
	StatusWarning = "warning"
	StatusError   = "error"
)

type Actor struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DisplayName       string         `gorm:"not null" json:"display_name"`
	CanonicalName     string         `gorm:"uniqueIndex;not null" json:"canonical_name"`
	Aliases           pq.StringArray `gorm:"type:text[]" json:"aliases"`
	ScopeStatement    string         `json:"scope_statement"`
	IsTracked         bool           `gorm:"not null;default:false" json:"is_tracked"`
	NotebookStatus    string         `gorm:"size:20;not null;default:'idle'" json:"notebook_status"`
	NotebookMessage   string         `json:"notebook_message"`
	NotebookUpdatedAt time.Time      `json:"notebook_updated_at"`
	CreatedAt         time.Time      `json:"created_at"`
}

func (Actor) TableName() string {
	return "atlas.actor_profiles"
}
