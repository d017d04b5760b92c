package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditEntry records one privileged action: an admin-set mutation, an
// application decision, a manual player add/remove or a raw RCON command.
type AuditEntry struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Actor     string `gorm:"index"` // Telegram username of the admin
	Action    string `gorm:"index"` // e.g. "admin_add", "application_approve"
	Target    string // nickname or username the action applied to
	Detail    string // raw RCON response, rejection reason, etc.
	CreatedAt time.Time
}

// BeforeCreate is a GORM hook generating the entry id if it is not set.
func (e *AuditEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return
}
