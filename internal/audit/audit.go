// Package audit keeps a durable trail of privileged actions. It is optional:
// without a database DSN the bot runs with a no-op recorder.
package audit

import (
	"log"

	"wlbot/backend/internal/models"

	"gorm.io/gorm"
)

// Recorder accepts audit events. Recording never fails the calling
// operation; persistence errors are logged and swallowed.
type Recorder interface {
	Record(actor, action, target, detail string)
}

// DBRecorder persists entries through GORM.
type DBRecorder struct {
	DB *gorm.DB
}

// NewDBRecorder migrates the audit table and returns a recorder bound to db.
func NewDBRecorder(db *gorm.DB) (*DBRecorder, error) {
	if err := db.AutoMigrate(&models.AuditEntry{}); err != nil {
		return nil, err
	}
	return &DBRecorder{DB: db}, nil
}

func (r *DBRecorder) Record(actor, action, target, detail string) {
	entry := models.AuditEntry{
		Actor:  actor,
		Action: action,
		Target: target,
		Detail: detail,
	}
	if err := r.DB.Create(&entry).Error; err != nil {
		log.Printf("ERROR: Failed to save audit entry %s/%s: %v", action, target, err)
	}
}

// Nop discards all events.
type Nop struct{}

func (Nop) Record(actor, action, target, detail string) {}
