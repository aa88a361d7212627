package database

import (
	"gorm.io/gorm"

	"input-portal/internal/models"
)

// Audit entities and actions.
const (
	EntityUser       = "user"
	EntitySubmission = "submission"
	EntityUpload     = "upload"

	ActionCreate      = "create"
	ActionSetPassword = "set_password"
)

// CreateAuditLog appends one journal row. A nil db disables auditing.
func CreateAuditLog(db *gorm.DB, actor, entity, entityKey, action, details string) error {
	if db == nil {
		return nil
	}
	record := models.AuditLog{
		Actor:     actor,
		Entity:    entity,
		EntityKey: entityKey,
		Action:    action,
		Details:   details,
	}
	return db.Create(&record).Error
}

// ListAuditLogs returns the newest rows first.
func ListAuditLogs(db *gorm.DB, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []models.AuditLog
	err := db.Order("created_at desc").Order("id desc").Limit(limit).Find(&logs).Error
	return logs, err
}
