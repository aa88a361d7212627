package models

import "time"

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Actor string `gorm:"size:255;not null" json:"actor"`

	Entity    string `gorm:"size:50;not null" json:"entity"` // "user", "submission", "upload"
	EntityKey string `gorm:"size:1024" json:"entity_key"`
	Action    string `gorm:"size:50;not null" json:"action"` // "create", "set_password"
	Details   string `gorm:"type:text" json:"details"`
}
