package models

import "time"

type AuditLog struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID uint
	User   User

	Entity   string `gorm:"size:50;not null"` // "pre_project", "project", "noc"
	EntityID uint
	Action   string `gorm:"size:50;not null"` // "create", "submit", "approve" etc.
	Details  string `gorm:"type:text"`
}
