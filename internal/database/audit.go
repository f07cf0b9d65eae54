package database

import (
	"projmon/internal/models"

	"gorm.io/gorm"
)

// CreateAuditLog appends a row to the audit journal. Pass the transaction
// handle when the write must commit together with a workflow transition.
func CreateAuditLog(db *gorm.DB, userID uint, entity string, entityID uint, action, details string) {
	if db == nil {
		return
	}
	record := models.AuditLog{
		UserID:   userID,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	_ = db.Create(&record).Error
}
