package handlers

import (
	"net/http"

	"projmon/internal/database"
	"projmon/internal/models"

	"github.com/gin-gonic/gin"
)

func ListAuditLogs(c *gin.Context) {
	dbq := database.DB.Preload("User").Order("created_at desc").Limit(500)

	if entity := c.Query("entity"); entity != "" {
		dbq = dbq.Where("entity = ?", entity)
	}
	if entityID := c.Query("entity_id"); entityID != "" {
		dbq = dbq.Where("entity_id = ?", entityID)
	}

	var logs []models.AuditLog
	if err := dbq.Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit log"})
		return
	}
	c.JSON(http.StatusOK, logs)
}
