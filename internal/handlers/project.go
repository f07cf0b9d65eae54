package handlers

import (
	"net/http"

	"projmon/internal/database"
	"projmon/internal/models"

	"github.com/gin-gonic/gin"
)

// Projects are created only by the transfer engine and amended only by NOC
// approval, so the HTTP surface is read-only.

func ListProjects(c *gin.Context) {
	dbq := database.DB.Order("created_at desc")

	if status := c.Query("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	if year := c.Query("year"); year != "" {
		dbq = dbq.Where("year = ?", year)
	}
	if pid := c.Query("parliament_id"); pid != "" {
		dbq = dbq.Where("parliament_id = ?", pid)
	}
	if did := c.Query("dun_id"); did != "" {
		dbq = dbq.Where("dun_id = ?", did)
	}

	var projects []models.Project
	if err := dbq.Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load projects"})
		return
	}
	c.JSON(http.StatusOK, projects)
}

func GetProject(c *gin.Context) {
	var project models.Project
	err := database.DB.
		Preload("PreProject").
		Preload("ImplementingAgency").
		First(&project, c.Param("id")).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}
