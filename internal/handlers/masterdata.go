package handlers

import (
	"net/http"

	"projmon/internal/database"

	"github.com/gin-gonic/gin"
)

// Every master-data table gets the same list/create/get/update/delete
// surface, so the CRUD set is generated once. Deleting a row nulls the
// references pointing at it; the workflow renders those as unset.

func listMasterData[M any](c *gin.Context) {
	var items []M
	if err := database.DB.Order("id asc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load records"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func getMasterData[M any](c *gin.Context) {
	var item M
	if err := database.DB.First(&item, c.Param("id")).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func createMasterData[M any](entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var item M
		if err := c.ShouldBindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := database.DB.Create(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save record"})
			return
		}
		database.CreateAuditLog(database.DB, currentActor(c).ID, entity, 0, "create", "")
		c.JSON(http.StatusCreated, item)
	}
}

func updateMasterData[M any](entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var existing M
		if err := database.DB.First(&existing, c.Param("id")).Error; err != nil {
			respondError(c, err)
			return
		}
		var in M
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := database.DB.Model(&existing).Updates(&in).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update record"})
			return
		}
		database.CreateAuditLog(database.DB, currentActor(c).ID, entity, 0, "update", "")
		c.JSON(http.StatusOK, existing)
	}
}

func deleteMasterData[M any](entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var existing M
		if err := database.DB.First(&existing, c.Param("id")).Error; err != nil {
			respondError(c, err)
			return
		}
		if err := database.DB.Delete(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete record"})
			return
		}
		database.CreateAuditLog(database.DB, currentActor(c).ID, entity, 0, "delete", "")
		c.Status(http.StatusNoContent)
	}
}

// RegisterMasterData mounts the CRUD routes for one lookup table. Writes are
// guarded by the role middleware passed in.
func RegisterMasterData[M any](grp *gin.RouterGroup, path, entity string, write gin.HandlerFunc) {
	grp.GET("/"+path, listMasterData[M])
	grp.GET("/"+path+"/:id", getMasterData[M])
	grp.POST("/"+path, write, createMasterData[M](entity))
	grp.PUT("/"+path+"/:id", write, updateMasterData[M](entity))
	grp.DELETE("/"+path+"/:id", write, deleteMasterData[M](entity))
}
