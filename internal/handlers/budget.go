package handlers

import (
	"net/http"
	"strconv"

	"projmon/internal/database"
	"projmon/internal/models"

	"github.com/gin-gonic/gin"
)

// Budget allocations: per-constituency, per-year reference rows.

func ListBudgetAllocations(c *gin.Context) {
	dbq := database.DB.Order("year desc, id asc")

	if yearStr := c.Query("year"); yearStr != "" {
		if year, err := strconv.Atoi(yearStr); err == nil {
			dbq = dbq.Where("year = ?", year)
		}
	}
	if pid := c.Query("parliament_id"); pid != "" {
		dbq = dbq.Where("parliament_id = ?", pid)
	}
	if did := c.Query("dun_id"); did != "" {
		dbq = dbq.Where("dun_id = ?", did)
	}

	var allocations []models.BudgetAllocation
	if err := dbq.Find(&allocations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load allocations"})
		return
	}
	c.JSON(http.StatusOK, allocations)
}

func CreateBudgetAllocation(c *gin.Context) {
	var in models.BudgetAllocation
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if in.Year <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year is required"})
		return
	}
	if (in.ParliamentID != nil) == (in.DunID != nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of parliament or DUN is required"})
		return
	}
	if !in.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	if err := database.DB.Create(&in).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "allocation already exists for that constituency and year"})
		return
	}

	database.CreateAuditLog(database.DB, currentActor(c).ID, "budget_allocation", in.ID, "create", "")
	c.JSON(http.StatusCreated, in)
}

func DeleteBudgetAllocation(c *gin.Context) {
	var allocation models.BudgetAllocation
	if err := database.DB.First(&allocation, c.Param("id")).Error; err != nil {
		respondError(c, err)
		return
	}
	if err := database.DB.Delete(&allocation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete allocation"})
		return
	}
	database.CreateAuditLog(database.DB, currentActor(c).ID, "budget_allocation", allocation.ID, "delete", "")
	c.Status(http.StatusNoContent)
}
