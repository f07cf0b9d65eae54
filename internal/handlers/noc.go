package handlers

import (
	"net/http"

	"projmon/internal/database"
	"projmon/internal/models"
	"projmon/internal/workflow"

	"github.com/gin-gonic/gin"
)

func CreateNoc(c *gin.Context) {
	var in workflow.NocInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	engine := workflow.NewAllocationEngine(database.DB)
	noc, err := engine.CreateNoc(in, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": noc.ID, "noc_number": noc.NocNumber, "status": noc.Status})
}

func ListNocs(c *gin.Context) {
	dbq := database.DB.Order("created_at desc")

	if status := c.Query("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	if pid := c.Query("parliament_id"); pid != "" {
		dbq = dbq.Where("parliament_id = ?", pid)
	}
	if did := c.Query("dun_id"); did != "" {
		dbq = dbq.Where("dun_id = ?", did)
	}

	var nocs []models.Noc
	if err := dbq.Find(&nocs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load NOCs"})
		return
	}
	c.JSON(http.StatusOK, nocs)
}

func GetNoc(c *gin.Context) {
	var noc models.Noc
	err := database.DB.
		Preload("Rows").
		Preload("Rows.Project").
		Preload("Rows.NocNote").
		First(&noc, c.Param("id")).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, noc)
}

func ApproveNoc(c *gin.Context) {
	var in approvalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	engine := workflow.NewAllocationEngine(database.DB)
	noc, err := engine.Approve(parseID(c), in.Level, currentActor(c), in.Remarks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": noc.ID, "status": noc.Status})
}

func RejectNoc(c *gin.Context) {
	var in rejectionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	engine := workflow.NewAllocationEngine(database.DB)
	noc, err := engine.Reject(parseID(c), currentActor(c), in.Remarks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": noc.ID, "status": noc.Status})
}

func DeleteNoc(c *gin.Context) {
	engine := workflow.NewAllocationEngine(database.DB)
	if err := engine.Delete(parseID(c), currentActor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
