package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"projmon/internal/database"
	"projmon/internal/models"

	"github.com/gin-gonic/gin"
)

var approvalSettingKeys = map[string]struct{}{
	models.SettingPreProjectApprover1: {},
	models.SettingPreProjectApprover2: {},
	models.SettingNocApprover1:        {},
	models.SettingNocApprover2:        {},
}

func ListApprovalSettings(c *gin.Context) {
	var settings []models.ApprovalSetting
	if err := database.DB.Order("key asc").Find(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

type settingInput struct {
	UserIDs []uint `json:"user_ids"`
}

// UpdateApprovalSetting replaces the approver list for one stage. Every id
// must belong to an existing user.
func UpdateApprovalSetting(c *gin.Context) {
	key := c.Param("key")
	if _, ok := approvalSettingKeys[key]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown setting key"})
		return
	}

	var in settingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	parts := make([]string, 0, len(in.UserIDs))
	for _, id := range in.UserIDs {
		var user models.User
		if err := database.DB.First(&user, id).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user " + strconv.Itoa(int(id)) + " not found"})
			return
		}
		parts = append(parts, strconv.Itoa(int(id)))
	}
	value := strings.Join(parts, ",")

	var setting models.ApprovalSetting
	if err := database.DB.Where("key = ?", key).First(&setting).Error; err != nil {
		setting = models.ApprovalSetting{Key: key}
	}
	setting.Value = value

	if err := database.DB.Save(&setting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save setting"})
		return
	}

	database.CreateAuditLog(database.DB, currentActor(c).ID, "setting", setting.ID, "update",
		"Approver list "+key+" = ["+value+"]")
	c.JSON(http.StatusOK, setting)
}
