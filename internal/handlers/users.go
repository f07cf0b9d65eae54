package handlers

import (
	"net/http"

	"projmon/internal/database"
	"projmon/internal/models"

	"github.com/gin-gonic/gin"
)

func ListUsers(c *gin.Context) {
	dbq := database.DB.Order("username asc")

	if role := c.Query("role"); role != "" {
		dbq = dbq.Where("role = ?", role)
	}

	var users []models.User
	if err := dbq.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

type userUpdateInput struct {
	Role         *string `json:"role"`
	ParliamentID *uint   `json:"parliament_id"`
	DunID        *uint   `json:"dun_id"`
	AgencyID     *uint   `json:"agency_id"`
}

func UpdateUser(c *gin.Context) {
	var user models.User
	if err := database.DB.First(&user, c.Param("id")).Error; err != nil {
		respondError(c, err)
		return
	}

	var in userUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if in.Role != nil {
		role := models.UserRole(*in.Role)
		switch role {
		case models.RoleAdmin, models.RoleParliament, models.RoleDun,
			models.RoleAgency, models.RoleEpu, models.RoleViewer:
			user.Role = role
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}
	}
	if in.ParliamentID != nil {
		user.ParliamentID = in.ParliamentID
	}
	if in.DunID != nil {
		user.DunID = in.DunID
	}
	if in.AgencyID != nil {
		user.AgencyID = in.AgencyID
	}

	if err := database.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	database.CreateAuditLog(database.DB, currentActor(c).ID, "user", user.ID, "update", "Updated "+user.Username)
	c.JSON(http.StatusOK, user)
}
