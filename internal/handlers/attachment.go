package handlers

import (
	"net/http"
	"path/filepath"

	"projmon/internal/database"
	"projmon/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Attachment storage is a pass-through: bytes land on disk under a generated
// name, the row keeps the path and original metadata.

var uploadDir = "./uploads"

func SetUploadDir(dir string) {
	uploadDir = dir
}

func UploadAttachment(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	stored := filepath.Join(uploadDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, stored); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	att := models.Attachment{
		OriginalName: filepath.Base(file.Filename),
		StoredPath:   stored,
		Size:         file.Size,
		ContentType:  file.Header.Get("Content-Type"),
		UploadedBy:   currentActor(c).ID,
	}
	if err := database.DB.Create(&att).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save attachment"})
		return
	}

	c.JSON(http.StatusCreated, att)
}

func DownloadAttachment(c *gin.Context) {
	var att models.Attachment
	if err := database.DB.First(&att, c.Param("id")).Error; err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(att.StoredPath, att.OriginalName)
}
