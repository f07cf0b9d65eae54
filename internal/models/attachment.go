package models

import "gorm.io/gorm"

// Attachment is a pass-through file reference: bytes live on disk under a
// generated name, the row keeps the path and original metadata.
type Attachment struct {
	gorm.Model
	OriginalName string `gorm:"size:255;not null"`
	StoredPath   string `gorm:"size:512;not null"`
	Size         int64
	ContentType  string `gorm:"size:100"`
	UploadedBy   uint
}
