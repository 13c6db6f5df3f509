package models

import (
	"time"

	"gorm.io/gorm"
)

// File categories for uploaded documents.
const (
	FilePhoto    = "photo"
	FileDocument = "document"
	FileImage    = "image"
)

type Document struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	MachineID  *uint  `json:"machine_id,omitempty" gorm:"index"`
	Category   string `json:"category" gorm:"size:32;index"` // photo / document / image
	FileName   string `json:"file_name"`                     // original name, shown in the UI
	FilePath   string `json:"file_path"`                     // stored path on the server
	FileSize   int64  `json:"file_size"`
	MimeType   string `json:"mime_type"`
	UploadedBy string `json:"uploaded_by,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
