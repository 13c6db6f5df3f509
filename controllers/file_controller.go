package controllers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ShopMaint_Backend/config"
	"ShopMaint_Backend/db"
	"ShopMaint_Backend/models"
)

// POST /api/files
// multipart: file, category (photo|document|image), optional machine_id
func UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is required")
		return
	}

	category := c.PostForm("category")
	switch category {
	case models.FilePhoto, models.FileDocument, models.FileImage:
	case "":
		category = models.FileDocument
	default:
		respondError(c, http.StatusBadRequest, "invalid category: "+category)
		return
	}

	var machineID *uint
	if v := c.PostForm("machine_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid machine_id")
			return
		}
		id := uint(n)
		var count int64
		db.GetDB().Model(&models.Machine{}).Where("id = ?", id).Count(&count)
		if count == 0 {
			respondError(c, http.StatusBadRequest, "machine does not exist")
			return
		}
		machineID = &id
	}

	// stored under a uuid name so originals can collide freely
	storedName := uuid.NewString() + filepath.Ext(fileHeader.Filename)
	dir := filepath.Join(config.C.UploadDir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	storedPath := filepath.Join(dir, storedName)
	if err := c.SaveUploadedFile(fileHeader, storedPath); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	doc := models.Document{
		MachineID:  machineID,
		Category:   category,
		FileName:   fileHeader.Filename,
		FilePath:   storedPath,
		FileSize:   fileHeader.Size,
		MimeType:   fileHeader.Header.Get("Content-Type"),
		UploadedBy: currentUser(c, c.PostForm("uploaded_by")),
	}
	if err := db.GetDB().Create(&doc).Error; err != nil {
		_ = os.Remove(storedPath)
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(c, http.StatusCreated, doc)
}

// GET /api/files/:id
func DownloadFile(c *gin.Context) {
	var doc models.Document
	if err := db.GetDB().First(&doc, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "file not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.FileAttachment(doc.FilePath, doc.FileName)
}

// DELETE /api/files/:id
func DeleteFile(c *gin.Context) {
	var doc models.Document
	if err := db.GetDB().First(&doc, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "file not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if err := db.GetDB().Delete(&doc).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	_ = os.Remove(doc.FilePath)
	c.Status(http.StatusNoContent)
}

// GET /api/machines/:id/documents
func ListMachineDocuments(c *gin.Context) {
	var docs []models.Document
	query := db.GetDB().Where("machine_id = ?", c.Param("id"))
	if cat := c.Query("category"); cat != "" {
		query = query.Where("category = ?", cat)
	}
	if err := query.Order("created_at DESC").Find(&docs).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, docs)
}

// POST /api/maintenance/plans/:id/image
// multipart reference image, stored like any upload and linked on the plan.
func UploadPlanImage(c *gin.Context) {
	var plan models.MaintenancePlan
	if err := db.GetDB().First(&plan, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "plan not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is required")
		return
	}

	storedName := uuid.NewString() + filepath.Ext(fileHeader.Filename)
	dir := filepath.Join(config.C.UploadDir, models.FileImage)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	storedPath := filepath.Join(dir, storedName)
	if err := c.SaveUploadedFile(fileHeader, storedPath); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := db.GetDB().Model(&plan).Update("reference_image", storedPath).Error; err != nil {
		_ = os.Remove(storedPath)
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	plan.ReferenceImage = storedPath
	respondOK(c, http.StatusOK, plan)
}
