package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"ShopMaint_Backend/db"
	"ShopMaint_Backend/models"
)

type PaginationQuery struct {
	Page int `form:"page,default=1"`
	Size int `form:"size,default=20"`
}

// GET /api/machines
func ListMachines(c *gin.Context) {
	var q PaginationQuery
	if err := c.ShouldBindQuery(&q); err != nil || q.Page < 1 || q.Size < 1 || q.Size > 1000 {
		q = PaginationQuery{Page: 1, Size: 20}
	}

	query := db.GetDB().Model(&models.Machine{})
	if cat := c.Query("category"); cat != "" {
		query = query.Where("category_key = ?", cat)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("q"); search != "" {
		query = query.Where("name ILIKE ? OR machine_number ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var items []models.Machine
	offset := (q.Page - 1) * q.Size
	if err := query.Order("updated_at DESC").Limit(q.Size).Offset(offset).Find(&items).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"items":      items,
		"pagination": gin.H{"page": q.Page, "size": q.Size, "total": total},
	})
}

// GET /api/machines/:id
func GetMachine(c *gin.Context) {
	var m models.Machine
	if err := db.GetDB().First(&m, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "machine not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, m)
}

// POST /api/machines
func CreateMachine(c *gin.Context) {
	var body models.Machine
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if body.Name == "" || body.MachineNumber == "" {
		respondError(c, http.StatusBadRequest, "name and machine_number are required")
		return
	}
	if err := db.GetDB().Create(&body).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(c, http.StatusCreated, body)
}

// PUT /api/machines/:id
func UpdateMachine(c *gin.Context) {
	id := c.Param("id")

	// pointer fields so "field absent" and "set to zero value" differ
	type updateDTO struct {
		Name         *string         `json:"name"`
		CategoryKey  *string         `json:"category_key"`
		Location     *string         `json:"location"`
		Manufacturer *string         `json:"manufacturer"`
		Status       *string         `json:"status"`
		Tags         *pq.StringArray `json:"tags"`
		Notes        *string         `json:"notes"`
	}
	var req updateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var m models.Machine
	if err := db.GetDB().First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "machine not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	changes := map[string]any{}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.CategoryKey != nil {
		changes["category_key"] = *req.CategoryKey
	}
	if req.Location != nil {
		changes["location"] = *req.Location
	}
	if req.Manufacturer != nil {
		changes["manufacturer"] = *req.Manufacturer
	}
	if req.Status != nil {
		changes["status"] = *req.Status
	}
	if req.Tags != nil {
		changes["tags"] = *req.Tags
	}
	if req.Notes != nil {
		changes["notes"] = *req.Notes
	}

	if len(changes) == 0 {
		respondError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := db.GetDB().Model(&m).Updates(changes).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := db.GetDB().First(&m, "id = ?", id).Error; err == nil {
		respondOK(c, http.StatusOK, m)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"status": "ok"})
}

// DELETE /api/machines/:id
func DeleteMachine(c *gin.Context) {
	if err := db.GetDB().Delete(&models.Machine{}, "id = ?", c.Param("id")).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /api/machines/:id/hours
// Records a new operating-hours counter reading.
func UpdateMachineHours(c *gin.Context) {
	type hoursDTO struct {
		OperatingHours *float64 `json:"operating_hours"`
	}
	var req hoursDTO
	if err := c.ShouldBindJSON(&req); err != nil || req.OperatingHours == nil {
		respondError(c, http.StatusBadRequest, "operating_hours is required")
		return
	}
	if *req.OperatingHours < 0 {
		respondError(c, http.StatusBadRequest, "operating_hours must not be negative")
		return
	}

	var m models.Machine
	if err := db.GetDB().First(&m, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "machine not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	now := time.Now()
	if err := db.GetDB().Model(&m).Updates(map[string]any{
		"operating_hours":  *req.OperatingHours,
		"hours_updated_at": now,
	}).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	m.OperatingHours = *req.OperatingHours
	m.HoursUpdatedAt = &now
	respondOK(c, http.StatusOK, m)
}

// GET /api/machine-categories
func ListMachineCategories(c *gin.Context) {
	var cats []models.MachineCategory
	if err := db.GetDB().Order("key ASC").Find(&cats).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, cats)
}
