package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ShopMaint_Backend/config"
	"ShopMaint_Backend/db"
	"ShopMaint_Backend/models"
)

// equipmentWithDue decorates equipment with the derived calibration
// status, computed by the calendar interval evaluator over months.
type equipmentWithDue struct {
	models.MeasuringEquipment
	Calibration *models.DueInfo `json:"calibration,omitempty"`
}

func withCalibration(m models.MeasuringEquipment) equipmentWithDue {
	out := equipmentWithDue{MeasuringEquipment: m}
	due := m.CalibrationDue(time.Now(), config.C.DueSoonDays)
	if due.Status != models.DueNone {
		out.Calibration = &due
	}
	return out
}

// GET /api/measuring-equipment
func ListMeasuringEquipment(c *gin.Context) {
	var items []models.MeasuringEquipment
	if err := db.GetDB().Order("name ASC").Find(&items).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]equipmentWithDue, 0, len(items))
	for _, item := range items {
		out = append(out, withCalibration(item))
	}
	respondOK(c, http.StatusOK, out)
}

// GET /api/measuring-equipment/:id
func GetMeasuringEquipment(c *gin.Context) {
	var item models.MeasuringEquipment
	if err := db.GetDB().First(&item, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "measuring equipment not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, withCalibration(item))
}

// POST /api/measuring-equipment
func CreateMeasuringEquipment(c *gin.Context) {
	var body models.MeasuringEquipment
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if body.Name == "" || body.SerialNumber == "" {
		respondError(c, http.StatusBadRequest, "name and serial_number are required")
		return
	}
	if err := db.GetDB().Create(&body).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(c, http.StatusCreated, withCalibration(body))
}

// PUT /api/measuring-equipment/:id
func UpdateMeasuringEquipment(c *gin.Context) {
	type updateDTO struct {
		Name                      *string    `json:"name"`
		Location                  *string    `json:"location"`
		Notes                     *string    `json:"notes"`
		CalibrationIntervalMonths *int       `json:"calibration_interval_months"`
		LastCalibratedAt          *time.Time `json:"last_calibrated_at"`
	}
	var req updateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var item models.MeasuringEquipment
	if err := db.GetDB().First(&item, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "measuring equipment not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	changes := map[string]any{}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.Location != nil {
		changes["location"] = *req.Location
	}
	if req.Notes != nil {
		changes["notes"] = *req.Notes
	}
	if req.CalibrationIntervalMonths != nil {
		changes["calibration_interval_months"] = *req.CalibrationIntervalMonths
	}
	if req.LastCalibratedAt != nil {
		changes["last_calibrated_at"] = *req.LastCalibratedAt
	}
	if len(changes) == 0 {
		respondError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := db.GetDB().Model(&item).Updates(changes).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := db.GetDB().First(&item, "id = ?", c.Param("id")).Error; err == nil {
		respondOK(c, http.StatusOK, withCalibration(item))
		return
	}
	respondOK(c, http.StatusOK, gin.H{"status": "ok"})
}

// DELETE /api/measuring-equipment/:id
func DeleteMeasuringEquipment(c *gin.Context) {
	if err := db.GetDB().Delete(&models.MeasuringEquipment{}, "id = ?", c.Param("id")).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
