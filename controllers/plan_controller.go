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

type planPayload struct {
	MachineID          uint    `json:"machine_id"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	IntervalType       string  `json:"interval_type"`
	IntervalValue      int     `json:"interval_value"`
	IntervalHours      float64 `json:"interval_hours"`
	RequiredSkillLevel string  `json:"required_skill_level"`
	Priority           string  `json:"priority"`
	ShiftCritical      bool    `json:"shift_critical"`
	DeadlineTime       string  `json:"deadline_time"`

	Items []models.ChecklistTemplateItem `json:"items"`
}

// planWithDue decorates a plan with the interval evaluator's output.
// Plans without a usable schedule carry no "due" block at all.
type planWithDue struct {
	models.MaintenancePlan
	Due *models.DueInfo `json:"due,omitempty"`
}

// GET /api/maintenance/plans
// optional: ?machine_id=3&active=true
func ListPlans(c *gin.Context) {
	query := db.GetDB().Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sequence ASC")
	}).Preload("Machine")

	if mid := c.Query("machine_id"); mid != "" {
		query = query.Where("machine_id = ?", mid)
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var plans []models.MaintenancePlan
	if err := query.Order("updated_at DESC").Find(&plans).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, plans)
}

// GET /api/maintenance/plans/due
// Interval evaluation for every active plan; plans with no usable
// schedule are omitted unless ?all=true.
func ListDuePlans(c *gin.Context) {
	var plans []models.MaintenancePlan
	if err := db.GetDB().Preload("Machine").Where("is_active = ?", true).Find(&plans).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	now := time.Now()
	includeAll := c.Query("all") == "true"
	out := make([]planWithDue, 0, len(plans))
	for i := range plans {
		p := plans[i]
		if p.Machine == nil {
			continue
		}
		due := p.Evaluate(p.Machine, now, config.C.DueSoonDays, config.C.DueSoonHours)
		if due.Status == models.DueNone && !includeAll {
			continue
		}
		entry := planWithDue{MaintenancePlan: p}
		if due.Status != models.DueNone {
			d := due
			entry.Due = &d
		}
		out = append(out, entry)
	}
	respondOK(c, http.StatusOK, out)
}

// GET /api/maintenance/plans/:id
func GetPlan(c *gin.Context) {
	var plan models.MaintenancePlan
	err := db.GetDB().Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sequence ASC")
	}).Preload("Machine").First(&plan, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "plan not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, plan)
}

// POST /api/maintenance/plans
func CreatePlan(c *gin.Context) {
	var payload planPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if payload.MachineID == 0 || payload.Title == "" {
		respondError(c, http.StatusBadRequest, "machine_id and title are required")
		return
	}

	var machine models.Machine
	if err := db.GetDB().First(&machine, "id = ?", payload.MachineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusBadRequest, "machine does not exist")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	for i := range payload.Items {
		if payload.Items[i].Sequence == 0 {
			payload.Items[i].Sequence = i + 1
		}
		if payload.Items[i].DecisionType == "" {
			payload.Items[i].DecisionType = models.DecisionNone
		}
		if payload.Items[i].OnFailureAction == "" {
			payload.Items[i].OnFailureAction = models.FailureContinue
		}
	}

	plan := models.MaintenancePlan{
		MachineID:          payload.MachineID,
		Title:              payload.Title,
		Description:        payload.Description,
		IntervalType:       payload.IntervalType,
		IntervalValue:      payload.IntervalValue,
		IntervalHours:      payload.IntervalHours,
		RequiredSkillLevel: payload.RequiredSkillLevel,
		Priority:           payload.Priority,
		ShiftCritical:      payload.ShiftCritical,
		DeadlineTime:       payload.DeadlineTime,
		IsActive:           true,
		Items:              payload.Items,
	}
	if plan.Priority == "" {
		plan.Priority = "medium"
	}
	if err := plan.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := db.GetDB().Create(&plan).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(c, http.StatusCreated, plan)
}

// PUT /api/maintenance/plans/:id
// Items, when present, replace the whole template. In-flight tasks keep
// their snapshot.
func UpdatePlan(c *gin.Context) {
	id := c.Param("id")

	type updateDTO struct {
		Title              *string  `json:"title"`
		Description        *string  `json:"description"`
		IntervalType       *string  `json:"interval_type"`
		IntervalValue      *int     `json:"interval_value"`
		IntervalHours      *float64 `json:"interval_hours"`
		RequiredSkillLevel *string  `json:"required_skill_level"`
		Priority           *string  `json:"priority"`
		ShiftCritical      *bool    `json:"shift_critical"`
		DeadlineTime       *string  `json:"deadline_time"`
		IsActive           *bool    `json:"is_active"`

		Items []models.ChecklistTemplateItem `json:"items"`
	}
	var req updateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var plan models.MaintenancePlan
	if err := db.GetDB().First(&plan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "plan not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if req.Title != nil {
		plan.Title = *req.Title
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.IntervalType != nil {
		plan.IntervalType = *req.IntervalType
	}
	if req.IntervalValue != nil {
		plan.IntervalValue = *req.IntervalValue
	}
	if req.IntervalHours != nil {
		plan.IntervalHours = *req.IntervalHours
	}
	if req.RequiredSkillLevel != nil {
		plan.RequiredSkillLevel = *req.RequiredSkillLevel
	}
	if req.Priority != nil {
		plan.Priority = *req.Priority
	}
	if req.ShiftCritical != nil {
		plan.ShiftCritical = *req.ShiftCritical
	}
	if req.DeadlineTime != nil {
		plan.DeadlineTime = *req.DeadlineTime
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	if err := plan.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	err := db.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(&plan).Error; err != nil {
			return err
		}
		if req.Items != nil {
			if err := tx.Where("plan_id = ?", plan.ID).Delete(&models.ChecklistTemplateItem{}).Error; err != nil {
				return err
			}
			for i := range req.Items {
				req.Items[i].ID = 0
				req.Items[i].PlanID = plan.ID
				if req.Items[i].Sequence == 0 {
					req.Items[i].Sequence = i + 1
				}
				if req.Items[i].DecisionType == "" {
					req.Items[i].DecisionType = models.DecisionNone
				}
				if req.Items[i].OnFailureAction == "" {
					req.Items[i].OnFailureAction = models.FailureContinue
				}
				if err := req.Items[i].Validate(); err != nil {
					return err
				}
			}
			if len(req.Items) > 0 {
				if err := tx.Create(&req.Items).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	GetPlan(c)
}

// POST /api/maintenance/plans/:id/deactivate
func DeactivatePlan(c *gin.Context) {
	res := db.GetDB().Model(&models.MaintenancePlan{}).Where("id = ?", c.Param("id")).Update("is_active", false)
	if res.Error != nil {
		respondError(c, http.StatusBadRequest, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "plan not found")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"status": "deactivated"})
}

// DELETE /api/maintenance/plans/:id?hard=true
// Soft delete by default; ?hard=true removes the row (items cascade at
// the DB level).
func DeletePlan(c *gin.Context) {
	query := db.GetDB()
	if c.Query("hard") == "true" {
		query = query.Unscoped()
	}
	if err := query.Delete(&models.MaintenancePlan{}, "id = ?", c.Param("id")).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
