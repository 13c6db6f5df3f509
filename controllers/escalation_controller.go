package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ShopMaint_Backend/db"
	"ShopMaint_Backend/models"
)

// GET /api/maintenance/escalations
// optional: ?status=open&machine_id=3&severity=high
func ListEscalations(c *gin.Context) {
	query := db.GetDB().Model(&models.Escalation{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if mid := c.Query("machine_id"); mid != "" {
		query = query.Where("machine_id = ?", mid)
	}
	if sev := c.Query("severity"); sev != "" {
		query = query.Where("severity = ?", sev)
	}

	var escalations []models.Escalation
	if err := query.Order("created_at DESC").Find(&escalations).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, escalations)
}

// GET /api/maintenance/escalations/:id
func GetEscalation(c *gin.Context) {
	esc, ok := loadEscalation(c, c.Param("id"))
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, esc)
}

// POST /api/maintenance/escalations
// Manual escalation, e.g. after a stop-policy checklist rejection.
func CreateEscalation(c *gin.Context) {
	type escalationPayload struct {
		TaskID            uint   `json:"task_id"`
		ChecklistResultID *uint  `json:"checklist_result_id"`
		Severity          string `json:"severity"`
		Reason            string `json:"reason"`
	}
	var payload escalationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if payload.TaskID == 0 || payload.Reason == "" {
		respondError(c, http.StatusBadRequest, "task_id and reason are required")
		return
	}
	if payload.Severity == "" {
		payload.Severity = models.SeverityMedium
	}
	if !models.ValidSeverity(payload.Severity) {
		respondError(c, http.StatusBadRequest, "invalid severity: "+payload.Severity)
		return
	}

	var task models.MaintenanceTask
	if err := db.GetDB().First(&task, "id = ?", payload.TaskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusBadRequest, "task does not exist")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if payload.ChecklistResultID != nil {
		var count int64
		db.GetDB().Model(&models.ChecklistResult{}).
			Where("id = ? AND task_id = ?", *payload.ChecklistResultID, task.ID).Count(&count)
		if count == 0 {
			respondError(c, http.StatusBadRequest, "checklist_result_id does not belong to this task")
			return
		}
	}

	esc := models.Escalation{
		TaskID:            task.ID,
		ChecklistResultID: payload.ChecklistResultID,
		MachineID:         task.MachineID,
		Severity:          payload.Severity,
		Reason:            payload.Reason,
		Status:            models.EscalationOpen,
	}
	if err := db.GetDB().Create(&esc).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(c, http.StatusCreated, esc)
}

// POST /api/maintenance/escalations/:id/acknowledge
func AcknowledgeEscalation(c *gin.Context) {
	type ackDTO struct {
		AcknowledgedBy string `json:"acknowledged_by"`
	}
	var req ackDTO
	_ = c.ShouldBindJSON(&req)

	esc, ok := loadEscalation(c, c.Param("id"))
	if !ok {
		return
	}
	if !esc.Status.CanTransitionTo(models.EscalationAcknowledged) {
		respondError(c, http.StatusConflict, "escalation cannot be acknowledged in status "+string(esc.Status))
		return
	}

	now := time.Now()
	who := currentUser(c, req.AcknowledgedBy)
	if err := db.GetDB().Model(esc).Updates(map[string]any{
		"status":          models.EscalationAcknowledged,
		"acknowledged_by": who,
		"acknowledged_at": now,
	}).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	esc.Status = models.EscalationAcknowledged
	esc.AcknowledgedBy = who
	esc.AcknowledgedAt = &now
	respondOK(c, http.StatusOK, esc)
}

// POST /api/maintenance/escalations/:id/resolve
// Allowed from open or acknowledged; resolution notes are required.
func ResolveEscalation(c *gin.Context) {
	type resolveDTO struct {
		ResolvedBy      string `json:"resolved_by"`
		ResolutionNotes string `json:"resolution_notes"`
	}
	var req resolveDTO
	if err := c.ShouldBindJSON(&req); err != nil || req.ResolutionNotes == "" {
		respondError(c, http.StatusBadRequest, "resolution_notes is required")
		return
	}

	esc, ok := loadEscalation(c, c.Param("id"))
	if !ok {
		return
	}
	if !esc.Status.CanTransitionTo(models.EscalationResolved) {
		respondError(c, http.StatusConflict, "escalation cannot be resolved in status "+string(esc.Status))
		return
	}

	now := time.Now()
	who := currentUser(c, req.ResolvedBy)
	if err := db.GetDB().Model(esc).Updates(map[string]any{
		"status":           models.EscalationResolved,
		"resolved_by":      who,
		"resolved_at":      now,
		"resolution_notes": req.ResolutionNotes,
	}).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	esc.Status = models.EscalationResolved
	esc.ResolvedBy = who
	esc.ResolvedAt = &now
	esc.ResolutionNotes = req.ResolutionNotes
	respondOK(c, http.StatusOK, esc)
}

// POST /api/maintenance/escalations/:id/reescalate
// A resolved escalation is never reopened; a fresh open record is created
// pointing back at it.
func ReescalateEscalation(c *gin.Context) {
	type reescalateDTO struct {
		Reason   string `json:"reason"`
		Severity string `json:"severity"`
	}
	var req reescalateDTO
	if err := c.ShouldBindJSON(&req); err != nil || req.Reason == "" {
		respondError(c, http.StatusBadRequest, "reason is required")
		return
	}

	prev, ok := loadEscalation(c, c.Param("id"))
	if !ok {
		return
	}
	if prev.Status != models.EscalationResolved {
		respondError(c, http.StatusConflict, "only resolved escalations can be re-escalated")
		return
	}

	severity := req.Severity
	if severity == "" {
		severity = prev.Severity
	}
	if !models.ValidSeverity(severity) {
		respondError(c, http.StatusBadRequest, "invalid severity: "+severity)
		return
	}

	prevID := prev.ID
	esc := models.Escalation{
		TaskID:               prev.TaskID,
		ChecklistResultID:    prev.ChecklistResultID,
		MachineID:            prev.MachineID,
		Severity:             severity,
		Reason:               req.Reason,
		Status:               models.EscalationOpen,
		Context:              prev.Context,
		PreviousEscalationID: &prevID,
	}
	if err := db.GetDB().Create(&esc).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(c, http.StatusCreated, esc)
}

func loadEscalation(c *gin.Context, id string) (*models.Escalation, bool) {
	var esc models.Escalation
	if err := db.GetDB().First(&esc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "escalation not found")
			return nil, false
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return &esc, true
}
