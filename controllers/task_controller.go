package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ShopMaint_Backend/config"
	"ShopMaint_Backend/db"
	"ShopMaint_Backend/models"
)

// GET /api/maintenance/tasks
// optional: ?status=pending&machine_id=3&assigned_to=jdoe
func ListTasks(c *gin.Context) {
	var q PaginationQuery
	if err := c.ShouldBindQuery(&q); err != nil || q.Page < 1 || q.Size < 1 || q.Size > 1000 {
		q = PaginationQuery{Page: 1, Size: 20}
	}

	query := db.GetDB().Model(&models.MaintenanceTask{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if mid := c.Query("machine_id"); mid != "" {
		query = query.Where("machine_id = ?", mid)
	}
	if who := c.Query("assigned_to"); who != "" {
		query = query.Where("assigned_to = ?", who)
	}

	var total int64
	query.Count(&total)

	var tasks []models.MaintenanceTask
	offset := (q.Page - 1) * q.Size
	if err := query.Order("due_date ASC").Limit(q.Size).Offset(offset).Find(&tasks).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"items":      tasks,
		"pagination": gin.H{"page": q.Page, "size": q.Size, "total": total},
	})
}

// GET /api/maintenance/tasks/:id
func GetTask(c *gin.Context) {
	task, ok := loadTask(c, c.Param("id"))
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, task)
}

type taskPayload struct {
	PlanID      *uint     `json:"plan_id"`
	MachineID   uint      `json:"machine_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Priority    string    `json:"priority"`
	AssignedTo  string    `json:"assigned_to"`

	// Ad-hoc tasks may carry an inline checklist.
	Items []models.ChecklistTemplateItem `json:"items"`
}

// POST /api/maintenance/tasks
// With plan_id the checklist is snapshotted from the plan; without it the
// task is ad-hoc and may carry inline items.
func CreateTask(c *gin.Context) {
	var payload taskPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var task models.MaintenanceTask

	if payload.PlanID != nil {
		var plan models.MaintenancePlan
		err := db.GetDB().Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sequence ASC")
		}).First(&plan, "id = ?", *payload.PlanID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusBadRequest, "plan does not exist")
				return
			}
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		due := payload.DueDate
		if due.IsZero() {
			due = time.Now()
		}
		task = newTaskFromPlan(&plan, due)
		if payload.Title != "" {
			task.Title = payload.Title
		}
	} else {
		if payload.MachineID == 0 || payload.Title == "" {
			respondError(c, http.StatusBadRequest, "machine_id and title are required for ad-hoc tasks")
			return
		}
		due := payload.DueDate
		if due.IsZero() {
			due = time.Now()
		}
		task = models.MaintenanceTask{
			MachineID:   payload.MachineID,
			Title:       payload.Title,
			Description: payload.Description,
			DueDate:     due,
			Priority:    payload.Priority,
			Status:      models.TaskPending,
		}
		for i, item := range payload.Items {
			if item.Sequence == 0 {
				item.Sequence = i + 1
			}
			if item.DecisionType == "" {
				item.DecisionType = models.DecisionNone
			}
			if item.OnFailureAction == "" {
				item.OnFailureAction = models.FailureContinue
			}
			if err := item.Validate(); err != nil {
				respondError(c, http.StatusBadRequest, err.Error())
				return
			}
			r := models.NewChecklistResult(0, item)
			r.TemplateItemID = nil // not backed by a stored template
			task.Results = append(task.Results, r)
		}
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}
	if payload.AssignedTo != "" {
		task.AssignedTo = payload.AssignedTo
		task.Status = models.TaskAssigned
	}

	if err := db.GetDB().Create(&task).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(c, http.StatusCreated, task)
}

// POST /api/maintenance/tasks/generate?window_hours=24
// Creates pending tasks for every active plan due inside the window.
// Idempotent: a plan with an open task (not completed or cancelled) due
// before the window end is skipped, so running it twice creates nothing
// new while finished cycles never block the next one.
func GenerateTasks(c *gin.Context) {
	windowHours := config.C.GenerateWindowHours
	if windowHours <= 0 {
		windowHours = 24
	}
	if v, ok := c.GetQuery("window_hours"); ok {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil || n < 1 {
			respondError(c, http.StatusBadRequest, "window_hours must be a positive integer")
			return
		}
		windowHours = n
	}

	now := time.Now()
	windowEnd := now.Add(time.Duration(windowHours) * time.Hour)

	var plans []models.MaintenancePlan
	err := db.GetDB().Preload("Machine").Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sequence ASC")
	}).Where("is_active = ?", true).Find(&plans).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	var created []models.MaintenanceTask
	skipped := 0

	for i := range plans {
		plan := &plans[i]
		if plan.Machine == nil {
			continue
		}

		due := plan.Evaluate(plan.Machine, now, config.C.DueSoonDays, config.C.DueSoonHours)
		var dueDate time.Time
		switch {
		case due.Status == models.DueNone || due.Status == models.DueOK:
			continue
		case due.NextDueAt != nil:
			if due.NextDueAt.After(windowEnd) {
				continue
			}
			dueDate = *due.NextDueAt
		case due.Status == models.DueOver:
			dueDate = now
		default: // hours-based due_soon
			dueDate = windowEnd
		}

		// Only open tasks block generation. A completed prior cycle must
		// not: its write-back already moved the plan's next due point, so
		// when the evaluator says due again a fresh task is owed.
		var existing int64
		db.GetDB().Model(&models.MaintenanceTask{}).
			Where("plan_id = ? AND status NOT IN ? AND due_date <= ?",
				plan.ID, []models.TaskStatus{models.TaskCompleted, models.TaskCancelled}, windowEnd).
			Count(&existing)
		if existing > 0 {
			skipped++
			continue
		}

		task := newTaskFromPlan(plan, dueDate)
		if err := db.GetDB().Create(&task).Error; err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		created = append(created, task)
	}

	respondOK(c, http.StatusOK, gin.H{
		"created": len(created),
		"skipped": skipped,
		"tasks":   created,
	})
}

// PUT /api/maintenance/tasks/:id/assign
func AssignTask(c *gin.Context) {
	type assignDTO struct {
		AssignedTo string `json:"assigned_to"`
	}
	var req assignDTO
	if err := c.ShouldBindJSON(&req); err != nil || req.AssignedTo == "" {
		respondError(c, http.StatusBadRequest, "assigned_to is required")
		return
	}

	task, ok := loadTask(c, c.Param("id"))
	if !ok {
		return
	}
	if !task.Status.CanTransitionTo(models.TaskAssigned) {
		respondError(c, http.StatusConflict, "task cannot be assigned in status "+string(task.Status))
		return
	}

	if err := db.GetDB().Model(task).Updates(map[string]any{
		"assigned_to": req.AssignedTo,
		"status":      models.TaskAssigned,
	}).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	task.AssignedTo = req.AssignedTo
	task.Status = models.TaskAssigned
	respondOK(c, http.StatusOK, task)
}

// POST /api/maintenance/tasks/:id/start
// Idempotent when the task is already running.
func StartTask(c *gin.Context) {
	task, ok := loadTask(c, c.Param("id"))
	if !ok {
		return
	}
	if task.Status == models.TaskInProgress {
		respondOK(c, http.StatusOK, task)
		return
	}
	if !task.Status.CanTransitionTo(models.TaskInProgress) {
		respondError(c, http.StatusConflict, "task cannot be started in status "+string(task.Status))
		return
	}

	now := time.Now()
	if err := db.GetDB().Model(task).Updates(map[string]any{
		"status":     models.TaskInProgress,
		"started_at": now,
	}).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	task.Status = models.TaskInProgress
	task.StartedAt = &now
	respondOK(c, http.StatusOK, task)
}

// POST /api/maintenance/tasks/:id/complete
// Guarded: every critical checklist item must be completed. On success
// the machine's last-maintained timestamp and hours reading are written
// back so the interval evaluator schedules the next cycle.
func CompleteTask(c *gin.Context) {
	type completeDTO struct {
		CompletedBy string `json:"completed_by"`
	}
	var req completeDTO
	_ = c.ShouldBindJSON(&req)

	task, ok := loadTask(c, c.Param("id"))
	if !ok {
		return
	}
	if !task.Status.CanTransitionTo(models.TaskCompleted) {
		respondError(c, http.StatusConflict, "task cannot be completed in status "+string(task.Status))
		return
	}

	if missing := task.UnfinishedCriticalTitles(); len(missing) > 0 {
		respondPolicy(c, "critical checklist items are unfinished", gin.H{"missing_items": missing})
		return
	}

	now := time.Now()
	who := currentUser(c, req.CompletedBy)

	err := db.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(task).Updates(map[string]any{
			"status":       models.TaskCompleted,
			"completed_at": now,
			"completed_by": who,
		}).Error; err != nil {
			return err
		}
		if task.PlanID == nil {
			return nil
		}
		var machine models.Machine
		if err := tx.First(&machine, "id = ?", task.MachineID).Error; err != nil {
			return err
		}
		return tx.Model(&machine).Updates(map[string]any{
			"last_maintained_at":    now,
			"last_maintained_hours": machine.OperatingHours,
		}).Error
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	task.Status = models.TaskCompleted
	task.CompletedAt = &now
	task.CompletedBy = who
	respondOK(c, http.StatusOK, task)
}

// POST /api/maintenance/tasks/:id/cancel
func CancelTask(c *gin.Context) {
	type cancelDTO struct {
		Reason string `json:"reason"`
	}
	var req cancelDTO
	if err := c.ShouldBindJSON(&req); err != nil || req.Reason == "" {
		respondError(c, http.StatusBadRequest, "reason is required")
		return
	}

	task, ok := loadTask(c, c.Param("id"))
	if !ok {
		return
	}
	if !task.Status.CanTransitionTo(models.TaskCancelled) {
		respondError(c, http.StatusConflict, "task cannot be cancelled in status "+string(task.Status))
		return
	}

	if err := db.GetDB().Model(task).Updates(map[string]any{
		"status":        models.TaskCancelled,
		"cancel_reason": req.Reason,
	}).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	task.Status = models.TaskCancelled
	task.CancelReason = req.Reason
	respondOK(c, http.StatusOK, task)
}

// PUT /api/maintenance/tasks/:id/checklist/:itemId
// Records one checklist item completion. A failed item with policy
// escalate opens an escalation in the same request; policy stop rejects
// the submission and leaves the item untouched.
func SubmitChecklistItem(c *gin.Context) {
	var sub models.ChecklistSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	task, ok := loadTask(c, c.Param("id"))
	if !ok {
		return
	}
	if task.Status != models.TaskInProgress {
		respondError(c, http.StatusConflict, "task must be in progress to record checklist results")
		return
	}

	var result models.ChecklistResult
	if err := db.GetDB().First(&result, "id = ? AND task_id = ?", c.Param("itemId"), task.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "checklist item not found on this task")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if result.Completed {
		respondError(c, http.StatusConflict, "checklist item is already completed")
		return
	}

	outcome := result.Evaluate(sub)
	if outcome.Blocked {
		if outcome.Failed {
			// failure with on_failure_action = stop: task is blocked
			respondPolicy(c, outcome.BlockReason, gin.H{
				"item_id":    result.ID,
				"item_title": result.Title,
				"action":     models.FailureStop,
			})
			return
		}
		respondError(c, http.StatusBadRequest, outcome.BlockReason)
		return
	}

	now := time.Now()
	who := currentUser(c, sub.CompletedBy)
	changes := map[string]any{
		"completed":    true,
		"failed":       outcome.Failed,
		"notes":        sub.Notes,
		"photo_path":   sub.PhotoPath,
		"completed_by": who,
		"completed_at": now,
	}
	if sub.Answer != nil {
		changes["answer"] = *sub.Answer
	}
	if sub.MeasurementValue != nil {
		changes["measurement_value"] = *sub.MeasurementValue
	}

	var escalation *models.Escalation
	err := db.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&result).Updates(changes).Error; err != nil {
			return err
		}
		if !outcome.Escalate {
			return nil
		}
		e, err := newChecklistEscalation(task, &result, outcome, sub, who)
		if err != nil {
			return err
		}
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		escalation = e
		return nil
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := db.GetDB().First(&result, "id = ?", result.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	data := gin.H{"result": result}
	if escalation != nil {
		data["escalation"] = escalation
	}
	respondOK(c, http.StatusOK, data)
}

func newTaskFromPlan(plan *models.MaintenancePlan, due time.Time) models.MaintenanceTask {
	planID := plan.ID
	task := models.MaintenanceTask{
		PlanID:        &planID,
		MachineID:     plan.MachineID,
		Title:         plan.Title,
		Description:   plan.Description,
		DueDate:       due,
		Priority:      plan.Priority,
		ShiftCritical: plan.ShiftCritical,
		DeadlineTime:  plan.DeadlineTime,
		Status:        models.TaskPending,
	}
	for _, item := range plan.Items {
		task.Results = append(task.Results, models.NewChecklistResult(0, item))
	}
	return task
}

func newChecklistEscalation(task *models.MaintenanceTask, result *models.ChecklistResult, outcome models.ChecklistOutcome, sub models.ChecklistSubmission, who string) (*models.Escalation, error) {
	severity := models.SeverityMedium
	if result.IsCritical {
		severity = models.SeverityHigh
	}
	reason := sub.EscalationReason
	if reason == "" {
		reason = fmt.Sprintf("checklist item %q failed: %s", result.Title, outcome.FailureNote)
	}

	ctx, err := json.Marshal(gin.H{
		"item_title":   result.Title,
		"failure_note": outcome.FailureNote,
		"reported_by":  who,
	})
	if err != nil {
		return nil, err
	}

	resultID := result.ID
	return &models.Escalation{
		TaskID:            task.ID,
		ChecklistResultID: &resultID,
		MachineID:         task.MachineID,
		Severity:          severity,
		Reason:            reason,
		Status:            models.EscalationOpen,
		Context:           datatypes.JSON(ctx),
	}, nil
}

// loadTask fetches a task with its checklist results in order, writing
// the error response itself when it fails.
func loadTask(c *gin.Context, id string) (*models.MaintenanceTask, bool) {
	var task models.MaintenanceTask
	err := db.GetDB().Preload("Results", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sequence ASC")
	}).First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "task not found")
			return nil, false
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return &task, true
}
