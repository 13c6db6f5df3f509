package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ShopMaint_Backend/config"
	"ShopMaint_Backend/db"
	"ShopMaint_Backend/models"
	"ShopMaint_Backend/router"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.Load()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	db.SetDB(gdb)

	return router.Setup()
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func decodeInto(t *testing.T, raw json.RawMessage, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out))
}

func createMachine(t *testing.T, r *gin.Engine, body map[string]any) models.Machine {
	t.Helper()
	code, env := do(t, r, http.MethodPost, "/api/machines", body)
	require.Equal(t, http.StatusCreated, code, env.Error)
	var m models.Machine
	decodeInto(t, env.Data, &m)
	return m
}

func createPlan(t *testing.T, r *gin.Engine, body map[string]any) models.MaintenancePlan {
	t.Helper()
	code, env := do(t, r, http.MethodPost, "/api/maintenance/plans", body)
	require.Equal(t, http.StatusCreated, code, env.Error)
	var p models.MaintenancePlan
	decodeInto(t, env.Data, &p)
	return p
}

func taskURL(id uint, suffix string) string {
	return "/api/maintenance/tasks/" + uintStr(id) + suffix
}

func uintStr(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestGenerateTasksIdempotent(t *testing.T) {
	r := setupRouter(t)

	machine := createMachine(t, r, map[string]any{
		"name":                  "Mill 1",
		"machine_number":        "M-001",
		"operating_hours":       1000,
		"last_maintained_hours": 480,
	})
	createPlan(t, r, map[string]any{
		"machine_id":     machine.ID,
		"title":          "500h service",
		"interval_hours": 500,
	})

	type genResult struct {
		Created int                      `json:"created"`
		Skipped int                      `json:"skipped"`
		Tasks   []models.MaintenanceTask `json:"tasks"`
	}

	// next due at 980h, reading 1000h: overdue, one task created
	code, env := do(t, r, http.MethodPost, "/api/maintenance/tasks/generate", nil)
	require.Equal(t, http.StatusOK, code)
	var first genResult
	decodeInto(t, env.Data, &first)
	require.Equal(t, 1, first.Created)
	require.Len(t, first.Tasks, 1)
	assert.Equal(t, models.TaskPending, first.Tasks[0].Status)

	// second run must not duplicate
	code, env = do(t, r, http.MethodPost, "/api/maintenance/tasks/generate", nil)
	require.Equal(t, http.StatusOK, code)
	var second genResult
	decodeInto(t, env.Data, &second)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Skipped)

	// cancelling the task frees the slot again
	code, _ = do(t, r, http.MethodPost, taskURL(first.Tasks[0].ID, "/cancel"), map[string]any{"reason": "machine down"})
	require.Equal(t, http.StatusOK, code)
	code, env = do(t, r, http.MethodPost, "/api/maintenance/tasks/generate", nil)
	require.Equal(t, http.StatusOK, code)
	var third genResult
	decodeInto(t, env.Data, &third)
	assert.Equal(t, 1, third.Created)
}

func TestGenerateTasksRecursAfterCompletedCycle(t *testing.T) {
	r := setupRouter(t)

	machine := createMachine(t, r, map[string]any{
		"name":                  "Mill 4",
		"machine_number":        "M-004",
		"operating_hours":       1000,
		"last_maintained_hours": 480,
	})
	createPlan(t, r, map[string]any{
		"machine_id":     machine.ID,
		"title":          "500h service",
		"interval_hours": 500,
	})

	type genResult struct {
		Created int                      `json:"created"`
		Skipped int                      `json:"skipped"`
		Tasks   []models.MaintenanceTask `json:"tasks"`
	}
	generate := func() genResult {
		code, env := do(t, r, http.MethodPost, "/api/maintenance/tasks/generate", nil)
		require.Equal(t, http.StatusOK, code, env.Error)
		var res genResult
		decodeInto(t, env.Data, &res)
		return res
	}

	// cycle 1: next due at 980h, reading 1000h
	first := generate()
	require.Equal(t, 1, first.Created)

	code, env := do(t, r, http.MethodPost, taskURL(first.Tasks[0].ID, "/start"), nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	code, env = do(t, r, http.MethodPost, taskURL(first.Tasks[0].ID, "/complete"), nil)
	require.Equal(t, http.StatusOK, code, env.Error)

	// write-back moved the cycle: next due 1500h, reading 1000h
	mid := generate()
	assert.Equal(t, 0, mid.Created)

	// counter passes the next due point: the finished cycle must not
	// block a new task
	code, env = do(t, r, http.MethodPut, "/api/machines/"+uintStr(machine.ID)+"/hours", map[string]any{"operating_hours": 1600})
	require.Equal(t, http.StatusOK, code, env.Error)

	second := generate()
	assert.Equal(t, 1, second.Created)
	assert.Equal(t, 0, second.Skipped)

	// and the fresh open task dedupes as usual
	third := generate()
	assert.Equal(t, 0, third.Created)
	assert.Equal(t, 1, third.Skipped)
}

func TestGenerateTasksNotDueYet(t *testing.T) {
	r := setupRouter(t)

	machine := createMachine(t, r, map[string]any{
		"name":                  "Mill 2",
		"machine_number":        "M-002",
		"operating_hours":       520,
		"last_maintained_hours": 480,
	})
	createPlan(t, r, map[string]any{
		"machine_id":     machine.ID,
		"title":          "500h service",
		"interval_hours": 500,
	})

	// 460h remaining: nothing to generate
	code, env := do(t, r, http.MethodPost, "/api/maintenance/tasks/generate", nil)
	require.Equal(t, http.StatusOK, code)
	var res struct {
		Created int `json:"created"`
	}
	decodeInto(t, env.Data, &res)
	assert.Equal(t, 0, res.Created)
}

// startedChecklistTask creates a plan-derived task with a representative
// checklist and moves it to in_progress.
func startedChecklistTask(t *testing.T, r *gin.Engine) (models.MaintenanceTask, models.Machine) {
	t.Helper()

	machine := createMachine(t, r, map[string]any{
		"name":            "Lathe 7",
		"machine_number":  "L-007",
		"operating_hours": 1234,
	})
	plan := createPlan(t, r, map[string]any{
		"machine_id":    machine.ID,
		"title":         "weekly inspection",
		"interval_type": "days",
		"interval_value": 7,
		"items": []map[string]any{
			{"title": "check oil", "is_critical": true},
			{"title": "emergency stop works", "is_critical": true, "decision_type": "yes_no", "expected_answer": true, "on_failure_action": "stop"},
			{"title": "hydraulic pressure", "requires_measurement": true, "min_value": 180, "max_value": 220, "unit": "bar", "on_failure_action": "escalate"},
			{"title": "coolant photo", "requires_photo": true},
		},
	})

	code, env := do(t, r, http.MethodPost, "/api/maintenance/tasks", map[string]any{"plan_id": plan.ID})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var task models.MaintenanceTask
	decodeInto(t, env.Data, &task)
	require.Len(t, task.Results, 4)

	code, env = do(t, r, http.MethodPost, taskURL(task.ID, "/start"), nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	decodeInto(t, env.Data, &task)
	require.Equal(t, models.TaskInProgress, task.Status)
	return task, machine
}

func submitURL(task models.MaintenanceTask, idx int) string {
	return taskURL(task.ID, "/checklist/"+uintStr(task.Results[idx].ID))
}

func TestChecklistStopPolicyRejectsSubmission(t *testing.T) {
	r := setupRouter(t)
	task, _ := startedChecklistTask(t, r)

	// e-stop item fails with policy stop: rejected, nothing recorded
	code, env := do(t, r, http.MethodPut, submitURL(task, 1), map[string]any{"answer": false})
	require.Equal(t, http.StatusConflict, code)
	assert.Contains(t, env.Error, "stop")

	code, env = do(t, r, http.MethodGet, taskURL(task.ID, ""), nil)
	require.Equal(t, http.StatusOK, code)
	var reloaded models.MaintenanceTask
	decodeInto(t, env.Data, &reloaded)
	assert.False(t, reloaded.Results[1].Completed)
	assert.False(t, reloaded.Results[1].Failed)
}

func TestChecklistPhotoRequired(t *testing.T) {
	r := setupRouter(t)
	task, _ := startedChecklistTask(t, r)

	code, env := do(t, r, http.MethodPut, submitURL(task, 3), map[string]any{"notes": "looks fine"})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "photo")

	code, env = do(t, r, http.MethodPut, submitURL(task, 3), map[string]any{"photo_path": "uploads/photo/abc.jpg"})
	require.Equal(t, http.StatusOK, code, env.Error)
	var res struct {
		Result models.ChecklistResult `json:"result"`
	}
	decodeInto(t, env.Data, &res)
	assert.True(t, res.Result.Completed)
	assert.Equal(t, "uploads/photo/abc.jpg", res.Result.PhotoPath)
	assert.NotEmpty(t, res.Result.CompletedBy)
	assert.NotNil(t, res.Result.CompletedAt)
}

func TestChecklistEscalateOpensEscalation(t *testing.T) {
	r := setupRouter(t)
	task, _ := startedChecklistTask(t, r)

	code, env := do(t, r, http.MethodPut, submitURL(task, 2), map[string]any{"measurement_value": 250})
	require.Equal(t, http.StatusOK, code, env.Error)
	var res struct {
		Result     models.ChecklistResult `json:"result"`
		Escalation *models.Escalation     `json:"escalation"`
	}
	decodeInto(t, env.Data, &res)
	assert.True(t, res.Result.Completed)
	assert.True(t, res.Result.Failed)
	require.NotNil(t, res.Escalation)
	assert.Equal(t, models.EscalationOpen, res.Escalation.Status)
	assert.Equal(t, task.ID, res.Escalation.TaskID)

	escURL := "/api/maintenance/escalations/" + uintStr(res.Escalation.ID)

	// lifecycle only moves forward
	code, env = do(t, r, http.MethodPost, escURL+"/acknowledge", map[string]any{"acknowledged_by": "shift lead"})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = do(t, r, http.MethodPost, escURL+"/resolve", map[string]any{"resolution_notes": "valve replaced"})
	require.Equal(t, http.StatusOK, code, env.Error)
	var resolved models.Escalation
	decodeInto(t, env.Data, &resolved)
	assert.Equal(t, models.EscalationResolved, resolved.Status)

	code, _ = do(t, r, http.MethodPost, escURL+"/acknowledge", map[string]any{})
	assert.Equal(t, http.StatusConflict, code)
	code, _ = do(t, r, http.MethodPost, escURL+"/resolve", map[string]any{"resolution_notes": "again"})
	assert.Equal(t, http.StatusConflict, code)

	// re-escalation clones into a fresh open record
	code, env = do(t, r, http.MethodPost, escURL+"/reescalate", map[string]any{"reason": "leak came back"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var fresh models.Escalation
	decodeInto(t, env.Data, &fresh)
	assert.Equal(t, models.EscalationOpen, fresh.Status)
	assert.NotEqual(t, resolved.ID, fresh.ID)
	require.NotNil(t, fresh.PreviousEscalationID)
	assert.Equal(t, resolved.ID, *fresh.PreviousEscalationID)
}

func TestCompleteTaskGuardsCriticalItems(t *testing.T) {
	r := setupRouter(t)
	task, machine := startedChecklistTask(t, r)

	// both critical items still open
	code, env := do(t, r, http.MethodPost, taskURL(task.ID, "/complete"), nil)
	require.Equal(t, http.StatusConflict, code)
	var detail struct {
		MissingItems []string `json:"missing_items"`
	}
	decodeInto(t, env.Data, &detail)
	assert.Equal(t, []string{"check oil", "emergency stop works"}, detail.MissingItems)

	code, env = do(t, r, http.MethodPut, submitURL(task, 0), map[string]any{"notes": "topped up"})
	require.Equal(t, http.StatusOK, code, env.Error)

	// still one critical missing, and it is named
	code, env = do(t, r, http.MethodPost, taskURL(task.ID, "/complete"), nil)
	require.Equal(t, http.StatusConflict, code)
	decodeInto(t, env.Data, &detail)
	assert.Equal(t, []string{"emergency stop works"}, detail.MissingItems)

	code, env = do(t, r, http.MethodPut, submitURL(task, 1), map[string]any{"answer": true})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = do(t, r, http.MethodPost, taskURL(task.ID, "/complete"), map[string]any{"completed_by": "jdoe"})
	require.Equal(t, http.StatusOK, code, env.Error)
	var done models.MaintenanceTask
	decodeInto(t, env.Data, &done)
	assert.Equal(t, models.TaskCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	// completion writes the machine's maintenance history back
	code, env = do(t, r, http.MethodGet, "/api/machines/"+uintStr(machine.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var m models.Machine
	decodeInto(t, env.Data, &m)
	require.NotNil(t, m.LastMaintainedAt)
	require.NotNil(t, m.LastMaintainedHours)
	assert.Equal(t, 1234.0, *m.LastMaintainedHours)

	// terminal states stay terminal
	code, _ = do(t, r, http.MethodPost, taskURL(task.ID, "/cancel"), map[string]any{"reason": "too late"})
	assert.Equal(t, http.StatusConflict, code)
}

func TestTaskLifecycleEdges(t *testing.T) {
	r := setupRouter(t)

	machine := createMachine(t, r, map[string]any{
		"name":           "Press 3",
		"machine_number": "P-003",
	})
	code, env := do(t, r, http.MethodPost, "/api/maintenance/tasks", map[string]any{
		"machine_id": machine.ID,
		"title":      "tighten bolts",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var task models.MaintenanceTask
	decodeInto(t, env.Data, &task)
	assert.Equal(t, models.TaskPending, task.Status)

	// checklist submissions need a started task
	code, _ = do(t, r, http.MethodPut, taskURL(task.ID, "/checklist/1"), map[string]any{})
	assert.Equal(t, http.StatusConflict, code)

	// cancel needs a reason
	code, _ = do(t, r, http.MethodPost, taskURL(task.ID, "/cancel"), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = do(t, r, http.MethodPut, taskURL(task.ID, "/assign"), map[string]any{"assigned_to": "jdoe"})
	require.Equal(t, http.StatusOK, code, env.Error)
	decodeInto(t, env.Data, &task)
	assert.Equal(t, models.TaskAssigned, task.Status)

	// starting twice is idempotent
	code, _ = do(t, r, http.MethodPost, taskURL(task.ID, "/start"), nil)
	require.Equal(t, http.StatusOK, code)
	code, env = do(t, r, http.MethodPost, taskURL(task.ID, "/start"), nil)
	require.Equal(t, http.StatusOK, code)
	decodeInto(t, env.Data, &task)
	assert.Equal(t, models.TaskInProgress, task.Status)

	// assigning after start is out of order
	code, _ = do(t, r, http.MethodPut, taskURL(task.ID, "/assign"), map[string]any{"assigned_to": "other"})
	assert.Equal(t, http.StatusConflict, code)

	// ad-hoc task without checklist completes directly
	code, env = do(t, r, http.MethodPost, taskURL(task.ID, "/complete"), nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	decodeInto(t, env.Data, &task)
	assert.Equal(t, models.TaskCompleted, task.Status)

	// ad-hoc completion does not touch the plan cycle bookkeeping
	code, env = do(t, r, http.MethodGet, "/api/machines/"+uintStr(machine.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var m models.Machine
	decodeInto(t, env.Data, &m)
	assert.Nil(t, m.LastMaintainedAt)
}

func TestPlanValidationOverAPI(t *testing.T) {
	r := setupRouter(t)

	machine := createMachine(t, r, map[string]any{
		"name":           "Grinder 1",
		"machine_number": "G-001",
	})

	// both interval kinds at once
	code, env := do(t, r, http.MethodPost, "/api/maintenance/plans", map[string]any{
		"machine_id":     machine.ID,
		"title":          "broken plan",
		"interval_type":  "days",
		"interval_value": 7,
		"interval_hours": 100,
	})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "mutually exclusive")

	// no interval at all
	code, _ = do(t, r, http.MethodPost, "/api/maintenance/plans", map[string]any{
		"machine_id": machine.ID,
		"title":      "no schedule",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}
