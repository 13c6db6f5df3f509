package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Machine struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Name          string         `json:"name" gorm:"index"`
	MachineNumber string         `json:"machine_number" gorm:"uniqueIndex;size:64"`
	CategoryKey   string         `json:"category_key" gorm:"size:64;index"`
	Location      string         `json:"location"`
	Manufacturer  string         `json:"manufacturer,omitempty"`
	Status        string         `json:"status" gorm:"size:32;default:operational"` // operational / down / retired
	Tags          pq.StringArray `json:"tags,omitempty" gorm:"type:text[]"`
	ImagePath     string         `json:"image_path,omitempty"`
	Notes         string         `json:"notes,omitempty"`

	// Current counter reading, maintained via PUT /machines/:id/hours.
	OperatingHours float64    `json:"operating_hours"`
	HoursUpdatedAt *time.Time `json:"hours_updated_at,omitempty"`

	// Written back when a plan-derived task completes; inputs to the
	// interval evaluator for the next cycle.
	LastMaintainedAt    *time.Time `json:"last_maintained_at,omitempty"`
	LastMaintainedHours *float64   `json:"last_maintained_hours,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// MachineCategory is seeded reference data: a fixed key -> label/icon
// mapping rendered by the UI.
type MachineCategory struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Key   string `json:"key" gorm:"size:64;uniqueIndex"`
	Label string `json:"label" gorm:"size:128"`
	Icon  string `json:"icon" gorm:"size:16"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
