package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ShopMaint_Backend/models"
)

// SeedMachineCategories inserts the fixed category key -> label/icon
// mapping. Idempotent: existing keys are left untouched.
func SeedMachineCategories(db *gorm.DB) error {
	categories := []models.MachineCategory{
		{Key: "milling", Label: "Milling Machine", Icon: "🛠️"},
		{Key: "turning", Label: "Lathe", Icon: "⚙️"},
		{Key: "grinding", Label: "Grinding Machine", Icon: "🔩"},
		{Key: "drilling", Label: "Drill Press", Icon: "🕳️"},
		{Key: "sawing", Label: "Saw", Icon: "🪚"},
		{Key: "welding", Label: "Welding Station", Icon: "🔥"},
		{Key: "compressor", Label: "Compressor", Icon: "💨"},
		{Key: "crane", Label: "Crane / Hoist", Icon: "🏗️"},
		{Key: "measuring", Label: "Measuring Station", Icon: "📏"},
		{Key: "other", Label: "Other", Icon: "🔧"},
	}

	for _, cat := range categories {
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).Create(&cat).Error; err != nil {
			return err
		}
	}
	return nil
}
