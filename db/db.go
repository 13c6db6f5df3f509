package db

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ShopMaint_Backend/config"
	"ShopMaint_Backend/models"
)

var instance *gorm.DB

func Connect() (*gorm.DB, error) {
	if instance != nil {
		return instance, nil
	}

	dsn := config.GetDSN()
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(60 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	// Trigram indexes for the ILIKE searches on machines and plans.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`).Error; err != nil {
		return nil, err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_machines_name_trgm ON machines USING gin (name gin_trgm_ops)`).Error; err != nil {
		return nil, err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_plans_title_trgm ON maintenance_plans USING gin (title gin_trgm_ops)`).Error; err != nil {
		return nil, err
	}

	instance = db
	return instance, nil
}

// Migrate runs AutoMigrate for every model. Exposed separately so tests
// can run it against their own database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Machine{},
		&models.MachineCategory{},
		&models.MaintenancePlan{},
		&models.ChecklistTemplateItem{},
		&models.MaintenanceTask{},
		&models.ChecklistResult{},
		&models.Escalation{},
		&models.Consumable{},
		&models.MeasuringEquipment{},
		&models.Document{},
	)
}

func GetDB() *gorm.DB {
	if instance == nil {
		log.Fatal("DB not initialized. Call db.Connect() first.")
	}
	return instance
}

// SetDB injects a database handle, used by handler tests with sqlite.
func SetDB(db *gorm.DB) {
	instance = db
}
