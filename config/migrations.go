package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/eccleston-labs/lfg-hackathon/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250812_create_reports",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Report{})
			},
		},
		{
			ID: "20250812_create_report_photos",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.ReportPhoto{})
			},
		},
		{
			ID: "20250819_add_ai_summary",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("ALTER TABLE reports ADD COLUMN IF NOT EXISTS ai_summary text").Error
			},
		},
		{
			ID: "20250826_add_extracted_jsonb",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("ALTER TABLE reports ADD COLUMN IF NOT EXISTS extracted jsonb").Error
			},
		},
	})

	return m.Migrate()
}
