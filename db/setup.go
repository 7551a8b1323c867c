package db

import (
	"github.com/matchreel-dev/matchreel/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	// TranslateError maps driver duplicate-key failures onto
	// gorm.ErrDuplicatedKey so handlers can tell conflicts from outages.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Highlight{},
		&models.Standing{},
		&models.Rating{},
		&models.Comment{},
		&models.Favorite{},
		&models.Schedule{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
