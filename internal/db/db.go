package db

import (
	"crimewatch/internal/config"
	"crimewatch/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	// TranslateError turns driver unique-violation errors into
	// gorm.ErrDuplicatedKey, which the vote and subscription paths rely on.
	conn, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Crime{},
		&models.Vote{},
		&models.AnonymousVote{},
		&models.Subscription{},
		&models.FlaggedCrime{},
		&models.SOSAlert{},
	)
}
