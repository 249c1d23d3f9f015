package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/itfreelance/api/internal/models"
)

// Connect opens the postgres store. TranslateError is on so handlers can
// match gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated instead of
// driver-specific error strings.
func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
}

// Migrate creates the schema. Order matters: parents before children so
// the FK constraints resolve.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Project{},
		&models.Offer{},
		&models.Review{},
		&models.AccessToken{},
	)
}
