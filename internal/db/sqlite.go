package db

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// ConnectSQLite opens a file-backed sqlite store. The test suite runs
// against this; foreign keys must be switched on or the cascade and
// restrict rules silently stop holding.
func ConnectSQLite(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
	})
}
