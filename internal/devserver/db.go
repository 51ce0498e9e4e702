package devserver

import (
	"fmt"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nebulamart/storefront/internal/config"
)

// OpenDB connects to postgres when a DSN is configured and falls back to
// the bundled sqlite database otherwise, then migrates the schema.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	if cfg.DATABASE_DSN != "" {
		db, err = gorm.Open(postgres.Open(cfg.DATABASE_DSN), &gorm.Config{})
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.SQLITE_PATH), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&User{}, &Category{}, &Product{}, &ProductImage{}, &RefreshToken{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
