// Package db opens the account database and makes sure its tables exist
package db

import (
	"citricloud/backend/config"
	"citricloud/backend/internal/model"
	"citricloud/backend/pkg/util"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func New(c config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch c.Driver {
	case "postgres":
		dialector = postgres.Open(c.DSN)
	case "sqlite":
		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if util.IsRunningInDocker() && c.DSN != ":memory:" {
			if _, err := os.Stat(c.DSN); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to %s", c.DSN)
			}
		}

		dialector = sqlite.Open(c.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database, %w", c.Driver, err)
	}

	err = db.AutoMigrate(model.User{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	zap.L().Debug("Database ready", zap.String("driver", c.Driver))
	return db, nil
}
