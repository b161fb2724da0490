// database/bootstrap.go
package database

import (
	"fmt"
	"log"
	"os"
	"time"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver for dev and tests
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"agrisense/config"
	"agrisense/entities"
)

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{
		&entities.Field{},
		&entities.Species{},
		&entities.Variety{},
		&entities.BloomStage{},
		&entities.Crop{},
		&entities.StageTransition{},
		&entities.Device{},
		&entities.Reading{},
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// Relations are enforced by the services, not by FK constraints.
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
		Logger: logger.New(
			log.New(os.Stdout, "", log.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

// Open picks the driver from cfg and migrates the schema.
func Open(cfg config.AppConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case "postgres":
		db, err = OpenPostgres(cfg.Postgres)
	case "sqlite", "":
		db, err = OpenSQLite(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

func OpenPostgres(pg config.PostgresConfig) (*gorm.DB, error) {
	return OpenPostgresDSN(PostgresDSN(pg))
}

func OpenPostgresDSN(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: dsn}), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

func PostgresDSN(pg config.PostgresConfig) string {
	ssl := pg.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		pg.Host, pg.User, pg.Password, pg.DBName, pg.Port, ssl)
}

// Migrate enables PostGIS on postgres before AutoMigrate so the geography column type exists.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS postgis`).Error; err != nil {
			return fmt.Errorf("enable postgis: %w", err)
		}
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
