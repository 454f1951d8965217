package repository

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/okian/fuelplan/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded schema migrations to db.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sqlite handle: %w", err)
	}

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	goose.SetLogger(gooseLogger{ctx: ctx})
	goose.SetBaseFS(migrationsFS)
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through the service logger at debug level.
type gooseLogger struct {
	ctx context.Context
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	logger.Get().Debug(l.ctx, fmt.Sprintf(format, v...), logger.String("component", "migrations"))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	logger.Get().Fatal(l.ctx, fmt.Sprintf(format, v...), logger.String("component", "migrations"))
}
