package database

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"karmafeed/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	log "github.com/sirupsen/logrus"
)

//go:embed schema.sql
var schema string

func Connect(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	log.WithFields(log.Fields{"host": cfg.DBHost, "db": cfg.DBName}).Info("[Database] Connected")
	return db, nil
}

// Migrate applies the schema. Every statement is idempotent, so it is safe on every start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Info("[Database] Schema applied")
	return nil
}
