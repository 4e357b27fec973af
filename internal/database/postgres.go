package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// ConnectPostgres opens a pool and pings it. As with MongoDB a failed ping
// only logs.
func ConnectPostgres(ctx context.Context, postgresURI string, timeout time.Duration, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Warn("PostgreSQL ping failed, continuing with fallback store available", zap.Error(err))
		return db, nil
	}

	logger.Info("connected to PostgreSQL")
	return db, nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			weight DOUBLE PRECISION NOT NULL,
			height DOUBLE PRECISION NOT NULL,
			age INTEGER NOT NULL,
			goal VARCHAR(20) NOT NULL,
			daily_calorie_target DOUBLE PRECISION NOT NULL,
			daily_water_target DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS meals (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			image_url TEXT,
			meal_type VARCHAR(20) NOT NULL,
			food_items JSONB NOT NULL DEFAULT '[]',
			calories DOUBLE PRECISION NOT NULL DEFAULT 0,
			macros JSONB NOT NULL DEFAULT '{}',
			micronutrients JSONB NOT NULL DEFAULT '{}',
			health_score INTEGER NOT NULL DEFAULT 0,
			recommendations JSONB NOT NULL DEFAULT '[]',
			is_ai_analyzed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS progress_entries (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			weight DOUBLE PRECISION NOT NULL,
			water_intake DOUBLE PRECISION NOT NULL DEFAULT 0,
			date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			notes TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_meals_user_created_at ON meals(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_meals_user_meal_type ON meals(user_id, meal_type)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_entries_user_date ON progress_entries(user_id, date DESC)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
