// Package db подключает хранилище пользователей и сессий к PostgreSQL.
package db

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"sessiongate/internal/auth/adapters/postgres"
	"sessiongate/internal/auth/config"
	pgdb "sessiongate/pkg/db/postgres"
	"sessiongate/pkg/logger"
)

// Константы для сообщений логгера.
const (
	LogDBInitializing    = "initializing session gate database"
	LogDBInitialized     = "session gate database initialized successfully"
	LogMigrationStarting = "starting session gate database migrations"
)

// Константы для сообщений об ошибках.
const (
	ErrDBMigrations = "failed to apply session gate database migrations"
	ErrDBConnection = "failed to connect to session gate database"
	ErrGetPath      = "failed to get path"
)

// DefaultMigrationsDir - каталог миграций относительно рабочего каталога процесса.
const DefaultMigrationsDir = "migrations/auth"

// DB представляет соединение с базой данных пользователей и сессий.
type DB struct {
	database *pgdb.Database
}

// New применяет миграции и открывает пул соединений.
func New(ctx context.Context, cfg *config.PostgresConfig, migrationsDir string) (*DB, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogDBInitializing,
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.Int("min_conn", cfg.MinConn),
		zap.Int("max_conn", cfg.MaxConn))

	migrationsURL, err := MigrationsURL(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}

	log.Info(ctx, LogMigrationStarting, zap.String("migrations_path", migrationsURL))
	if err := pgdb.MigrateDSN(ctx, cfg.GetConnectionURL(), migrationsURL); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}

	database, err := pgdb.New(ctx, cfg.GetDSN(), cfg.MinConn, cfg.MaxConn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	log.Info(ctx, LogDBInitialized)

	return &DB{database: database}, nil
}

// MigrationsURL переводит путь к каталогу миграций в URL источника golang-migrate.
func MigrationsURL(dir string) (string, error) {
	if dir == "" {
		dir = DefaultMigrationsDir
	}
	if !filepath.IsAbs(dir) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("%s: %w", ErrGetPath, err)
		}
		dir = abs
	}
	return "file://" + filepath.ToSlash(dir), nil
}

// Close закрывает соединение с базой данных.
func (db *DB) Close(ctx context.Context) {
	db.database.Close(ctx)
}

// Pool возвращает пул соединений в виде, который принимают репозитории.
func (db *DB) Pool() postgres.PgxPoolInterface {
	return db.database.Pool()
}

// Ping проверяет соединение с базой данных.
func (db *DB) Ping(ctx context.Context) error {
	return db.database.Ping(ctx)
}
