package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"strings"
	"pokeapp/internal/config"
	"pokeapp/internal/constants"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// connection settings applied by the driver to every pooled connection
var connParams = map[string]string{
	"_journal_mode": "WAL",
	"_synchronous":  "NORMAL",
	"_busy_timeout": "5000",
	"_foreign_keys": "true",
}

// New opens the document database at cfg.DBPath and brings its schema up
// to date. The returned handle is owned by the sqlite document store.
func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	log := logger.With().Str("component", "database").Str("path", cfg.DBPath).Logger()

	db, err := sql.Open("sqlite3", dsn(cfg.DBPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(constants.DBMaxOpenConns)
	db.SetMaxIdleConns(constants.DBMaxIdleConns)
	db.SetConnMaxLifetime(constants.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(constants.DBMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		log.Error().Err(err).Msg("database unreachable")
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	applied, err := migrate(ctx, db)
	if err != nil {
		db.Close()
		log.Error().Err(err).Msg("failed to migrate document schema")
		return nil, err
	}

	log.Info().Int64("schema_version", applied).Msg("document database ready")
	return db, nil
}

func dsn(path string) string {
	q := url.Values{}
	for k, v := range connParams {
		q.Set(k, v)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

// migrate runs the embedded goose migrations and reports the resulting
// schema version.
func migrate(ctx context.Context, db *sql.DB) (int64, error) {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return 0, fmt.Errorf("failed to run goose migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
