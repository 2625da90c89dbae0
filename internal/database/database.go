package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// InitDB opens the SQLite result journal and applies the embedded migrations.
// dbPath ":memory:" keeps the journal for the lifetime of the process only.
func InitDB(dbPath string) (*sql.DB, func(), error) {
	dsn := "file:" + dbPath + "?_foreign_keys=on"
	if dbPath == ":memory:" {
		log.Info("Initializing in-memory SQLite database")
		dsn = ":memory:"
	} else {
		log.Info("Initializing local SQLite database", "path", dbPath)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is its own database, so pin the pool to one.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	teardown := func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}
	log.Info("Database initialized successfully")
	return db, teardown, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}
