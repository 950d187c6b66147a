package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Open connects to Postgres and makes sure the memberships table exists.
func Open(dsn string) (*sql.DB, error) {
	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := sqldb.Ping(); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	sqldb.SetMaxOpenConns(20)
	sqldb.SetMaxIdleConns(10)

	if err := createTables(sqldb); err != nil {
		return nil, err
	}
	return sqldb, nil
}

func createTables(sqldb *sql.DB) error {
	// The composite unique key is what dedups attendees; event_id is TEXT
	// because event ids are UUID strings minted by the application.
	createMemberships := `
	CREATE TABLE IF NOT EXISTS memberships (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL,
		event_id TEXT NOT NULL,
		UNIQUE (username, event_id)
	);`
	if _, err := sqldb.Exec(createMemberships); err != nil {
		return fmt.Errorf("create memberships table: %w", err)
	}
	return nil
}
