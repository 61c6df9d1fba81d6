package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS code_executions (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT        NOT NULL,
	language   TEXT        NOT NULL,
	code       TEXT        NOT NULL,
	output     TEXT,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS code_executions_user_idx ON code_executions (user_id, created_at DESC);
`

// Postgres writes records to the code_executions table.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects and creates the table if needed.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Save(ctx context.Context, rec Record) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO code_executions (user_id, language, code, output, error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.UserID, rec.Language, rec.Code, nullable(rec.Output), nullable(rec.Error), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// Recent returns the newest records of userID, newest first.
func (p *Postgres) Recent(ctx context.Context, userID string, limit int) ([]Record, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT user_id, language, code, COALESCE(output, ''), COALESCE(error, ''), created_at
		 FROM code_executions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.UserID, &r.Language, &r.Code, &r.Output, &r.Error, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error { return p.db.Close() }

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
