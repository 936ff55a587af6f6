package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/answerhub/qa-service/internal/model"
	"github.com/answerhub/qa-service/internal/store"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		first_seen TIMESTAMPTZ NOT NULL,
		last_seen TIMESTAMPTZ NOT NULL,
		total_questions BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT REFERENCES users (id),
		username TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		ip_address TEXT,
		session_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_username ON events (username)`,
	`CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events (timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_events_date ON events (((timestamp AT TIME ZONE 'UTC')::date))`,
	`CREATE INDEX IF NOT EXISTS idx_events_user_id ON events (user_id)`,
}

// PgStore implements store.Store on PostgreSQL via the pgx stdlib driver.
type PgStore struct {
	db *sql.DB
}

// Open connects using the pgx stdlib driver, verifies connectivity and
// applies the schema.
func Open(dsn string) (*PgStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &PgStore{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wires an existing connection; the schema must already exist.
func NewWithDB(db *sql.DB) *PgStore { return &PgStore{db: db} }

// DB exposes the underlying connection for report tooling and tests.
func (s *PgStore) DB() *sql.DB { return s.db }

func (s *PgStore) ensureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (s *PgStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *PgStore) Close() error { return s.db.Close() }

func (s *PgStore) UpsertUser(ctx context.Context, username string, ipAddress *string) (*model.User, error) {
	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `INSERT INTO users (username, first_seen, last_seen, total_questions, created_at, updated_at)
		VALUES ($1,$2,$2,0,$2,$2)
		ON CONFLICT (username) DO UPDATE SET last_seen = EXCLUDED.last_seen, updated_at = EXCLUDED.updated_at
		RETURNING id, username, first_seen, last_seen, total_questions, created_at, updated_at`, username, now)
	return scanUser(row)
}

func (s *PgStore) AppendEvent(ctx context.Context, req store.AppendEventRequest) (int64, error) {
	now := time.Now().UTC()
	ts := req.Timestamp
	if ts.IsZero() {
		ts = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var userID int64
	if err := tx.QueryRowContext(ctx, `INSERT INTO users (username, first_seen, last_seen, total_questions, created_at, updated_at)
		VALUES ($1,$2,$2,0,$2,$2)
		ON CONFLICT (username) DO UPDATE SET last_seen = EXCLUDED.last_seen, updated_at = EXCLUDED.updated_at
		RETURNING id`, req.Username, now).Scan(&userID); err != nil {
		return 0, err
	}

	var eventID int64
	if err := tx.QueryRowContext(ctx, `INSERT INTO events (user_id, username, question, answer, timestamp, ip_address, session_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		userID, req.Username, req.Question, req.Answer, ts, req.IPAddress, req.SessionID, now).Scan(&eventID); err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET total_questions = total_questions + 1, updated_at = $1 WHERE id = $2`, now, userID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return eventID, nil
}

func (s *PgStore) GetUser(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, first_seen, last_seen, total_questions, created_at, updated_at
		FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return u, err
}

func (s *PgStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, username, first_seen, last_seen, total_questions, created_at, updated_at
		FROM users ORDER BY total_questions DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PgStore) EventsOnDate(ctx context.Context, date string, limit int) ([]*model.Event, error) {
	if limit <= 0 {
		limit = store.DefaultEventLimit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, username, question, answer, timestamp, ip_address, session_id, created_at
		FROM events WHERE (timestamp AT TIME ZONE 'UTC')::date = $1::date
		ORDER BY timestamp ASC LIMIT $2`, date, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Event
	for rows.Next() {
		var e model.Event
		var userID sql.NullInt64
		var ip, session sql.NullString
		if err := rows.Scan(&e.ID, &userID, &e.Username, &e.Question, &e.Answer, &e.Timestamp, &ip, &session, &e.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			e.UserID = &userID.Int64
		}
		if ip.Valid {
			e.IPAddress = &ip.String
		}
		if session.Valid {
			e.SessionID = &session.String
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *PgStore) AggregateStats(ctx context.Context) (*model.AggregateStats, error) {
	stats := &model.AggregateStats{}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&stats.TotalEvents); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT to_char((timestamp AT TIME ZONE 'UTC')::date, 'YYYY-MM-DD') AS date, COUNT(*) AS count
		FROM events WHERE timestamp >= now() - interval '7 days'
		GROUP BY 1 ORDER BY 1 DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var d model.DailyCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, err
		}
		stats.DailyEvents = append(stats.DailyEvents, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	top, err := s.db.QueryContext(ctx, `SELECT username, total_questions FROM users ORDER BY total_questions DESC LIMIT 10`)
	if err != nil {
		return nil, err
	}
	defer top.Close()
	for top.Next() {
		var t model.TopUser
		if err := top.Scan(&t.Username, &t.TotalQuestions); err != nil {
			return nil, err
		}
		stats.TopUsers = append(stats.TopUsers, t)
	}
	return stats, top.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(r rowScanner) (*model.User, error) {
	var u model.User
	if err := r.Scan(&u.ID, &u.Username, &u.FirstSeen, &u.LastSeen, &u.TotalQuestions, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
