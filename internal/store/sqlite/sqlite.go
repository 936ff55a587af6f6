package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/answerhub/qa-service/internal/model"
	"github.com/answerhub/qa-service/internal/store"
)

// timeLayout is the stored timestamp format: UTC, lexically sortable, and
// understood by SQLite's DATE()/datetime() functions.
const timeLayout = "2006-01-02 15:04:05.000"

// SqliteStore implements store.Store on a local SQLite file.
type SqliteStore struct {
	db *sql.DB
}

// New opens (or creates) the database file and applies the schema.
func New(path string) (*SqliteStore, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &SqliteStore{db: db}, nil
}

// NewWithDB wires an existing connection (used by tests and the CLI).
func NewWithDB(db *sql.DB) *SqliteStore { return &SqliteStore{db: db} }

// DB exposes the underlying connection for report tooling.
func (s *SqliteStore) DB() *sql.DB { return s.db }

func (s *SqliteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SqliteStore) Close() error { return s.db.Close() }

func (s *SqliteStore) UpsertUser(ctx context.Context, username string, ipAddress *string) (*model.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertUserTx(ctx, tx, username, time.Now().UTC()); err != nil {
		return nil, err
	}
	u, err := scanUserRow(tx.QueryRowContext(ctx, `SELECT id, username, first_seen, last_seen, total_questions, created_at, updated_at FROM users WHERE username = ?`, username))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *SqliteStore) AppendEvent(ctx context.Context, req store.AppendEventRequest) (int64, error) {
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

	if err := upsertUserTx(ctx, tx, req.Username, now); err != nil {
		return 0, err
	}
	var userID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE username = ?`, req.Username).Scan(&userID); err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO events (user_id, username, question, answer, timestamp, ip_address, session_id, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		userID, req.Username, req.Question, req.Answer, fmtTime(ts), req.IPAddress, req.SessionID, fmtTime(now))
	if err != nil {
		return 0, err
	}
	eventID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET total_questions = total_questions + 1, updated_at = ? WHERE id = ?`,
		fmtTime(now), userID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return eventID, nil
}

func (s *SqliteStore) GetUser(ctx context.Context, username string) (*model.User, error) {
	return scanUserRow(s.db.QueryRowContext(ctx, `SELECT id, username, first_seen, last_seen, total_questions, created_at, updated_at FROM users WHERE username = ?`, username))
}

func (s *SqliteStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, username, first_seen, last_seen, total_questions, created_at, updated_at FROM users ORDER BY total_questions DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u, err := scanUserRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SqliteStore) EventsOnDate(ctx context.Context, date string, limit int) ([]*model.Event, error) {
	if limit <= 0 {
		limit = store.DefaultEventLimit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, username, question, answer, timestamp, ip_address, session_id, created_at
		FROM events WHERE DATE(timestamp) = ? ORDER BY timestamp ASC LIMIT ?`, date, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SqliteStore) AggregateStats(ctx context.Context) (*model.AggregateStats, error) {
	stats := &model.AggregateStats{}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&stats.TotalEvents); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DATE(timestamp) AS date, COUNT(*) AS count
		FROM events WHERE timestamp >= datetime('now', '-7 days')
		GROUP BY DATE(timestamp) ORDER BY date DESC`)
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

// upsertUserTx creates the user row on first contact or touches last_seen.
// The unique index on username makes concurrent first-time inserts converge
// on a single row.
func upsertUserTx(ctx context.Context, tx *sql.Tx, username string, now time.Time) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO users (username, first_seen, last_seen, total_questions, created_at, updated_at)
		VALUES (?,?,?,0,?,?)
		ON CONFLICT(username) DO UPDATE SET last_seen = excluded.last_seen, updated_at = excluded.updated_at`,
		username, fmtTime(now), fmtTime(now), fmtTime(now), fmtTime(now))
	return err
}

func fmtTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	for _, layout := range []string{timeLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(row *sql.Row) (*model.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return u, err
}

func scanUserRows(rows *sql.Rows) (*model.User, error) { return scanUser(rows) }

func scanUser(r rowScanner) (*model.User, error) {
	var u model.User
	var firstSeen, lastSeen, createdAt, updatedAt string
	if err := r.Scan(&u.ID, &u.Username, &firstSeen, &lastSeen, &u.TotalQuestions, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	u.FirstSeen = parseTime(firstSeen)
	u.LastSeen = parseTime(lastSeen)
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return &u, nil
}

func scanEvent(rows *sql.Rows) (*model.Event, error) {
	var e model.Event
	var userID sql.NullInt64
	var ip, session sql.NullString
	var ts, created string
	if err := rows.Scan(&e.ID, &userID, &e.Username, &e.Question, &e.Answer, &ts, &ip, &session, &created); err != nil {
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
	e.Timestamp = parseTime(ts)
	e.CreatedAt = parseTime(created)
	return &e, nil
}
