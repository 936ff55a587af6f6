package store

import (
	"context"
	"time"

	"github.com/answerhub/qa-service/internal/model"
)

// DefaultEventLimit bounds EventsOnDate result sets when the caller passes no
// explicit limit.
const DefaultEventLimit = 1000

// AppendEventRequest carries one question/answer interaction to persist.
// Timestamp may be backdated for bulk loads; zero means "now".
type AppendEventRequest struct {
	Username  string
	Question  string
	Answer    string
	IPAddress *string
	SessionID *string
	Timestamp time.Time
}

// Store is the authoritative relational persistence layer.
// Implementations live under internal/store/<driver>/ (sqlite, postgres).
//
// AppendEvent resolves/creates the user, inserts the event row and increments
// the user's question counter in a single transaction, so two concurrent
// first-time questions from one username never create two user rows and
// total_questions always equals the event count for that username.
type Store interface {
	UpsertUser(ctx context.Context, username string, ipAddress *string) (*model.User, error)
	AppendEvent(ctx context.Context, req AppendEventRequest) (int64, error)
	GetUser(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	EventsOnDate(ctx context.Context, date string, limit int) ([]*model.Event, error)
	AggregateStats(ctx context.Context) (*model.AggregateStats, error)
	Ping(ctx context.Context) error
	Close() error
}
