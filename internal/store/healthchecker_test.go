package store

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/answerhub/qa-service/internal/model"
)

// pingStore is a Store whose Ping outcome can be flipped at runtime.
type pingStore struct {
	fail atomic.Bool
}

func (p *pingStore) UpsertUser(ctx context.Context, username string, ipAddress *string) (*model.User, error) {
	return nil, model.ErrNotFound
}
func (p *pingStore) AppendEvent(ctx context.Context, req AppendEventRequest) (int64, error) {
	return 0, nil
}
func (p *pingStore) GetUser(ctx context.Context, username string) (*model.User, error) {
	return nil, model.ErrNotFound
}
func (p *pingStore) ListUsers(ctx context.Context) ([]*model.User, error) { return nil, nil }
func (p *pingStore) EventsOnDate(ctx context.Context, date string, limit int) ([]*model.Event, error) {
	return nil, nil
}
func (p *pingStore) AggregateStats(ctx context.Context) (*model.AggregateStats, error) {
	return nil, nil
}
func (p *pingStore) Close() error { return nil }
func (p *pingStore) Ping(ctx context.Context) error {
	if p.fail.Load() {
		return errors.New("store unreachable")
	}
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHealthChecker_TracksPing(t *testing.T) {
	st := &pingStore{}
	hc := NewHealthChecker(st, zerolog.Nop(), time.Second)

	if hc.IsHealthy() {
		t.Fatal("expected unhealthy before first probe")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hc.Start(ctx, 10*time.Millisecond)

	waitFor(t, hc.IsHealthy)

	st.fail.Store(true)
	waitFor(t, func() bool { return !hc.IsHealthy() })

	st.fail.Store(false)
	waitFor(t, hc.IsHealthy)
}
