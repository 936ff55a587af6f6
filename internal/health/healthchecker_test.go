package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeChecker struct {
	name    string
	healthy atomic.Bool
}

func (f *fakeChecker) Name() string                                      { return f.name }
func (f *fakeChecker) IsHealthy() bool                                   { return f.healthy.Load() }
func (f *fakeChecker) Start(ctx context.Context, interval time.Duration) {}

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

func TestServiceHealthChecker_AllHealthy(t *testing.T) {
	a := &fakeChecker{name: "a"}
	b := &fakeChecker{name: "b"}
	a.healthy.Store(true)
	b.healthy.Store(true)

	svc := NewServiceHealthChecker(zerolog.Nop(), a, b)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Start(ctx, 10*time.Millisecond)

	waitFor(t, svc.IsHealthy)
}

func TestServiceHealthChecker_OneUnhealthy(t *testing.T) {
	a := &fakeChecker{name: "a"}
	b := &fakeChecker{name: "b"}
	a.healthy.Store(true)
	b.healthy.Store(false)

	svc := NewServiceHealthChecker(zerolog.Nop(), a, b)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Start(ctx, 10*time.Millisecond)

	// stays unhealthy while any dependency is down
	time.Sleep(50 * time.Millisecond)
	if svc.IsHealthy() {
		t.Fatal("service healthy despite unhealthy dependency")
	}

	// recovers once the dependency does
	b.healthy.Store(true)
	waitFor(t, svc.IsHealthy)
}

func TestServiceHealthChecker_StartsUnhealthy(t *testing.T) {
	svc := NewServiceHealthChecker(zerolog.Nop(), &fakeChecker{name: "a"})
	if svc.IsHealthy() {
		t.Fatal("expected unhealthy before first evaluation")
	}
}
