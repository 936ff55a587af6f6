// Package storetest holds the behavioral contract every store driver must
// satisfy. Driver packages run it against their own backend.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/answerhub/qa-service/internal/model"
	"github.com/answerhub/qa-service/internal/store"
)

// Run exercises the full Store contract against a fresh backend.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("UpsertUserCreatesAndTouches", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		u1, err := st.UpsertUser(ctx, "alice", nil)
		if err != nil {
			t.Fatalf("first upsert: %v", err)
		}
		if u1.Username != "alice" || u1.TotalQuestions != 0 {
			t.Fatalf("unexpected new user: %+v", u1)
		}

		u2, err := st.UpsertUser(ctx, "alice", nil)
		if err != nil {
			t.Fatalf("second upsert: %v", err)
		}
		if u2.ID != u1.ID {
			t.Fatalf("upsert created a second row: %d vs %d", u2.ID, u1.ID)
		}
		if u2.FirstSeen.After(u2.LastSeen) {
			t.Fatalf("first_seen %v after last_seen %v", u2.FirstSeen, u2.LastSeen)
		}
	})

	t.Run("AppendEventIncrementsCounter", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		ip := "127.0.0.1"
		sess := "sess_abc"
		for i := 1; i <= 3; i++ {
			id, err := st.AppendEvent(ctx, store.AppendEventRequest{
				Username:  "bob",
				Question:  "why?",
				Answer:    "because",
				IPAddress: &ip,
				SessionID: &sess,
			})
			if err != nil {
				t.Fatalf("append %d: %v", i, err)
			}
			if id <= 0 {
				t.Fatalf("append %d: non-positive event id %d", i, id)
			}
		}

		u, err := st.GetUser(ctx, "bob")
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if u.TotalQuestions != 3 {
			t.Fatalf("expected 3 questions, got %d", u.TotalQuestions)
		}
	})

	t.Run("ConcurrentFirstContactConverges", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		const n = 10
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := st.AppendEvent(ctx, store.AppendEventRequest{
					Username: "newcomer",
					Question: "hello?",
					Answer:   "hi",
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("concurrent append: %v", err)
			}
		}

		users, err := st.ListUsers(ctx)
		if err != nil {
			t.Fatalf("list users: %v", err)
		}
		if len(users) != 1 {
			t.Fatalf("expected a single user row, got %d", len(users))
		}
		if users[0].TotalQuestions != n {
			t.Fatalf("expected %d questions, got %d", n, users[0].TotalQuestions)
		}
	})

	t.Run("GetUserNotFound", func(t *testing.T) {
		st := newStore(t)
		_, err := st.GetUser(context.Background(), "ghost")
		if err != model.ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("EventsOnDateOrderAndLimit", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		day := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
		// insert out of chronological order
		for _, hour := range []int{14, 9, 23, 1} {
			_, err := st.AppendEvent(ctx, store.AppendEventRequest{
				Username:  "carol",
				Question:  "when?",
				Answer:    "now",
				Timestamp: day.Add(time.Duration(hour) * time.Hour),
			})
			if err != nil {
				t.Fatalf("append: %v", err)
			}
		}
		// event on another date must not appear
		if _, err := st.AppendEvent(ctx, store.AppendEventRequest{
			Username:  "carol",
			Question:  "when?",
			Answer:    "later",
			Timestamp: day.AddDate(0, 0, 1),
		}); err != nil {
			t.Fatalf("append next day: %v", err)
		}

		events, err := st.EventsOnDate(ctx, "2025-10-01", 0)
		if err != nil {
			t.Fatalf("events on date: %v", err)
		}
		if len(events) != 4 {
			t.Fatalf("expected 4 events, got %d", len(events))
		}
		for i := 1; i < len(events); i++ {
			if events[i].Timestamp.Before(events[i-1].Timestamp) {
				t.Fatalf("events not in ascending order at %d", i)
			}
		}

		limited, err := st.EventsOnDate(ctx, "2025-10-01", 2)
		if err != nil {
			t.Fatalf("events on date with limit: %v", err)
		}
		if len(limited) != 2 {
			t.Fatalf("expected 2 events with limit, got %d", len(limited))
		}
	})

	t.Run("ListUsersOrderedByActivity", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			if _, err := st.AppendEvent(ctx, store.AppendEventRequest{Username: "busy", Question: "q", Answer: "a"}); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
		if _, err := st.AppendEvent(ctx, store.AppendEventRequest{Username: "quiet", Question: "q", Answer: "a"}); err != nil {
			t.Fatalf("append: %v", err)
		}

		users, err := st.ListUsers(ctx)
		if err != nil {
			t.Fatalf("list users: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("expected 2 users, got %d", len(users))
		}
		if users[0].Username != "busy" || users[1].Username != "quiet" {
			t.Fatalf("unexpected order: %s, %s", users[0].Username, users[1].Username)
		}
	})

	t.Run("AggregateStats", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		for _, name := range []string{"dave", "dave", "erin"} {
			if _, err := st.AppendEvent(ctx, store.AppendEventRequest{Username: name, Question: "q", Answer: "a"}); err != nil {
				t.Fatalf("append: %v", err)
			}
		}

		stats, err := st.AggregateStats(ctx)
		if err != nil {
			t.Fatalf("aggregate stats: %v", err)
		}
		if stats.TotalUsers != 2 || stats.TotalEvents != 3 {
			t.Fatalf("unexpected totals: users=%d events=%d", stats.TotalUsers, stats.TotalEvents)
		}
		if len(stats.TopUsers) == 0 || stats.TopUsers[0].Username != "dave" {
			t.Fatalf("unexpected top users: %+v", stats.TopUsers)
		}
		// events were written just now, so today must show up in the window
		if len(stats.DailyEvents) == 0 {
			t.Fatalf("expected at least one daily bucket")
		}
	})
}
