package mirror

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/answerhub/qa-service/internal/model"
)

func newTestMirror(t *testing.T) *Mirror {
	t.Helper()
	m, err := New(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("new mirror: %v", err)
	}
	return m
}

func testUser(name string, questions int64) *model.User {
	now := time.Now().UTC()
	return &model.User{ID: 1, Username: name, FirstSeen: now, LastSeen: now, TotalQuestions: questions, CreatedAt: now, UpdatedAt: now}
}

func testEvent(id int64, username string, ts time.Time) *model.Event {
	return &model.Event{ID: id, Username: username, Question: "q", Answer: "a", Timestamp: ts, CreatedAt: ts}
}

func TestRecordUser_UpsertsByUsername(t *testing.T) {
	m := newTestMirror(t)

	if err := m.RecordUser(testUser("alice", 1)); err != nil {
		t.Fatalf("record user: %v", err)
	}
	if err := m.RecordUser(testUser("alice", 2)); err != nil {
		t.Fatalf("record user again: %v", err)
	}
	if err := m.RecordUser(testUser("bob", 1)); err != nil {
		t.Fatalf("record second user: %v", err)
	}

	users, err := m.ListUsers()
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Username != "alice" || users[0].TotalQuestions != 2 {
		t.Fatalf("upsert did not replace alice: %+v", users[0])
	}
}

func TestRecordEvent_PartitionsByDate(t *testing.T) {
	m := newTestMirror(t)

	d1 := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 10, 2, 12, 0, 0, 0, time.UTC)
	for i, ts := range []time.Time{d1, d1.Add(time.Hour), d2} {
		if err := m.RecordEvent(testEvent(int64(i+1), "alice", ts)); err != nil {
			t.Fatalf("record event: %v", err)
		}
	}

	first, err := m.EventsOnDate("2025-10-01")
	if err != nil {
		t.Fatalf("events on date: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 events on 2025-10-01, got %d", len(first))
	}

	dates, err := m.AvailableDates()
	if err != nil {
		t.Fatalf("available dates: %v", err)
	}
	if !reflect.DeepEqual(dates, []string{"2025-10-01", "2025-10-02"}) {
		t.Fatalf("unexpected dates: %v", dates)
	}
}

func TestSave_LeavesNoTempFile(t *testing.T) {
	m := newTestMirror(t)

	if err := m.RecordUser(testUser("alice", 1)); err != nil {
		t.Fatalf("record user: %v", err)
	}
	if _, err := os.Stat(m.usersFile); err != nil {
		t.Fatalf("users file missing: %v", err)
	}
	if _, err := os.Stat(m.usersFile + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestLoad_CorruptFileResetsToEmpty(t *testing.T) {
	m := newTestMirror(t)

	if err := os.WriteFile(m.usersFile, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	users, err := m.ListUsers()
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected empty registry, got %d users", len(users))
	}

	// the next write recovers the file
	if err := m.RecordUser(testUser("alice", 1)); err != nil {
		t.Fatalf("record user after corruption: %v", err)
	}
	users, _ = m.ListUsers()
	if len(users) != 1 {
		t.Fatalf("expected 1 user after recovery, got %d", len(users))
	}
}

func TestAvailableDates_IgnoresForeignFiles(t *testing.T) {
	m := newTestMirror(t)

	if err := os.WriteFile(filepath.Join(m.eventsDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write foreign file: %v", err)
	}
	if err := m.RecordEvent(testEvent(1, "alice", time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("record event: %v", err)
	}

	dates, err := m.AvailableDates()
	if err != nil {
		t.Fatalf("available dates: %v", err)
	}
	if !reflect.DeepEqual(dates, []string{"2025-10-01"}) {
		t.Fatalf("unexpected dates: %v", dates)
	}
}

func TestBulkReplace(t *testing.T) {
	m := newTestMirror(t)

	if err := m.RecordUser(testUser("alice", 5)); err != nil {
		t.Fatalf("record user: %v", err)
	}
	if err := m.BulkReplaceUsers([]*model.User{testUser("bob", 1)}); err != nil {
		t.Fatalf("bulk replace users: %v", err)
	}
	users, _ := m.ListUsers()
	if len(users) != 1 || users[0].Username != "bob" {
		t.Fatalf("bulk replace did not overwrite registry: %+v", users)
	}

	ts := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	if err := m.BulkReplaceEvents("2025-10-01", []*model.Event{testEvent(1, "bob", ts), testEvent(2, "bob", ts)}); err != nil {
		t.Fatalf("bulk replace events: %v", err)
	}
	events, _ := m.EventsOnDate("2025-10-01")
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

func TestRecordEvent_ConcurrentSameDate(t *testing.T) {
	m := newTestMirror(t)
	ts := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			errs <- m.RecordEvent(testEvent(id, "alice", ts))
		}(int64(i + 1))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent record: %v", err)
		}
	}

	events, err := m.EventsOnDate("2025-10-01")
	if err != nil {
		t.Fatalf("events on date: %v", err)
	}
	if len(events) != n {
		t.Fatalf("lost events under concurrency: got %d, want %d", len(events), n)
	}
}

func TestEventDate_ZeroTimestampUsesToday(t *testing.T) {
	e := &model.Event{ID: 1, Username: "alice"}
	if got, want := eventDate(e), time.Now().UTC().Format("2006-01-02"); got != want {
		t.Fatalf("eventDate = %s, want %s", got, want)
	}
}
