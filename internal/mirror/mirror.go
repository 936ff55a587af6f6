// Package mirror is the best-effort JSON-file replica of the primary store:
// one user-registry document plus one events document per calendar day.
// Writers never leave a partially written file behind; every save goes to a
// sibling temp path followed by an atomic rename.
package mirror

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/answerhub/qa-service/internal/model"
)

const schemaVersion = "1.0"

const (
	usersFileName    = "users.json"
	eventsDirName    = "events"
	eventsFilePrefix = "events_"
	eventsFileSuffix = ".json"
)

type userRegistry struct {
	SchemaVersion string        `json:"schema_version"`
	LastUpdated   time.Time     `json:"last_updated"`
	TotalUsers    int           `json:"total_users"`
	Users         []*model.User `json:"users"`
}

type dayLog struct {
	Date          string         `json:"date"`
	SchemaVersion string         `json:"schema_version"`
	TotalEvents   int            `json:"total_events"`
	Events        []*model.Event `json:"events"`
}

// Mirror manages the JSON documents under a data directory.
//
// Locks are per target file, created lazily and cached; a read-modify-write
// sequence holds its file's lock for the full duration. Writes to different
// dates proceed in parallel.
type Mirror struct {
	dataDir   string
	usersFile string
	eventsDir string
	locks     sync.Map // normalized path -> *sync.Mutex
	log       zerolog.Logger
}

// New creates the mirror, ensuring the data and events directories exist.
func New(dataDir string, log zerolog.Logger) (*Mirror, error) {
	eventsDir := filepath.Join(dataDir, eventsDirName)
	for _, dir := range []string{dataDir, eventsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create mirror directory %s: %w", dir, err)
		}
	}
	return &Mirror{
		dataDir:   dataDir,
		usersFile: filepath.Join(dataDir, usersFileName),
		eventsDir: eventsDir,
		log:       log,
	}, nil
}

// DataDir returns the mirror's root directory.
func (m *Mirror) DataDir() string { return m.dataDir }

// lockFor returns the lock guarding one target file. LoadOrStore keeps the
// map-entry acquisition race-free without serializing unrelated files.
func (m *Mirror) lockFor(path string) *sync.Mutex {
	v, _ := m.locks.LoadOrStore(filepath.Clean(path), &sync.Mutex{})
	return v.(*sync.Mutex)
}

// RecordUser upserts (by username) the user's full attribute set into the
// registry document.
func (m *Mirror) RecordUser(user *model.User) error {
	mu := m.lockFor(m.usersFile)
	mu.Lock()
	defer mu.Unlock()

	reg := m.loadUsers()
	replaced := false
	for i, u := range reg.Users {
		if u.Username == user.Username {
			reg.Users[i] = user
			replaced = true
			break
		}
	}
	if !replaced {
		reg.Users = append(reg.Users, user)
	}
	return m.saveUsers(reg)
}

// RecordEvent appends the event to the document for its calendar date,
// derived from the event timestamp (current date when the timestamp is zero).
func (m *Mirror) RecordEvent(event *model.Event) error {
	date := eventDate(event)
	path := m.eventsPath(date)

	mu := m.lockFor(path)
	mu.Lock()
	defer mu.Unlock()

	day := m.loadEvents(date)
	day.Events = append(day.Events, event)
	return m.saveEvents(date, day)
}

// ListUsers returns all users in the registry. Atomic renames guarantee a
// reader never observes a partial document, so reads take no lock.
func (m *Mirror) ListUsers() ([]*model.User, error) {
	return m.loadUsers().Users, nil
}

// EventsOnDate returns the events recorded for one YYYY-MM-DD date.
func (m *Mirror) EventsOnDate(date string) ([]*model.Event, error) {
	return m.loadEvents(date).Events, nil
}

// AvailableDates lists the dates with event files, sorted ascending.
func (m *Mirror) AvailableDates() ([]string, error) {
	entries, err := os.ReadDir(m.eventsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var dates []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, eventsFilePrefix) && strings.HasSuffix(name, eventsFileSuffix) {
			dates = append(dates, strings.TrimSuffix(strings.TrimPrefix(name, eventsFilePrefix), eventsFileSuffix))
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// BulkReplaceUsers overwrites the whole registry. Used by backup, not by the
// request path.
func (m *Mirror) BulkReplaceUsers(users []*model.User) error {
	mu := m.lockFor(m.usersFile)
	mu.Lock()
	defer mu.Unlock()
	return m.saveUsers(&userRegistry{SchemaVersion: schemaVersion, Users: users})
}

// BulkReplaceEvents overwrites one date's document.
func (m *Mirror) BulkReplaceEvents(date string, events []*model.Event) error {
	mu := m.lockFor(m.eventsPath(date))
	mu.Lock()
	defer mu.Unlock()
	return m.saveEvents(date, &dayLog{Date: date, SchemaVersion: schemaVersion, Events: events})
}

func (m *Mirror) eventsPath(date string) string {
	return filepath.Join(m.eventsDir, eventsFilePrefix+date+eventsFileSuffix)
}

// loadUsers reads the registry, resetting to an empty document on a missing
// or corrupt file rather than failing the caller.
func (m *Mirror) loadUsers() *userRegistry {
	empty := &userRegistry{SchemaVersion: schemaVersion, LastUpdated: time.Now().UTC()}
	data, err := os.ReadFile(m.usersFile)
	if err != nil {
		if !os.IsNotExist(err) {
			m.log.Error().Err(err).Str("file", m.usersFile).Msg("failed to read users registry")
		}
		return empty
	}
	var reg userRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		m.log.Error().Err(err).Str("file", m.usersFile).Msg("corrupt users registry, resetting")
		return empty
	}
	return &reg
}

func (m *Mirror) loadEvents(date string) *dayLog {
	empty := &dayLog{Date: date, SchemaVersion: schemaVersion}
	path := m.eventsPath(date)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.log.Error().Err(err).Str("file", path).Msg("failed to read events file")
		}
		return empty
	}
	var day dayLog
	if err := json.Unmarshal(data, &day); err != nil {
		m.log.Error().Err(err).Str("file", path).Str("date", date).Msg("corrupt events file, resetting")
		return empty
	}
	return &day
}

func (m *Mirror) saveUsers(reg *userRegistry) error {
	reg.SchemaVersion = schemaVersion
	reg.LastUpdated = time.Now().UTC()
	reg.TotalUsers = len(reg.Users)
	return m.save(m.usersFile, reg)
}

func (m *Mirror) saveEvents(date string, day *dayLog) error {
	day.Date = date
	day.SchemaVersion = schemaVersion
	day.TotalEvents = len(day.Events)
	return m.save(m.eventsPath(date), day)
}

// save serializes the document to a sibling temp path and renames it over the
// target, so readers see either the old or the new file, never a partial one.
// The temp artifact is removed on any failure before the rename.
func (m *Mirror) save(path string, doc interface{}) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// eventDate derives the partition date from the event timestamp, falling back
// to the current date when the timestamp is unset.
func eventDate(event *model.Event) string {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return ts.UTC().Format("2006-01-02")
}
