// Package services holds the coordinator that owns both stores and implements
// the dual-write protocol: the primary store must succeed, the mirror is
// best-effort and never fails a user-facing request.
package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/answerhub/qa-service/internal/mirror"
	"github.com/answerhub/qa-service/internal/model"
	"github.com/answerhub/qa-service/internal/responses"
	"github.com/answerhub/qa-service/internal/store"
)

// recentDateWindow bounds how many mirror dates a consistency pass compares.
const recentDateWindow = 7

type mirrorJob struct {
	user  *model.User
	event *model.Event
}

// DataService coordinates the primary store and the JSON mirror.
type DataService struct {
	store   store.Store
	mirror  *mirror.Mirror
	answers responses.Provider
	log     zerolog.Logger

	jobs    chan mirrorJob
	running atomic.Bool
}

// New wires the coordinator. queueSize bounds the async mirror queue; values
// <= 0 fall back to a sensible default.
func New(st store.Store, mir *mirror.Mirror, answers responses.Provider, log zerolog.Logger, queueSize int) *DataService {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &DataService{
		store:   st,
		mirror:  mir,
		answers: answers,
		log:     log,
		jobs:    make(chan mirrorJob, queueSize),
	}
}

// Start launches the background mirror worker. Without it (CLI usage, tests)
// mirror writes run inline on the caller's goroutine; either way errors are
// logged, never surfaced. The worker stops when ctx is cancelled.
func (s *DataService) Start(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.running.Store(false)
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-s.jobs:
				s.writeMirror(job)
			}
		}
	}()
}

// GenerateSessionID returns a fresh opaque session token.
func GenerateSessionID() string {
	return "sess_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// ProcessQuestion records one interaction: writes through the primary store
// (fatal on failure), mirrors on a non-blocking path, and returns the
// primary-store result regardless of mirror outcome. Empty ipAddress or
// sessionID mean absent; a session id is generated when missing.
func (s *DataService) ProcessQuestion(ctx context.Context, username, question, ipAddress, sessionID string) (*model.AskResult, error) {
	if sessionID == "" {
		sessionID = GenerateSessionID()
	}
	answer := s.answers.RandomAnswer()
	ts := time.Now().UTC()

	var ipPtr *string
	if ipAddress != "" {
		ipPtr = &ipAddress
	}

	eventID, err := s.store.AppendEvent(ctx, store.AppendEventRequest{
		Username:  username,
		Question:  question,
		Answer:    answer,
		IPAddress: ipPtr,
		SessionID: &sessionID,
		Timestamp: ts,
	})
	if err != nil {
		s.log.Error().Stack().Err(err).Str("username", username).Msg("primary store write failed")
		return nil, err
	}

	// User snapshot for the mirror copy; a lookup failure only degrades the
	// mirror record, never the request.
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("user lookup after event write failed")
		user = nil
	}

	event := &model.Event{
		ID:        eventID,
		Username:  username,
		Question:  question,
		Answer:    answer,
		Timestamp: ts,
		IPAddress: ipPtr,
		SessionID: &sessionID,
		CreatedAt: ts,
	}
	if user != nil {
		event.UserID = &user.ID
	}
	s.enqueueMirror(mirrorJob{user: user, event: event})

	s.log.Info().Str("username", username).Int64("event_id", eventID).Msg("question processed")
	return &model.AskResult{
		EventID:   eventID,
		Answer:    answer,
		Question:  question,
		Username:  username,
		Timestamp: ts,
		SessionID: sessionID,
	}, nil
}

// enqueueMirror hands the job to the worker without blocking; when the worker
// is not running or the queue is full the write happens inline.
func (s *DataService) enqueueMirror(job mirrorJob) {
	if s.running.Load() {
		select {
		case s.jobs <- job:
			return
		default:
			s.log.Warn().Int64("event_id", job.event.ID).Msg("mirror queue full, writing inline")
		}
	}
	s.writeMirror(job)
}

func (s *DataService) writeMirror(job mirrorJob) {
	if job.user != nil {
		if err := s.mirror.RecordUser(job.user); err != nil {
			s.log.Error().Err(err).Str("username", job.user.Username).Msg("mirror user write failed")
		}
	}
	if err := s.mirror.RecordEvent(job.event); err != nil {
		s.log.Error().Err(err).Int64("event_id", job.event.ID).Msg("mirror event write failed")
	}
}

// UserAnalytics reads the primary store only. Returns model.ErrNotFound for
// unknown usernames.
func (s *DataService) UserAnalytics(ctx context.Context, username string) (*model.UserAnalytics, error) {
	u, err := s.store.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return &model.UserAnalytics{
		UserInfo: u,
		Summary: model.UserAnalyticsSummary{
			TotalQuestions: u.TotalQuestions,
			MemberSince:    u.FirstSeen,
			LastActivity:   u.LastSeen,
		},
	}, nil
}

// SystemAnalytics combines primary aggregates with the mirror inventory and
// operational flags.
func (s *DataService) SystemAnalytics(ctx context.Context) (*model.SystemAnalytics, error) {
	stats, err := s.store.AggregateStats(ctx)
	if err != nil {
		return nil, err
	}

	mirrorOK := true
	dates, err := s.mirror.AvailableDates()
	if err != nil {
		s.log.Error().Err(err).Msg("mirror date inventory failed")
		mirrorOK = false
	}

	inv := model.MirrorInventory{AvailableDates: dates, TotalDateFiles: len(dates)}
	if len(dates) > 0 {
		inv.DateRange.Earliest = &dates[0]
		inv.DateRange.Latest = &dates[len(dates)-1]
	}

	return &model.SystemAnalytics{
		PrimaryStats: stats,
		MirrorBackup: inv,
		SystemHealth: model.SystemHealth{
			PrimaryOperational: s.store.Ping(ctx) == nil,
			MirrorOperational:  mirrorOK,
			LastCheck:          time.Now().UTC(),
		},
	}, nil
}

// ExportUser joins the authoritative primary record with the mirror's copy
// under the same username. The mirror copy may be nil or stale; both are
// reported as-is.
func (s *DataService) ExportUser(ctx context.Context, username string) (*model.UserExport, error) {
	primary, err := s.store.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}

	var mirrored *model.User
	mirrorUsers, err := s.mirror.ListUsers()
	if err != nil {
		s.log.Error().Err(err).Msg("mirror user list failed during export")
	}
	for _, u := range mirrorUsers {
		if u.Username == username {
			mirrored = u
			break
		}
	}

	return &model.UserExport{
		ExportTimestamp: time.Now().UTC(),
		Username:        username,
		PrimaryRecord:   primary,
		MirrorRecord:    mirrored,
		TotalQuestions:  primary.TotalQuestions,
		MemberSince:     primary.FirstSeen,
		LastActivity:    primary.LastSeen,
	}, nil
}

// ValidateConsistency compares the stores: username set difference both ways,
// and per-date event counts for the most recent mirror dates. Mismatches are
// report fields, not errors.
func (s *DataService) ValidateConsistency(ctx context.Context) (*model.ConsistencyReport, error) {
	primaryUsers, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	mirrorUsers, err := s.mirror.ListUsers()
	if err != nil {
		return nil, err
	}

	primarySet := make(map[string]bool, len(primaryUsers))
	for _, u := range primaryUsers {
		primarySet[u.Username] = true
	}
	mirrorSet := make(map[string]bool, len(mirrorUsers))
	for _, u := range mirrorUsers {
		mirrorSet[u.Username] = true
	}

	missingInMirror := setDifference(primarySet, mirrorSet)
	missingInPrimary := setDifference(mirrorSet, primarySet)
	usersMatch := len(missingInMirror) == 0 && len(missingInPrimary) == 0

	dates, err := s.mirror.AvailableDates()
	if err != nil {
		return nil, err
	}
	if len(dates) > recentDateWindow {
		dates = dates[len(dates)-recentDateWindow:]
	}

	eventConsistency := make(map[string]model.DateConsistency, len(dates))
	eventsConsistent := true
	for _, date := range dates {
		primaryEvents, err := s.store.EventsOnDate(ctx, date, 0)
		if err != nil {
			return nil, err
		}
		mirrorEvents, err := s.mirror.EventsOnDate(date)
		if err != nil {
			return nil, err
		}
		dc := model.DateConsistency{
			PrimaryCount: len(primaryEvents),
			MirrorCount:  len(mirrorEvents),
			Match:        len(primaryEvents) == len(mirrorEvents),
		}
		if !dc.Match {
			eventsConsistent = false
		}
		eventConsistency[date] = dc
	}

	return &model.ConsistencyReport{
		Timestamp: time.Now().UTC(),
		UserConsistency: model.UserConsistency{
			TotalPrimaryUsers: len(primaryUsers),
			TotalMirrorUsers:  len(mirrorUsers),
			MissingInMirror:   missingInMirror,
			MissingInPrimary:  missingInPrimary,
			UsersMatch:        usersMatch,
		},
		EventConsistency: eventConsistency,
		OverallHealth: model.OverallHealth{
			UsersConsistent:  usersMatch,
			EventsConsistent: eventsConsistent,
		},
	}, nil
}

// BackupToMirror performs a full resynchronization: the complete user list,
// and for every date the mirror already has files for, the primary store's
// events on that date. A date present only in the primary store is not picked
// up until a normal mirror write creates its file.
func (s *DataService) BackupToMirror(ctx context.Context) (*model.BackupReport, error) {
	s.log.Info().Msg("starting backup to mirror")

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.mirror.BulkReplaceUsers(users); err != nil {
		return nil, err
	}

	dates, err := s.mirror.AvailableDates()
	if err != nil {
		return nil, err
	}

	var backedUp []string
	for _, date := range dates {
		events, err := s.store.EventsOnDate(ctx, date, 0)
		if err != nil {
			return nil, err
		}
		if len(events) == 0 {
			continue
		}
		if err := s.mirror.BulkReplaceEvents(date, events); err != nil {
			return nil, err
		}
		backedUp = append(backedUp, date)
	}

	s.log.Info().Int("users", len(users)).Int("dates", len(backedUp)).Msg("backup completed")
	return &model.BackupReport{
		Timestamp:     time.Now().UTC(),
		UsersBackedUp: len(users),
		DatesBackedUp: backedUp,
		TotalDates:    len(backedUp),
		Success:       true,
	}, nil
}

// IsNotFound reports whether err is the coordinator's negative lookup result.
func IsNotFound(err error) bool { return errors.Is(err, model.ErrNotFound) }

func setDifference(a, b map[string]bool) []string {
	var out []string
	for k := range a {
		if !b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
