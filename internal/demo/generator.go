// Package demo seeds the primary store and the JSON mirror with realistic
// historical traffic for testing analytics, exports, and consistency checks.
package demo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/answerhub/qa-service/internal/mirror"
	"github.com/answerhub/qa-service/internal/model"
	"github.com/answerhub/qa-service/internal/responses"
	"github.com/answerhub/qa-service/internal/store"
)

// Config controls how much demo data is generated.
type Config struct {
	Users        []string
	EventsPerDay int // events per user per day
	Dates        []time.Time
}

// DefaultConfig matches the canonical demo dataset: 20 users, 100 events per
// user per day, three days.
func DefaultConfig() Config {
	return Config{
		Users: []string{
			"alice_wonder", "bob_builder", "charlie_brown", "diana_prince",
			"ethan_hunt", "fiona_green", "george_lucas", "helen_troy",
			"ivan_terrible", "jane_doe", "kevin_hart", "lucy_diamond",
			"mike_tyson", "nina_simone", "oscar_wilde", "penny_lane",
			"quincy_jones", "ruby_red", "steve_jobs", "tina_turner",
		},
		EventsPerDay: 100,
		Dates: []time.Time{
			time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 10, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC),
		},
	}
}

var demoQuestions = []string{
	"What is the weather like today?",
	"How do I learn programming?",
	"What's the best way to cook pasta?",
	"Can you help me with math homework?",
	"What is artificial intelligence?",
	"How do I start a business?",
	"What's the meaning of life?",
	"What are the best movies this year?",
	"How do I fix my computer?",
	"What is blockchain technology?",
	"How do I learn a new language?",
	"What's the capital of France?",
	"What is machine learning?",
	"How do I save money?",
	"What's the best exercise routine?",
	"How do I improve my memory?",
	"What is quantum physics?",
	"What's the best way to study?",
	"How do I write a resume?",
	"What is cryptocurrency?",
	"How do I stop procrastinating?",
	"What's the secret to happiness?",
	"What is climate change?",
	"How do I start investing?",
	"What's the best programming language?",
	"How do I improve my writing?",
	"What is the universe made of?",
	"How do I overcome anxiety?",
	"What is the stock market?",
	"How do I learn guitar?",
	"What's the future of technology?",
	"How do I improve my sleep?",
	"How do I become more creative?",
	"What's the best way to travel?",
	"How do I manage stress?",
	"What is evolution?",
	"How do I learn photography?",
	"What is renewable energy?",
	"How do I stay motivated?",
	"What is virtual reality?",
	"How do I become a leader?",
	"What's the best way to exercise?",
	"What is sustainable living?",
	"How do I build relationships?",
	"What's the future of work?",
	"What is mindfulness?",
	"How do I improve productivity?",
	"What is emotional intelligence?",
	"How do I find my purpose?",
	"What is work-life balance?",
	"How do I handle criticism?",
	"How do I stay focused?",
	"What is personal growth?",
	"How do I build wealth?",
	"What is digital transformation?",
	"What's the future of AI?",
	"How do I improve teamwork?",
	"What's the best learning method?",
	"How do I handle change?",
	"How do I build trust?",
	"What is data science?",
	"How do I improve problem solving?",
	"How do I build resilience?",
	"How do I improve listening skills?",
	"What's the future of education?",
	"How do I develop leadership?",
	"What is environmental protection?",
	"How do I build self-confidence?",
}

var demoIPs = []string{
	"192.168.1.10", "192.168.1.11", "192.168.1.12", "192.168.1.13",
	"10.0.0.15", "10.0.0.16", "10.0.0.17", "10.0.0.18",
	"172.16.0.20", "172.16.0.21", "127.0.0.1", "192.168.100.5",
	"10.1.1.25", "172.20.0.30", "192.168.0.100", "10.0.1.50",
}

// Summary reports what a generation run produced.
type Summary struct {
	TotalUsers   int            `json:"total_users"`
	TotalEvents  int            `json:"total_events"`
	EventsByDate map[string]int `json:"events_by_date"`
	Dates        []string       `json:"dates"`
}

// Generator writes demo traffic into both stores directly, bypassing HTTP.
type Generator struct {
	store   store.Store
	mirror  *mirror.Mirror
	answers responses.Provider
	log     zerolog.Logger
	cfg     Config
}

func New(st store.Store, mir *mirror.Mirror, answers responses.Provider, log zerolog.Logger, cfg Config) *Generator {
	if len(cfg.Users) == 0 {
		cfg = DefaultConfig()
	}
	if cfg.EventsPerDay <= 0 {
		cfg.EventsPerDay = 100
	}
	return &Generator{store: st, mirror: mir, answers: answers, log: log, cfg: cfg}
}

// Run generates the full dataset. Events carry backdated timestamps so daily
// analytics and the date-partitioned mirror files line up with cfg.Dates.
func (g *Generator) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		TotalUsers:   len(g.cfg.Users),
		EventsByDate: make(map[string]int),
	}

	for _, date := range g.cfg.Dates {
		dateStr := date.UTC().Format("2006-01-02")
		g.log.Info().Str("date", dateStr).Msg("generating demo events")

		count := 0
		for _, username := range g.cfg.Users {
			n, err := g.generateUserDay(ctx, username, date.UTC())
			if err != nil {
				return nil, errors.Wrapf(err, "generate events for %s on %s", username, dateStr)
			}
			count += n
		}
		summary.EventsByDate[dateStr] = count
		summary.TotalEvents += count
		summary.Dates = append(summary.Dates, dateStr)
	}

	g.log.Info().
		Int("users", summary.TotalUsers).
		Int("events", summary.TotalEvents).
		Msg("demo data generation complete")
	return summary, nil
}

func (g *Generator) generateUserDay(ctx context.Context, username string, day time.Time) (int, error) {
	for i := 0; i < g.cfg.EventsPerDay; i++ {
		ts := day.Add(
			time.Duration(rand.IntN(24))*time.Hour +
				time.Duration(rand.IntN(60))*time.Minute +
				time.Duration(rand.IntN(60))*time.Second)

		question := demoQuestions[rand.IntN(len(demoQuestions))]
		ip := demoIPs[rand.IntN(len(demoIPs))]
		answer := g.answers.RandomAnswer()
		// New session roughly every 10 events
		sessionID := fmt.Sprintf("sess_%s_%s_%02d", username, day.Format("20060102"), i/10+1)

		eventID, err := g.store.AppendEvent(ctx, store.AppendEventRequest{
			Username:  username,
			Question:  question,
			Answer:    answer,
			IPAddress: &ip,
			SessionID: &sessionID,
			Timestamp: ts,
		})
		if err != nil {
			return i, err
		}

		user, err := g.store.GetUser(ctx, username)
		if err != nil {
			return i, err
		}
		if err := g.mirror.RecordUser(user); err != nil {
			g.log.Warn().Err(err).Str("username", username).Msg("mirror user write failed")
		}
		event := &model.Event{
			ID:        eventID,
			UserID:    &user.ID,
			Username:  username,
			Question:  question,
			Answer:    answer,
			Timestamp: ts,
			IPAddress: &ip,
			SessionID: &sessionID,
			CreatedAt: ts,
		}
		if err := g.mirror.RecordEvent(event); err != nil {
			g.log.Warn().Err(err).Str("username", username).Msg("mirror event write failed")
		}
	}
	return g.cfg.EventsPerDay, nil
}
