package model

import "time"

// User is the per-username row in the primary store. Usernames are unique and
// immutable; counters and last_seen advance with every question.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	FirstSeen      time.Time `json:"first_seen"`
	LastSeen       time.Time `json:"last_seen"`
	TotalQuestions int64     `json:"total_questions"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Event is one recorded question/answer interaction. Immutable once written.
// Timestamp is when the interaction occurred (may be backdated for bulk loads);
// CreatedAt is when the row was written.
type Event struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id"`
	Username  string    `json:"username"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
	IPAddress *string   `json:"ip_address"`
	SessionID *string   `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AskResult is what the coordinator returns for a processed question.
type AskResult struct {
	EventID   int64     `json:"event_id"`
	Answer    string    `json:"answer"`
	Question  string    `json:"question"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
}

// DailyCount is the number of events recorded on one calendar date.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// TopUser is a leaderboard row in aggregate stats.
type TopUser struct {
	Username       string `json:"username"`
	TotalQuestions int64  `json:"total_questions"`
}

// AggregateStats summarizes the primary store.
type AggregateStats struct {
	TotalUsers  int64        `json:"total_users"`
	TotalEvents int64        `json:"total_events"`
	DailyEvents []DailyCount `json:"daily_events"`
	TopUsers    []TopUser    `json:"top_users"`
}

// UserAnalytics is the per-user summary read from the primary store.
type UserAnalytics struct {
	UserInfo *User                `json:"user_info"`
	Summary  UserAnalyticsSummary `json:"summary"`
}

type UserAnalyticsSummary struct {
	TotalQuestions int64     `json:"total_questions"`
	MemberSince    time.Time `json:"member_since"`
	LastActivity   time.Time `json:"last_activity"`
}

// MirrorInventory describes which dates the secondary mirror holds files for.
type MirrorInventory struct {
	AvailableDates []string  `json:"available_dates"`
	TotalDateFiles int       `json:"total_date_files"`
	DateRange      DateRange `json:"date_range"`
}

type DateRange struct {
	Earliest *string `json:"earliest"`
	Latest   *string `json:"latest"`
}

// SystemHealth carries the coordinator's view of both stores.
type SystemHealth struct {
	PrimaryOperational bool      `json:"primary_operational"`
	MirrorOperational  bool      `json:"mirror_operational"`
	LastCheck          time.Time `json:"last_check"`
}

// SystemAnalytics combines primary aggregates with the mirror inventory.
type SystemAnalytics struct {
	PrimaryStats *AggregateStats `json:"primary_stats"`
	MirrorBackup MirrorInventory `json:"mirror_backup"`
	SystemHealth SystemHealth    `json:"system_health"`
}

// UserExport joins the authoritative primary record with whatever the mirror
// holds for the same username. The mirror copy may be absent or stale; both
// are reported, not reconciled.
type UserExport struct {
	ExportTimestamp time.Time `json:"export_timestamp"`
	Username        string    `json:"username"`
	PrimaryRecord   *User     `json:"primary_record"`
	MirrorRecord    *User     `json:"mirror_record"`
	TotalQuestions  int64     `json:"total_questions"`
	MemberSince     time.Time `json:"member_since"`
	LastActivity    time.Time `json:"last_activity"`
}

// UserConsistency reports the username set difference between stores.
type UserConsistency struct {
	TotalPrimaryUsers int      `json:"total_primary_users"`
	TotalMirrorUsers  int      `json:"total_mirror_users"`
	MissingInMirror   []string `json:"missing_in_mirror"`
	MissingInPrimary  []string `json:"missing_in_primary"`
	UsersMatch        bool     `json:"users_match"`
}

// DateConsistency compares event counts for one date between stores.
type DateConsistency struct {
	PrimaryCount int  `json:"primary_count"`
	MirrorCount  int  `json:"mirror_count"`
	Match        bool `json:"match"`
}

// OverallHealth is true per dimension only when the stores agree exactly.
type OverallHealth struct {
	UsersConsistent  bool `json:"users_consistent"`
	EventsConsistent bool `json:"events_consistent"`
}

// ConsistencyReport is the output of a full validation pass. Mismatches are
// data, not errors.
type ConsistencyReport struct {
	Timestamp        time.Time                  `json:"timestamp"`
	UserConsistency  UserConsistency            `json:"user_consistency"`
	EventConsistency map[string]DateConsistency `json:"event_consistency"`
	OverallHealth    OverallHealth              `json:"overall_health"`
}

// BackupReport summarizes a full resynchronization to the mirror.
type BackupReport struct {
	Timestamp     time.Time `json:"timestamp"`
	UsersBackedUp int       `json:"users_backed_up"`
	DatesBackedUp []string  `json:"dates_backed_up"`
	TotalDates    int       `json:"total_dates"`
	Success       bool      `json:"success"`
}
