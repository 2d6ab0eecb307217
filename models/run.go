package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusPartial   RunStatus = "partial"
)

// ImportRun records one refresh cycle for an agency.
type ImportRun struct {
	ID            int64      `json:"id" db:"id"`
	AgencyName    string     `json:"agency_name" db:"agency_name"`
	Source        string     `json:"source" db:"source"`
	Status        RunStatus  `json:"status" db:"status"`
	ListingsFound int        `json:"listings_found" db:"listings_found"`
	GroupsBuilt   int        `json:"groups_built" db:"groups_built"`
	ErrorsCount   int        `json:"errors_count" db:"errors_count"`
	Message       string     `json:"message" db:"message"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time `json:"finished_at" db:"finished_at"`
}

type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// ImportLog is one log line attached to a run.
type ImportLog struct {
	ID        int64     `json:"id" db:"id"`
	RunID     *int64    `json:"run_id" db:"run_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Level     LogLevel  `json:"level" db:"level"`
	Message   string    `json:"message" db:"message"`
	AgencyKey string    `json:"agency_key" db:"agency_key"`
}
