package models

import (
	"time"

	rostermodels "fantamorto/internal/roster/models"
)

// Channel is the transport a job is delivered through.
type Channel string

const (
	ChannelMessage Channel = "message"
	ChannelEmail   Channel = "email"
)

// Outcome is the terminal result recorded in the history.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeFailed    Outcome = "failed_permanently"
)

// DefaultMaxAttempts caps delivery attempts per job across runs.
const DefaultMaxAttempts = 5

// Job is an outbox entry awaiting delivery.
type Job struct {
	ID         int64
	Channel    Channel
	Address    string
	Subject    string // ignored by the message channel
	Body       string
	TeamID     *int64
	PersonID   *int64
	TeamName   string
	PersonName string
	Attempts   int
	LastError  string
	CreatedAt  time.Time
}

// HistoryEntry is the append-only record of a terminal delivery outcome.
type HistoryEntry struct {
	ID         int64
	JobID      int64
	Channel    Channel
	Address    string
	Subject    string
	Body       string
	TeamID     *int64
	PersonID   *int64
	TeamName   string
	PersonName string
	Attempts   int
	Outcome    Outcome
	Error      string
	RecordedAt time.Time
}

// NewHistoryEntry snapshots a job with its terminal outcome.
func NewHistoryEntry(job Job, outcome Outcome, errMsg string, at time.Time) HistoryEntry {
	return HistoryEntry{
		JobID:      job.ID,
		Channel:    job.Channel,
		Address:    job.Address,
		Subject:    job.Subject,
		Body:       job.Body,
		TeamID:     job.TeamID,
		PersonID:   job.PersonID,
		TeamName:   job.TeamName,
		PersonName: job.PersonName,
		Attempts:   job.Attempts,
		Outcome:    outcome,
		Error:      errMsg,
		RecordedAt: at,
	}
}

// Death is a deceased person whose global announcement is still pending,
// with the names of the teams listing them.
type Death struct {
	Person rostermodels.Person
	Teams  []string
}

// TeamNotice is a membership whose team has not been told about the death yet.
type TeamNotice struct {
	Person rostermodels.Person
	Team   rostermodels.Team
	Teams  []string
}
