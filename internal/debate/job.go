package debate

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is an async debate turn: the HTTP layer enqueues it, the worker runs
// the same orchestrator path and records the outcome here.
type Job struct {
	ID string `gorm:"primaryKey;size:26"`

	UserID         uint64 `gorm:"index;not null"`
	ConversationID string `gorm:"size:26;index;not null"`

	Text string `gorm:"type:text;not null"`

	IdempotencyKey *string `gorm:"type:varchar(128);index:uniq_debate_job_idempo,unique" json:"idempotency_key"`

	Status JobStatus `gorm:"type:varchar(16);index;not null"`

	ResultMessageID *uint64 `gorm:"index"`

	Error *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Job) TableName() string { return "debate_jobs" }

func NewJobID() string { return ulid.Make().String() }
