package domain

import (
	"time"

	documentdomain "ladinglens-backend/internal/document/domain"
)

// JobState is the lifecycle state of one processing batch.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// ProcessingSummary accumulates counters while a job is RUNNING and is
// frozen once the job reaches a terminal state.
type ProcessingSummary struct {
	EmailsProcessed      int `json:"emails_processed"`
	AttachmentsProcessed int `json:"attachments_processed"`
	DocsCreated          int `json:"docs_created"`
	SkippedDuplicates    int `json:"skipped_duplicates"`
	Errors               int `json:"errors"`
}

// Job is one ingestion batch. Created on trigger, mutated only by the
// orchestrator that owns it, evicted by the retention policy.
type Job struct {
	ID          string            `json:"id" gorm:"primaryKey"`
	State       JobState          `json:"state" gorm:"index"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at"`
	Summary     ProcessingSummary `json:"summary" gorm:"serializer:json"`
	Error       string            `json:"error,omitempty"`
}

// TableName specifies the table name for GORM
func (Job) TableName() string {
	return "jobs"
}

// EventType tags one entry of a job's live event stream.
type EventType string

const (
	EventDocument EventType = "document"
	EventStatus   EventType = "status"
	EventError    EventType = "error"
	EventComplete EventType = "complete"
)

// Event is one entry in a job's ordered, append-only progress feed.
// Exactly one payload field is set, matching Type.
type Event struct {
	Type     EventType                          `json:"type"`
	Message  string                             `json:"message,omitempty"`
	Document *documentdomain.ExtractionResult   `json:"data,omitempty"`
	Summary  *ProcessingSummary                 `json:"summary,omitempty"`
}
