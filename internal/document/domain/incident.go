package domain

import "time"

// Incident is a persisted per-item processing failure, surfaced on the
// dashboard's incidents panel.
type Incident struct {
	ID                 string    `json:"id" gorm:"primaryKey"`
	JobID              string    `json:"job_id" gorm:"index"`
	Message            string    `json:"message" gorm:"type:text"`
	SourceEmailID      string    `json:"source_email_id"`
	AttachmentFilename string    `json:"attachment_filename"`
	CreatedAt          time.Time `json:"created_at" gorm:"index"`
}

// TableName specifies the table name for GORM
func (Incident) TableName() string {
	return "incidents"
}
