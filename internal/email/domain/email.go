package domain

import "time"

// EmailStatus is the classification assigned to an email body
type EmailStatus string

const (
	StatusPreAlert EmailStatus = "pre_alert"
	StatusDraft    EmailStatus = "draft"
	StatusUnknown  EmailStatus = "unknown"
)

// Attachment is a PDF attachment owned by a single message.
// Data is only populated after an explicit fetch; for large attachments
// Gmail returns an AttachmentID reference instead of inline bytes.
type Attachment struct {
	Filename     string `json:"filename"`
	MimeType     string `json:"mime_type"`
	AttachmentID string `json:"attachment_id,omitempty"`
	Data         []byte `json:"-"`
}

// Message is a single email message, immutable once fetched.
// InternalTimestamp is the provider-assigned ordering key (Gmail internalDate,
// epoch millis) — never the self-reported Date header, which can be missing
// or misordered.
type Message struct {
	ID                string       `json:"id"`
	ThreadID          string       `json:"thread_id"`
	InternalTimestamp int64        `json:"internal_timestamp"`
	Subject           string       `json:"subject"`
	From              string       `json:"from"`
	ReceivedAt        time.Time    `json:"received_at"`
	Body              string       `json:"body"`
	Attachments       []Attachment `json:"attachments"`
}

// Thread is an ordered set of messages sharing a conversation ID.
type Thread struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}
