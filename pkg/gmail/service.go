package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	emaildomain "ladinglens-backend/internal/email/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Service is the Gmail transport boundary: it supplies raw threads,
// message bodies, and attachment bytes. Single account, read-only scope.
type Service struct {
	clientID     string
	clientSecret string
	refreshToken string
}

// NewService creates a Gmail client for one mailbox.
func NewService(clientID, clientSecret, refreshToken string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
	}
}

// gmailService builds an authenticated API client from the stored
// refresh token.
func (s *Service) gmailService(ctx context.Context) (*gmail.Service, error) {
	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}
	token := &oauth2.Token{
		RefreshToken: s.refreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now(), // force refresh on first use
	}

	srv, err := gmail.NewService(ctx, option.WithTokenSource(config.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return srv, nil
}

// FetchRecentThreads pulls the most recent messages and groups them into
// threads by conversation ID. Attachment bytes are not downloaded here;
// only their references, so large PDFs are fetched lazily.
func (s *Service) FetchRecentThreads(ctx context.Context, limit int) ([]emaildomain.Thread, error) {
	srv, err := s.gmailService(ctx)
	if err != nil {
		return nil, err
	}

	list, err := srv.Users.Messages.List("me").MaxResults(int64(limit)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	byThread := make(map[string][]emaildomain.Message)
	var order []string

	for _, ref := range list.Messages {
		full, err := srv.Users.Messages.Get("me", ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch message %s: %w", ref.Id, err)
		}

		msg := convertMessage(full)
		if _, seen := byThread[msg.ThreadID]; !seen {
			order = append(order, msg.ThreadID)
		}
		byThread[msg.ThreadID] = append(byThread[msg.ThreadID], msg)
	}

	threads := make([]emaildomain.Thread, 0, len(order))
	for _, threadID := range order {
		messages := byThread[threadID]
		sort.Slice(messages, func(i, j int) bool {
			return messages[i].InternalTimestamp < messages[j].InternalTimestamp
		})
		threads = append(threads, emaildomain.Thread{ID: threadID, Messages: messages})
	}
	return threads, nil
}

// FetchAttachment downloads the content of one attachment. Small
// attachments arrive inline with the message and skip the extra call.
func (s *Service) FetchAttachment(ctx context.Context, messageID string, attachment emaildomain.Attachment) ([]byte, error) {
	if len(attachment.Data) > 0 {
		return attachment.Data, nil
	}
	if attachment.AttachmentID == "" {
		return nil, fmt.Errorf("attachment %s has no content reference", attachment.Filename)
	}

	srv, err := s.gmailService(ctx)
	if err != nil {
		return nil, err
	}

	body, err := srv.Users.Messages.Attachments.Get("me", messageID, attachment.AttachmentID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attachment %s: %w", attachment.Filename, err)
	}

	data, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(body.Data, "="))
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment %s: %w", attachment.Filename, err)
	}
	return data, nil
}

func convertMessage(msg *gmail.Message) emaildomain.Message {
	headers := msg.Payload.Headers

	return emaildomain.Message{
		ID:                msg.Id,
		ThreadID:          msg.ThreadId,
		InternalTimestamp: msg.InternalDate,
		Subject:           getHeader(headers, "Subject"),
		From:              getHeader(headers, "From"),
		ReceivedAt:        time.UnixMilli(msg.InternalDate),
		Body:              extractPlainBody(msg.Payload),
		Attachments:       collectPDFAttachments(msg.Payload),
	}
}

func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractPlainBody walks the MIME tree breadth-first and returns the
// first text/plain part.
func extractPlainBody(payload *gmail.MessagePart) string {
	parts := []*gmail.MessagePart{payload}
	for len(parts) > 0 {
		part := parts[0]
		parts = parts[1:]
		if len(part.Parts) > 0 {
			parts = append(parts, part.Parts...)
		}

		if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
			decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(part.Body.Data, "="))
			if err == nil {
				return string(decoded)
			}
		}
	}
	return ""
}

// collectPDFAttachments walks the MIME tree and keeps PDF parts only,
// recording inline data for small attachments and the attachment ID
// reference otherwise.
func collectPDFAttachments(payload *gmail.MessagePart) []emaildomain.Attachment {
	var attachments []emaildomain.Attachment

	parts := []*gmail.MessagePart{payload}
	for len(parts) > 0 {
		part := parts[0]
		parts = parts[1:]
		if len(part.Parts) > 0 {
			parts = append(parts, part.Parts...)
		}

		if part.Filename == "" || !strings.HasSuffix(strings.ToLower(part.Filename), ".pdf") {
			continue
		}

		att := emaildomain.Attachment{
			Filename: part.Filename,
			MimeType: part.MimeType,
		}
		if part.Body != nil {
			att.AttachmentID = part.Body.AttachmentId
			if part.Body.Data != "" {
				if decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(part.Body.Data, "=")); err == nil {
					att.Data = decoded
				}
			}
		}
		attachments = append(attachments, att)
	}
	return attachments
}
