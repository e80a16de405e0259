package usecase

import (
	"errors"

	emaildomain "ladinglens-backend/internal/email/domain"
)

// ErrEmptyThread is returned when a thread contains no messages.
// Fatal for that thread only, never for the batch.
var ErrEmptyThread = errors.New("thread contains no messages")

// ResolveLatest selects the single authoritative message of a thread:
// the one with the maximum provider-assigned internal timestamp.
// Ties are broken by the lexicographically highest message ID so the
// result is deterministic across runs.
func ResolveLatest(thread emaildomain.Thread) (emaildomain.Message, error) {
	if len(thread.Messages) == 0 {
		return emaildomain.Message{}, ErrEmptyThread
	}

	latest := thread.Messages[0]
	for _, msg := range thread.Messages[1:] {
		if msg.InternalTimestamp > latest.InternalTimestamp {
			latest = msg
			continue
		}
		if msg.InternalTimestamp == latest.InternalTimestamp && msg.ID > latest.ID {
			latest = msg
		}
	}
	return latest, nil
}
