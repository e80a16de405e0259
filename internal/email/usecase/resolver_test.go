package usecase

import (
	"errors"
	"testing"

	emaildomain "ladinglens-backend/internal/email/domain"
)

func TestResolveLatestPicksMaxTimestamp(t *testing.T) {
	thread := emaildomain.Thread{
		ID: "t1",
		Messages: []emaildomain.Message{
			{ID: "m1", InternalTimestamp: 100},
			{ID: "m3", InternalTimestamp: 300},
			{ID: "m2", InternalTimestamp: 200},
		},
	}

	latest, err := ResolveLatest(thread)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.ID != "m3" {
		t.Errorf("expected m3, got %s", latest.ID)
	}
}

func TestResolveLatestTieBreaksOnMessageID(t *testing.T) {
	thread := emaildomain.Thread{
		ID: "t1",
		Messages: []emaildomain.Message{
			{ID: "msg-b", InternalTimestamp: 500},
			{ID: "msg-c", InternalTimestamp: 500},
			{ID: "msg-a", InternalTimestamp: 500},
		},
	}

	latest, err := ResolveLatest(thread)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.ID != "msg-c" {
		t.Errorf("expected deterministic tie-break to msg-c, got %s", latest.ID)
	}
}

func TestResolveLatestIsOrderIndependent(t *testing.T) {
	messages := []emaildomain.Message{
		{ID: "m1", InternalTimestamp: 100},
		{ID: "m2", InternalTimestamp: 300},
		{ID: "m3", InternalTimestamp: 200},
	}
	forward, _ := ResolveLatest(emaildomain.Thread{ID: "t", Messages: messages})

	reversed := []emaildomain.Message{messages[2], messages[1], messages[0]}
	backward, _ := ResolveLatest(emaildomain.Thread{ID: "t", Messages: reversed})

	if forward.ID != backward.ID {
		t.Errorf("resolution depends on message order: %s vs %s", forward.ID, backward.ID)
	}
}

func TestResolveLatestEmptyThread(t *testing.T) {
	_, err := ResolveLatest(emaildomain.Thread{ID: "t1"})
	if !errors.Is(err, ErrEmptyThread) {
		t.Errorf("expected ErrEmptyThread, got %v", err)
	}
}
