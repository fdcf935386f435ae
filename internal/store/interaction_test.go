package store

import (
	"testing"
)

func TestInteractionRepository_Create(t *testing.T) {
	s := newTestStore(t)
	createTestSession(t, s, "session-1")

	in := &Interaction{
		SessionID:   "session-1",
		TimestampMs: 1000,
		Type:        "tap",
		DurationMs:  120,
	}

	if err := s.Interactions().Create(in); err != nil {
		t.Fatalf("failed to create interaction: %v", err)
	}

	if in.ID == 0 {
		t.Error("ID should be set after create")
	}
	if in.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set after create")
	}
}

func TestInteractionRepository_Create_NoSession(t *testing.T) {
	s := newTestStore(t)

	// Interactions arriving outside a session carry no session ID
	in := &Interaction{
		TimestampMs: 1000,
		Type:        "scroll",
	}

	if err := s.Interactions().Create(in); err != nil {
		t.Fatalf("failed to create interaction without session: %v", err)
	}

	recent, err := s.Interactions().ListRecent(10)
	if err != nil {
		t.Fatalf("failed to list interactions: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(recent))
	}
	if recent[0].SessionID != "" {
		t.Errorf("SessionID = %q, want empty", recent[0].SessionID)
	}
}

func TestInteractionRepository_GetBySessionID(t *testing.T) {
	s := newTestStore(t)
	createTestSession(t, s, "session-1")
	createTestSession(t, s, "session-2")

	interactions := []*Interaction{
		{SessionID: "session-1", TimestampMs: 300, Type: "tap"},
		{SessionID: "session-1", TimestampMs: 100, Type: "scroll", DurationMs: 500},
		{SessionID: "session-2", TimestampMs: 200, Type: "tap"},
	}
	for _, in := range interactions {
		if err := s.Interactions().Create(in); err != nil {
			t.Fatalf("failed to create interaction: %v", err)
		}
	}

	got, err := s.Interactions().GetBySessionID("session-1")
	if err != nil {
		t.Fatalf("failed to get interactions: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 interactions, got %d", len(got))
	}

	// Ordered by timestamp
	if got[0].TimestampMs != 100 || got[1].TimestampMs != 300 {
		t.Errorf("interactions not ordered by timestamp: %d, %d",
			got[0].TimestampMs, got[1].TimestampMs)
	}
}

func TestInteractionRepository_ListRecent(t *testing.T) {
	s := newTestStore(t)

	for i := int64(1); i <= 5; i++ {
		in := &Interaction{TimestampMs: i * 100, Type: "tap"}
		if err := s.Interactions().Create(in); err != nil {
			t.Fatalf("failed to create interaction: %v", err)
		}
	}

	recent, err := s.Interactions().ListRecent(3)
	if err != nil {
		t.Fatalf("failed to list interactions: %v", err)
	}

	if len(recent) != 3 {
		t.Fatalf("expected 3 interactions, got %d", len(recent))
	}

	// Newest first
	if recent[0].TimestampMs != 500 {
		t.Errorf("first listed timestamp = %d, want 500", recent[0].TimestampMs)
	}
}
