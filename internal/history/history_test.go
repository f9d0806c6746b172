package history

import (
	"fmt"
	"testing"
)

func TestAppendEvictsOldestAtBound(t *testing.T) {
	t.Parallel()

	s := NewStore(3)
	for i := 0; i < 5; i++ {
		s.Append("c1", Turn{Role: RoleUser, Text: fmt.Sprintf("msg %d", i)})
	}

	got := s.Get("c1")
	if len(got) != 3 {
		t.Fatalf("length mismatch: got %d want 3", len(got))
	}
	if got[0].Text != "msg 2" {
		t.Fatalf("oldest turn mismatch: got %q want %q", got[0].Text, "msg 2")
	}
	if got[2].Text != "msg 4" {
		t.Fatalf("newest turn mismatch: got %q want %q", got[2].Text, "msg 4")
	}
}

func TestGetUnknownConversationIsEmpty(t *testing.T) {
	t.Parallel()

	s := NewStore(3)
	if got := s.Get("never-seen"); len(got) != 0 {
		t.Fatalf("length mismatch: got %d want 0", len(got))
	}
}

func TestConversationsAreIndependent(t *testing.T) {
	t.Parallel()

	s := NewStore(2)
	s.Append("a", Turn{Role: RoleUser, Text: "in a"})
	s.Append("b", Turn{Role: RoleAssistant, Text: "in b"})

	if got := s.Get("a"); len(got) != 1 || got[0].Text != "in a" {
		t.Fatalf("conversation a mismatch: got %+v", got)
	}
	if got := s.Get("b"); len(got) != 1 || got[0].Text != "in b" {
		t.Fatalf("conversation b mismatch: got %+v", got)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewStore(3)
	s.Append("c1", Turn{Role: RoleUser, Text: "original"})

	got := s.Get("c1")
	got[0].Text = "mutated"

	if again := s.Get("c1"); again[0].Text != "original" {
		t.Fatalf("store mutated through returned slice: got %q", again[0].Text)
	}
}
