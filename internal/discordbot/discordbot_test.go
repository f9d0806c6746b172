package discordbot

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestMentionsUser(t *testing.T) {
	t.Parallel()

	msg := &discordgo.Message{
		Mentions: []*discordgo.User{{ID: "111"}, {ID: "222"}},
	}
	if !mentionsUser(msg, "222") {
		t.Fatalf("mentionsUser mismatch: got false want true")
	}
	if mentionsUser(msg, "333") {
		t.Fatalf("mentionsUser mismatch: got true want false")
	}
	if mentionsUser(nil, "111") {
		t.Fatalf("mentionsUser(nil) mismatch: got true want false")
	}
}

func TestSplitMessageShortTextSingleChunk(t *testing.T) {
	t.Parallel()

	got := splitMessage("hello world", 2000)
	if len(got) != 1 || got[0] != "hello world" {
		t.Fatalf("chunks mismatch: got %v", got)
	}
}

func TestSplitMessageEmptyTextNoChunks(t *testing.T) {
	t.Parallel()

	if got := splitMessage("   ", 2000); got != nil {
		t.Fatalf("chunks mismatch: got %v want nil", got)
	}
}

func TestSplitMessagePrefersNewlineBreak(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("a", 30) + "\n" + strings.Repeat("b", 30)
	got := splitMessage(text, 40)
	if len(got) != 2 {
		t.Fatalf("chunk count mismatch: got %d want 2", len(got))
	}
	if got[0] != strings.Repeat("a", 30) {
		t.Fatalf("first chunk mismatch: got %q", got[0])
	}
	if got[1] != strings.Repeat("b", 30) {
		t.Fatalf("second chunk mismatch: got %q", got[1])
	}
}

func TestSplitMessageRespectsLimit(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("word ", 1000)
	for _, chunk := range splitMessage(text, 100) {
		if n := len([]rune(chunk)); n > 100 {
			t.Fatalf("chunk length mismatch: got %d want <= 100", n)
		}
	}
}

func TestSplitMessageHardCutWithoutBreakpoints(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 250)
	got := splitMessage(text, 100)
	if len(got) != 3 {
		t.Fatalf("chunk count mismatch: got %d want 3", len(got))
	}
	if got[0] != strings.Repeat("x", 100) || got[2] != strings.Repeat("x", 50) {
		t.Fatalf("chunks mismatch: lengths %d/%d/%d", len(got[0]), len(got[1]), len(got[2]))
	}
}

func TestNewRequiresToken(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{}); err == nil {
		t.Fatalf("New() expected error for missing token")
	}
}
