// Package relay is the conversation engine: it admits an inbound event,
// rate-checks the sender, builds a bounded prompt from channel history,
// asks the provider chain for a reply, and sends it back.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elslie/markleai/internal/history"
	"github.com/elslie/markleai/internal/sanitize"
	"github.com/elslie/markleai/llm"
)

// Event is one inbound platform message, already mapped out of the
// platform's own types.
type Event struct {
	ID             string
	ConversationID string
	AuthorID       string
	AuthorName     string
	AuthorIsSelf   bool
	MentionsBot    bool
	Text           string
}

// Platform is the outbound surface the engine needs from the messaging
// client. ShowTyping is advisory; its errors are ignored.
type Platform interface {
	SendReply(ctx context.Context, conversationID, text string) error
	ShowTyping(ctx context.Context, conversationID string) error
}

// Completer produces reply text from a prompt. It never fails; exhaustion
// is resolved to fallback text inside the chain.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) string
}

// CooldownGate and InflightGuard are satisfied by the cooldown and inflight
// packages; the engine only needs these operations.
type CooldownGate interface {
	Check(userID string) (allowed bool, remaining time.Duration)
	Record(userID string)
}

type InflightGuard interface {
	TryAdmit(eventID string) bool
	Release(eventID string)
}

type Options struct {
	History   *history.Store
	Cooldown  CooldownGate
	Inflight  InflightGuard
	Completer Completer
	Platform  Platform
	Logger    *slog.Logger

	SystemPrompt   string
	MaxReplyLength int
	TypingInterval time.Duration
	DefaultPrompt  string
}

type Engine struct {
	history   *history.Store
	cooldown  CooldownGate
	inflight  InflightGuard
	completer Completer
	platform  Platform
	logger    *slog.Logger

	systemPrompt   string
	maxReplyLength int
	typingInterval time.Duration
	defaultPrompt  string
}

const (
	DefaultSystemPrompt = "You are a helpful and witty assistant in a Discord chat."
	DefaultMaxReply     = 2000

	defaultTypingInterval = 5 * time.Second
	defaultPromptText     = "hello"

	genericErrorNotice = "⚠️ Something went wrong while talking to the AI."
)

func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	systemPrompt := strings.TrimSpace(opts.SystemPrompt)
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	maxReply := opts.MaxReplyLength
	if maxReply <= 0 {
		maxReply = DefaultMaxReply
	}
	typingInterval := opts.TypingInterval
	if typingInterval <= 0 {
		typingInterval = defaultTypingInterval
	}
	defaultPrompt := strings.TrimSpace(opts.DefaultPrompt)
	if defaultPrompt == "" {
		defaultPrompt = defaultPromptText
	}
	return &Engine{
		history:        opts.History,
		cooldown:       opts.Cooldown,
		inflight:       opts.Inflight,
		completer:      opts.Completer,
		platform:       opts.Platform,
		logger:         logger.With("component", "relay"),
		systemPrompt:   systemPrompt,
		maxReplyLength: maxReply,
		typingInterval: typingInterval,
		defaultPrompt:  defaultPrompt,
	}
}

// HandleEvent runs one event through admission, rate check, completion and
// reply. Safe to call concurrently from per-event goroutines; events in
// different conversations proceed independently.
func (e *Engine) HandleEvent(ctx context.Context, ev Event) {
	if ev.AuthorIsSelf || !ev.MentionsBot {
		return
	}

	if !e.inflight.TryAdmit(ev.ID) {
		e.logger.Debug("relay_duplicate_dropped", "event_id", ev.ID)
		return
	}
	// Release even on panic; a crashed attempt must never pin the event.
	defer e.inflight.Release(ev.ID)

	correlationID := uuid.NewString()
	log := e.logger.With("event_id", ev.ID, "conversation_id", ev.ConversationID, "correlation_id", correlationID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("relay_panic", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			_ = e.platform.SendReply(ctx, ev.ConversationID, genericErrorNotice)
		}
	}()

	if allowed, remaining := e.cooldown.Check(ev.AuthorID); !allowed {
		secs := int(math.Ceil(remaining.Seconds()))
		log.Info("relay_rate_limited", "author_id", ev.AuthorID, "remaining", remaining.String())
		_ = e.platform.SendReply(ctx, ev.ConversationID, fmt.Sprintf("Please wait %d seconds before asking again.", secs))
		return
	}
	e.cooldown.Record(ev.AuthorID)

	text := StripMentions(ev.Text)
	if text == "" {
		text = e.defaultPrompt
	}
	userTurn := text
	if name := strings.TrimSpace(ev.AuthorName); name != "" {
		userTurn = name + ": " + text
	}

	messages := e.buildPrompt(ev.ConversationID, userTurn)

	stopTyping := e.startTyping(ctx, ev.ConversationID)
	// Also stop on the panic path so the ticker goroutine cannot leak.
	defer stopTyping()
	reply := e.completer.Complete(ctx, messages)
	stopTyping()

	reply = sanitize.Truncate(reply, e.maxReplyLength)
	if err := e.platform.SendReply(ctx, ev.ConversationID, reply); err != nil {
		log.Warn("relay_send_error", "error", err.Error())
		return
	}

	now := time.Now()
	e.history.Append(ev.ConversationID, history.Turn{Role: history.RoleUser, Text: userTurn, CreatedAt: now})
	e.history.Append(ev.ConversationID, history.Turn{Role: history.RoleAssistant, Text: reply, CreatedAt: now})
	log.Info("relay_completed", "reply_length", len(reply))
}

func (e *Engine) buildPrompt(conversationID, userTurn string) []llm.Message {
	prior := e.history.Get(conversationID)
	messages := make([]llm.Message, 0, len(prior)+2)
	messages = append(messages, llm.Message{Role: "system", Content: e.systemPrompt})
	for _, turn := range prior {
		messages = append(messages, llm.Message{Role: string(turn.Role), Content: turn.Text})
	}
	messages = append(messages, llm.Message{Role: "user", Content: userTurn})
	return messages
}

// startTyping keeps the typing indicator alive while the chain works; some
// completions outlive the platform's single-shot indicator.
func (e *Engine) startTyping(ctx context.Context, conversationID string) func() {
	done := make(chan struct{})
	go func() {
		_ = e.platform.ShowTyping(ctx, conversationID)
		ticker := time.NewTicker(e.typingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = e.platform.ShowTyping(ctx, conversationID)
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

var mentionPattern = regexp.MustCompile(`<@[!&]?\d+>`)

// StripMentions removes platform mention markup and tidies what remains.
func StripMentions(text string) string {
	text = mentionPattern.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}
