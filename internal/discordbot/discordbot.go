// Package discordbot is the Discord glue: it maps gateway message events
// into relay events and implements the outbound platform surface the relay
// engine writes to. All conversation logic lives in internal/relay.
package discordbot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/elslie/markleai/internal/relay"
)

// MessageLimit is Discord's hard cap per message.
const MessageLimit = 2000

const (
	pingCommand = "!ping"
	pingReply   = "Pong! I am alive and ready."
)

type Options struct {
	Token  string
	Logger *slog.Logger
	Status string
}

type Bot struct {
	session *discordgo.Session
	engine  *relay.Engine
	logger  *slog.Logger
	status  string
}

func New(opts Options) (*Bot, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	session, err := discordgo.New("Bot " + opts.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	return &Bot{
		session: session,
		logger:  logger.With("component", "discord"),
		status:  opts.Status,
	}, nil
}

// AttachEngine wires the relay engine. The Bot is the engine's Platform, so
// construction is two-phase: New, build the engine around the bot, attach.
func (b *Bot) AttachEngine(engine *relay.Engine) {
	b.engine = engine
}

func (b *Bot) Start() error {
	if b.engine == nil {
		return fmt.Errorf("relay engine is not attached")
	}
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleMessageCreate)
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("discord_ready", "bot_user", r.User.Username, "bot_id", r.User.ID, "guilds", len(r.Guilds))
	if b.status != "" {
		if err := s.UpdateGameStatus(0, b.status); err != nil {
			b.logger.Warn("discord_presence_error", "error", err.Error())
		}
	}
}

func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || s.State == nil || s.State.User == nil {
		return
	}
	botID := s.State.User.ID
	if m.Author.ID == botID || m.Author.Bot {
		return
	}

	if strings.TrimSpace(m.Content) == pingCommand {
		if _, err := s.ChannelMessageSend(m.ChannelID, pingReply); err != nil {
			b.logger.Warn("discord_send_error", "error", err.Error())
		}
		return
	}

	ev := relay.Event{
		ID:             m.ID,
		ConversationID: m.ChannelID,
		AuthorID:       m.Author.ID,
		AuthorName:     m.Author.Username,
		MentionsBot:    mentionsUser(m.Message, botID),
		Text:           m.Content,
	}
	// One goroutine per event; the relay's inflight guard absorbs gateway
	// redeliveries and conversations stay independent.
	go b.engine.HandleEvent(context.Background(), ev)
}

// SendReply implements relay.Platform, splitting over Discord's size limit.
func (b *Bot) SendReply(ctx context.Context, conversationID, text string) error {
	for _, chunk := range splitMessage(text, MessageLimit) {
		if _, err := b.session.ChannelMessageSend(conversationID, chunk); err != nil {
			return err
		}
	}
	return nil
}

// ShowTyping implements relay.Platform.
func (b *Bot) ShowTyping(ctx context.Context, conversationID string) error {
	return b.session.ChannelTyping(conversationID)
}

func mentionsUser(m *discordgo.Message, userID string) bool {
	if m == nil {
		return false
	}
	for _, u := range m.Mentions {
		if u != nil && u.ID == userID {
			return true
		}
	}
	return false
}

// splitMessage cuts text into chunks of at most limit runes, preferring to
// break on a newline, then a space, before cutting mid-word.
func splitMessage(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		if cut == limit {
			for i := limit; i > limit/2; i-- {
				if runes[i-1] == ' ' {
					cut = i
					break
				}
			}
		}
		chunk := strings.TrimSpace(string(runes[:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[cut:]
	}
	if rest := strings.TrimSpace(string(runes)); rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}
