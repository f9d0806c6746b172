package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Sanitizer gates raw provider output before the chain will accept it.
type Sanitizer interface {
	Clean(raw string) string
	IsValid(text string) bool
}

// Provider is one completion backend in the chain, tried in slice order.
type Provider struct {
	Name    string
	Client  Client
	Model   string
	Timeout time.Duration
}

type ChainOptions struct {
	Providers []Provider
	Sanitizer Sanitizer
	Logger    *slog.Logger

	// Fallbacks is the canned-reply table used when every provider is
	// exhausted. Sample picks an index into it; both are injectable so
	// tests can pin the choice.
	Fallbacks []string
	Sample    func(n int) int

	// LoadingWaitCap bounds the single wait-and-retry after a
	// ModelLoadingError, regardless of the provider's estimate.
	LoadingWaitCap time.Duration
}

type Chain struct {
	providers      []Provider
	sanitizer      Sanitizer
	logger         *slog.Logger
	fallbacks      []string
	sample         func(n int) int
	loadingWaitCap time.Duration
}

const (
	defaultProviderTimeout = 20 * time.Second
	defaultLoadingWaitCap  = 10 * time.Second
)

var DefaultFallbackReplies = []string{
	"Sorry, my brain froze for a second there. Ask me again in a moment?",
	"I couldn't come up with anything useful just now. Mind trying again?",
	"Hmm, I'm drawing a blank. Give me another shot in a bit.",
	"Something's off on my end right now, but I'll be back shortly.",
}

func NewChain(opts ChainOptions) *Chain {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fallbacks := opts.Fallbacks
	if len(fallbacks) == 0 {
		fallbacks = DefaultFallbackReplies
	}
	sample := opts.Sample
	if sample == nil {
		sample = func(n int) int { return 0 }
	}
	waitCap := opts.LoadingWaitCap
	if waitCap <= 0 {
		waitCap = defaultLoadingWaitCap
	}
	return &Chain{
		providers:      opts.Providers,
		sanitizer:      opts.Sanitizer,
		logger:         logger.With("component", "chain"),
		fallbacks:      fallbacks,
		sample:         sample,
		loadingWaitCap: waitCap,
	}
}

// Complete tries each provider in order and returns the first reply that
// survives sanitization. It never fails: when the chain is exhausted a
// canned fallback reply is returned instead.
func (c *Chain) Complete(ctx context.Context, messages []Message) string {
	for _, p := range c.providers {
		text, ok := c.attempt(ctx, p, messages, true)
		if ok {
			return text
		}
	}
	idx := c.sample(len(c.fallbacks))
	if idx < 0 || idx >= len(c.fallbacks) {
		idx = 0
	}
	c.logger.Warn("chain_exhausted", "providers", len(c.providers), "fallback_index", idx)
	return c.fallbacks[idx]
}

func (c *Chain) attempt(ctx context.Context, p Provider, messages []Message, retryOnLoading bool) (string, bool) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c.logger.Debug("provider_attempt", "provider", p.Name, "model", p.Model)
	res, err := p.Client.Chat(reqCtx, Request{Model: p.Model, Messages: messages})
	if err != nil {
		var loading *ModelLoadingError
		if errors.As(err, &loading) && retryOnLoading {
			wait := loading.EstimatedWait
			if wait <= 0 || wait > c.loadingWaitCap {
				wait = c.loadingWaitCap
			}
			c.logger.Info("provider_loading", "provider", p.Name, "wait", wait.String())
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", false
			}
			return c.attempt(ctx, p, messages, false)
		}
		c.logger.Warn("provider_failed", "provider", p.Name, "reason", failureReason(err), "error", err.Error())
		return "", false
	}

	text := c.sanitizer.Clean(res.Text)
	if !c.sanitizer.IsValid(text) {
		c.logger.Warn("provider_failed", "provider", p.Name, "reason", "invalid_content", "raw_length", len(res.Text))
		return "", false
	}
	c.logger.Info("provider_accepted", "provider", p.Name, "duration", res.Duration.String(), "length", len(text))
	return text, true
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
