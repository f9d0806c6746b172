package llm

import (
	"context"
	"fmt"
	"time"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

type Result struct {
	Text     string
	Usage    Usage
	Duration time.Duration
}

type Request struct {
	Model    string
	Messages []Message
}

type Client interface {
	Chat(ctx context.Context, req Request) (Result, error)
}

// ModelLoadingError reports a cold-start signal from a provider: the model
// exists but is not warm yet. EstimatedWait may be zero when the provider
// did not report one.
type ModelLoadingError struct {
	Model         string
	EstimatedWait time.Duration
}

func (e *ModelLoadingError) Error() string {
	if e.EstimatedWait > 0 {
		return fmt.Sprintf("model %s is still loading (estimated %s)", e.Model, e.EstimatedWait)
	}
	return fmt.Sprintf("model %s is still loading", e.Model)
}
