// Package huggingface talks to the Hugging Face Inference API. Unlike the
// chat-completions providers it takes a flattened text prompt, and it can
// answer 503 with a model-loading payload while the model warms up; that is
// surfaced as llm.ModelLoadingError so the chain can wait and retry once.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elslie/markleai/llm"
)

const DefaultModel = "HuggingFaceH4/zephyr-7b-beta"

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 90 * time.Second},
	}
}

type inferenceRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		MaxNewTokens   int  `json:"max_new_tokens"`
		ReturnFullText bool `json:"return_full_text"`
	} `json:"parameters"`
	Options struct {
		WaitForModel bool `json:"wait_for_model"`
	} `json:"options"`
}

type inferenceError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

func (c *Client) Chat(ctx context.Context, req llm.Request) (llm.Result, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	var body inferenceRequest
	body.Inputs = flattenMessages(req.Messages)
	body.Parameters.MaxNewTokens = 250
	b, err := json.Marshal(body)
	if err != nil {
		return llm.Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/models/"+model, bytes.NewReader(b))
	if err != nil {
		return llm.Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return llm.Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Result{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr inferenceError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			if resp.StatusCode == http.StatusServiceUnavailable && strings.Contains(strings.ToLower(apiErr.Error), "loading") {
				return llm.Result{}, &llm.ModelLoadingError{
					Model:         model,
					EstimatedWait: time.Duration(apiErr.EstimatedTime * float64(time.Second)),
				}
			}
			return llm.Result{}, fmt.Errorf("huggingface http %d: %s", resp.StatusCode, apiErr.Error)
		}
		return llm.Result{}, fmt.Errorf("huggingface http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return llm.Result{}, fmt.Errorf("huggingface: invalid response json: %w", err)
	}
	if len(out) == 0 {
		return llm.Result{}, fmt.Errorf("huggingface: empty result")
	}

	return llm.Result{
		Text:     out[0].GeneratedText,
		Duration: time.Since(start),
	}, nil
}

// flattenMessages renders role/content pairs as a plain dialogue transcript,
// ending with an assistant cue so text-generation models continue the turn.
func flattenMessages(messages []llm.Message) string {
	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case "system":
			b.WriteString(m.Content)
			b.WriteString("\n\n")
		case "assistant":
			b.WriteString("Assistant: ")
			b.WriteString(m.Content)
			b.WriteString("\n")
		default:
			b.WriteString("User: ")
			b.WriteString(m.Content)
			b.WriteString("\n")
		}
	}
	b.WriteString("Assistant:")
	return b.String()
}
