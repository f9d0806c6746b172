package huggingface

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elslie/markleai/llm"
)

func TestChatParsesGeneratedText(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[{"generated_text":" Sure, here is a thought."}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "hf-test")
	res, err := c.Chat(context.Background(), llm.Request{
		Model:    "some/model",
		Messages: []llm.Message{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if gotPath != "/models/some/model" {
		t.Fatalf("path mismatch: got %q", gotPath)
	}
	if gotAuth != "Bearer hf-test" {
		t.Fatalf("auth header mismatch: got %q", gotAuth)
	}
	if res.Text != " Sure, here is a thought." {
		t.Fatalf("text mismatch: got %q", res.Text)
	}
}

func TestChatSurfacesModelLoading(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model some/model is currently loading","estimated_time":20.5}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "hf-test")
	_, err := c.Chat(context.Background(), llm.Request{Model: "some/model"})
	var loading *llm.ModelLoadingError
	if !errors.As(err, &loading) {
		t.Fatalf("error type mismatch: got %v want ModelLoadingError", err)
	}
	if loading.Model != "some/model" {
		t.Fatalf("model mismatch: got %q", loading.Model)
	}
	if loading.EstimatedWait != 20500*time.Millisecond {
		t.Fatalf("estimated wait mismatch: got %s want 20.5s", loading.EstimatedWait)
	}
}

func TestChatNonLoadingErrorIsPlain(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unknown model"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "hf-test")
	_, err := c.Chat(context.Background(), llm.Request{Model: "nope"})
	if err == nil {
		t.Fatalf("Chat() expected error")
	}
	var loading *llm.ModelLoadingError
	if errors.As(err, &loading) {
		t.Fatalf("400 must not be treated as model loading")
	}
	if !strings.Contains(err.Error(), "huggingface http 400") {
		t.Fatalf("error mismatch: got %q", err.Error())
	}
}

func TestFlattenMessages(t *testing.T) {
	t.Parallel()

	got := flattenMessages([]llm.Message{
		{Role: "system", Content: "Be brief."},
		{Role: "user", Content: "alice: hi"},
		{Role: "assistant", Content: "Hello!"},
	})
	want := "Be brief.\n\nUser: alice: hi\nAssistant: Hello!\nAssistant:"
	if got != want {
		t.Fatalf("prompt mismatch: got %q want %q", got, want)
	}
}
