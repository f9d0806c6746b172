package persona

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "persona.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	t.Parallel()

	path := writeProfile(t, `
name: Markle
system_prompt: You are Markle, resident chat gremlin.
style_notes:
  - keep replies short
  - never use corporate speak
`)
	p, loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !loaded {
		t.Fatalf("loaded mismatch: got false want true")
	}
	if p.Name != "Markle" {
		t.Fatalf("name mismatch: got %q", p.Name)
	}

	msg := p.SystemMessage()
	if !strings.Contains(msg, "resident chat gremlin") {
		t.Fatalf("system message missing prompt: %q", msg)
	}
	if !strings.Contains(msg, "- keep replies short") {
		t.Fatalf("system message missing style notes: %q", msg)
	}
}

func TestLoadDraftIsIgnored(t *testing.T) {
	t.Parallel()

	path := writeProfile(t, "name: WIP\nstatus: draft\nsystem_prompt: not ready\n")
	_, loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded {
		t.Fatalf("loaded mismatch for draft: got true want false")
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	t.Parallel()

	_, loaded, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded {
		t.Fatalf("loaded mismatch for missing file: got true want false")
	}
}

func TestLoadEmptyPathIsNoop(t *testing.T) {
	t.Parallel()

	_, loaded, err := Load("")
	if err != nil || loaded {
		t.Fatalf("Load(\"\") mismatch: loaded=%v err=%v", loaded, err)
	}
}

func TestLoadInvalidYAMLFails(t *testing.T) {
	t.Parallel()

	path := writeProfile(t, "name: [broken")
	if _, _, err := Load(path); err == nil {
		t.Fatalf("Load() expected error for invalid yaml")
	}
}

func TestSystemMessageDefaults(t *testing.T) {
	t.Parallel()

	if got := (Profile{}).SystemMessage(); got != DefaultSystemPrompt {
		t.Fatalf("default system message mismatch: got %q", got)
	}
}
