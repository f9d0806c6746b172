// Package persona loads an optional YAML profile that shapes the system
// prompt. A missing file is not an error; the default prompt applies.
package persona

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultSystemPrompt = "You are a helpful and witty assistant in a Discord chat."

type Profile struct {
	Name         string   `yaml:"name"`
	Status       string   `yaml:"status"`
	SystemPrompt string   `yaml:"system_prompt"`
	StyleNotes   []string `yaml:"style_notes"`
}

// Load reads a profile document. The second return reports whether a usable
// profile was loaded; profiles marked `status: draft` are ignored, matching
// how persona documents are staged before going live.
func Load(path string) (Profile, bool, error) {
	if strings.TrimSpace(path) == "" {
		return Profile{}, false, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Profile{}, false, nil
		}
		return Profile{}, false, fmt.Errorf("read persona profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Profile{}, false, fmt.Errorf("parse persona profile: %w", err)
	}
	if strings.EqualFold(strings.TrimSpace(p.Status), "draft") {
		return Profile{}, false, nil
	}
	return p, true, nil
}

// SystemMessage renders the profile as the system prompt, falling back to
// the default when the profile carries no prompt of its own.
func (p Profile) SystemMessage() string {
	prompt := strings.TrimSpace(p.SystemPrompt)
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	if name := strings.TrimSpace(p.Name); name != "" {
		prompt = prompt + " Your name is " + name + "."
	}
	if len(p.StyleNotes) == 0 {
		return prompt
	}

	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nStyle notes:\n")
	for _, note := range p.StyleNotes {
		note = strings.TrimSpace(note)
		if note == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(note)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
