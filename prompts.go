package shellm

import (
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	defaults "shellm/default"
)

// FallbackSystemPrompt is used when the bundled default prompts cannot be
// loaded at all.
const FallbackSystemPrompt = "You are a Linux shell command assistant. " +
	"Convert the user's description into a single shell command and return only the command."

// FallbackDescriptionPrompt is used for the assessment call when no
// description prompt is configured.
const FallbackDescriptionPrompt = "You review shell commands. " +
	"In one short line, say what the given command does and whether it is safe to run."

// Prompts holds the system prompts for the two completion calls.
type Prompts struct {
	SystemPrompt      string `yaml:"system_prompt"`
	DescriptionPrompt string `yaml:"description_prompt"`
}

// Description returns the assessment system prompt, falling back to the
// built-in one when the prompts file leaves it empty.
func (p *Prompts) Description() string {
	if p.DescriptionPrompt == "" {
		return FallbackDescriptionPrompt
	}
	return p.DescriptionPrompt
}

// LoadPrompts returns the user's prompts, copying the bundled default file
// into place on first use. An existing file is never regenerated, even when it
// is older than the bundled default, so user edits survive upgrades. Parse
// failures on an existing file are logged and treated like a missing file.
// Never fatal: in the worst case the built-in fallback prompts are returned.
func LoadPrompts() *Prompts {
	path := PromptsPath()

	data, err := os.ReadFile(path)
	if err == nil {
		if p := parsePrompts(data, path); p != nil {
			return p
		}
	} else if !os.IsNotExist(err) {
		slog.Warn("failed to read prompts file", "path", path, "error", err)
	}

	// Copy the bundled default verbatim, then parse the copy.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
		if err := os.WriteFile(path, defaults.DefaultPromptsYAML, 0o644); err != nil {
			slog.Warn("failed to write default prompts file", "path", path, "error", err)
		}
	}

	if p := parsePrompts(defaults.DefaultPromptsYAML, "bundled default"); p != nil {
		return p
	}
	return &Prompts{SystemPrompt: FallbackSystemPrompt}
}

// parsePrompts returns nil when the data is unusable, logging the reason.
func parsePrompts(data []byte, source string) *Prompts {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		slog.Warn("prompts are not valid YAML", "source", source, "error", err)
		return nil
	}
	if p.SystemPrompt == "" {
		slog.Warn("prompts are missing system_prompt", "source", source)
		return nil
	}
	return &p
}
