package shellm

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	defaults "shellm/default"
)

func TestLoadPromptsCopiesBundledDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SHELLM_CONFIG_DIR", dir)

	p := LoadPrompts()
	require.NotNil(t, p)
	assert.Contains(t, p.SystemPrompt, "shell command")
	assert.NotEmpty(t, p.DescriptionPrompt)

	// The copy is verbatim.
	data, err := os.ReadFile(PromptsPath())
	require.NoError(t, err)
	assert.Equal(t, defaults.DefaultPromptsYAML, data)
}

func TestLoadPromptsPreservesExistingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SHELLM_CONFIG_DIR", dir)

	custom := "system_prompt: my custom prompt\ndescription_prompt: my custom reviewer\n"
	require.NoError(t, os.WriteFile(PromptsPath(), []byte(custom), 0o644))

	p := LoadPrompts()
	assert.Equal(t, "my custom prompt", p.SystemPrompt)
	assert.Equal(t, "my custom reviewer", p.DescriptionPrompt)

	// Not regenerated, even though it differs from the bundled default.
	data, err := os.ReadFile(PromptsPath())
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}

func TestLoadPromptsRecoversFromUnparseableFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SHELLM_CONFIG_DIR", dir)

	require.NoError(t, os.WriteFile(PromptsPath(), []byte("{broken: ["), 0o644))

	p := LoadPrompts()
	require.NotNil(t, p)
	assert.Contains(t, p.SystemPrompt, "shell command")

	// The broken file was replaced by the bundled default.
	data, err := os.ReadFile(PromptsPath())
	require.NoError(t, err)
	assert.Equal(t, defaults.DefaultPromptsYAML, data)
}

func TestDescriptionFallsBackWhenEmpty(t *testing.T) {
	p := &Prompts{SystemPrompt: "x"}
	assert.Equal(t, FallbackDescriptionPrompt, p.Description())

	p.DescriptionPrompt = "custom"
	assert.Equal(t, "custom", p.Description())
}
