// Package defaults provides the embedded default prompts file.
package defaults

import _ "embed"

//go:embed default_prompts.yaml
var DefaultPromptsYAML []byte
