// Package shellm holds the configuration and prompt stores for the shellm CLI.
// Both live as YAML files in a per-user config directory and are read once per
// invocation.
package shellm

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults offered during the interactive first-run flow.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-3.5-turbo"
)

// Config represents the user's shellm configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Network NetworkConfig `yaml:"network"`
}

// APIConfig holds the chat-completion endpoint credentials.
// All three fields are required once the config is validated.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
	Model   string `yaml:"model"`
}

// NetworkConfig holds optional transport overrides.
type NetworkConfig struct {
	Proxy      string `yaml:"proxy,omitempty"`
	CACertPath string `yaml:"ca_cert_path,omitempty"`
	SSLVerify  *bool  `yaml:"ssl_verify"`
}

// VerifyTLS reports whether server certificates should be verified.
// An absent ssl_verify field defaults to true.
func (n NetworkConfig) VerifyTLS() bool {
	return n.SSLVerify == nil || *n.SSLVerify
}

// ConfigDir returns the config directory path.
// Resolution order: $SHELLM_CONFIG_DIR > $XDG_CONFIG_HOME/shellm > ~/.config/shellm
func ConfigDir() string {
	if dir := os.Getenv("SHELLM_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "shellm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "shellm-config")
	}
	return filepath.Join(home, ".config", "shellm")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// PromptsPath returns the prompts file path.
func PromptsPath() string {
	return filepath.Join(ConfigDir(), "prompts.yaml")
}

// LoadOrCreate loads the config from disk, or runs the interactive first-run
// flow when the file is missing or unparseable. Setup questions are written to
// out (stderr in practice, so stdout stays reserved for the generated command)
// and answers are read from in. The created file is written to ConfigPath with
// ssl_verify enabled and no other network overrides.
func LoadOrCreate(in io.Reader, out io.Writer) (*Config, error) {
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return createInteractive(in, out, path)
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		slog.Warn("config file is not valid YAML, re-running setup", "path", path, "error", err)
		return createInteractive(in, out, path)
	}

	return &cfg, nil
}

// createInteractive prompts for the three required api fields and persists the
// resulting config. Prompt order: base URL, API key, model.
func createInteractive(in io.Reader, out io.Writer, path string) (*Config, error) {
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "No config found at %s, creating one.\n", path)

	baseURL := ask(reader, out, fmt.Sprintf("API base URL [%s]: ", DefaultBaseURL))
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	key := ask(reader, out, "API key: ")
	model := ask(reader, out, fmt.Sprintf("Model [%s]: ", DefaultModel))
	if model == "" {
		model = DefaultModel
	}

	verify := true
	cfg := &Config{
		API:     APIConfig{BaseURL: baseURL, Key: key, Model: model},
		Network: NetworkConfig{SSLVerify: &verify},
	}

	if err := writeConfig(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(out, "Config written to %s\n", path)

	return cfg, nil
}

// ask writes a prompt and returns the trimmed reply, or "" on EOF.
func ask(reader *bufio.Reader, out io.Writer, prompt string) string {
	fmt.Fprint(out, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

func writeConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	// 0600: the file holds the API key.
	return os.WriteFile(path, data, 0o600)
}

// Validate checks that the api section carries all three required fields.
// A missing or empty field is fatal and names the field and the file, so the
// user can fix their edit or delete the file to re-run setup. This is distinct
// from a missing file, which LoadOrCreate recovers from.
func Validate(cfg *Config, path string) error {
	for _, field := range []struct {
		name, value string
	}{
		{"api.base_url", cfg.API.BaseURL},
		{"api.key", cfg.API.Key},
		{"api.model", cfg.API.Model},
	} {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s is missing or empty in %s; fill it in or delete the file to re-run setup", field.name, path)
		}
	}
	return nil
}
