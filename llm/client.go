// Package llm performs chat completions against an OpenAI-compatible API.
package llm

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"shellm"
)

const (
	generateMaxTokens = 200
	assessMaxTokens   = 150
	temperature       = 0.1
)

// AssessmentUnavailable is returned by AssessCommand when the assessment call
// fails for any reason. It distinguishes "the API said X" from "the API was
// unreachable".
const AssessmentUnavailable = "[safety assessment unavailable]"

// assessWrapper embeds the generated command into the assessment user message.
const assessWrapper = "Describe what the following shell command does and whether it is safe to run:\n%s"

// Client performs chat completions against an OpenAI-compatible API.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewClient creates a client from the api credentials and network overrides.
// It fails when the proxy URL does not parse or the CA certificate cannot be
// loaded.
func NewClient(api shellm.APIConfig, network shellm.NetworkConfig) (*Client, error) {
	transport, err := buildTransport(network)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(api.BaseURL, "/"),
		apiKey:  api.Key,
		model:   api.Model,
		client:  &http.Client{Timeout: 30 * time.Second, Transport: transport},
	}, nil
}

// buildTransport applies the network overrides. A configured proxy covers both
// HTTP and HTTPS. For TLS, exactly one of CA override, disabled verification,
// or default verification is active, in that precedence order.
func buildTransport(network shellm.NetworkConfig) (*http.Transport, error) {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}

	if network.Proxy != "" {
		proxyURL, err := url.Parse(network.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", network.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	switch {
	case network.CACertPath != "":
		pem, err := os.ReadFile(network.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", network.CACertPath)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool}
	case !network.VerifyTLS():
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return transport, nil
}

// GenerateCommand asks the model to turn a task description into a shell
// command and returns the trimmed text of the first choice. Failures here are
// fatal to the caller: without a command the tool has nothing to print.
func (c *Client) GenerateCommand(ctx context.Context, systemPrompt, description string) (string, error) {
	return c.complete(ctx, systemPrompt, description, generateMaxTokens)
}

// AssessCommand asks the model for a one-line safety assessment of a generated
// command. The assessment is advisory: on any failure it logs a warning and
// returns AssessmentUnavailable instead of an error.
func (c *Client) AssessCommand(ctx context.Context, descriptionPrompt, command string) string {
	out, err := c.complete(ctx, descriptionPrompt, fmt.Sprintf(assessWrapper, command), assessMaxTokens)
	if err != nil {
		slog.Warn("assessment call failed", "error", err)
		return AssessmentUnavailable
	}
	return out
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (c *Client) complete(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w (body: %s)", err, string(body))
	}

	if result.Error != nil {
		return "", fmt.Errorf("API error: %s", result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
