package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaResponse struct {
	Message *ollamaMessage `json:"message"`
}

// Ollama talks to a local Ollama instance through /api/chat.
type Ollama struct {
	Host        string
	Model       string
	Temperature float64
	Client      *http.Client // nil means http.DefaultClient
}

// Complete sends the exchange to Ollama and returns the trimmed reply.
func (o *Ollama) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody := ollamaRequest{
		Model: o.Model,
		Messages: []ollamaMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream:  false,
		Options: ollamaOptions{Temperature: o.Temperature},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(o.Host, "/")+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", &APIError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &APIError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Status: resp.StatusCode}
	}

	var result ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &APIError{Err: fmt.Errorf("decode ollama response: %w", err)}
	}
	if result.Message == nil {
		return "", &APIError{Err: errors.New("malformed response: no message")}
	}

	return strings.TrimSpace(result.Message.Content), nil
}
