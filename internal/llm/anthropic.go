package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type AnthropicProvider struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Client    *http.Client
}

type anthropicMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicChatReq struct {
	Model     string         `json:"model"`
	System    string         `json:"system"`
	Messages  []anthropicMsg `json:"messages"`
	MaxTokens int            `json:"max_tokens"`
}

type anthropicChatResp struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewAnthropicProvider(baseURL, apiKey, model string, timeout time.Duration) *AnthropicProvider {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}
	if model == "" {
		model = "claude-3-5-sonnet-latest"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &AnthropicProvider{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		Model:     model,
		MaxTokens: 160,
		Client:    &http.Client{Timeout: timeout},
	}
}

func (p *AnthropicProvider) GenerateReply(ctx context.Context, history []Message, difficulty Difficulty, thesis string) (string, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return "", &ProviderError{Provider: "anthropic", Cause: CauseAuth, Err: errors.New("api key is required")}
	}

	msgs := make([]anthropicMsg, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Role == RoleBot {
			role = "assistant"
		}
		msgs = append(msgs, anthropicMsg{Role: role, Content: m.Content})
	}

	reqBody := anthropicChatReq{
		Model:     p.Model,
		System:    SystemPrompt(difficulty, thesis),
		Messages:  msgs,
		MaxTokens: p.MaxTokens,
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ProviderError{Provider: "anthropic", Cause: CauseInvalidResponse, Err: err}
	}

	url := fmt.Sprintf("%s/messages", strings.TrimRight(p.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", &ProviderError{Provider: "anthropic", Cause: CauseInvalidResponse, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", wireError("anthropic", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return "", statusError("anthropic", resp.StatusCode, string(body))
	}

	var decoded anthropicChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &ProviderError{Provider: "anthropic", Cause: CauseInvalidResponse, Err: err}
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", &ProviderError{Provider: "anthropic", Cause: CauseInvalidResponse, Err: errors.New(decoded.Error.Message)}
	}

	var sb strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", &ProviderError{Provider: "anthropic", Cause: CauseInvalidResponse, Err: errors.New("empty response")}
	}
	return out, nil
}
