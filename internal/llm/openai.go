package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

type OpenAIProvider struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Client      *http.Client
}

type openAIMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatReq struct {
	Model       string      `json:"model"`
	Messages    []openAIMsg `json:"messages"`
	Temperature float64     `json:"temperature"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
}

type openAIChatResp struct {
	Choices []struct {
		Message openAIMsg `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAIProvider(baseURL, apiKey, model string, timeout time.Duration) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &OpenAIProvider{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		Model:       model,
		Temperature: 0.3,
		MaxTokens:   160,
		Client:      &http.Client{Timeout: timeout},
	}
}

func (p *OpenAIProvider) GenerateReply(ctx context.Context, history []Message, difficulty Difficulty, thesis string) (string, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return "", &ProviderError{Provider: "openai", Cause: CauseAuth, Err: errors.New("api key is required")}
	}

	msgs := make([]openAIMsg, 0, len(history)+1)
	msgs = append(msgs, openAIMsg{Role: "system", Content: SystemPrompt(difficulty, thesis)})
	for _, m := range history {
		role := "user"
		if m.Role == RoleBot {
			role = "assistant"
		}
		msgs = append(msgs, openAIMsg{Role: role, Content: m.Content})
	}

	reqBody := openAIChatReq{
		Model:       p.Model,
		Messages:    msgs,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ProviderError{Provider: "openai", Cause: CauseInvalidResponse, Err: err}
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(p.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", &ProviderError{Provider: "openai", Cause: CauseInvalidResponse, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", wireError("openai", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return "", statusError("openai", resp.StatusCode, string(body))
	}

	var decoded openAIChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &ProviderError{Provider: "openai", Cause: CauseInvalidResponse, Err: err}
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", &ProviderError{Provider: "openai", Cause: CauseInvalidResponse, Err: errors.New(decoded.Error.Message)}
	}
	if len(decoded.Choices) == 0 || strings.TrimSpace(decoded.Choices[0].Message.Content) == "" {
		return "", &ProviderError{Provider: "openai", Cause: CauseInvalidResponse, Err: errors.New("empty response")}
	}
	return decoded.Choices[0].Message.Content, nil
}

// wireError maps transport failures to a provider cause. Timeouts, whether
// from the http client or the request context, count as CauseTimeout so the
// fallback chain treats them as ordinary failover triggers.
func wireError(provider string, err error) *ProviderError {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &ProviderError{Provider: provider, Cause: CauseTimeout, Err: err}
	}
	return &ProviderError{Provider: provider, Cause: CauseInvalidResponse, Err: err}
}

func statusError(provider string, status int, body string) *ProviderError {
	msg := strings.TrimSpace(body)
	if msg == "" {
		msg = fmt.Sprintf("status %d", status)
	}
	err := fmt.Errorf("status %d: %s", status, msg)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &ProviderError{Provider: provider, Cause: CauseAuth, Err: err}
	case status == http.StatusTooManyRequests:
		return &ProviderError{Provider: provider, Cause: CauseRateLimited, Err: err}
	case status == http.StatusGatewayTimeout:
		return &ProviderError{Provider: provider, Cause: CauseTimeout, Err: err}
	default:
		return &ProviderError{Provider: provider, Cause: CauseInvalidResponse, Err: err}
	}
}
