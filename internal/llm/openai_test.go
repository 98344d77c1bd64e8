package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI_MapsHistoryAndReturnsReply(t *testing.T) {
	var got openAIChatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(openAIChatResp{
			Choices: []struct {
				Message openAIMsg `json:"message"`
			}{{Message: openAIMsg{Role: "assistant", Content: "counterpoint"}}},
		})
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "test-key", "gpt-4o-mini", time.Second)
	history := []Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleBot, Content: "hi"},
		{Role: RoleUser, Content: "I disagree"},
	}
	reply, err := p.GenerateReply(context.Background(), history, DifficultyMedium, "remote work improves productivity")
	require.NoError(t, err)
	assert.Equal(t, "counterpoint", reply)

	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "remote work improves productivity")
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "user", got.Messages[3].Role)
}

func TestOpenAI_StatusCodeCauses(t *testing.T) {
	cases := []struct {
		status int
		cause  Cause
	}{
		{http.StatusUnauthorized, CauseAuth},
		{http.StatusForbidden, CauseAuth},
		{http.StatusTooManyRequests, CauseRateLimited},
		{http.StatusGatewayTimeout, CauseTimeout},
		{http.StatusInternalServerError, CauseInvalidResponse},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		p := NewOpenAIProvider(srv.URL, "k", "m", time.Second)
		_, err := p.GenerateReply(context.Background(), nil, DifficultyEasy, "t")
		assert.True(t, IsCause(err, tc.cause), "status %d should map to %s, got %v", tc.status, tc.cause, err)
		srv.Close()
	}
}

func TestOpenAI_EmptyChoicesIsInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openAIChatResp{})
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "k", "m", time.Second)
	_, err := p.GenerateReply(context.Background(), nil, DifficultyEasy, "t")
	assert.True(t, IsCause(err, CauseInvalidResponse))
}

func TestOpenAI_MissingKeyIsAuth(t *testing.T) {
	p := NewOpenAIProvider("http://unused", "", "m", time.Second)
	_, err := p.GenerateReply(context.Background(), nil, DifficultyEasy, "t")
	assert.True(t, IsCause(err, CauseAuth))
}

func TestAnthropic_JoinsTextBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"part one "},{"type":"tool_use","text":"skip"},{"type":"text","text":"part two"}]}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider(srv.URL, "test-key", "", time.Second)
	reply, err := p.GenerateReply(context.Background(), []Message{{Role: RoleUser, Content: "go"}}, DifficultyHard, "t")
	require.NoError(t, err)
	assert.Equal(t, "part one part two", reply)
}

func TestAnthropic_ContextTimeoutIsTimeoutCause(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewAnthropicProvider(srv.URL, "k", "", time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.GenerateReply(ctx, nil, DifficultyEasy, "t")
	assert.True(t, IsCause(err, CauseTimeout), "got %v", err)
}
