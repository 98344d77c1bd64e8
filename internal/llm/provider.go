package llm

import (
	"context"
	"errors"
	"fmt"
)

// Role identifies the author of a history message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one turn of debate history as seen by a provider.
// History handed to a Provider is already ordered oldest->newest and
// truncated by the caller; adapters never re-derive that policy.
type Message struct {
	Role    Role
	Content string
}

// Difficulty selects the system prompt variant for a conversation.
// Fixed at conversation creation.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), true
	case "":
		return DifficultyEasy, true
	}
	return "", false
}

// Provider produces the next debate reply given history and difficulty.
// Implementations must be safe for concurrent use.
type Provider interface {
	GenerateReply(ctx context.Context, history []Message, difficulty Difficulty, thesis string) (string, error)
}

// Cause classifies a provider failure.
type Cause string

const (
	CauseTimeout         Cause = "timeout"
	CauseRateLimited     Cause = "rate_limited"
	CauseInvalidResponse Cause = "invalid_response"
	CauseAuth            Cause = "auth"
	CauseAllExhausted    Cause = "all_exhausted"
)

// ProviderError is the uniform failure type for all provider adapters.
type ProviderError struct {
	Provider string
	Cause    Cause
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Cause, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AsProviderError unwraps err into a *ProviderError if possible.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsCause reports whether err is a ProviderError with the given cause.
func IsCause(err error, c Cause) bool {
	pe, ok := AsProviderError(err)
	return ok && pe.Cause == c
}

// ConfigError reports a misconfigured provider chain. It is startup-fatal:
// no partial system should start on top of it.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "llm config: " + e.Msg }
