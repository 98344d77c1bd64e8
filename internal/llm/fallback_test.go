package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	name  string
	reply string
	err   error
	calls int
}

func (p *scriptedProvider) GenerateReply(ctx context.Context, history []Message, difficulty Difficulty, thesis string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func newChain(t *testing.T, providers ...*scriptedProvider) *Fallback {
	t.Helper()
	names := make([]string, len(providers))
	ps := make([]Provider, len(providers))
	for i, p := range providers {
		names[i] = p.name
		ps[i] = p
	}
	fb, err := NewFallback(names, ps, zerolog.Nop())
	require.NoError(t, err)
	return fb
}

func TestFallback_FirstSuccessWins(t *testing.T) {
	a := &scriptedProvider{name: "a", reply: "from a"}
	b := &scriptedProvider{name: "b", reply: "from b"}
	fb := newChain(t, a, b)

	reply, err := fb.GenerateReply(context.Background(), nil, DifficultyEasy, "t")
	require.NoError(t, err)
	assert.Equal(t, "from a", reply)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls, "later providers must not be called after a success")
}

func TestFallback_SkipsFailuresInPriorityOrder(t *testing.T) {
	a := &scriptedProvider{name: "a", err: &ProviderError{Provider: "a", Cause: CauseTimeout}}
	b := &scriptedProvider{name: "b", err: &ProviderError{Provider: "b", Cause: CauseRateLimited}}
	c := &scriptedProvider{name: "c", reply: "from c"}
	fb := newChain(t, a, b, c)

	reply, err := fb.GenerateReply(context.Background(), nil, DifficultyEasy, "t")
	require.NoError(t, err)
	assert.Equal(t, "from c", reply)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 1, c.calls)
}

func TestFallback_AllExhaustedKeepsLastCause(t *testing.T) {
	a := &scriptedProvider{name: "a", err: &ProviderError{Provider: "a", Cause: CauseTimeout}}
	b := &scriptedProvider{name: "b", err: &ProviderError{Provider: "b", Cause: CauseAuth}}
	fb := newChain(t, a, b)

	_, err := fb.GenerateReply(context.Background(), nil, DifficultyEasy, "t")
	require.Error(t, err)
	assert.True(t, IsCause(err, CauseAllExhausted))
	assert.Equal(t, CauseAuth, LastCause(err), "aggregated cause must be the last provider's")
}

func TestFallback_WrapsForeignErrors(t *testing.T) {
	a := &scriptedProvider{name: "a", err: errors.New("boom")}
	b := &scriptedProvider{name: "b", reply: "ok"}
	fb := newChain(t, a, b)

	reply, err := fb.GenerateReply(context.Background(), nil, DifficultyEasy, "t")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestFallback_StatelessAcrossInvocations(t *testing.T) {
	a := &scriptedProvider{name: "a", err: &ProviderError{Provider: "a", Cause: CauseTimeout}}
	b := &scriptedProvider{name: "b", reply: "ok"}
	fb := newChain(t, a, b)

	for i := 0; i < 3; i++ {
		_, err := fb.GenerateReply(context.Background(), nil, DifficultyEasy, "t")
		require.NoError(t, err)
	}
	// a must be retried on every invocation; prior failures never demote it.
	assert.Equal(t, 3, a.calls)
	assert.Equal(t, 3, b.calls)
}

func TestNewFallback_RejectsEmptyChain(t *testing.T) {
	_, err := NewFallback(nil, nil, zerolog.Nop())
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
}
