package llm

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChain_DummyNeedsNoCredentials(t *testing.T) {
	fb, err := BuildChain([]ProviderConfig{
		{Kind: KindDummy, Enabled: true, Priority: 1},
	}, zerolog.Nop())
	require.NoError(t, err)

	reply, err := fb.GenerateReply(context.Background(), nil, DifficultyEasy, "cats are great")
	require.NoError(t, err)
	assert.Contains(t, reply, "cats are great")
}

func TestBuildChain_MissingKeyIsConfigError(t *testing.T) {
	_, err := BuildChain([]ProviderConfig{
		{Kind: KindOpenAI, Enabled: true, Priority: 1},
	}, zerolog.Nop())
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestBuildChain_EmptyChainIsConfigError(t *testing.T) {
	_, err := BuildChain([]ProviderConfig{
		{Kind: KindOpenAI, Enabled: false, APIKey: "k"},
	}, zerolog.Nop())
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestBuildChain_UnknownKindIsConfigError(t *testing.T) {
	_, err := BuildChain([]ProviderConfig{
		{Kind: "mystery", Enabled: true},
	}, zerolog.Nop())
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestBuildChain_OrdersByPriority(t *testing.T) {
	fb, err := BuildChain([]ProviderConfig{
		{Kind: KindDummy, Enabled: true, Priority: 2},
		{Kind: KindAnthropic, Enabled: true, Priority: 1, APIKey: "k"},
	}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, fb.chain, 2)
	assert.Equal(t, KindAnthropic, fb.chain[0].name)
	assert.Equal(t, KindDummy, fb.chain[1].name)
}
