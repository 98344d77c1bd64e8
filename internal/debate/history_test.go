package debate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suPer8Hu/debate-platform/internal/llm"
)

func altHistory(n int) []llm.Message {
	out := make([]llm.Message, n)
	for i := range out {
		role := llm.RoleUser
		if i%2 == 1 {
			role = llm.RoleBot
		}
		out[i] = llm.Message{Role: role, Content: string(rune('a' + i))}
	}
	return out
}

func reverse(msgs []llm.Message) []llm.Message {
	out := make([]llm.Message, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m
	}
	return out
}

func TestReversalRoundTrips(t *testing.T) {
	h := altHistory(7)
	assert.Equal(t, h, reverse(reverse(h)))
}

func TestTruncatePairs_UnboundedKeepsEverything(t *testing.T) {
	h := altHistory(9)
	assert.Equal(t, h, truncatePairs(h, 0))
}

func TestTruncatePairs_DropsOldestPairsFirst(t *testing.T) {
	h := altHistory(9) // 4 pairs + trailing user message
	got := truncatePairs(h, 2)
	require.Len(t, got, 5)
	// newest two pairs plus the trailing user message, order preserved
	assert.Equal(t, h[4:], got)
	assert.Equal(t, llm.RoleUser, got[0].Role)
	assert.Equal(t, llm.RoleUser, got[len(got)-1].Role)
}

func TestTruncatePairs_EvenAlignedInputStaysEven(t *testing.T) {
	for _, n := range []int{2, 4, 6, 10} {
		got := truncatePairs(altHistory(n), 2)
		assert.Equal(t, 0, len(got)%2, "even input of length %d must truncate to even length", n)
	}
}

func TestTruncatePairs_ShortHistoryUntouched(t *testing.T) {
	h := altHistory(3)
	assert.Equal(t, h, truncatePairs(h, 5))
}

func TestValidateAlternation(t *testing.T) {
	assert.NoError(t, validateAlternation(altHistory(6)))

	bad := altHistory(4)
	bad[2].Role = llm.RoleBot // bot, bot back to back
	err := validateAlternation(bad)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindMalformedHistory))
}
