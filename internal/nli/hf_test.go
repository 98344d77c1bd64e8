package nli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHFClient_PicksTopLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[{"label":"CONTRADICTION","score":0.08},{"label":"NEUTRAL","score":0.12},{"label":"ENTAILMENT","score":0.80}]]`))
	}))
	defer srv.Close()

	c := NewHFClient(srv.URL, "", "roberta-large-mnli", time.Second)
	res, err := c.Classify(context.Background(), "okay, you're right, I concede", "remote work does not improve productivity")
	require.NoError(t, err)
	assert.Equal(t, Entailment, res.Label)
	assert.InDelta(t, 0.80, res.Scores[Entailment], 1e-9)
}

func TestHFClient_AcceptsFlatResponseShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"label":"neutral","score":0.9},{"label":"entailment","score":0.1}]`))
	}))
	defer srv.Close()

	c := NewHFClient(srv.URL, "", "m", time.Second)
	res, err := c.Classify(context.Background(), "p", "h")
	require.NoError(t, err)
	assert.Equal(t, Neutral, res.Label)
}

func TestHFClient_ErrorStatusIsClassifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHFClient(srv.URL, "", "m", time.Second)
	_, err := c.Classify(context.Background(), "p", "h")
	assert.True(t, IsClassifierError(err))
}

func TestHFClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHFClient(srv.URL, "", "m", time.Second)
	for i := 0; i < 8; i++ {
		_, err := c.Classify(context.Background(), "p", "h")
		assert.True(t, IsClassifierError(err))
	}
	// breaker trips after 5 consecutive failures; later calls fail fast.
	assert.Equal(t, 5, hits)
}
