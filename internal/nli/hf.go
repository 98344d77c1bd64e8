package nli

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

	"github.com/sony/gobreaker"
)

// HFClient calls a HuggingFace-style inference endpoint running a
// text-classification NLI model (e.g. roberta-large-mnli). Calls go through
// a circuit breaker so a flapping endpoint fails fast instead of burning
// the per-request timeout on every turn.
type HFClient struct {
	BaseURL string
	Token   string
	Model   string
	Client  *http.Client

	breaker *gobreaker.CircuitBreaker
}

type hfClassifyReq struct {
	Inputs hfPair `json:"inputs"`
}

type hfPair struct {
	Text     string `json:"text"`
	TextPair string `json:"text_pair"`
}

type hfScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func NewHFClient(baseURL, token, model string, timeout time.Duration) *HFClient {
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	if model == "" {
		model = "roberta-large-mnli"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HFClient{
		BaseURL: baseURL,
		Token:   token,
		Model:   model,
		Client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "nli",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (c *HFClient) Classify(ctx context.Context, premise, hypothesis string) (Result, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.classify(ctx, premise, hypothesis)
	})
	if err != nil {
		return Result{}, &ClassifierError{Err: err}
	}
	return out.(Result), nil
}

func (c *HFClient) classify(ctx context.Context, premise, hypothesis string) (Result, error) {
	body, err := json.Marshal(hfClassifyReq{Inputs: hfPair{Text: premise, TextPair: hypothesis}})
	if err != nil {
		return Result{}, err
	}

	url := fmt.Sprintf("%s/models/%s", strings.TrimRight(c.BaseURL, "/"), c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2*1024))
		return Result{}, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	// The endpoint returns either [[{label,score},...]] or [{label,score},...]
	// depending on deployment; accept both.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return Result{}, err
	}
	var nested [][]hfScore
	var flat []hfScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		flat = nested[0]
	} else if err := json.Unmarshal(raw, &flat); err != nil {
		return Result{}, fmt.Errorf("undecodable response: %w", err)
	}
	if len(flat) == 0 {
		return Result{}, errors.New("empty classification response")
	}

	scores := make(map[Label]float64, len(flat))
	best := Result{Scores: scores}
	bestScore := -1.0
	for _, s := range flat {
		label, ok := parseLabel(s.Label)
		if !ok {
			continue
		}
		scores[label] = s.Score
		if s.Score > bestScore {
			bestScore = s.Score
			best.Label = label
		}
	}
	if best.Label == "" {
		return Result{}, errors.New("no recognizable labels in response")
	}
	return best, nil
}

func parseLabel(s string) (Label, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entailment":
		return Entailment, true
	case "contradiction":
		return Contradiction, true
	case "neutral":
		return Neutral, true
	}
	return "", false
}
