package llm

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	KindOpenAI    = "openai"
	KindAnthropic = "anthropic"
	KindDummy     = "dummy"
)

// ProviderConfig describes one candidate provider for the fallback chain.
type ProviderConfig struct {
	Kind     string
	Enabled  bool
	Priority int

	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// BuildChain assembles the fallback chain from configuration. It validates
// eagerly so a misconfigured deployment fails at startup, not on the first
// request: an enabled provider missing its credential and an empty final
// chain are both ConfigErrors. The dummy provider needs no credentials so
// the system stays exercisable offline.
func BuildChain(cfgs []ProviderConfig, log zerolog.Logger) (*Fallback, error) {
	ordered := make([]ProviderConfig, 0, len(cfgs))
	for _, c := range cfgs {
		if c.Enabled {
			ordered = append(ordered, c)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	names := make([]string, 0, len(ordered))
	providers := make([]Provider, 0, len(ordered))
	for _, c := range ordered {
		switch strings.ToLower(strings.TrimSpace(c.Kind)) {
		case KindOpenAI:
			if strings.TrimSpace(c.APIKey) == "" {
				return nil, &ConfigError{Msg: "openai enabled but OPENAI_API_KEY is missing"}
			}
			providers = append(providers, NewOpenAIProvider(c.BaseURL, c.APIKey, c.Model, c.Timeout))
			names = append(names, KindOpenAI)
		case KindAnthropic:
			if strings.TrimSpace(c.APIKey) == "" {
				return nil, &ConfigError{Msg: "anthropic enabled but ANTHROPIC_API_KEY is missing"}
			}
			providers = append(providers, NewAnthropicProvider(c.BaseURL, c.APIKey, c.Model, c.Timeout))
			names = append(names, KindAnthropic)
		case KindDummy:
			providers = append(providers, NewDummyProvider())
			names = append(names, KindDummy)
		default:
			return nil, &ConfigError{Msg: fmt.Sprintf("unknown provider kind %q", c.Kind)}
		}
	}

	if len(providers) == 0 {
		return nil, &ConfigError{Msg: "no enabled providers; set PROVIDER_PRIORITY"}
	}
	return NewFallback(names, providers, log)
}
