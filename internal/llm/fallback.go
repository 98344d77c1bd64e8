package llm

import (
	"context"

	"github.com/rs/zerolog"
)

// Fallback composes an ordered list of providers into one Provider.
// GenerateReply tries each provider in priority order and returns the first
// success; a failing provider is skipped and the next one is tried. The
// chain is fixed at construction and stateless across invocations, so the
// attempt sequence is fully determined by the priority list and each
// provider's outcome.
type Fallback struct {
	chain []entry
	log   zerolog.Logger
}

type entry struct {
	name     string
	provider Provider
}

// NewFallback builds a chain from providers in the given order. Names are
// parallel to providers and used only for logging and error attribution.
func NewFallback(names []string, providers []Provider, log zerolog.Logger) (*Fallback, error) {
	if len(providers) == 0 {
		return nil, &ConfigError{Msg: "fallback chain must not be empty"}
	}
	if len(names) != len(providers) {
		return nil, &ConfigError{Msg: "fallback names and providers length mismatch"}
	}
	chain := make([]entry, len(providers))
	for i := range providers {
		chain[i] = entry{name: names[i], provider: providers[i]}
	}
	return &Fallback{chain: chain, log: log}, nil
}

func (f *Fallback) GenerateReply(ctx context.Context, history []Message, difficulty Difficulty, thesis string) (string, error) {
	var last *ProviderError
	for _, e := range f.chain {
		reply, err := e.provider.GenerateReply(ctx, history, difficulty, thesis)
		if err == nil {
			return reply, nil
		}
		pe, ok := AsProviderError(err)
		if !ok {
			pe = &ProviderError{Provider: e.name, Cause: CauseInvalidResponse, Err: err}
		}
		last = pe
		f.log.Warn().
			Str("provider", e.name).
			Str("cause", string(pe.Cause)).
			Err(pe.Err).
			Msg("provider failed, trying next")
	}
	return "", &ProviderError{Provider: "fallback", Cause: CauseAllExhausted, Err: last}
}

// LastCause returns the underlying cause aggregated into an all_exhausted
// error, or the error's own cause for single-provider failures.
func LastCause(err error) Cause {
	pe, ok := AsProviderError(err)
	if !ok {
		return ""
	}
	if pe.Cause == CauseAllExhausted {
		if inner, ok := AsProviderError(pe.Err); ok {
			return inner.Cause
		}
	}
	return pe.Cause
}
