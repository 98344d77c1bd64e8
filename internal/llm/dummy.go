package llm

import (
	"context"
	"fmt"
)

// DummyProvider returns a canned reply without any network access. It lets
// the rest of the system run when no real provider credentials exist.
type DummyProvider struct{}

func NewDummyProvider() *DummyProvider { return &DummyProvider{} }

func (p *DummyProvider) GenerateReply(ctx context.Context, history []Message, difficulty Difficulty, thesis string) (string, error) {
	_ = ctx
	_ = history
	return fmt.Sprintf("I am a debate bot defending the thesis %q at %s difficulty.", thesis, difficulty), nil
}
