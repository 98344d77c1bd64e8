package debate

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/suPer8Hu/debate-platform/internal/nli"
)

type memStateStore struct {
	states map[string][]TurnState
	turns  map[string]int64
}

func newMemStateStore() *memStateStore {
	return &memStateStore{states: map[string][]TurnState{}, turns: map[string]int64{}}
}

func (m *memStateStore) SetTurnState(ctx context.Context, conversationID string, state TurnState) error {
	_ = ctx
	m.states[conversationID] = append(m.states[conversationID], state)
	return nil
}

func (m *memStateStore) IncrAssistantTurns(ctx context.Context, conversationID string) (int64, error) {
	_ = ctx
	m.turns[conversationID]++
	return m.turns[conversationID], nil
}

func (m *memStateStore) AssistantTurns(ctx context.Context, conversationID string) (int64, error) {
	_ = ctx
	return m.turns[conversationID], nil
}

func testConv() *Conversation {
	return &Conversation{
		ConversationID: "01TESTCONVERSATION0000000000",
		Thesis:         "remote work improves productivity",
		Status:         StatusActive,
	}
}

func TestCheckTurn_EntailmentConcedes(t *testing.T) {
	cls := &stubClassifier{label: nli.Entailment}
	svc := NewConcessionService(cls, nil, 0, zerolog.Nop())

	d := svc.CheckTurn(context.Background(), testConv(), "fine, remote work really does improve productivity")
	assert.True(t, d.Conceded)
	assert.True(t, d.Checked)
	assert.Equal(t, TurnConcluded, d.State)
}

func TestCheckTurn_ContradictionKeepsDebating(t *testing.T) {
	cls := &stubClassifier{label: nli.Contradiction}
	svc := NewConcessionService(cls, nil, 0, zerolog.Nop())

	d := svc.CheckTurn(context.Background(), testConv(), "no, offices are clearly more productive")
	assert.False(t, d.Conceded)
	assert.True(t, d.Checked)
	assert.Equal(t, TurnStanceChecked, d.State)
}

func TestCheckTurn_ExplicitAgreementWithoutClassifier(t *testing.T) {
	cls := &stubClassifier{label: nli.Neutral}
	svc := NewConcessionService(cls, nil, 0, zerolog.Nop())

	d := svc.CheckTurn(context.Background(), testConv(), "alright, I give up on this one")
	assert.True(t, d.Conceded)
	assert.Equal(t, TurnConcluded, d.State)
}

func TestCheckTurn_ClassifierErrorAssumesNotConceded(t *testing.T) {
	cls := &stubClassifier{err: &nli.ClassifierError{Err: errors.New("transport")}}
	svc := NewConcessionService(cls, nil, 0, zerolog.Nop())

	d := svc.CheckTurn(context.Background(), testConv(), "this argument proves nothing at all")
	assert.False(t, d.Conceded)
	assert.False(t, d.Checked)
	assert.Equal(t, TurnPending, d.State)
	assert.Equal(t, 1, cls.calls, "the classifier is not retried")
}

func TestCheckTurn_ShortMessageSkipsClassifier(t *testing.T) {
	cls := &stubClassifier{label: nli.Entailment}
	svc := NewConcessionService(cls, nil, 0, zerolog.Nop())

	d := svc.CheckTurn(context.Background(), testConv(), "ok sure")
	assert.False(t, d.Conceded)
	assert.Equal(t, 0, cls.calls)
}

func TestCheckTurn_EntailmentGatedByMinAssistantTurns(t *testing.T) {
	cls := &stubClassifier{label: nli.Entailment}
	states := newMemStateStore()
	svc := NewConcessionService(cls, states, 2, zerolog.Nop())

	conv := testConv()
	states.turns[conv.ConversationID] = 1

	d := svc.CheckTurn(context.Background(), conv, "fine, remote work really does improve productivity")
	assert.False(t, d.Conceded, "one assistant turn is too early for a classifier verdict")
	assert.True(t, d.Checked)
	assert.Equal(t, TurnStanceChecked, d.State)

	states.turns[conv.ConversationID] = 2
	d = svc.CheckTurn(context.Background(), conv, "fine, remote work really does improve productivity")
	assert.True(t, d.Conceded)
	assert.Equal(t, TurnConcluded, d.State)
}

func TestCheckTurn_ExplicitAgreementIgnoresTurnGate(t *testing.T) {
	cls := &stubClassifier{label: nli.Neutral}
	states := newMemStateStore()
	svc := NewConcessionService(cls, states, 5, zerolog.Nop())

	d := svc.CheckTurn(context.Background(), testConv(), "alright, you win, I give up")
	assert.True(t, d.Conceded)
	assert.Equal(t, TurnConcluded, d.State)
}

func TestCheckTurn_RecordsTurnStates(t *testing.T) {
	cls := &stubClassifier{label: nli.Entailment}
	states := newMemStateStore()
	svc := NewConcessionService(cls, states, 0, zerolog.Nop())

	conv := testConv()
	svc.CheckTurn(context.Background(), conv, "you make a fair case, I concede the thesis")
	assert.Equal(t,
		[]TurnState{TurnPending, TurnStanceChecked, TurnConcluded},
		states.states[conv.ConversationID])
}
