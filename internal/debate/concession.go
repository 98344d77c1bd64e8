package debate

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/suPer8Hu/debate-platform/internal/nli"
)

// TurnState tracks where a single turn is in the win-condition check.
type TurnState string

const (
	TurnPending       TurnState = "pending"
	TurnStanceChecked TurnState = "user_stance_checked"
	TurnConcluded     TurnState = "concluded"
)

// StateStore persists per-conversation turn state and counters outside the
// request lifetime. A nil store is tolerated everywhere.
type StateStore interface {
	SetTurnState(ctx context.Context, conversationID string, state TurnState) error
	IncrAssistantTurns(ctx context.Context, conversationID string) (int64, error)
	AssistantTurns(ctx context.Context, conversationID string) (int64, error)
}

// Agreement phrases that signal an explicit concession regardless of what
// the classifier thinks.
var ackPhrases = []string{
	"i concede",
	"i give up",
	"you win",
	"you've convinced me",
	"you have convinced me",
}

// minClassifyWords guards the classifier against one-word turns that NLI
// models score unreliably.
const minClassifyWords = 3

// TurnDecision is the outcome of the win-condition check for one user turn.
type TurnDecision struct {
	State    TurnState
	Conceded bool
	// Checked is false when the classifier was unavailable or skipped, so
	// "not conceded" was assumed rather than judged.
	Checked bool
	Label   nli.Label
}

// ConcessionService decides, after each user turn, whether the user has
// conceded the thesis. It treats the classifier as authoritative and never
// retries it; a classifier failure degrades to "not conceded" so a stance
// outage slows win detection instead of blocking replies.
type ConcessionService struct {
	classifier nli.Classifier
	states     StateStore

	// minAssistantTurns gates classifier verdicts: the bot must have argued
	// at least this many turns before an entailment can end the debate.
	// Explicit agreement phrases are never gated. 0 disables the gate.
	minAssistantTurns int

	log zerolog.Logger
}

func NewConcessionService(classifier nli.Classifier, states StateStore, minAssistantTurns int, log zerolog.Logger) *ConcessionService {
	if minAssistantTurns < 0 {
		minAssistantTurns = 0
	}
	return &ConcessionService{classifier: classifier, states: states, minAssistantTurns: minAssistantTurns, log: log}
}

// CheckTurn runs strictly before any provider call for the turn.
func (s *ConcessionService) CheckTurn(ctx context.Context, conv *Conversation, userText string) TurnDecision {
	s.setState(ctx, conv.ConversationID, TurnPending)

	decision := TurnDecision{State: TurnPending}

	if s.classifier != nil && wordCount(userText) >= minClassifyWords {
		res, err := s.classifier.Classify(ctx, userText, conv.Thesis)
		if err != nil {
			s.log.Warn().
				Str("conversation_id", conv.ConversationID).
				Err(err).
				Msg("concession check unavailable, assuming not conceded")
		} else {
			decision.Checked = true
			decision.Label = res.Label
			decision.State = TurnStanceChecked
			s.setState(ctx, conv.ConversationID, TurnStanceChecked)
			if res.Label == nli.Entailment && s.verdictAllowed(ctx, conv.ConversationID) {
				decision.Conceded = true
			}
		}
	}

	if !decision.Conceded && hasExplicitAgreement(userText) {
		decision.Conceded = true
	}

	if decision.Conceded {
		decision.State = TurnConcluded
		s.setState(ctx, conv.ConversationID, TurnConcluded)
	}
	return decision
}

// verdictAllowed reports whether enough assistant turns have passed for a
// classifier verdict to conclude the debate. An unreadable counter never
// blocks the verdict.
func (s *ConcessionService) verdictAllowed(ctx context.Context, conversationID string) bool {
	if s.minAssistantTurns <= 0 || s.states == nil {
		return true
	}
	n, err := s.states.AssistantTurns(ctx, conversationID)
	if err != nil {
		s.log.Debug().Err(err).Str("conversation_id", conversationID).Msg("assistant turn counter read failed")
		return true
	}
	return n >= int64(s.minAssistantTurns)
}

func (s *ConcessionService) setState(ctx context.Context, conversationID string, state TurnState) {
	if s.states == nil {
		return
	}
	if err := s.states.SetTurnState(ctx, conversationID, state); err != nil {
		s.log.Debug().Err(err).Str("conversation_id", conversationID).Msg("turn state write failed")
	}
}

func hasExplicitAgreement(text string) bool {
	norm := strings.ToLower(strings.TrimSpace(text))
	for _, phrase := range ackPhrases {
		if strings.Contains(norm, phrase) {
			return true
		}
	}
	return false
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// ConcededVerdict is the terminal signal returned instead of a bot reply
// when the user concedes.
const ConcededVerdict = "You conceded the debate. Start a new conversation if you want to argue another topic."

// AfterEndMessage is shown when a turn arrives for an already-closed
// conversation.
const AfterEndMessage = "The debate has already ended. Please start a new conversation if you want to debate another topic."
