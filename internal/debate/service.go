package debate

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/suPer8Hu/debate-platform/internal/llm"
)

// Service is the debate orchestrator. It owns history assembly (including
// the one and only reversal from the store's newest-first order to
// chronological replay order), the expiry and history-limit policy, the
// concession check, and persistence of each turn's messages.
type Service struct {
	repo       *Repo
	provider   llm.Provider
	concession *ConcessionService
	states     StateStore

	// historyPairs limits provider input to the newest N user/bot pairs.
	// 0 means unbounded.
	historyPairs int
	// idleWindow expires a conversation after this much inactivity.
	// 0 disables expiry.
	idleWindow time.Duration

	log zerolog.Logger
	now func() time.Time
}

func NewService(repo *Repo, provider llm.Provider, concession *ConcessionService, states StateStore, historyPairs int, idleWindow time.Duration, log zerolog.Logger) *Service {
	if historyPairs < 0 {
		historyPairs = 0
	}
	return &Service{
		repo:         repo,
		provider:     provider,
		concession:   concession,
		states:       states,
		historyPairs: historyPairs,
		idleWindow:   idleWindow,
		log:          log,
		now:          time.Now,
	}
}

type StartResult struct {
	ConversationID string
	Thesis         string
	Difficulty     llm.Difficulty
	Reply          string
}

type TurnResult struct {
	ConversationID string
	Reply          string
	// MessageID is the stored bot message's id; zero on a conceding turn,
	// which produces no bot reply.
	MessageID uint64
	Conceded  bool
	// ConcessionChecked is false when the stance classifier was unavailable
	// and "not conceded" was assumed.
	ConcessionChecked bool
}

// Start creates a conversation from a first message carrying Topic/Side
// markers and produces the opening bot reply.
func (s *Service) Start(ctx context.Context, userID uint64, text, difficulty string) (*StartResult, error) {
	topic, side, err := ParseTopicSide(text)
	if err != nil {
		return nil, err
	}
	diff, ok := llm.ParseDifficulty(difficulty)
	if !ok {
		return nil, &DomainError{Kind: KindInvalidMessage, Msg: "difficulty must be easy, medium or hard"}
	}

	conv := &Conversation{
		ConversationID: NewConversationID(),
		UserID:         userID,
		Thesis:         BuildThesis(topic, side),
		Side:           side,
		Difficulty:     string(diff),
		Status:         StatusActive,
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}

	userMsg := &Message{ConversationID: conv.ConversationID, UserID: userID, Author: AuthorUser, Text: text}
	if err := s.repo.InsertMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	reply, err := s.provider.GenerateReply(ctx, []llm.Message{{Role: llm.RoleUser, Content: text}}, diff, conv.Thesis)
	if err != nil {
		return nil, err
	}

	botMsg := &Message{ConversationID: conv.ConversationID, UserID: userID, Author: AuthorBot, Text: reply}
	if err := s.repo.InsertMessage(ctx, botMsg); err != nil {
		return nil, err
	}
	s.incrAssistantTurns(ctx, conv.ConversationID)

	s.log.Info().
		Str("conversation_id", conv.ConversationID).
		Str("difficulty", string(diff)).
		Str("side", side).
		Msg("debate started")

	return &StartResult{
		ConversationID: conv.ConversationID,
		Thesis:         conv.Thesis,
		Difficulty:     diff,
		Reply:          reply,
	}, nil
}

// Continue handles one user turn of an existing debate: closed/expired
// checks, concession check, then reply generation. The concession check
// always precedes the provider call so a conceding turn costs no provider
// usage. Nothing is stored until the turn has an outcome: a provider
// failure leaves the conversation exactly as it was, so the same turn can
// simply be retried.
func (s *Service) Continue(ctx context.Context, userID uint64, conversationID, text string) (*TurnResult, error) {
	conv, err := s.loadOwned(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	if conv.Status != StatusActive {
		return nil, &DomainError{Kind: KindConversationClosed, Msg: AfterEndMessage}
	}
	if s.expired(conv) {
		// Best-effort transition; a concurrent close leaves the status
		// terminal either way.
		if _, err := s.repo.UpdateStatus(ctx, conv.ConversationID, StatusActive, StatusExpired); err != nil {
			return nil, err
		}
		return nil, &DomainError{Kind: KindConversationClosed, Msg: AfterEndMessage}
	}

	if err := AssertNoMarkers(text); err != nil {
		return nil, err
	}

	decision := s.concession.CheckTurn(ctx, conv, text)
	if decision.Conceded {
		userMsg := &Message{ConversationID: conv.ConversationID, UserID: userID, Author: AuthorUser, Text: text}
		if err := s.repo.InsertMessage(ctx, userMsg); err != nil {
			return nil, err
		}
		if err := s.repo.Touch(ctx, conv.ConversationID); err != nil {
			return nil, err
		}
		flipped, err := s.repo.UpdateStatus(ctx, conv.ConversationID, StatusActive, StatusConceded)
		if err != nil {
			return nil, err
		}
		if !flipped {
			return nil, &DomainError{Kind: KindConversationClosed, Msg: AfterEndMessage}
		}
		s.log.Info().Str("conversation_id", conv.ConversationID).Msg("user conceded")
		return &TurnResult{
			ConversationID:    conv.ConversationID,
			Reply:             ConcededVerdict,
			Conceded:          true,
			ConcessionChecked: decision.Checked,
		}, nil
	}

	history, err := s.loadHistory(ctx, conv.ConversationID, text)
	if err != nil {
		return nil, err
	}

	reply, err := s.provider.GenerateReply(ctx, history, llm.Difficulty(conv.Difficulty), conv.Thesis)
	if err != nil {
		return nil, err
	}

	userMsg := &Message{ConversationID: conv.ConversationID, UserID: userID, Author: AuthorUser, Text: text}
	botMsg := &Message{ConversationID: conv.ConversationID, UserID: userID, Author: AuthorBot, Text: reply}
	if err := s.repo.InsertTurnMessages(ctx, userMsg, botMsg); err != nil {
		return nil, err
	}
	if err := s.repo.Touch(ctx, conv.ConversationID); err != nil {
		return nil, err
	}
	s.incrAssistantTurns(ctx, conv.ConversationID)

	return &TurnResult{
		ConversationID:    conv.ConversationID,
		Reply:             reply,
		MessageID:         botMsg.ID,
		ConcessionChecked: decision.Checked,
	}, nil
}

// EnqueueTurn records an async turn without running it. The worker picks it
// up and calls ProcessJob.
func (s *Service) EnqueueTurn(ctx context.Context, userID uint64, conversationID, text string, idempotencyKey *string) (*Job, bool, error) {
	if _, err := s.loadOwned(ctx, userID, conversationID); err != nil {
		return nil, false, err
	}
	if err := AssertNoMarkers(text); err != nil {
		return nil, false, err
	}
	job := &Job{
		ID:             NewJobID(),
		UserID:         userID,
		ConversationID: conversationID,
		Text:           text,
		IdempotencyKey: idempotencyKey,
		Status:         JobQueued,
	}
	return s.repo.CreateJobOrGetExisting(ctx, job)
}

func (s *Service) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return s.repo.GetJobByID(ctx, jobID)
}

// ProcessJob runs a queued turn end to end. Domain and provider failures
// mark the job failed and are not returned, so the caller acks instead of
// requeueing; only store failures propagate.
func (s *Service) ProcessJob(ctx context.Context, jobID string) error {
	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status == JobSucceeded || job.Status == JobFailed {
		return nil
	}
	if err := s.repo.UpdateJobStatusRunning(ctx, job.ID); err != nil {
		return err
	}

	res, err := s.Continue(ctx, job.UserID, job.ConversationID, job.Text)
	if err != nil {
		s.log.Warn().Str("job_id", job.ID).Err(err).Msg("async turn failed")
		return s.repo.MarkJobFailed(ctx, job.ID, err.Error())
	}

	var msgID *uint64
	if res.MessageID > 0 {
		msgID = &res.MessageID
	}
	return s.repo.MarkJobSucceeded(ctx, job.ID, msgID)
}

// ListMessages returns a newest-first history page for the API.
func (s *Service) ListMessages(ctx context.Context, userID uint64, conversationID string, limit int, beforeID uint64) ([]Message, error) {
	if _, err := s.loadOwned(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListMessages(ctx, conversationID, limit, beforeID)
}

func (s *Service) loadOwned(ctx context.Context, userID uint64, conversationID string) (*Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return conv, nil
}

func (s *Service) expired(conv *Conversation) bool {
	if s.idleWindow <= 0 {
		return false
	}
	return s.now().Sub(conv.UpdatedAt) > s.idleWindow
}

// loadHistory assembles provider input: fetch newest-first from the store,
// reverse to chronological order, validate alternation, truncate to whole
// pairs, then append the turn's pending user message. No other component
// may re-derive this ordering. The pending message is in-memory only; it
// is stored once the turn succeeds, so the stored history always ends on
// a bot message.
func (s *Service) loadHistory(ctx context.Context, conversationID, userText string) ([]llm.Message, error) {
	limit := 0
	if s.historyPairs > 0 {
		limit = s.historyPairs * 2
	}
	desc, err := s.repo.ListRecentMessagesDesc(ctx, conversationID, limit)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(desc)+1)
	for i := len(desc) - 1; i >= 0; i-- {
		m := desc[i]
		role := llm.RoleUser
		if m.Author == AuthorBot {
			role = llm.RoleBot
		}
		history = append(history, llm.Message{Role: role, Content: m.Text})
	}

	if err := validateAlternation(history); err != nil {
		return nil, err
	}
	history = truncatePairs(history, s.historyPairs)
	return append(history, llm.Message{Role: llm.RoleUser, Content: userText}), nil
}

func validateAlternation(history []llm.Message) error {
	for i := 1; i < len(history); i++ {
		if history[i].Role == history[i-1].Role {
			return &DomainError{Kind: KindMalformedHistory, Msg: "messages must alternate between user and bot"}
		}
	}
	return nil
}

// truncatePairs keeps the newest maxPairs user/bot pairs plus any trailing
// unpaired user message. Pairs are never split; maxPairs <= 0 means
// unbounded.
func truncatePairs(history []llm.Message, maxPairs int) []llm.Message {
	if maxPairs <= 0 {
		return history
	}
	paired := history
	var trailing []llm.Message
	if len(paired)%2 == 1 {
		trailing = paired[len(paired)-1:]
		paired = paired[:len(paired)-1]
	}
	if len(paired) > maxPairs*2 {
		paired = paired[len(paired)-maxPairs*2:]
	}
	out := make([]llm.Message, 0, len(paired)+len(trailing))
	out = append(out, paired...)
	out = append(out, trailing...)
	return out
}

func (s *Service) incrAssistantTurns(ctx context.Context, conversationID string) {
	if s.states == nil {
		return
	}
	if _, err := s.states.IncrAssistantTurns(ctx, conversationID); err != nil {
		s.log.Debug().Err(err).Str("conversation_id", conversationID).Msg("assistant turn counter write failed")
	}
}
