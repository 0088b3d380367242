package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"speakersite/internal/apperr"
	"speakersite/internal/config"
	"speakersite/internal/models"
	"speakersite/internal/storage"
	"speakersite/internal/worker"
)

// Completer is the part of an eino chat model the service needs.
type Completer interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Service owns conversations and produces grounded assistant replies.
type Service struct {
	store        *storage.Store
	llm          Completer
	turns        *worker.Dispatcher
	persona      Persona
	includeTalks bool
	historyLimit int
	log          *logrus.Logger
}

// NewService wires the chat flow. turns may be nil, in which case turns of
// one conversation are not serialized.
func NewService(store *storage.Store, llm Completer, turns *worker.Dispatcher, cfg config.ChatConfig, log *logrus.Logger) *Service {
	return &Service{
		store: store,
		llm:   llm,
		turns: turns,
		persona: Persona{
			OwnerName:     cfg.OwnerName,
			OwnerHeadline: cfg.OwnerHeadline,
		},
		includeTalks: cfg.IncludeTalks,
		historyLimit: cfg.HistoryLimit,
		log:          log,
	}
}

func (s *Service) CreateConversation(ctx context.Context, userID *int64, title string) (*models.Conversation, error) {
	if strings.TrimSpace(title) == "" {
		title = models.DefaultConversationTitle
	}
	conv, err := s.store.CreateConversation(ctx, userID, title)
	if err != nil {
		return nil, err
	}
	s.log.WithField("conversation_id", conv.ID).Debug("conversation created")
	return conv, nil
}

func (s *Service) ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	return s.store.ListConversations(ctx, userID)
}

// GetMessages returns the conversation log in creation order.
func (s *Service) GetMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	const op = "chat.GetMessages"
	if err := s.requireConversation(ctx, op, conversationID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, conversationID)
}

// SendMessage records the user's message, asks the model for a reply grounded
// in the portfolio records and the full history, records the reply and returns it.
// The user message stays recorded when the completion fails.
func (s *Service) SendMessage(ctx context.Context, conversationID int64, message string) (string, error) {
	const op = "chat.SendMessage"
	reply, err := s.sendMessage(ctx, conversationID, message)
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return "", apperr.E(apperr.CodeCanceled, op, "request canceled", err)
	}
	return reply, err
}

func (s *Service) sendMessage(ctx context.Context, conversationID int64, message string) (string, error) {
	const op = "chat.SendMessage"
	if strings.TrimSpace(message) == "" {
		return "", apperr.Invalid(op, "message must not be empty")
	}
	if err := s.requireConversation(ctx, op, conversationID); err != nil {
		return "", err
	}
	if s.turns == nil {
		return s.turn(ctx, conversationID, message)
	}

	var reply string
	err := s.turns.Submit(ctx, conversationID, func(ctx context.Context) error {
		var err error
		reply, err = s.turn(ctx, conversationID, message)
		return err
	})
	switch {
	case errors.Is(err, worker.ErrDispatcherBusy):
		return "", apperr.E(apperr.CodeBusy, op, "too many messages in flight, please retry", err)
	case err != nil:
		return "", err
	}
	return reply, nil
}

func (s *Service) turn(ctx context.Context, conversationID int64, message string) (string, error) {
	const op = "chat.SendMessage"
	logger := s.log.WithField("conversation_id", conversationID)

	if _, err := s.store.AddMessage(ctx, conversationID, models.RoleUser, message); err != nil {
		return "", err
	}

	reference, err := s.referenceText(ctx)
	if err != nil {
		return "", err
	}
	history, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return "", err
	}
	if s.historyLimit > 0 && len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}
	request, err := BuildRequest(ctx, s.persona, reference, history)
	if err != nil {
		return "", err
	}

	logger.WithField("history", len(history)).Debug("requesting completion")
	resp, err := s.llm.Generate(ctx, request)
	if err != nil {
		logger.WithError(err).Error("completion failed")
		return "", apperr.E(apperr.CodeUpstream, op, "completion failed", err)
	}
	reply := FallbackReply
	if resp != nil && resp.Content != "" {
		reply = resp.Content
	} else {
		logger.Warn("completion returned no text, using fallback reply")
	}

	if _, err := s.store.AddMessage(ctx, conversationID, models.RoleAssistant, reply); err != nil {
		return "", err
	}
	return reply, nil
}

func (s *Service) referenceText(ctx context.Context) (string, error) {
	portfolio, err := s.store.ListPortfolioContent(ctx)
	if err != nil {
		return "", err
	}
	var talks []models.Talk
	if s.includeTalks {
		if talks, err = s.store.ListTalks(ctx); err != nil {
			return "", err
		}
	}
	return ReferenceText(portfolio, talks), nil
}

func (s *Service) requireConversation(ctx context.Context, op string, conversationID int64) error {
	if conversationID <= 0 {
		return apperr.Invalid(op, "conversationId must be a positive integer")
	}
	if _, err := s.store.GetConversation(ctx, conversationID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound(op, "conversation not found")
		}
		return err
	}
	return nil
}
