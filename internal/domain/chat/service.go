package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dentalcare/dentalcare/internal/platform/apperr"
	"github.com/dentalcare/dentalcare/internal/platform/auth"
	"github.com/dentalcare/dentalcare/internal/platform/db"
	"github.com/dentalcare/dentalcare/internal/platform/inference"
)

// Completer produces the assistant reply for a transcript.
type Completer interface {
	Chat(ctx context.Context, messages []inference.Message) (string, error)
}

type Service struct {
	sessions     SessionRepository
	messages     MessageRepository
	tx           db.Transactor
	llm          Completer
	systemPrompt string
	logger       zerolog.Logger
}

func NewService(sessions SessionRepository, messages MessageRepository, tx db.Transactor, llm Completer, logger zerolog.Logger) *Service {
	return &Service{
		sessions: sessions,
		messages: messages,
		tx:       tx,
		llm:      llm,
		logger:   logger.With().Str("component", "chat").Logger(),
	}
}

// SetSystemPrompt configures a leading system message sent with every turn.
// It is never stored.
func (s *Service) SetSystemPrompt(p string) { s.systemPrompt = p }

// CreateSession opens the session owned by a newly registered user. Callers
// run it inside the signup transaction.
func (s *Service) CreateSession(ctx context.Context, userID int64, firstName, email string) (*Session, error) {
	sess := &Session{
		UserID:    userID,
		Title:     SessionTitle(firstName),
		CreatedBy: email,
		UpdatedBy: email,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SessionForUser returns the session created at signup.
func (s *Service) SessionForUser(ctx context.Context, userID int64) (*Session, error) {
	return s.sessions.GetByUserID(ctx, userID)
}

// Turn relays msgs to the model and stores the exchange: one row per
// user-role message followed by the assistant reply, all in one
// transaction. Nothing is stored when the model call fails.
func (s *Service) Turn(ctx context.Context, id auth.Identity, sessionID int64, msgs []inference.Message) (*Message, error) {
	if err := validateTranscript(msgs); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, id, sessionID); err != nil {
		return nil, err
	}

	transcript := msgs
	if s.systemPrompt != "" && msgs[0].Role != RoleSystem {
		transcript = make([]inference.Message, 0, len(msgs)+1)
		transcript = append(transcript, inference.Message{Role: RoleSystem, Content: s.systemPrompt})
		transcript = append(transcript, msgs...)
	}

	reply, err := s.llm.Chat(ctx, transcript)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindUpstreamUnavailable {
			err = apperr.UpstreamUnavailable(err)
		}
		s.logger.Warn().Err(err).Int64("session_id", sessionID).Msg("chat turn failed upstream")
		return nil, err
	}

	assistant := &Message{Role: RoleAssistant, Content: reply, SessionID: sessionID}
	stored := 0
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		for _, m := range msgs {
			if m.Role != RoleUser {
				continue
			}
			if err := s.messages.Create(ctx, &Message{Role: RoleUser, Content: m.Content, SessionID: sessionID}); err != nil {
				return fmt.Errorf("save user message: %w", err)
			}
			stored++
		}
		if err := s.messages.Create(ctx, assistant); err != nil {
			return fmt.Errorf("save assistant message: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("session_id", sessionID).Msg("persist chat turn")
		return nil, apperr.Internal(err)
	}

	s.logger.Info().
		Int64("session_id", sessionID).
		Int("user_messages", stored).
		Int64("assistant_message_id", assistant.ID).
		Msg("chat turn stored")
	return assistant, nil
}

// History returns every stored message of the session, oldest first.
func (s *Service) History(ctx context.Context, id auth.Identity, sessionID int64) ([]*Message, error) {
	if err := s.authorize(ctx, id, sessionID); err != nil {
		return nil, err
	}
	items, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Message{}
	}
	return items, nil
}

// authorize hides sessions owned by other users behind NotFound.
func (s *Service) authorize(ctx context.Context, id auth.Identity, sessionID int64) error {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.UserID != id.UserID {
		s.logger.Warn().
			Int64("session_id", sessionID).
			Int64("user_id", id.UserID).
			Msg("session not owned by caller")
		return apperr.NotFound("chat session")
	}
	return nil
}

func validateTranscript(msgs []inference.Message) error {
	if len(msgs) == 0 {
		return apperr.Validation(map[string]string{"messages": "at least one message is required"})
	}
	fields := map[string]string{}
	for i, m := range msgs {
		switch m.Role {
		case RoleUser, RoleAssistant, RoleSystem:
		default:
			fields[fmt.Sprintf("messages[%d].role", i)] = "must be one of: user assistant system"
		}
		if m.Content == "" {
			fields[fmt.Sprintf("messages[%d].content", i)] = "is required"
		}
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}
