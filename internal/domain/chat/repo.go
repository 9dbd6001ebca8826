package chat

import "context"

type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id int64) (*Session, error)
	GetByUserID(ctx context.Context, userID int64) (*Session, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	// ListBySession returns messages oldest first; id breaks timestamp ties.
	ListBySession(ctx context.Context, sessionID int64) ([]*Message, error)
}
