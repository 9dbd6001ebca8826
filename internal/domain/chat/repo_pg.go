package chat

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentalcare/dentalcare/internal/platform/apperr"
	"github.com/dentalcare/dentalcare/internal/platform/db"
)

// -- Sessions --

type sessionRepoPG struct{ pool *pgxpool.Pool }

func NewSessionRepoPG(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepoPG{pool: pool}
}

func (r *sessionRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const sessionCols = `id, user_id, title, created_by, updated_by, created_at, updated_at`

func (r *sessionRepoPG) scanRow(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedBy, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("chat session")
		}
		return nil, fmt.Errorf("scan chat session: %w", err)
	}
	return &s, nil
}

func (r *sessionRepoPG) Create(ctx context.Context, s *Session) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO chat_sessions (user_id, title, created_by, updated_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		s.UserID, s.Title, s.CreatedBy, s.UpdatedBy,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert chat session: %w", err)
	}
	return nil
}

func (r *sessionRepoPG) GetByID(ctx context.Context, id int64) (*Session, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+sessionCols+` FROM chat_sessions WHERE id = $1`, id))
}

func (r *sessionRepoPG) GetByUserID(ctx context.Context, userID int64) (*Session, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sessionCols+` FROM chat_sessions WHERE user_id = $1 ORDER BY id ASC LIMIT 1`, userID))
}

// -- Messages --

type messageRepoPG struct{ pool *pgxpool.Pool }

func NewMessageRepoPG(pool *pgxpool.Pool) MessageRepository {
	return &messageRepoPG{pool: pool}
}

func (r *messageRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *messageRepoPG) Create(ctx context.Context, m *Message) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO chat_messages (session_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		m.SessionID, m.Role, m.Content,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

func (r *messageRepoPG) ListBySession(ctx context.Context, sessionID int64) ([]*Message, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, role, content, session_id, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	items := make([]*Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.SessionID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		items = append(items, &m)
	}
	return items, rows.Err()
}
