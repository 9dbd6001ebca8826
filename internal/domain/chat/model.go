package chat

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Session maps to the chat_sessions table. Each user owns one, created at
// signup.
type Session struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Title     string    `db:"title" json:"title"`
	CreatedBy string    `db:"created_by" json:"createdBy"`
	UpdatedBy string    `db:"updated_by" json:"updatedBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Message maps to the chat_messages table. Rows are immutable.
type Message struct {
	ID        int64     `db:"id" json:"id"`
	Role      string    `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	SessionID int64     `db:"session_id" json:"sessionId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func SessionTitle(firstName string) string {
	return firstName + "'s Chat Session"
}
