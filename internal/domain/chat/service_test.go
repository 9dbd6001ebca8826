package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dentalcare/dentalcare/internal/platform/apperr"
	"github.com/dentalcare/dentalcare/internal/platform/auth"
	"github.com/dentalcare/dentalcare/internal/platform/inference"
)

type fixture struct {
	svc      *Service
	sessions *mockSessionRepo
	messages *mockMessageRepo
	llm      *fakeCompleter
	owner    auth.Identity
	session  *Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sessions := newMockSessionRepo()
	messages := newMockMessageRepo()
	llm := &fakeCompleter{reply: "Brush twice a day."}
	svc := NewService(sessions, messages, &mockTx{messages: messages}, llm, zerolog.Nop())

	sess, err := svc.CreateSession(context.Background(), 7, "Ada", "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{
		svc:      svc,
		sessions: sessions,
		messages: messages,
		llm:      llm,
		owner:    auth.Identity{Email: "a@x.com", UserID: 7, ChatSessionID: sess.ID},
		session:  sess,
	}
}

func TestCreateSession_Title(t *testing.T) {
	f := newFixture(t)
	if f.session.Title != "Ada's Chat Session" {
		t.Errorf("title = %q", f.session.Title)
	}
	if f.session.CreatedBy != "a@x.com" || f.session.UpdatedBy != "a@x.com" {
		t.Errorf("audit fields = %q/%q", f.session.CreatedBy, f.session.UpdatedBy)
	}

	got, err := f.svc.SessionForUser(context.Background(), 7)
	if err != nil || got.ID != f.session.ID {
		t.Errorf("SessionForUser = %v, %v", got, err)
	}
}

func TestTurn_PersistsUserRowsThenAssistant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msgs := []inference.Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi, how can I help?"},
		{Role: RoleUser, Content: "my gum bleeds"},
	}
	reply, err := f.svc.Turn(ctx, f.owner, f.session.ID, msgs)
	if err != nil {
		t.Fatalf("Turn: %v", err)
	}
	if reply.Role != RoleAssistant || reply.Content != "Brush twice a day." || reply.SessionID != f.session.ID {
		t.Errorf("unexpected reply: %+v", reply)
	}
	if reply.ID == 0 || reply.CreatedAt.IsZero() {
		t.Error("expected stored id and timestamp on reply")
	}
	if len(f.llm.got) != 3 {
		t.Errorf("model saw %d messages, want 3", len(f.llm.got))
	}

	history, err := f.svc.History(ctx, f.owner, f.session.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []struct{ role, content string }{
		{RoleUser, "hello"},
		{RoleUser, "my gum bleeds"},
		{RoleAssistant, "Brush twice a day."},
	}
	if len(history) != len(want) {
		t.Fatalf("history has %d rows, want %d", len(history), len(want))
	}
	for i, w := range want {
		if history[i].Role != w.role || history[i].Content != w.content {
			t.Errorf("history[%d] = %s/%q, want %s/%q", i, history[i].Role, history[i].Content, w.role, w.content)
		}
	}
	for i := 1; i < len(history); i++ {
		if history[i].CreatedAt.Before(history[i-1].CreatedAt) {
			t.Errorf("history out of order at %d", i)
		}
	}
}

func TestTurn_SystemPromptNotStored(t *testing.T) {
	f := newFixture(t)
	f.svc.SetSystemPrompt("You are a dental assistant.")

	_, err := f.svc.Turn(context.Background(), f.owner, f.session.ID, []inference.Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(f.llm.got) != 2 || f.llm.got[0].Role != RoleSystem {
		t.Fatalf("expected leading system message, got %+v", f.llm.got)
	}
	if f.messages.count() != 2 {
		t.Errorf("stored %d rows, want 2", f.messages.count())
	}
}

func TestTurn_UpstreamFailureStoresNothing(t *testing.T) {
	f := newFixture(t)
	f.llm.err = apperr.UpstreamUnavailable(errors.New("connection refused"))

	_, err := f.svc.Turn(context.Background(), f.owner, f.session.ID, []inference.Message{{Role: RoleUser, Content: "hi"}})
	if apperr.KindOf(err) != apperr.KindUpstreamUnavailable {
		t.Fatalf("expected UpstreamUnavailable, got %v", err)
	}
	if f.messages.count() != 0 {
		t.Errorf("stored %d rows after upstream failure", f.messages.count())
	}
}

func TestTurn_UnclassifiedUpstreamErrorIsWrapped(t *testing.T) {
	f := newFixture(t)
	f.llm.err = errors.New("boom")

	_, err := f.svc.Turn(context.Background(), f.owner, f.session.ID, []inference.Message{{Role: RoleUser, Content: "hi"}})
	if apperr.KindOf(err) != apperr.KindUpstreamUnavailable {
		t.Fatalf("expected UpstreamUnavailable, got %v", err)
	}
}

func TestTurn_PartialWriteRollsBack(t *testing.T) {
	f := newFixture(t)
	f.messages.failRole = RoleAssistant

	_, err := f.svc.Turn(context.Background(), f.owner, f.session.ID, []inference.Message{
		{Role: RoleUser, Content: "one"},
		{Role: RoleUser, Content: "two"},
	})
	if apperr.KindOf(err) != apperr.KindInternal {
		t.Fatalf("expected Internal, got %v", err)
	}
	if f.messages.count() != 0 {
		t.Errorf("user rows survived a failed turn: %d", f.messages.count())
	}
}

func TestTurn_ForeignSessionIsNotFound(t *testing.T) {
	f := newFixture(t)
	stranger := auth.Identity{Email: "b@x.com", UserID: 99}

	_, err := f.svc.Turn(context.Background(), stranger, f.session.ID, []inference.Message{{Role: RoleUser, Content: "hi"}})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if f.llm.got != nil {
		t.Error("model must not be called for a foreign session")
	}

	if _, err := f.svc.History(context.Background(), stranger, f.session.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("history: expected NotFound, got %v", err)
	}
}

func TestTurn_MissingSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Turn(context.Background(), f.owner, 404, []inference.Message{{Role: RoleUser, Content: "hi"}})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestTurn_Validation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		msgs []inference.Message
	}{
		{"empty", nil},
		{"bad role", []inference.Message{{Role: "tool", Content: "x"}}},
		{"empty content", []inference.Message{{Role: RoleUser}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Turn(context.Background(), f.owner, f.session.ID, tt.msgs)
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Errorf("expected Validation, got %v", err)
			}
		})
	}
}

func TestHistory_EmptyIsNotNil(t *testing.T) {
	f := newFixture(t)
	items, err := f.svc.History(context.Background(), f.owner, f.session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", items)
	}
}
