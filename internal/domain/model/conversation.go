package model

import (
	"strings"
	"time"

	"agent-promosi/internal/domain"
)

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one turn of a conversation. It is never edited after being appended.
type Message struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// ConversationState is the turn-taking state of a conversation.
//
//	submit:  Idle     -> Awaiting
//	resolve: Awaiting -> Idle
type ConversationState int

const (
	StateIdle ConversationState = iota
	StateAwaiting
)

func (s ConversationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaiting:
		return "awaiting"
	default:
		return "unknown"
	}
}

// Conversation is the append-only message log of one chat widget.
// It is not safe for concurrent use; callers serialize access.
type Conversation struct {
	ID        string
	OwnerID   string
	State     ConversationState
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewConversation(id, ownerID string, now time.Time) *Conversation {
	return &Conversation{
		ID:        id,
		OwnerID:   ownerID,
		State:     StateIdle,
		Messages:  make([]Message, 0, 8),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Submit appends a user message and moves the conversation to Awaiting.
// Blank text and submissions while Awaiting are rejected without touching the log.
func (c *Conversation) Submit(text string, now time.Time) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, domain.ErrEmptyMessage
	}
	if c.State == StateAwaiting {
		return Message{}, domain.ErrAwaitingReply
	}
	m := Message{Role: RoleUser, Text: text, At: now}
	c.Messages = append(c.Messages, m)
	c.State = StateAwaiting
	c.UpdatedAt = now
	return m, nil
}

// Resolve appends the bot reply for the outstanding turn and returns to Idle.
// It reports false when there is no outstanding turn.
func (c *Conversation) Resolve(text string, now time.Time) (Message, bool) {
	if c.State != StateAwaiting {
		return Message{}, false
	}
	m := Message{Role: RoleBot, Text: text, At: now}
	c.Messages = append(c.Messages, m)
	c.State = StateIdle
	c.UpdatedAt = now
	return m, true
}

func (c *Conversation) Awaiting() bool { return c.State == StateAwaiting }

// Transcript returns a copy safe to hand to views.
func (c *Conversation) Transcript() Transcript {
	msgs := make([]Message, len(c.Messages))
	copy(msgs, c.Messages)
	return Transcript{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Messages:  msgs,
		Awaiting:  c.Awaiting(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Transcript is the observable state of a conversation: messages oldest first
// plus the awaiting-response flag.
type Transcript struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Messages  []Message `json:"messages"`
	Awaiting  bool      `json:"awaiting"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
