package usecase

import (
	"context"
	"sync"
	"time"

	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/domain/ports/adapter"
)

// Conversation is one chat widget's live state: the message log, the awaiting
// flag and the relay it talks to. All methods are safe for concurrent use.
type Conversation struct {
	mu       sync.Mutex
	state    *model.Conversation
	relay    adapter.Relay
	now      func() time.Time
	watchers map[int]chan model.Transcript
	nextID   int
	closed   bool
}

func NewConversation(id, ownerID string, relay adapter.Relay) *Conversation {
	return newConversationAt(id, ownerID, relay, time.Now)
}

func newConversationAt(id, ownerID string, relay adapter.Relay, now func() time.Time) *Conversation {
	return &Conversation{
		state:    model.NewConversation(id, ownerID, now()),
		relay:    relay,
		now:      now,
		watchers: make(map[int]chan model.Transcript),
	}
}

func (c *Conversation) ID() string      { return c.state.ID }
func (c *Conversation) OwnerID() string { return c.state.OwnerID }

// Begin appends the user's message and enters Awaiting. It returns
// domain.ErrEmptyMessage or domain.ErrAwaitingReply without changing anything.
func (c *Conversation) Begin(text string) (model.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := c.state.Submit(text, c.now())
	if err != nil {
		return model.Message{}, err
	}
	c.notifyLocked()
	return m, nil
}

// Resolve appends the bot reply for the outstanding turn. It is ignored while Idle.
func (c *Conversation) Resolve(res model.RelayResult) (model.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.state.Resolve(res.Text, c.now())
	if ok {
		c.notifyLocked()
	}
	return m, ok
}

// Submit runs a whole turn synchronously: Begin, relay, Resolve. It reports
// false for the no-op cases, in which case no relay call is made.
func (c *Conversation) Submit(ctx context.Context, text string) (model.RelayResult, bool) {
	m, err := c.Begin(text)
	if err != nil {
		return model.RelayResult{}, false
	}
	res := c.relay.Send(ctx, m.Text)
	c.Resolve(res)
	return res, true
}

// Snapshot returns a copy of the observable state.
func (c *Conversation) Snapshot() model.Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Transcript()
}

func (c *Conversation) Awaiting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Awaiting()
}

// LastActive is the time of the last appended message or creation.
func (c *Conversation) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.UpdatedAt
}

// Watch streams a snapshot after every change. Slow readers only ever see
// the latest snapshot. The channel is closed by cancel or Close.
func (c *Conversation) Watch() (<-chan model.Transcript, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan model.Transcript, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextID
	c.nextID++
	c.watchers[id] = ch
	ch <- c.state.Transcript()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if w, ok := c.watchers[id]; ok {
				delete(c.watchers, id)
				close(w)
			}
		})
	}
}

// Close ends all watches. A pending relay call may still resolve afterwards.
func (c *Conversation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, w := range c.watchers {
		delete(c.watchers, id)
		close(w)
	}
}

func (c *Conversation) notifyLocked() {
	snap := c.state.Transcript()
	for _, w := range c.watchers {
		select {
		case <-w:
		default:
		}
		w <- snap
	}
}
