package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"agent-promosi/internal/config"
	"agent-promosi/internal/domain"
	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/domain/ports/adapter"
	"agent-promosi/internal/infra/logging"
	"agent-promosi/internal/infra/metrics"
	red "agent-promosi/internal/infra/redis"
	"agent-promosi/internal/infra/worker"
)

// Compile-time check
var _ ConversationUseCase = (*conversationUC)(nil)

// ConversationUseCase keeps one Conversation per open chat widget, in memory only.
type ConversationUseCase interface {
	Open(ctx context.Context, ownerID string) (model.Transcript, error)
	Get(ctx context.Context, ownerID, id string) (model.Transcript, error)
	// Send appends the user message synchronously and relays it in the background.
	// The returned transcript is already Awaiting.
	Send(ctx context.Context, ownerID, id, text string) (model.Transcript, error)
	Watch(ctx context.Context, ownerID, id string) (<-chan model.Transcript, func(), error)
	Close(ctx context.Context, ownerID, id string) error
	EvictIdle(ctx context.Context, idleFor time.Duration) int
}

// Texts supplies user-facing messages; *i18n.Translator satisfies it.
type Texts interface {
	T(key string, args ...interface{}) string
}

type TaskSubmitter interface {
	Submit(task worker.Task) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type conversationUC struct {
	mu      sync.RWMutex
	convs   map[string]*Conversation
	relay   adapter.Relay
	pool    TaskSubmitter
	limiter RateLimiter
	texts   Texts
	cfg     config.ChatConfig
	log     *zerolog.Logger
	now     func() time.Time
}

// NewConversationUseCase wires the registry. limiter may be nil to disable rate limiting.
func NewConversationUseCase(relay adapter.Relay, pool TaskSubmitter, limiter RateLimiter, texts Texts, cfg config.ChatConfig, logger *zerolog.Logger) *conversationUC {
	if logger == nil {
		logger = logging.Nop()
	}
	return &conversationUC{
		convs:   make(map[string]*Conversation),
		relay:   relay,
		pool:    pool,
		limiter: limiter,
		texts:   texts,
		cfg:     cfg,
		log:     logger,
		now:     time.Now,
	}
}

func (uc *conversationUC) Open(ctx context.Context, ownerID string) (model.Transcript, error) {
	if ownerID == "" {
		return model.Transcript{}, domain.ErrInvalidArgument
	}
	id := ulid.Make().String()
	c := newConversationAt(id, ownerID, uc.relay, uc.now)

	uc.mu.Lock()
	uc.convs[id] = c
	n := len(uc.convs)
	uc.mu.Unlock()

	metrics.SetConversationsActive(n)
	logging.With(logging.WithConversationID(ctx, id), uc.log).Debug().Msg("conversation opened")
	return c.Snapshot(), nil
}

func (uc *conversationUC) lookup(ownerID, id string) (*Conversation, error) {
	uc.mu.RLock()
	c, ok := uc.convs[id]
	uc.mu.RUnlock()
	if !ok || c.OwnerID() != ownerID {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (uc *conversationUC) Get(ctx context.Context, ownerID, id string) (model.Transcript, error) {
	c, err := uc.lookup(ownerID, id)
	if err != nil {
		return model.Transcript{}, err
	}
	return c.Snapshot(), nil
}

func (uc *conversationUC) Send(ctx context.Context, ownerID, id, text string) (model.Transcript, error) {
	c, err := uc.lookup(ownerID, id)
	if err != nil {
		return model.Transcript{}, err
	}
	log := logging.With(logging.WithConversationID(ctx, id), uc.log)

	// blank input is a no-op and must not count against the rate limit
	if strings.TrimSpace(text) == "" {
		metrics.IncChatMessage("empty")
		return c.Snapshot(), domain.ErrEmptyMessage
	}

	if uc.limiter != nil && uc.cfg.RateLimit > 0 && !c.Awaiting() {
		ok, err := uc.limiter.Allow(ctx, red.ChatKey(ownerID), uc.cfg.RateLimit, uc.cfg.RateLimitWindow)
		if err != nil {
			// fail open
			log.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			metrics.IncChatRateLimited()
			return c.Snapshot(), domain.ErrRateLimited
		}
	}

	m, err := c.Begin(text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyMessage):
			metrics.IncChatMessage("empty")
		case errors.Is(err, domain.ErrAwaitingReply):
			metrics.IncChatMessage("awaiting")
		}
		return c.Snapshot(), err
	}

	traceID := logging.TraceID(ctx)
	task := func(wctx context.Context) error {
		wctx = logging.WithConversationID(logging.WithUserID(logging.WithTraceID(wctx, traceID), ownerID), id)
		c.Resolve(uc.relay.Send(wctx, m.Text))
		return nil
	}
	if err := uc.pool.Submit(task); err != nil {
		// the turn must still resolve, or the widget stays locked
		log.Warn().Err(err).Msg("relay task rejected")
		metrics.IncChatMessage("busy")
		metrics.ObserveRelay("busy", 0)
		c.Resolve(model.RelayResult{OK: false, Text: uc.texts.T("relay.busy")})
		return c.Snapshot(), nil
	}
	metrics.IncChatMessage("accepted")
	log.Debug().Int("chars", len([]rune(m.Text))).Msg("message accepted")
	return c.Snapshot(), nil
}

func (uc *conversationUC) Watch(ctx context.Context, ownerID, id string) (<-chan model.Transcript, func(), error) {
	c, err := uc.lookup(ownerID, id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := c.Watch()
	return ch, cancel, nil
}

func (uc *conversationUC) Close(ctx context.Context, ownerID, id string) error {
	c, err := uc.lookup(ownerID, id)
	if err != nil {
		return err
	}
	uc.remove(id)
	c.Close()
	return nil
}

// EvictIdle drops conversations untouched for idleFor. Awaiting ones are kept
// until their reply lands.
func (uc *conversationUC) EvictIdle(ctx context.Context, idleFor time.Duration) int {
	cutoff := uc.now().Add(-idleFor)
	var stale []*Conversation

	uc.mu.RLock()
	for _, c := range uc.convs {
		if !c.Awaiting() && c.LastActive().Before(cutoff) {
			stale = append(stale, c)
		}
	}
	uc.mu.RUnlock()

	for _, c := range stale {
		uc.remove(c.ID())
		c.Close()
	}
	if len(stale) > 0 {
		metrics.AddConversationsEvicted(len(stale))
		uc.log.Info().Int("evicted", len(stale)).Dur("idle_for", idleFor).Msg("evicted idle conversations")
	}
	return len(stale)
}

func (uc *conversationUC) remove(id string) {
	uc.mu.Lock()
	delete(uc.convs, id)
	n := len(uc.convs)
	uc.mu.Unlock()
	metrics.SetConversationsActive(n)
}
