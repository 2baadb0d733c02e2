package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// IdleEvicter is satisfied by usecase.ConversationUseCase.
type IdleEvicter interface {
	EvictIdle(ctx context.Context, idleFor time.Duration) int
}

// ConversationEvictor periodically drops chat widgets that were abandoned
// without being closed.
type ConversationEvictor struct {
	interval time.Duration
	idleFor  time.Duration
	convs    IdleEvicter
	log      *zerolog.Logger
}

func NewConversationEvictor(interval, idleFor time.Duration, convs IdleEvicter, logger *zerolog.Logger) *ConversationEvictor {
	if interval <= 0 {
		interval = time.Minute
	}
	evLog := logger.With().Str("component", "ConversationEvictor").Logger()
	return &ConversationEvictor{
		interval: interval,
		idleFor:  idleFor,
		convs:    convs,
		log:      &evLog,
	}
}

func (w *ConversationEvictor) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("idle_for", w.idleFor).Msg("Starting conversation evictor")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping conversation evictor")
			return ctx.Err()
		case <-ticker.C:
			w.convs.EvictIdle(ctx, w.idleFor)
		}
	}
}
