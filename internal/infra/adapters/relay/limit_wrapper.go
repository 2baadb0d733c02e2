package relay

import (
	"context"

	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/domain/ports/adapter"
	"agent-promosi/internal/infra/metrics"
)

// Compile-time check
var _ adapter.Relay = (*limitedRelay)(nil)

type limitedRelay struct {
	inner adapter.Relay
	sem   chan struct{}
	texts Texts
}

// NewLimitedRelay caps concurrent outbound calls. A caller whose context ends
// while waiting for a slot gets the "busy" result instead of blocking.
func NewLimitedRelay(inner adapter.Relay, maxConcurrent int, texts Texts) adapter.Relay {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedRelay{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
		texts: texts,
	}
}

func (l *limitedRelay) Send(ctx context.Context, message string) model.RelayResult {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		metrics.ObserveRelay("busy", 0)
		return model.RelayResult{OK: false, Text: l.texts.T("relay.busy")}
	}
	metrics.AddRelayInFlight(1)
	defer func() {
		metrics.AddRelayInFlight(-1)
		<-l.sem
	}()
	return l.inner.Send(ctx, message)
}
