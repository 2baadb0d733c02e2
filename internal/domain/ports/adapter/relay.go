package adapter

import (
	"context"

	"agent-promosi/internal/domain/model"
)

// Relay forwards one user message to the external workflow and returns what
// should be shown. Failures are reported through RelayResult.OK, never as errors.
type Relay interface {
	Send(ctx context.Context, message string) model.RelayResult
}
