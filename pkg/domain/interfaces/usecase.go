package interfaces

import (
	"context"

	"github.com/m-mizutani/loom/pkg/domain/model"
)

// TriggerUseCase defines the interface for trigger event processing
type TriggerUseCase interface {
	// ProcessEvent matches an event against the workflow triggers and, on a
	// match, expands the matrix into a run and executes it.
	ProcessEvent(ctx context.Context, event *model.TriggerEvent) (*model.Run, error)
}
