package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/namerhq/namer-engine/pkg/services/workqueue"
)

// LogoTask renders one logo batch on the work queue. Terminal status
// bookkeeping happens inside LogoService.Run; the task only reports the
// outcome to the queue.
type LogoTask struct {
	workqueue.BaseTask

	generationID uuid.UUID
	service      LogoService
}

// NewLogoTask creates a task for one logo generation.
func NewLogoTask(generationID uuid.UUID, service LogoService) *LogoTask {
	return &LogoTask{
		BaseTask:     workqueue.NewBaseTask(fmt.Sprintf("render-logos-%s", generationID), true),
		generationID: generationID,
		service:      service,
	}
}

// Execute implements workqueue.Task.
func (t *LogoTask) Execute(ctx context.Context, enqueuer workqueue.TaskEnqueuer) error {
	err := t.service.Run(ctx, t.generationID)
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	return err
}

var _ workqueue.Task = (*LogoTask)(nil)
