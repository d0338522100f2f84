package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/models"
	"github.com/namerhq/namer-engine/pkg/repositories"
	"github.com/namerhq/namer-engine/pkg/services/workqueue"
)

// SessionTask drives one generation session through the pipeline on the
// work queue. If the pipeline errors out after retries, the session row is
// converged to failed so clients polling it see a terminal state.
type SessionTask struct {
	workqueue.BaseTask

	sessionID   uuid.UUID
	service     SessionService
	sessionRepo repositories.SessionRepository
	logger      *zap.Logger
}

// NewSessionTask creates a task for one session.
func NewSessionTask(sessionID uuid.UUID, service SessionService, sessionRepo repositories.SessionRepository, logger *zap.Logger) *SessionTask {
	return &SessionTask{
		BaseTask:    workqueue.NewBaseTask(fmt.Sprintf("generate-names-%s", sessionID), true),
		sessionID:   sessionID,
		service:     service,
		sessionRepo: sessionRepo,
		logger:      logger.Named("session-task"),
	}
}

// Execute implements workqueue.Task.
func (t *SessionTask) Execute(ctx context.Context, enqueuer workqueue.TaskEnqueuer) error {
	err := t.service.Run(ctx, t.sessionID)
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}

	t.markFailed(err)
	return err
}

// markFailed converges the session row to failed with the pipeline error.
// Uses a background context so a cancelled task context cannot block the
// status write.
func (t *SessionTask) markFailed(cause error) {
	ctx := context.Background()

	session, err := t.sessionRepo.GetByID(ctx, t.sessionID)
	if err != nil {
		t.logger.Error("cannot load session to mark failed",
			zap.String("session_id", t.sessionID.String()),
			zap.Error(err))
		return
	}
	if session.IsTerminal() {
		return
	}

	if session.Status == models.SessionPending {
		// Failed before MarkStarted persisted; move through running so
		// the transition stays legal.
		if err := session.MarkStarted(); err != nil {
			return
		}
	}
	if err := session.MarkFailed(cause.Error()); err != nil {
		return
	}
	if err := t.sessionRepo.Update(ctx, session); err != nil {
		t.logger.Error("failed to persist failed session",
			zap.String("session_id", t.sessionID.String()),
			zap.Error(err))
	}
}

var _ workqueue.Task = (*SessionTask)(nil)
