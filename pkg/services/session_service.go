package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/apperrors"
	"github.com/namerhq/namer-engine/pkg/llm"
	"github.com/namerhq/namer-engine/pkg/models"
	"github.com/namerhq/namer-engine/pkg/repositories"
)

// CreateSessionRequest carries the user's generation parameters.
type CreateSessionRequest struct {
	BusinessDescription string     `json:"business_description"`
	GenerationMode      string     `json:"generation_mode"`
	DeepThinking        bool       `json:"deep_thinking"`
	Models              []string   `json:"models"`
	ProjectID           *uuid.UUID `json:"project_id,omitempty"`
}

// SessionService manages the generation session lifecycle: creation,
// background execution across the requested models, progress reporting,
// and cooperative cancellation.
type SessionService interface {
	// Create validates the request, persists a pending session, and
	// returns it. Execution is started separately by the caller
	// enqueueing a session task.
	Create(ctx context.Context, userID string, req CreateSessionRequest) (*models.GenerationSession, error)
	// Get returns a session, enforcing ownership.
	Get(ctx context.Context, userID string, id uuid.UUID) (*models.GenerationSession, error)
	// List returns the user's sessions, newest first.
	List(ctx context.Context, userID string, limit int) ([]*models.GenerationSession, error)
	// Cancel requests cooperative cancellation of a pending or running
	// session. Terminal sessions are rejected with ErrCannotCancel.
	Cancel(ctx context.Context, userID string, id uuid.UUID) (*models.GenerationSession, error)
	// Run executes the generation pipeline for a pending session.
	// Called from a background task, never from a request handler.
	Run(ctx context.Context, id uuid.UUID) error
}

type sessionService struct {
	sessionRepo repositories.SessionRepository
	cacheRepo   repositories.CacheRepository
	registry    *llm.Registry
	pool        *llm.WorkerPool
	fallback    *llm.FallbackGenerator
	domainSvc   DomainService
	cancelFlags CancelFlagStore
	logger      *zap.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessionRepo repositories.SessionRepository,
	cacheRepo repositories.CacheRepository,
	registry *llm.Registry,
	pool *llm.WorkerPool,
	fallback *llm.FallbackGenerator,
	domainSvc DomainService,
	cancelFlags CancelFlagStore,
	logger *zap.Logger,
) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		cacheRepo:   cacheRepo,
		registry:    registry,
		pool:        pool,
		fallback:    fallback,
		domainSvc:   domainSvc,
		cancelFlags: cancelFlags,
		logger:      logger.Named("session-service"),
	}
}

var _ SessionService = (*sessionService)(nil)

const (
	minDescriptionLength = 10
	maxDescriptionLength = 2000
)

func (s *sessionService) Create(ctx context.Context, userID string, req CreateSessionRequest) (*models.GenerationSession, error) {
	fields := make(map[string]string)

	description := strings.TrimSpace(req.BusinessDescription)
	if len(description) < minDescriptionLength {
		fields["business_description"] = fmt.Sprintf("must be at least %d characters", minDescriptionLength)
	}
	if len(description) > maxDescriptionLength {
		fields["business_description"] = fmt.Sprintf("must be at most %d characters", maxDescriptionLength)
	}

	mode := req.GenerationMode
	if mode == "" {
		mode = models.ModeBrandable
	}
	if !models.KnownModes[mode] {
		fields["generation_mode"] = "unknown generation mode"
	}

	requested := req.Models
	if len(requested) == 0 {
		requested = s.registry.KnownModels()
	}
	if len(requested) == 0 {
		fields["models"] = "no AI models are configured"
	}
	for _, model := range requested {
		if !s.registry.Has(model) {
			fields["models"] = fmt.Sprintf("unknown model %q", model)
			break
		}
	}

	if len(fields) > 0 {
		return nil, &apperrors.ValidationError{Fields: fields}
	}

	session := models.NewGenerationSession(userID, req.ProjectID, description, mode, req.DeepThinking, requested)
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	s.logger.Info("session created",
		zap.String("session_id", session.ID.String()),
		zap.String("mode", mode),
		zap.Strings("models", requested),
		zap.Bool("deep_thinking", req.DeepThinking))

	return session, nil
}

func (s *sessionService) Get(ctx context.Context, userID string, id uuid.UUID) (*models.GenerationSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return session, nil
}

func (s *sessionService) List(ctx context.Context, userID string, limit int) ([]*models.GenerationSession, error) {
	return s.sessionRepo.ListByUser(ctx, userID, limit)
}

func (s *sessionService) Cancel(ctx context.Context, userID string, id uuid.UUID) (*models.GenerationSession, error) {
	session, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := session.MarkCancelled(); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	// Best effort: the running worker polls this flag between stages.
	if err := s.cancelFlags.SetCancelled(ctx, id); err != nil {
		s.logger.Warn("failed to set cancel flag", zap.String("session_id", id.String()), zap.Error(err))
	}

	s.logger.Info("session cancelled", zap.String("session_id", id.String()))
	return session, nil
}

// isCancelled reports whether the session was cancelled out-of-band. The
// fast path is the flag store; when it reports nothing (e.g. Redis is not
// configured) the session row's status is the fallback.
func (s *sessionService) isCancelled(ctx context.Context, id uuid.UUID) bool {
	flagged, err := s.cancelFlags.IsCancelled(ctx, id)
	if err != nil {
		s.logger.Warn("cancel flag read failed", zap.String("session_id", id.String()), zap.Error(err))
	}
	if flagged {
		return true
	}

	current, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return false
	}
	return current.Status == models.SessionCancelled
}

func (s *sessionService) Run(ctx context.Context, id uuid.UUID) error {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := session.MarkStarted(); err != nil {
		// A session cancelled before the worker picked it up is not an
		// execution failure.
		if session.Status == models.SessionCancelled {
			return nil
		}
		return err
	}
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	start := time.Now()

	// Cache lookup before any provider call. A hit skips dispatch but still
	// flows through the domain-check step below.
	var (
		names        []string
		modelResults map[string]models.ModelResult
		source       = models.ResultSourceAI
		cacheHit     bool
	)
	contentHash := models.ContentHash(session.BusinessDescription, session.GenerationMode, session.DeepThinking)
	if cached, err := s.cacheRepo.GetGeneration(ctx, contentHash); err != nil {
		s.logger.Warn("generation cache read failed", zap.Error(err))
	} else if cached != nil && cached.Fresh(time.Now()) {
		s.logger.Info("generation cache hit",
			zap.String("session_id", id.String()),
			zap.String("content_hash", contentHash[:12]))
		names = cached.Names
		cacheHit = true
	}

	if s.isCancelled(ctx, id) {
		return s.finishCancelled(ctx, session)
	}

	if !cacheHit {
		s.progress(ctx, session, 20, "Querying AI models...")

		var metrics dispatchMetrics
		names, modelResults, metrics = s.dispatch(ctx, session)

		if s.isCancelled(ctx, id) {
			return s.finishCancelled(ctx, session)
		}

		if len(names) == 0 {
			// Every model failed; the deterministic generator keeps the
			// session serviceable.
			s.logger.Warn("all models failed, using fallback generator",
				zap.String("session_id", id.String()))
			names = s.fallback.Generate(session.BusinessDescription, session.GenerationMode, llm.DefaultNameCount)
			source = models.ResultSourceFallback
		} else {
			if err := s.cacheRepo.SaveGeneration(ctx, contentHash, names); err != nil {
				s.logger.Warn("generation cache write failed", zap.Error(err))
			}
		}

		session.TotalResponseTimeMS = metrics.responseTimeMS
		session.TotalTokensUsed = metrics.tokensUsed
		session.TotalCostCents = metrics.costCents
	}

	s.progress(ctx, session, 70, "Checking domain availability...")

	// Every name gets a lookup; the per-domain cache keeps repeat checks cheap.
	var domainResults map[string]map[string]models.TLDAvailability
	if s.domainSvc != nil {
		domainResults = s.domainSvc.CheckNames(ctx, names)
	}

	if s.isCancelled(ctx, id) {
		return s.finishCancelled(ctx, session)
	}

	results := &models.SessionResults{
		Names:        names,
		Source:       source,
		ModelResults: modelResults,
		Domains:      domainResults,
	}
	metadata := &models.ExecutionMetadata{
		TotalTimeMS: time.Since(start).Milliseconds(),
		ModelsUsed:  session.RequestedModels,
		Strategy:    models.StrategyParallel,
		CacheHit:    cacheHit,
	}

	return s.complete(ctx, session, names, source, results, metadata)
}

// dispatchMetrics aggregates per-model usage for the session row.
type dispatchMetrics struct {
	responseTimeMS int64
	tokensUsed     int
	costCents      int
}

// dispatch fans the request out to every requested model through the
// bounded worker pool and merges the name lists as a set union in
// first-seen completion order.
func (s *sessionService) dispatch(ctx context.Context, session *models.GenerationSession) ([]string, map[string]models.ModelResult, dispatchMetrics) {
	req := llm.GenerateRequest{
		Description:  session.BusinessDescription,
		Mode:         session.GenerationMode,
		DeepThinking: session.DeepThinking,
		Count:        llm.DefaultNameCount,
	}

	items := make([]llm.WorkItem[*llm.GenerateResult], 0, len(session.RequestedModels))
	for _, model := range session.RequestedModels {
		provider, ok := s.registry.Get(model)
		if !ok {
			continue
		}
		items = append(items, llm.WorkItem[*llm.GenerateResult]{
			ID: model,
			Execute: func(ctx context.Context) (*llm.GenerateResult, error) {
				return provider.GenerateNames(ctx, req)
			},
		})
	}

	results := llm.Process(ctx, s.pool, items, func(completed, total int) {
		// 20..60 percent spread across model completions
		pct := 20 + (completed*40)/total
		s.progress(ctx, session, pct, fmt.Sprintf("Model %d/%d responded", completed, total))
	})

	var names []string
	seen := make(map[string]bool)
	modelResults := make(map[string]models.ModelResult, len(results))
	var metrics dispatchMetrics

	for _, r := range results {
		if r.Err != nil {
			s.logger.Warn("model dispatch failed",
				zap.String("session_id", session.ID.String()),
				zap.String("model", r.ID),
				zap.Error(r.Err))
			modelResults[r.ID] = models.ModelResult{Error: r.Err.Error()}
			continue
		}

		modelResults[r.ID] = models.ModelResult{
			Names:          r.Result.Names,
			ResponseTimeMS: r.Result.ResponseTime.Milliseconds(),
			TokensUsed:     r.Result.TotalTokens,
		}
		metrics.responseTimeMS += r.Result.ResponseTime.Milliseconds()
		metrics.tokensUsed += r.Result.TotalTokens

		for _, name := range r.Result.Names {
			key := strings.ToLower(strings.TrimSpace(name))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			names = append(names, strings.TrimSpace(name))
		}
	}

	return names, modelResults, metrics
}

// progress writes a progress update to both the in-memory session and the
// database. Progress failures are logged, never fatal.
func (s *sessionService) progress(ctx context.Context, session *models.GenerationSession, pct int, step string) {
	if err := session.UpdateProgress(pct, step); err != nil {
		return
	}
	if err := s.sessionRepo.UpdateProgress(ctx, session.ID, session.ProgressPercentage, session.CurrentStep); err != nil {
		s.logger.Warn("progress update failed",
			zap.String("session_id", session.ID.String()),
			zap.Error(err))
	}
}

func (s *sessionService) complete(ctx context.Context, session *models.GenerationSession, names []string, source string, results *models.SessionResults, metadata *models.ExecutionMetadata) error {
	if results == nil {
		results = &models.SessionResults{Names: names, Source: source}
	}
	if err := session.MarkCompleted(results, metadata); err != nil {
		return err
	}
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	s.logger.Info("session completed",
		zap.String("session_id", session.ID.String()),
		zap.Int("names", len(names)),
		zap.String("source", source))
	return nil
}

// finishCancelled converges the session row to cancelled when the worker
// observed the flag. The API may already have flipped the status, so an
// invalid transition here just means the row is already terminal.
func (s *sessionService) finishCancelled(ctx context.Context, session *models.GenerationSession) error {
	err := session.MarkCancelled()
	if err == nil {
		if updateErr := s.sessionRepo.Update(ctx, session); updateErr != nil {
			s.logger.Warn("failed to persist cancelled session", zap.Error(updateErr))
		}
	} else if !errors.Is(err, apperrors.ErrCannotCancel) {
		return err
	}

	s.logger.Info("session stopped on cancellation",
		zap.String("session_id", session.ID.String()))
	return nil
}
