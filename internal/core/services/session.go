package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driving"
	"github.com/custodia-labs/lessonscout/internal/logger"
)

// Ensure SessionService implements the interfaces.
var (
	_ driving.SearchService = (*SessionService)(nil)
	_ driving.SessionRunner = (*SessionService)(nil)
)

// DefaultSessionListLimit caps Sessions when no limit is given.
const DefaultSessionListLimit = 20

// failWriteTimeout bounds the best-effort write that marks a session failed.
const failWriteTimeout = 10 * time.Second

var sessionLog = logger.With("session")

// SessionService owns the search session lifecycle: submission, the
// aggregate-then-filter pipeline run by the scheduler, and read access.
type SessionService struct {
	sessions   driven.SessionStore
	recorder   *EventRecorder
	registry   *ConnectorRegistry
	aggregator *Aggregator
	filter     *RelevanceFilter
	notifier   driven.Notifier
	subscriber driven.Subscriber
	scheduler  driving.Scheduler

	now   func() time.Time
	newID func() string
}

// NewSessionService creates a session service. The notifier and subscriber
// may be nil. The scheduler is attached afterwards with SetScheduler because
// it in turn runs sessions through this service.
func NewSessionService(
	sessions driven.SessionStore,
	recorder *EventRecorder,
	registry *ConnectorRegistry,
	filter *RelevanceFilter,
	notifier driven.Notifier,
	subscriber driven.Subscriber,
) *SessionService {
	return &SessionService{
		sessions:   sessions,
		recorder:   recorder,
		registry:   registry,
		aggregator: NewAggregator(registry, recorder),
		filter:     filter,
		notifier:   notifier,
		subscriber: subscriber,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// SetScheduler attaches the admission queue.
func (s *SessionService) SetScheduler(scheduler driving.Scheduler) {
	s.scheduler = scheduler
}

// Submit validates the input, persists a pending session and enqueues it.
func (s *SessionService) Submit(
	ctx context.Context,
	userID, query string,
	grade domain.GradeFilter,
) (*domain.SearchSession, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if !grade.IsValid() {
		return nil, fmt.Errorf("%w: grade %d out of range", domain.ErrInvalidInput, int(grade))
	}

	now := s.now().UTC()
	session := &domain.SearchSession{
		ID:        s.newID(),
		UserID:    userID,
		Query:     query,
		Grade:     grade,
		Status:    domain.SessionPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: create session: %w", domain.ErrPersistence, err)
	}
	s.publishSession(ctx, session)

	if s.scheduler == nil {
		s.fail(session.ID, domain.ErrSchedulerStopped)
		return nil, domain.ErrSchedulerStopped
	}
	if err := s.scheduler.Submit(session.ID); err != nil {
		s.fail(session.ID, err)
		return nil, err
	}

	sessionLog.Debug("submitted %s for %s: %q grade %s", session.ID, userID, query, grade)
	return session, nil
}

// Run executes the pipeline for an admitted session: aggregate, filter,
// persist. Terminal sessions are skipped. Any pipeline error marks the
// session failed.
func (s *SessionService) Run(ctx context.Context, sessionID string) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.fail(sessionID, err)
		}
		return fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if session.Status.IsTerminal() {
		return nil
	}

	running, err := s.sessions.Transition(ctx, sessionID, domain.SessionRunning, s.now().UTC())
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidTransition) {
			s.fail(sessionID, err)
		}
		return fmt.Errorf("start session %s: %w", sessionID, err)
	}
	s.publishSession(ctx, running)

	logger.Section("session " + sessionID)
	result, err := s.pipeline(ctx, running)
	if err != nil {
		s.fail(sessionID, err)
		return err
	}

	completed, err := s.sessions.Complete(ctx, sessionID, result, s.now().UTC())
	if err != nil {
		err = fmt.Errorf("%w: complete session: %w", domain.ErrPersistence, err)
		s.fail(sessionID, err)
		return err
	}
	s.publishSession(ctx, completed)

	sessionLog.Info("session %s completed with %d results", sessionID, len(result))
	return nil
}

func (s *SessionService) pipeline(ctx context.Context, session *domain.SearchSession) ([]domain.ResultItem, error) {
	req := domain.SearchRequest{
		SessionID: session.ID,
		UserID:    session.UserID,
		Query:     session.Query,
		Grade:     session.Grade,
	}

	merged, err := s.aggregator.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.filter.Filter(ctx, merged, session.Query, session.Grade)
}

// fail marks a session failed on a fresh context so a cancelled pipeline
// context cannot prevent the write. Errors are logged, never returned.
func (s *SessionService) fail(sessionID string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), failWriteTimeout)
	defer cancel()

	sessionLog.Warn("session %s failed: %v", sessionID, cause)

	failed, err := s.sessions.Transition(ctx, sessionID, domain.SessionFailed, s.now().UTC())
	if err != nil {
		sessionLog.Error("mark session %s failed: %v", sessionID, err)
		return
	}
	s.publishSession(ctx, failed)
}

// Recover prepares sessions left over from a previous process: running
// sessions are marked failed and pending sessions are enqueued again.
// It returns the number of sessions re-enqueued.
func (s *SessionService) Recover(ctx context.Context) (int, error) {
	running, err := s.sessions.ListByStatus(ctx, domain.SessionRunning)
	if err != nil {
		return 0, fmt.Errorf("%w: list running sessions: %w", domain.ErrPersistence, err)
	}
	for i := range running {
		s.fail(running[i].ID, errors.New("interrupted by restart"))
	}

	pending, err := s.sessions.ListByStatus(ctx, domain.SessionPending)
	if err != nil {
		return 0, fmt.Errorf("%w: list pending sessions: %w", domain.ErrPersistence, err)
	}
	if s.scheduler == nil {
		return 0, domain.ErrSchedulerStopped
	}
	requeued := 0
	for i := range pending {
		if err := s.scheduler.Submit(pending[i].ID); err != nil {
			return requeued, err
		}
		requeued++
	}
	return requeued, nil
}

// Session returns a session owned by the user.
func (s *SessionService) Session(ctx context.Context, userID, sessionID string) (*domain.SearchSession, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.OwnedBy(userID) {
		return nil, domain.ErrForbidden
	}
	return session, nil
}

// Events returns the progress events of a session owned by the user.
func (s *SessionService) Events(ctx context.Context, userID, sessionID string) ([]domain.SourceEvent, error) {
	if _, err := s.Session(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.recorder.List(ctx, sessionID)
}

// Sessions lists the user's recent sessions.
func (s *SessionService) Sessions(ctx context.Context, userID string, limit int) ([]domain.SearchSession, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if limit <= 0 {
		limit = DefaultSessionListLimit
	}
	return s.sessions.ListByUser(ctx, userID, limit)
}

// Watch opens a live feed for a session and then reads its snapshot.
func (s *SessionService) Watch(ctx context.Context, userID, sessionID string) (*driving.SessionWatch, error) {
	if _, err := s.Session(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	var (
		updates <-chan domain.Notification
		cancel  = func() {}
	)
	if s.subscriber != nil {
		ch, unsubscribe, err := s.subscriber.Subscribe(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("subscribe to %s: %w", sessionID, err)
		}
		updates, cancel = ch, unsubscribe
	} else {
		closed := make(chan domain.Notification)
		close(closed)
		updates = closed
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		cancel()
		return nil, err
	}
	events, err := s.recorder.List(ctx, sessionID)
	if err != nil {
		cancel()
		return nil, err
	}

	return &driving.SessionWatch{
		Session: session,
		Events:  events,
		Updates: updates,
		Cancel:  cancel,
	}, nil
}

// Connectors describes the registered sources.
func (s *SessionService) Connectors() []domain.ConnectorInfo {
	return s.registry.Info()
}

func (s *SessionService) publishSession(ctx context.Context, session *domain.SearchSession) {
	if s.notifier == nil || session == nil {
		return
	}
	if err := s.notifier.Publish(ctx, domain.SessionNotification(*session)); err != nil {
		sessionLog.Warn("publish session %s: %v", session.ID, err)
	}
}
