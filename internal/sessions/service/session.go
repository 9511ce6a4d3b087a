package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	availabilityerrors "mentorbook/internal/availability/errors"
	availabilityrepo "mentorbook/internal/availability/repository"
	sessionerrors "mentorbook/internal/sessions/errors"
	"mentorbook/internal/sessions/events"
	"mentorbook/internal/sessions/repository"
	"mentorbook/internal/sessions/validator"
	"mentorbook/pkg/config"
	apperrors "mentorbook/pkg/errors"
	"mentorbook/pkg/middleware"
	"mentorbook/pkg/model"
	"mentorbook/pkg/sanitizer"

	"github.com/google/uuid"
)

type SessionService interface {
	// Book runs the booking coordinator: lock the slot, check capacity,
	// then create the session or abort. The lock is always released.
	Book(ctx context.Context, req *model.SessionBookingRequest) (*model.Session, error)
	GetByID(ctx context.Context, id, requesterID, role string) (*model.Session, error)
	List(ctx context.Context, filter model.SessionFilter, requesterID, role string, limit int, offset int64) ([]*model.Session, int64, error)
	Cancel(ctx context.Context, id, requesterID string, req *model.SessionCancelRequest) (*model.Session, error)
	Confirm(ctx context.Context, id, requesterID string) (*model.Session, error)
}

type sessionService struct {
	repo         repository.SessionRepository
	lockRepo     repository.BookingLockRepository
	mentors      repository.MentorDirectory
	availability availabilityrepo.AvailabilityRepository
	validator    *validator.SessionValidator
	publisher    events.Publisher
	metrics      *Metrics
	cfg          *config.Config
	now          func() time.Time
}

func NewSessionService(
	repo repository.SessionRepository,
	lockRepo repository.BookingLockRepository,
	mentors repository.MentorDirectory,
	availability availabilityrepo.AvailabilityRepository,
	validator *validator.SessionValidator,
	publisher events.Publisher,
	metrics *Metrics,
	cfg *config.Config,
) SessionService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &sessionService{
		repo:         repo,
		lockRepo:     lockRepo,
		mentors:      mentors,
		availability: availability,
		validator:    validator,
		publisher:    publisher,
		metrics:      metrics,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *sessionService) Book(ctx context.Context, req *model.SessionBookingRequest) (session *model.Session, err error) {
	start := time.Now()
	defer func() {
		s.metrics.bookingOutcome(bookingOutcome(err), time.Since(start).Seconds())
	}()

	s.sanitize(req)
	if err := s.validator.ValidateBooking(req, s.now()); err != nil {
		return nil, s.validationError("Session booking validation failed", err)
	}

	if err := s.mentors.EnsureMentor(ctx, req.MentorID); err != nil {
		if errors.Is(err, sessionerrors.ErrMentorNotFound) {
			return nil, apperrors.Validation("Mentor not found", map[string]any{"mentorId": req.MentorID})
		}
		return nil, apperrors.Internal("Failed to look up mentor", err)
	}

	candidate := newSessionCandidate(req)

	capacity, err := s.resolveCapacity(ctx, req.AvailabilityRef, candidate)
	if err != nil {
		return nil, err
	}

	lock, err := s.acquireSlotLock(ctx, candidate)
	if err != nil {
		return nil, err
	}
	defer s.releaseSlotLock(ctx, lock)

	// Work past the lock's expiry could race a request that reclaimed it.
	commitCtx, cancel := context.WithTimeout(ctx, s.cfg.BookingLockTTL)
	defer cancel()

	occupied, err := s.countOccupying(commitCtx, candidate)
	if err != nil {
		return nil, apperrors.Internal("Failed to verify slot capacity", err)
	}
	if occupied >= int64(capacity) {
		s.cfg.Log.Info("Slot at capacity, booking aborted",
			"mentor_id", candidate.MentorID,
			"scheduled_at", candidate.ScheduledAt,
			"occupied", occupied,
			"capacity", capacity,
		)
		return nil, apperrors.SlotFull("This slot is fully booked").WithDetails(map[string]any{
			"mentorId":    candidate.MentorID,
			"scheduledAt": candidate.ScheduledAt,
			"capacity":    capacity,
		})
	}

	if err := s.repo.Create(commitCtx, candidate); err != nil {
		return nil, apperrors.Internal("Failed to create session", err)
	}

	s.publisher.Publish(ctx, events.TypeSessionBooked, candidate)

	s.cfg.Log.Info("Session booked successfully",
		"id", candidate.ID,
		"mentor_id", candidate.MentorID,
		"mentee_id", candidate.MenteeID,
		"scheduled_at", candidate.ScheduledAt,
		"duration_minutes", candidate.DurationMinutes,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return candidate, nil
}

func (s *sessionService) GetByID(ctx context.Context, id, requesterID, role string) (*model.Session, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Session ID cannot be empty")
	}

	session, err := s.findSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if role != middleware.RoleAdmin && !session.IsParticipant(requesterID) {
		return nil, apperrors.NotFoundWithID("Session", id)
	}
	return session, nil
}

func (s *sessionService) List(ctx context.Context, filter model.SessionFilter, requesterID, role string, limit int, offset int64) ([]*model.Session, int64, error) {
	filter.MentorID = sanitizer.NormalizeObjectID(filter.MentorID)
	filter.MenteeID = sanitizer.NormalizeObjectID(filter.MenteeID)

	if err := s.validator.ValidateFilter(&filter); err != nil {
		return nil, 0, s.validationError("Invalid session filter", err)
	}

	if err := scopeFilter(&filter, requesterID, role); err != nil {
		return nil, 0, err
	}

	var count int64
	var sessions []*model.Session
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count sessions",
				"mentor_id", filter.MentorID,
				"mentee_id", filter.MenteeID,
				"error", err,
			)
			errCount = apperrors.Internal("Failed to count sessions", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		sessions, err = s.repo.Find(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list sessions",
				"mentor_id", filter.MentorID,
				"mentee_id", filter.MenteeID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve sessions", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return sessions, count, nil
}

func (s *sessionService) Cancel(ctx context.Context, id, requesterID string, req *model.SessionCancelRequest) (*model.Session, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Session ID cannot be empty")
	}
	if req == nil {
		req = &model.SessionCancelRequest{}
	}
	req.Reason = sanitizer.NormalizeText(req.Reason)
	if err := s.validator.ValidateCancel(req); err != nil {
		return nil, s.validationError("Invalid cancellation request", err)
	}

	existing, err := s.findSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existing.IsParticipant(requesterID) {
		return nil, apperrors.NotFoundWithID("Session", id)
	}

	now := s.now()
	updated, err := s.repo.TransitionStatus(ctx, id, model.ActiveSessionStatuses, model.StatusTransition{
		To:           model.SessionStatusCancelled,
		CancelReason: req.Reason,
		CancelledBy:  requesterID,
		CancelledAt:  &now,
	})
	if err != nil {
		return nil, s.transitionError(err, id, "cancelled", existing.Status)
	}

	s.publisher.Publish(ctx, events.TypeSessionCancelled, updated)

	s.cfg.Log.Info("Session cancelled",
		"id", id,
		"cancelled_by", requesterID,
		"previous_status", existing.Status,
	)
	return updated, nil
}

func (s *sessionService) Confirm(ctx context.Context, id, requesterID string) (*model.Session, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Session ID cannot be empty")
	}

	existing, err := s.findSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existing.IsParticipant(requesterID) {
		return nil, apperrors.NotFoundWithID("Session", id)
	}
	if existing.MentorID != requesterID {
		return nil, apperrors.Forbidden("Only the mentor can confirm a session")
	}

	updated, err := s.repo.TransitionStatus(ctx, id, []string{model.SessionStatusPending}, model.StatusTransition{
		To: model.SessionStatusConfirmed,
	})
	if err != nil {
		return nil, s.transitionError(err, id, "confirmed", existing.Status)
	}

	s.publisher.Publish(ctx, events.TypeSessionConfirmed, updated)

	s.cfg.Log.Info("Session confirmed", "id", id, "mentor_id", requesterID)
	return updated, nil
}

// --- Helpers ---

func newSessionCandidate(req *model.SessionBookingRequest) *model.Session {
	scheduledAt := req.ScheduledAt.UTC()
	return &model.Session{
		MentorID:        req.MentorID,
		MenteeID:        req.MenteeID,
		AvailabilityID:  req.AvailabilityRef,
		Subject:         req.Subject,
		ScheduledAt:     scheduledAt,
		DurationMinutes: req.DurationMinutes,
		EndAt:           scheduledAt.Add(time.Duration(req.DurationMinutes) * time.Minute),
		Status:          model.SessionStatusPending,
	}
}

// Slot keys and stored times have second precision.
func (s *sessionService) sanitize(req *model.SessionBookingRequest) {
	req.MentorID = sanitizer.NormalizeObjectID(req.MentorID)
	req.MenteeID = sanitizer.NormalizeObjectID(req.MenteeID)
	req.AvailabilityRef = sanitizer.NormalizeObjectID(req.AvailabilityRef)
	req.Subject = sanitizer.NormalizeText(req.Subject)
	req.ScheduledAt = req.ScheduledAt.UTC().Truncate(time.Second)
}

func (s *sessionService) validationError(message string, err error) error {
	s.cfg.Log.Warn(message, "error", err)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

// resolveCapacity validates the referenced availability against the slot and
// returns the slot capacity.
func (s *sessionService) resolveCapacity(ctx context.Context, availabilityRef string, candidate *model.Session) (int, error) {
	if availabilityRef == "" {
		return s.cfg.DefaultSlotCapacity, nil
	}

	availability, err := s.availability.FindByID(ctx, availabilityRef)
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) || errors.Is(err, availabilityerrors.ErrInvalidID) {
			return 0, apperrors.Validation("Availability not found", map[string]any{"availabilityRef": availabilityRef})
		}
		return 0, apperrors.Internal("Failed to look up availability", err)
	}

	if availability.MentorID != candidate.MentorID {
		return 0, apperrors.Validation("Availability belongs to a different mentor", map[string]any{"availabilityRef": availabilityRef})
	}
	if !availability.Contains(candidate.ScheduledAt, candidate.EndAt) {
		return 0, apperrors.Validation("Requested slot is outside the availability window", map[string]any{
			"availabilityRef": availabilityRef,
			"startTime":       availability.StartTime,
			"endTime":         availability.EndTime,
		})
	}

	return sanitizer.ClampInt(availability.Capacity, 1, model.MaxAvailabilityCapacity), nil
}

func (s *sessionService) countOccupying(ctx context.Context, candidate *model.Session) (int64, error) {
	if s.cfg.SessionOverlapCheck {
		return s.repo.CountActiveOverlapping(ctx, candidate.MentorID, candidate.ScheduledAt, candidate.EndAt)
	}
	return s.repo.CountActiveAt(ctx, candidate.MentorID, candidate.ScheduledAt, candidate.DurationMinutes)
}

// acquireSlotLock inserts the slot's booking lock. A live lock fails fast with
// SLOT_LOCKED; an expired one is reclaimed once and the insert retried.
func (s *sessionService) acquireSlotLock(ctx context.Context, candidate *model.Session) (*model.BookingLock, error) {
	now := s.now()
	lock := &model.BookingLock{
		Key:              model.BookingLockKey(candidate.MentorID, candidate.ScheduledAt, candidate.DurationMinutes),
		Owner:            uuid.NewString(),
		MentorID:         candidate.MentorID,
		CreatedBy:        candidate.MenteeID,
		AvailabilityID:   candidate.AvailabilityID,
		ScheduledAt:      candidate.ScheduledAt,
		DurationMinutes:  candidate.DurationMinutes,
		SessionCandidate: candidate,
		ExpiresAt:        now.Add(s.cfg.BookingLockTTL),
		CreatedAt:        now,
	}

	err := s.lockRepo.Create(ctx, lock)
	if err == nil {
		return lock, nil
	}
	if !errors.Is(err, sessionerrors.ErrLockExists) {
		return nil, apperrors.Internal("Failed to acquire booking lock", err)
	}

	reclaimed, err := s.lockRepo.DeleteIfExpired(ctx, lock.Key, now)
	if err != nil {
		return nil, apperrors.Internal("Failed to reclaim booking lock", err)
	}
	if !reclaimed {
		return nil, slotLocked(lock.Key)
	}

	s.metrics.lockReclaimed()
	s.cfg.Log.Info("Reclaimed expired booking lock", "key", lock.Key)

	if err := s.lockRepo.Create(ctx, lock); err != nil {
		if errors.Is(err, sessionerrors.ErrLockExists) {
			return nil, slotLocked(lock.Key)
		}
		return nil, apperrors.Internal("Failed to acquire booking lock", err)
	}
	return lock, nil
}

func slotLocked(key string) error {
	return apperrors.SlotLocked("This slot is currently being booked by another request. Please retry.").
		WithDetails(map[string]any{"key": key})
}

// releaseSlotLock runs even when the request context is already cancelled.
func (s *sessionService) releaseSlotLock(ctx context.Context, lock *model.BookingLock) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
	defer cancel()

	if err := s.lockRepo.Release(releaseCtx, lock.Key, lock.Owner); err != nil {
		s.cfg.Log.Warn("Failed to release booking lock",
			"key", lock.Key,
			"owner", lock.Owner,
			"error", err,
		)
	}
}

func (s *sessionService) findSession(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sessionerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Session", id)
		}
		if errors.Is(err, sessionerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid session ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve session", err)
	}
	return session, nil
}

func (s *sessionService) transitionError(err error, id, target, current string) error {
	switch {
	case errors.Is(err, sessionerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Session", id)
	case errors.Is(err, sessionerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid session ID format")
	case errors.Is(err, sessionerrors.ErrStatusConflict):
		return apperrors.Conflict(fmt.Sprintf("Session cannot be %s", target)).
			WithDetails(map[string]any{"status": current})
	default:
		s.cfg.Log.Error("Failed to update session status", "id", id, "target", target, "error", err)
		return apperrors.Internal("Failed to update session", err)
	}
}

// scopeFilter restricts listings to sessions the requester takes part in.
func scopeFilter(filter *model.SessionFilter, requesterID, role string) error {
	if role == middleware.RoleAdmin {
		return nil
	}
	if filter.MentorID == "" && filter.MenteeID == "" {
		if role == middleware.RoleMentor {
			filter.MentorID = requesterID
		} else {
			filter.MenteeID = requesterID
		}
		return nil
	}
	if filter.MentorID == requesterID || filter.MenteeID == requesterID {
		return nil
	}
	return apperrors.Forbidden("Sessions can only be listed for yourself")
}

func bookingOutcome(err error) string {
	if err == nil {
		return outcomeBooked
	}
	appErr := apperrors.AsAppError(err)
	switch appErr.Code {
	case apperrors.CodeSlotFull:
		return outcomeSlotFull
	case apperrors.CodeSlotLocked:
		return outcomeSlotLocked
	case apperrors.CodeValidation, apperrors.CodeInvalidInput:
		return outcomeInvalid
	default:
		return outcomeError
	}
}
