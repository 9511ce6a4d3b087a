package service

import (
	"context"
	"errors"
	"sync"
	"time"

	availabilityerrors "mentorbook/internal/availability/errors"
	"mentorbook/internal/availability/repository"
	"mentorbook/internal/availability/validator"
	"mentorbook/pkg/config"
	apperrors "mentorbook/pkg/errors"
	"mentorbook/pkg/middleware"
	"mentorbook/pkg/model"
	"mentorbook/pkg/sanitizer"
)

type AvailabilityService interface {
	Create(ctx context.Context, availability *model.Availability, requesterID, role string) error
	GetByID(ctx context.Context, id string) (*model.Availability, error)
	ListByMentor(ctx context.Context, mentorID string, limit int, offset int64) ([]*model.Availability, int64, error)
}

type availabilityService struct {
	repo      repository.AvailabilityRepository
	validator *validator.AvailabilityValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewAvailabilityService(
	repo repository.AvailabilityRepository,
	validator *validator.AvailabilityValidator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create publishes a window for the requesting mentor. Mentors can only
// publish their own windows, so MentorID is taken from the requester.
func (s *availabilityService) Create(ctx context.Context, availability *model.Availability, requesterID, role string) error {
	if role != middleware.RoleMentor {
		return apperrors.Forbidden("Only mentors can publish availability")
	}

	availability.ID = ""
	availability.MentorID = requesterID
	availability.StartTime = availability.StartTime.UTC().Truncate(time.Second)
	availability.EndTime = availability.EndTime.UTC().Truncate(time.Second)
	if availability.Capacity == 0 {
		availability.Capacity = model.DefaultAvailabilityCapacity
	}

	if err := s.validator.Validate(availability, s.now()); err != nil {
		s.cfg.Log.Warn("Availability validation failed",
			"mentor_id", requesterID,
			"error", err,
		)
		return apperrors.Validation("Availability validation failed", validationDetails(err))
	}

	if err := s.repo.Create(ctx, availability); err != nil {
		s.cfg.Log.Error("Failed to create availability",
			"mentor_id", requesterID,
			"error", err,
		)
		return apperrors.Internal("Failed to create availability", err)
	}

	s.cfg.Log.Info("Availability created",
		"id", availability.ID,
		"mentor_id", availability.MentorID,
		"start_time", availability.StartTime,
		"end_time", availability.EndTime,
		"capacity", availability.Capacity,
	)
	return nil
}

func (s *availabilityService) GetByID(ctx context.Context, id string) (*model.Availability, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Availability ID cannot be empty")
	}

	availability, err := s.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, availabilityerrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Availability", id)
		case errors.Is(err, availabilityerrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid availability ID format")
		default:
			s.cfg.Log.Error("Failed to get availability by ID", "id", id, "error", err)
			return nil, apperrors.Internal("Failed to retrieve availability", err)
		}
	}
	return availability, nil
}

func (s *availabilityService) ListByMentor(ctx context.Context, mentorID string, limit int, offset int64) ([]*model.Availability, int64, error) {
	mentorID = sanitizer.NormalizeObjectID(mentorID)
	if mentorID == "" {
		return nil, 0, apperrors.InvalidInput("mentor_id is required")
	}

	var count int64
	var availabilities []*model.Availability
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByMentor(ctx, mentorID)
		if err != nil {
			s.cfg.Log.Error("Failed to count availabilities", "mentor_id", mentorID, "error", err)
			errCount = apperrors.Internal("Failed to count availabilities", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		availabilities, err = s.repo.FindByMentor(ctx, mentorID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list availabilities",
				"mentor_id", mentorID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve availabilities", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return availabilities, count, nil
}

func validationDetails(err error) map[string]any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]any{"error": err.Error()}
	}
	details := make(map[string]any, len(verrs))
	for _, v := range verrs {
		details[v.Field] = v.Message
	}
	return details
}
