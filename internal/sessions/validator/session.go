package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mentorbook/pkg/logger"
	"mentorbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors as field -> message for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type SessionValidator struct {
	validate    *validator.Validate
	logger      *logger.Logger
	minDuration int
	maxDuration int
}

func NewSessionValidator(log *logger.Logger, minDurationMin, maxDurationMin int) *SessionValidator {
	v := validator.New()

	if err := v.RegisterValidation("session_status", validateSessionStatus); err != nil {
		log.Fatal("Failed to register 'session_status' validator",
			"error", err,
		)
	}

	log.Debug("Session validator initialized",
		"min_duration_min", minDurationMin,
		"max_duration_min", maxDurationMin,
	)

	return &SessionValidator{
		validate:    v,
		logger:      log,
		minDuration: minDurationMin,
		maxDuration: maxDurationMin,
	}
}

func validateSessionStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", model.SessionStatusPending, model.SessionStatusConfirmed,
		model.SessionStatusCancelled, model.SessionStatusCompleted:
		return true
	}
	return false
}

// ValidateBooking checks a booking request against field rules and the
// duration window. now is the reference instant for the future-time check.
func (v *SessionValidator) ValidateBooking(req *model.SessionBookingRequest, now time.Time) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var errs ValidationErrors

	if req.DurationMinutes < v.minDuration || req.DurationMinutes > v.maxDuration {
		errs = append(errs, ValidationError{
			Field:   "durationMinutes",
			Message: fmt.Sprintf("durationMinutes must be between %d and %d", v.minDuration, v.maxDuration),
		})
	}

	if !req.ScheduledAt.After(now) {
		errs = append(errs, ValidationError{
			Field:   "scheduledAt",
			Message: "scheduledAt must be in the future",
		})
	}

	if req.MentorID == req.MenteeID {
		errs = append(errs, ValidationError{
			Field:   "mentorId",
			Message: "mentor and mentee must be different users",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *SessionValidator) ValidateCancel(req *model.SessionCancelRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *SessionValidator) ValidateFilter(filter *model.SessionFilter) error {
	if err := v.validate.Struct(filter); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *SessionValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		field := jsonFieldName(err.Field())
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", field)
		case "session_status":
			message = fmt.Sprintf("%s must be one of: pending confirmed cancelled completed", field)
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   field,
			Message: message,
		})
	}

	return validationErrors
}

func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	if strings.HasSuffix(field, "ID") {
		field = strings.TrimSuffix(field, "ID") + "Id"
	}
	return strings.ToLower(field[:1]) + field[1:]
}
