package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyProcessed = errors.New("sale already processed")
	ErrInvalidState     = errors.New("invalid state")
	ErrInUse            = errors.New("record in use")
	ErrPlanLimitReached = errors.New("plan limit reached")
	ErrPremiumRequired  = errors.New("premium plan required")
	ErrValidation       = errors.New("validation failed")
	ErrUnavailable      = errors.New("service not configured")
)

// PlanLimitError says which limit was hit. It matches ErrPlanLimitReached.
type PlanLimitError struct {
	Resource Resource
	Plan     string
	Limit    int
	Used     int64
}

func (e *PlanLimitError) Error() string {
	return fmt.Sprintf("plan limit reached: %d/%d %s on the %s plan", e.Used, e.Limit, e.Resource, e.Plan)
}

func (e *PlanLimitError) Is(target error) bool {
	return target == ErrPlanLimitReached
}

// notFound turns a missing row into ErrNotFound and wraps anything else.
func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, invalid("invalid id %q", id)
	}
	return parsed, nil
}
