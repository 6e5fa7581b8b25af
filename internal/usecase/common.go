package usecase

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// Current time
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// normalizePage applies defaults to zero values and rejects the rest.
func normalizePage(page, limit int) (int, int, error) {
	if page == 0 {
		page = defaultPage
	}
	if limit == 0 {
		limit = defaultLimit
	}
	if page < 1 {
		return 0, 0, model.InvalidInput("invalid page")
	}
	if limit < 1 || limit > maxLimit {
		return 0, 0, model.InvalidInput("invalid limit")
	}
	return page, limit, nil
}

// notFoundAs swaps repo.ErrNotFound for a domain error and wraps anything
// else with the operation name.
func notFoundAs(err error, domainErr *model.Error, op string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return domainErr
	}
	return fmt.Errorf("%s: %w", op, err)
}
