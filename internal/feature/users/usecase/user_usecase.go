// Package usecase implements the business logic for user listing.
package usecase

import (
	"context"

	"mock_trader/internal/feature/auth/domain/entity"
)

// UserLister abstracts read access to registered users.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserLister interface {
	ListAll(ctx context.Context) ([]entity.User, error)
}

// UserUsecase provides read-only operations over registered users.
type UserUsecase struct {
	repo UserLister
}

// NewUserUsecase creates a new UserUsecase with the given repository.
func NewUserUsecase(r UserLister) *UserUsecase {
	return &UserUsecase{repo: r}
}

// ListAll returns every registered user ordered by ID.
func (u *UserUsecase) ListAll(ctx context.Context) ([]entity.User, error) {
	users, err := u.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}
