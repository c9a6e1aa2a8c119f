package repository

import (
	"context"

	"market-service/internal/domain"
)

type UserFilter struct {
	Role   *domain.Role
	Status *domain.UserStatus
	Query  string
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id uint64) (bool, error)
	List(ctx context.Context, filter UserFilter, page domain.PageRequest) ([]domain.User, int64, error)
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
}
