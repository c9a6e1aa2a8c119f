package gormrepo

import (
	"context"
	"fmt"

	"market-service/internal/domain"
	"market-service/internal/repository"

	"gorm.io/gorm"
)

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("insert user: %w", translate(err))
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &u, nil
}

func (r *userRepo) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&u).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by phone: %w", err)
	}
	return &u, nil
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, translate(err))
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&domain.User{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete user %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepo) List(ctx context.Context, filter repository.UserFilter, page domain.PageRequest) ([]domain.User, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Role != nil {
			db = db.Where("role = ?", *filter.Role)
		}
		if filter.Status != nil {
			db = db.Where("status = ?", *filter.Status)
		}
		if filter.Query != "" {
			p := likePattern(filter.Query)
			db = db.Where(likeAny("name", "phone", "email"), p, p, p)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var out []domain.User
	err := r.db.WithContext(ctx).
		Scopes(scope, paginate(page.Offset(), page.Limit)).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return out, total, nil
}

func (r *userRepo) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	var rows []struct {
		Role  domain.Role
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}
	out := make(map[domain.Role]int64, len(rows))
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}
