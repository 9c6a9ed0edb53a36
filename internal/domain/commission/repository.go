package commission

import (
	"context"
	"errors"
	"fmt"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*CompensationProfile, error)
	ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]CompensationProfile, error)
	Create(ctx context.Context, profile *CompensationProfile) error
	Update(ctx context.Context, profile *CompensationProfile) error
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*CompensationProfile, error) {
	var profile CompensationProfile
	if err := r.db.Conn(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("find compensation profile: %w", err)
	}
	return &profile, nil
}

func (r *repository) ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]CompensationProfile, error) {
	if len(userIDs) == 0 {
		return []CompensationProfile{}, nil
	}
	var profiles []CompensationProfile
	if err := r.db.Conn(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list compensation profiles: %w", err)
	}
	return profiles, nil
}

func (r *repository) Create(ctx context.Context, profile *CompensationProfile) error {
	if err := r.db.Conn(ctx).Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrProfileConflict
		}
		return fmt.Errorf("create compensation profile: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, profile *CompensationProfile) error {
	result := r.db.Conn(ctx).Model(&CompensationProfile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]interface{}{
			"has_fixed_salary": profile.HasFixedSalary,
			"fixed_salary":     profile.FixedSalary,
			"hour_rate":        profile.HourRate,
			"updated_at":       profile.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update compensation profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
