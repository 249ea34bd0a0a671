package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"claimbot/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Find returns the user with the given platform identifier.
func (r *UserRepository) Find(ctx context.Context, platformID string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("platform_id = ?", platformID).First(&user).Error; err != nil {
		return nil, storeError("find user", err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, platformID, displayName string) (*model.User, error) {
	user := model.User{PlatformID: platformID, DisplayName: displayName}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, storeError("create user", err)
	}
	return &user, nil
}

// Update overwrites the platform identifier and display name of user id.
func (r *UserRepository) Update(ctx context.Context, id uint, platformID, displayName string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return storeError("update user", err)
		}
		updates := map[string]interface{}{
			"platform_id":  platformID,
			"display_name": displayName,
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return storeError("update user", err)
		}
		if err := tx.First(&user, id).Error; err != nil {
			return storeError("update user", err)
		}
		return nil
	})
	if err != nil {
		return nil, storeError("update user", err)
	}
	return &user, nil
}

// FindOrCreate returns the user for platformID, inserting it when absent.
// The insert ignores conflicts on platform_id, so concurrent callers racing on
// a new identifier all end up with the single stored row.
func (r *UserRepository) FindOrCreate(ctx context.Context, platformID, displayName string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("platform_id = ?", platformID).First(&user).Error
		switch {
		case err == nil:
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			candidate := model.User{PlatformID: platformID, DisplayName: displayName}
			insert := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "platform_id"}},
				DoNothing: true,
			}).Create(&candidate)
			if insert.Error != nil {
				return storeError("create user", insert.Error)
			}
			if err := tx.Where("platform_id = ?", platformID).First(&user).Error; err != nil {
				return storeError("find user", err)
			}
			return nil
		default:
			return storeError("find user", err)
		}
	})
	if err != nil {
		return nil, storeError("find or create user", err)
	}
	return &user, nil
}

// List returns up to limit users ordered by id. A non-positive limit lists all.
func (r *UserRepository) List(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	query := r.db.WithContext(ctx).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, storeError("list users", err)
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return 0, storeError("count users", err)
	}
	return total, nil
}
