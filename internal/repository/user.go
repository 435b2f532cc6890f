// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"placehold/internal/cache"
	"placehold/internal/models"

	"gorm.io/gorm"
)

// DefaultListLimit caps a list page when the caller does not say otherwise.
const DefaultListLimit = 100

// UserRepository defines persistence operations for user aggregates.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, in *models.UserCreate) (*models.User, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID loads the full aggregate. Reads go through the cache; cached copies
// carry no password hash, so credential checks must use GetByUsername, which
// always hits the store.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("Address.Geo").Preload("Company").First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername returns (nil, nil) when no such user exists.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByEmail returns (nil, nil) when no such user exists.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// List returns users in id order. Out-of-range offset/limit values are
// clamped, never an error; an offset past the end yields an empty slice.
func (r *userRepository) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = DefaultListLimit
	}

	users := []models.User{}
	err := r.db.WithContext(ctx).
		Preload("Address.Geo").
		Preload("Company").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Create persists the whole aggregate in one transaction and assigns a fresh
// id. A duplicate username or email fails with Conflict and leaves nothing
// behind; concurrent duplicates lose at the unique constraint.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return models.NewInternalError(err)
		}
		if count > 0 {
			return models.NewConflictError("Email already registered")
		}
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return models.NewInternalError(err)
		}
		if count > 0 {
			return models.NewConflictError("Username already taken")
		}

		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.NewConflictError("Username or email already registered")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	return err
}

// Update mutates the user row and its existing sub-entity rows in place.
// Sub-entities are never created here: a user without an address row keeps
// having none, and the address fields of the payload are skipped. The stored
// password hash is left untouched.
func (r *userRepository) Update(ctx context.Context, id uint, in *models.UserCreate) (*models.User, error) {
	var user models.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Address.Geo").Preload("Company").First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}

		err := tx.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":     in.Name,
			"username": in.Username,
			"email":    in.Email,
			"phone":    in.Phone,
			"website":  in.Website,
		}).Error
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.NewConflictError("Username or email already registered")
			}
			return models.NewInternalError(err)
		}

		if user.Address.ID != 0 {
			err := tx.Model(&models.Address{}).Where("id = ?", user.Address.ID).Updates(map[string]interface{}{
				"street":  in.Address.Street,
				"suite":   in.Address.Suite,
				"city":    in.Address.City,
				"zipcode": in.Address.Zipcode,
			}).Error
			if err != nil {
				return models.NewInternalError(err)
			}

			if user.Address.Geo.ID != 0 {
				err := tx.Model(&models.Geo{}).Where("id = ?", user.Address.Geo.ID).Updates(map[string]interface{}{
					"lat": in.Address.Geo.Lat,
					"lng": in.Address.Geo.Lng,
				}).Error
				if err != nil {
					return models.NewInternalError(err)
				}
			}
		}

		if user.Company.ID != 0 {
			err := tx.Model(&models.Company{}).Where("id = ?", user.Company.ID).Updates(map[string]interface{}{
				"name":         in.Company.Name,
				"catch_phrase": in.Company.CatchPhrase,
				"bs":           in.Company.BS,
			}).Error
			if err != nil {
				return models.NewInternalError(err)
			}
		}

		return tx.Preload("Address.Geo").Preload("Company").First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, cache.UserKey(id))
	return &user, nil
}

// Delete removes the user and its address, geo, and company rows in one
// transaction. Deleting an absent id fails with NotFound, so a second delete
// of the same user is an error, not a no-op.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Preload("Address").First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}

		if user.Address.ID != 0 {
			if err := tx.Where("address_id = ?", user.Address.ID).Delete(&models.Geo{}).Error; err != nil {
				return models.NewInternalError(err)
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Address{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Company{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.Invalidate(ctx, cache.UserKey(id))
	return nil
}

// Count reports how many users exist. The seeder uses it as its idempotency
// guard.
func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
