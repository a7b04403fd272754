package database

import (
	"context"
	"fmt"

	"github.com/Haibread/roycemorebot/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("error while getting user %d: %w", userID, notFound(err))
	}
	return &user, nil
}

// Upsert creates the user or overwrites every column of the existing record.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("error while saving user %d: %w", user.UserID, err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, userID int64) error {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.User{})
	if res.Error != nil {
		return fmt.Errorf("error while deleting user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("error while deleting user %d: %w", userID, ErrNotFound)
	}
	return nil
}

// MarkLeft flags a user as no longer in the guild, keeping the record.
func (r *UserRepository) MarkLeft(ctx context.Context, userID int64) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("user_id = ?", userID).Update("in_guild", false)
	if res.Error != nil {
		return fmt.Errorf("error while updating user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("error while updating user %d: %w", userID, ErrNotFound)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, inGuildOnly bool) ([]models.User, error) {
	var users []models.User
	q := r.db.WithContext(ctx).Order("user_id")
	if inGuildOnly {
		q = q.Where("in_guild = ?", true)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("error while listing users: %w", err)
	}
	return users, nil
}

type InfractionRepository struct {
	db *gorm.DB
}

func NewInfractionRepository(db *gorm.DB) *InfractionRepository {
	return &InfractionRepository{db: db}
}

func (r *InfractionRepository) Create(ctx context.Context, inf *models.Infraction) error {
	if err := r.db.WithContext(ctx).Create(inf).Error; err != nil {
		return fmt.Errorf("error while creating infraction for user %d: %w", inf.UserID, err)
	}
	return nil
}

func (r *InfractionRepository) Get(ctx context.Context, id uint) (*models.Infraction, error) {
	var inf models.Infraction
	if err := r.db.WithContext(ctx).First(&inf, id).Error; err != nil {
		return nil, fmt.Errorf("error while getting infraction %d: %w", id, notFound(err))
	}
	return &inf, nil
}

func (r *InfractionRepository) ListForUser(ctx context.Context, userID int64, activeOnly bool) ([]models.Infraction, error) {
	var infs []models.Infraction
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Order("id").Find(&infs).Error; err != nil {
		return nil, fmt.Errorf("error while listing infractions of user %d: %w", userID, err)
	}
	return infs, nil
}

func (r *InfractionRepository) Deactivate(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Infraction{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("error while deactivating infraction %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("error while deactivating infraction %d: %w", id, ErrNotFound)
	}
	return nil
}
