package database

import (
	"context"
	"fmt"

	"github.com/Haibread/roycemorebot/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClubRepository struct {
	db *gorm.DB
}

func NewClubRepository(db *gorm.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

func (r *ClubRepository) Get(ctx context.Context, channelID string) (*models.Club, error) {
	var club models.Club
	if err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).First(&club).Error; err != nil {
		return nil, fmt.Errorf("error while getting club %s: %w", channelID, notFound(err))
	}
	return &club, nil
}

func (r *ClubRepository) Upsert(ctx context.Context, club *models.Club) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(club).Error
	if err != nil {
		return fmt.Errorf("error while saving club %s: %w", club.ChannelID, err)
	}
	return nil
}

func (r *ClubRepository) Delete(ctx context.Context, channelID string) error {
	err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).Delete(&models.Club{}).Error
	if err != nil {
		return fmt.Errorf("error while deleting club %s: %w", channelID, err)
	}
	return nil
}
