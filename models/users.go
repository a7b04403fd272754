package models

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

var ErrInvalid = errors.New("invalid record")

const (
	MaxNameLength    = 32
	MaxDiscriminator = 9999
	MaxReasonLength  = 512
)

// User is a Discord user as seen in the guild.
type User struct {
	UserID int64  `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Name   string `gorm:"size:32" json:"name"`
	// Discriminator is 0 for users on the new username system.
	Discriminator int16   `json:"discriminator"`
	Roles         []int64 `gorm:"serializer:json" json:"roles"`
	InGuild       bool    `json:"in_guild"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (User) TableName() string {
	return "users"
}

// NewUser validates the fields and returns a user still in the guild.
func NewUser(userID int64, name string, discriminator int, roles []int64) (*User, error) {
	if userID < 0 {
		return nil, fmt.Errorf("%w: user id cannot be less than 0", ErrInvalid)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, fmt.Errorf("%w: name cannot be longer than %d characters", ErrInvalid, MaxNameLength)
	}
	if discriminator < 0 || discriminator > MaxDiscriminator {
		return nil, fmt.Errorf("%w: discriminator must be within 0-%d, got %d", ErrInvalid, MaxDiscriminator, discriminator)
	}
	for _, r := range roles {
		if r < 0 {
			return nil, fmt.Errorf("%w: role id cannot be less than 0", ErrInvalid)
		}
	}
	return &User{
		UserID:        userID,
		Name:          name,
		Discriminator: int16(discriminator),
		Roles:         roles,
		InGuild:       true,
	}, nil
}

func (u User) String() string {
	if u.Discriminator == 0 {
		return u.Name
	}
	return fmt.Sprintf("%s#%04d", u.Name, u.Discriminator)
}

// Infraction is a moderation record against a user.
type Infraction struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      int64  `gorm:"index" json:"user_id"`
	ModeratorID int64  `json:"moderator_id"`
	Reason      string `gorm:"size:512" json:"reason"`
	Active      bool   `json:"active"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Infraction) TableName() string {
	return "infractions"
}

func NewInfraction(userID, moderatorID int64, reason string) (*Infraction, error) {
	if userID < 0 || moderatorID < 0 {
		return nil, fmt.Errorf("%w: user id cannot be less than 0", ErrInvalid)
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: an infraction needs a reason", ErrInvalid)
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return nil, fmt.Errorf("%w: reason cannot be longer than %d characters", ErrInvalid, MaxReasonLength)
	}
	return &Infraction{UserID: userID, ModeratorID: moderatorID, Reason: reason, Active: true}, nil
}
