package models

import "time"

// Club is a club channel provisioned by the bot together with its roles.
type Club struct {
	ChannelID          string `gorm:"primaryKey" json:"channel_id"`
	GuildID            string `gorm:"index" json:"guild_id"`
	Name               string `json:"name"`
	AnnouncementRoleID string `json:"announcement_role_id"`
	LeaderRoleID       string `json:"leader_role_id"`
	Club               bool   `json:"club"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
