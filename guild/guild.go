// Package guild defines the narrow views of the Discord guild the bot works
// through, and their discordgo implementation.
package guild

import (
	"github.com/bwmarrin/discordgo"
)

// Directory resolves roles, channels and members of a guild.
type Directory interface {
	Roles(guildID string) ([]*discordgo.Role, error)
	Channels(guildID string) ([]*discordgo.Channel, error)
	Channel(channelID string) (*discordgo.Channel, error)
	Member(guildID, userID string) (*discordgo.Member, error)
	Members(guildID string) ([]*discordgo.Member, error)
	// Permissions are the member's computed permissions in a channel.
	Permissions(userID, channelID string) (int64, error)
}

// Fetcher reads roles and channels from the API, bypassing any cache. A
// Directory backed by a gateway cache implements it so that lookups right
// after provisioning see the new roles and channels.
type Fetcher interface {
	FetchRoles(guildID string) ([]*discordgo.Role, error)
	FetchChannels(guildID string) ([]*discordgo.Channel, error)
}

// LiveRoles lists roles through dir's Fetcher when it has one.
func LiveRoles(dir Directory, guildID string) ([]*discordgo.Role, error) {
	if f, ok := dir.(Fetcher); ok {
		return f.FetchRoles(guildID)
	}
	return dir.Roles(guildID)
}

// LiveChannels lists channels through dir's Fetcher when it has one.
func LiveChannels(dir Directory, guildID string) ([]*discordgo.Channel, error) {
	if f, ok := dir.(Fetcher); ok {
		return f.FetchChannels(guildID)
	}
	return dir.Channels(guildID)
}

// RoleMutator adds and removes member roles. Adding a held role or removing
// a missing one is a no-op on Discord's side.
type RoleMutator interface {
	AddRole(guildID, userID, roleID, reason string) error
	RemoveRole(guildID, userID, roleID, reason string) error
}

type Messenger interface {
	Send(channelID, content string) (*discordgo.Message, error)
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
	SendDirect(userID string, embed *discordgo.MessageEmbed) error
	React(channelID, messageID, emoji string) error
	Delete(channelID, messageID string) error
}

// Provisioner creates and deletes channels and roles.
type Provisioner interface {
	CreateChannel(guildID string, data discordgo.GuildChannelCreateData, reason string) (*discordgo.Channel, error)
	DeleteChannel(channelID, reason string) error
	CreateRole(guildID string, params *discordgo.RoleParams, reason string) (*discordgo.Role, error)
	DeleteRole(guildID, roleID, reason string) error
}

// FindRoleByName returns the first role with exactly this name.
func FindRoleByName(roles []*discordgo.Role, name string) *discordgo.Role {
	for _, r := range roles {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// HasAnyRole reports whether the member holds one of the roles.
func HasAnyRole(member *discordgo.Member, roleIDs ...string) bool {
	if member == nil {
		return false
	}
	for _, held := range member.Roles {
		for _, id := range roleIDs {
			if id != "" && held == id {
				return true
			}
		}
	}
	return false
}
