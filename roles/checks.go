// Package roles handles the self-assigned class and pronoun roles.
package roles

import (
	"github.com/Haibread/roycemorebot/guild"
	"github.com/bwmarrin/discordgo"
)

func HasAnyRole(member *discordgo.Member, roleIDs ...string) bool {
	return guild.HasAnyRole(member, roleIDs...)
}

func HasNoRoles(member *discordgo.Member, roleIDs ...string) bool {
	return !guild.HasAnyRole(member, roleIDs...)
}

// HasPermission reports whether the user holds perm in the channel.
// Administrators hold every permission.
func HasPermission(dir guild.Directory, userID, channelID string, perm int64) (bool, error) {
	perms, err := dir.Permissions(userID, channelID)
	if err != nil {
		return false, err
	}
	return perms&discordgo.PermissionAdministrator != 0 || perms&perm == perm, nil
}
