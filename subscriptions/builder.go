package subscriptions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Haibread/roycemorebot/guild"
	"github.com/bwmarrin/discordgo"
)

var ErrRoleMissing = errors.New("announcement role missing")

const (
	ServerAnnouncements = "Server Announcements"
	EventAnnouncements  = "Event Announcements"
)

// Build derives a fresh index from a snapshot of the guild roles and the
// channels of the clubs category. A missing role fails the whole build.
func Build(roles []*discordgo.Role, clubChannels []*discordgo.Channel) (Index, error) {
	idx := Index{}

	static := []struct {
		name string
		role string
	}{
		{"server", ServerAnnouncements},
		{"event", EventAnnouncements},
	}
	for _, s := range static {
		role := guild.FindRoleByName(roles, s.role)
		if role == nil {
			return nil, fmt.Errorf("%w: no role named %q", ErrRoleMissing, s.role)
		}
		id, err := parseID(role.ID)
		if err != nil {
			return nil, err
		}
		idx[s.name] = Entry{RoleID: id}
	}

	for _, channel := range clubChannels {
		role := AnnouncementRoleFor(channel.Name, roles)
		if role == nil {
			return nil, fmt.Errorf("%w: no announcement role for channel #%s", ErrRoleMissing, channel.Name)
		}
		id, err := parseID(role.ID)
		if err != nil {
			return nil, err
		}
		idx[strings.ToLower(channel.Name)] = Entry{
			RoleID: id,
			Club:   strings.Contains(strings.ToLower(role.Name), "club"),
		}
	}
	return idx, nil
}

// AnnouncementRoleFor finds the first role that is an announcement role for
// the channel: it contains "Announcements" and its lower-cased name starts
// with the channel name followed by a space.
func AnnouncementRoleFor(channelName string, roles []*discordgo.Role) *discordgo.Role {
	prefix := strings.ToLower(channelName) + " "
	for _, r := range roles {
		if strings.Contains(r.Name, "Announcements") && strings.HasPrefix(strings.ToLower(r.Name), prefix) {
			return r
		}
	}
	return nil
}

func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid role id %q: %w", id, err)
	}
	return n, nil
}
