package guild

import (
	"fmt"

	"github.com/Haibread/roycemorebot/metrics"
	"github.com/bwmarrin/discordgo"
)

// Session implements every guild interface on top of a discordgo session,
// reading from the state cache first and falling back to the REST API.
type Session struct {
	s       *discordgo.Session
	metrics *metrics.Metrics
}

func NewSession(s *discordgo.Session, m *metrics.Metrics) *Session {
	return &Session{s: s, metrics: m}
}

var (
	_ Directory   = (*Session)(nil)
	_ RoleMutator = (*Session)(nil)
	_ Messenger   = (*Session)(nil)
	_ Provisioner = (*Session)(nil)
	_ Fetcher     = (*Session)(nil)
)

// Roles reads the state cache, falling back to the API when the guild is
// not cached yet. The returned roles are copies.
func (g *Session) Roles(guildID string) ([]*discordgo.Role, error) {
	if roles := g.cachedRoles(guildID); len(roles) > 0 {
		return roles, nil
	}
	return g.FetchRoles(guildID)
}

func (g *Session) Channels(guildID string) ([]*discordgo.Channel, error) {
	if channels := g.cachedChannels(guildID); len(channels) > 0 {
		return channels, nil
	}
	return g.FetchChannels(guildID)
}

// cachedRoles copies the cached roles under the state lock, since gateway
// events update them concurrently.
func (g *Session) cachedRoles(guildID string) []*discordgo.Role {
	guild, err := g.s.State.Guild(guildID)
	if err != nil {
		return nil
	}
	g.s.State.RLock()
	defer g.s.State.RUnlock()
	roles := make([]*discordgo.Role, 0, len(guild.Roles))
	for _, r := range guild.Roles {
		role := *r
		roles = append(roles, &role)
	}
	return roles
}

func (g *Session) cachedChannels(guildID string) []*discordgo.Channel {
	guild, err := g.s.State.Guild(guildID)
	if err != nil {
		return nil
	}
	g.s.State.RLock()
	defer g.s.State.RUnlock()
	channels := make([]*discordgo.Channel, 0, len(guild.Channels))
	for _, c := range guild.Channels {
		channel := *c
		channels = append(channels, &channel)
	}
	return channels
}

func (g *Session) FetchRoles(guildID string) ([]*discordgo.Role, error) {
	return g.s.GuildRoles(guildID)
}

func (g *Session) FetchChannels(guildID string) ([]*discordgo.Channel, error) {
	return g.s.GuildChannels(guildID)
}

func (g *Session) Channel(channelID string) (*discordgo.Channel, error) {
	if c, err := g.s.State.Channel(channelID); err == nil {
		return c, nil
	}
	return g.s.Channel(channelID)
}

func (g *Session) Member(guildID, userID string) (*discordgo.Member, error) {
	if m, err := g.s.State.Member(guildID, userID); err == nil {
		return m, nil
	}
	return g.s.GuildMember(guildID, userID)
}

// Members pages through the whole member list over REST.
func (g *Session) Members(guildID string) ([]*discordgo.Member, error) {
	var all []*discordgo.Member
	after := ""
	for {
		page, err := g.s.GuildMembers(guildID, after, 1000)
		if err != nil {
			return nil, fmt.Errorf("error while listing members of guild %s: %w", guildID, err)
		}
		all = append(all, page...)
		if len(page) < 1000 {
			return all, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (g *Session) Permissions(userID, channelID string) (int64, error) {
	return g.s.State.UserChannelPermissions(userID, channelID)
}

func (g *Session) AddRole(guildID, userID, roleID, reason string) error {
	err := g.s.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithAuditLogReason(reason))
	g.metrics.RoleMutation("add", err)
	return err
}

func (g *Session) RemoveRole(guildID, userID, roleID, reason string) error {
	err := g.s.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithAuditLogReason(reason))
	g.metrics.RoleMutation("remove", err)
	return err
}

func (g *Session) Send(channelID, content string) (*discordgo.Message, error) {
	return g.s.ChannelMessageSend(channelID, content)
}

func (g *Session) SendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return g.s.ChannelMessageSendEmbed(channelID, embed)
}

func (g *Session) SendDirect(userID string, embed *discordgo.MessageEmbed) error {
	channel, err := g.s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("error while opening DM with %s: %w", userID, err)
	}
	_, err = g.s.ChannelMessageSendEmbed(channel.ID, embed)
	return err
}

func (g *Session) React(channelID, messageID, emoji string) error {
	return g.s.MessageReactionAdd(channelID, messageID, emoji)
}

func (g *Session) Delete(channelID, messageID string) error {
	return g.s.ChannelMessageDelete(channelID, messageID)
}

func (g *Session) CreateChannel(guildID string, data discordgo.GuildChannelCreateData, reason string) (*discordgo.Channel, error) {
	return g.s.GuildChannelCreateComplex(guildID, data, discordgo.WithAuditLogReason(reason))
}

func (g *Session) DeleteChannel(channelID, reason string) error {
	_, err := g.s.ChannelDelete(channelID, discordgo.WithAuditLogReason(reason))
	return err
}

func (g *Session) CreateRole(guildID string, params *discordgo.RoleParams, reason string) (*discordgo.Role, error) {
	return g.s.GuildRoleCreate(guildID, params, discordgo.WithAuditLogReason(reason))
}

func (g *Session) DeleteRole(guildID, roleID, reason string) error {
	return g.s.GuildRoleDelete(guildID, roleID, discordgo.WithAuditLogReason(reason))
}
