// Package guildtest provides an in-memory guild for tests.
package guildtest

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/Haibread/roycemorebot/guild"
	"github.com/bwmarrin/discordgo"
)

var ErrUnknown = errors.New("unknown entity")

// Sent is a message sent through the fake.
type Sent struct {
	ChannelID string
	Content   string
	Embed     *discordgo.MessageEmbed
	ID        string
}

// Guild is an in-memory guild implementing every guild interface.
type Guild struct {
	mu sync.Mutex

	GuildRoles    []*discordgo.Role
	GuildChannels []*discordgo.Channel
	GuildMembers  map[string]*discordgo.Member
	// MemberPermissions keyed by user id.
	MemberPermissions map[string]int64

	// RoleErr is returned by AddRole and RemoveRole when set.
	RoleErr error

	Messages  []Sent
	Direct    map[string][]*discordgo.MessageEmbed
	Reactions map[string][]string
	Deleted   []string
	Reasons   []string

	nextID int
	// cache is a snapshot served by Roles and Channels after Lag.
	cache *snapshot
	// OnSend runs after a message is recorded, outside the lock.
	OnSend func(Sent)
}

type snapshot struct {
	roles    []*discordgo.Role
	channels []*discordgo.Channel
}

func New() *Guild {
	return &Guild{
		GuildMembers:      map[string]*discordgo.Member{},
		MemberPermissions: map[string]int64{},
		Direct:            map[string][]*discordgo.MessageEmbed{},
		Reactions:         map[string][]string{},
		nextID:            1000,
	}
}

var (
	_ guild.Directory   = (*Guild)(nil)
	_ guild.RoleMutator = (*Guild)(nil)
	_ guild.Messenger   = (*Guild)(nil)
	_ guild.Provisioner = (*Guild)(nil)
	_ guild.Fetcher     = (*Guild)(nil)
)

// Lag freezes what Roles and Channels return, like a gateway cache that has
// not seen later changes yet. FetchRoles and FetchChannels stay current.
func (g *Guild) Lag() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache = &snapshot{
		roles:    append([]*discordgo.Role(nil), g.GuildRoles...),
		channels: append([]*discordgo.Channel(nil), g.GuildChannels...),
	}
}

func (g *Guild) id() string {
	g.nextID++
	return strconv.Itoa(g.nextID)
}

// AddMember registers a member holding roles.
func (g *Guild) AddMember(userID string, bot bool, roles ...string) *discordgo.Member {
	g.mu.Lock()
	defer g.mu.Unlock()
	m := &discordgo.Member{
		User:  &discordgo.User{ID: userID, Username: "user" + userID, Bot: bot},
		Roles: append([]string(nil), roles...),
	}
	g.GuildMembers[userID] = m
	return m
}

func (g *Guild) MemberRoles(userID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if m, ok := g.GuildMembers[userID]; ok {
		return append([]string(nil), m.Roles...)
	}
	return nil
}

func (g *Guild) Roles(string) ([]*discordgo.Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cache != nil {
		return append([]*discordgo.Role(nil), g.cache.roles...), nil
	}
	return append([]*discordgo.Role(nil), g.GuildRoles...), nil
}

func (g *Guild) Channels(string) ([]*discordgo.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cache != nil {
		return append([]*discordgo.Channel(nil), g.cache.channels...), nil
	}
	return append([]*discordgo.Channel(nil), g.GuildChannels...), nil
}

func (g *Guild) FetchRoles(string) ([]*discordgo.Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*discordgo.Role(nil), g.GuildRoles...), nil
}

func (g *Guild) FetchChannels(string) ([]*discordgo.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*discordgo.Channel(nil), g.GuildChannels...), nil
}

func (g *Guild) Channel(channelID string) (*discordgo.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.GuildChannels {
		if c.ID == channelID {
			return c, nil
		}
	}
	return nil, fmt.Errorf("channel %s: %w", channelID, ErrUnknown)
}

func (g *Guild) Member(_, userID string) (*discordgo.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if m, ok := g.GuildMembers[userID]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("member %s: %w", userID, ErrUnknown)
}

func (g *Guild) Members(string) ([]*discordgo.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	members := make([]*discordgo.Member, 0, len(g.GuildMembers))
	for _, m := range g.GuildMembers {
		members = append(members, m)
	}
	return members, nil
}

func (g *Guild) Permissions(userID, _ string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.MemberPermissions[userID], nil
}

func (g *Guild) AddRole(_, userID, roleID, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.RoleErr != nil {
		return g.RoleErr
	}
	m, ok := g.GuildMembers[userID]
	if !ok {
		return fmt.Errorf("member %s: %w", userID, ErrUnknown)
	}
	g.Reasons = append(g.Reasons, reason)
	for _, r := range m.Roles {
		if r == roleID {
			return nil
		}
	}
	m.Roles = append(m.Roles, roleID)
	return nil
}

func (g *Guild) RemoveRole(_, userID, roleID, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.RoleErr != nil {
		return g.RoleErr
	}
	m, ok := g.GuildMembers[userID]
	if !ok {
		return fmt.Errorf("member %s: %w", userID, ErrUnknown)
	}
	g.Reasons = append(g.Reasons, reason)
	kept := m.Roles[:0]
	for _, r := range m.Roles {
		if r != roleID {
			kept = append(kept, r)
		}
	}
	m.Roles = kept
	return nil
}

func (g *Guild) record(s Sent) (*discordgo.Message, error) {
	g.mu.Lock()
	s.ID = g.id()
	g.Messages = append(g.Messages, s)
	onSend := g.OnSend
	g.mu.Unlock()

	if onSend != nil {
		onSend(s)
	}
	return &discordgo.Message{ID: s.ID, ChannelID: s.ChannelID, Content: s.Content}, nil
}

func (g *Guild) Send(channelID, content string) (*discordgo.Message, error) {
	return g.record(Sent{ChannelID: channelID, Content: content})
}

func (g *Guild) SendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return g.record(Sent{ChannelID: channelID, Embed: embed})
}

func (g *Guild) SendDirect(userID string, embed *discordgo.MessageEmbed) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Direct[userID] = append(g.Direct[userID], embed)
	return nil
}

func (g *Guild) React(_, messageID, emoji string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Reactions[messageID] = append(g.Reactions[messageID], emoji)
	return nil
}

func (g *Guild) Delete(_, messageID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Deleted = append(g.Deleted, messageID)
	return nil
}

func (g *Guild) DeletedMessages() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.Deleted...)
}

// Sent returns a copy of the messages sent so far.
func (g *Guild) Sent() []Sent {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Sent(nil), g.Messages...)
}

func (g *Guild) CreateChannel(guildID string, data discordgo.GuildChannelCreateData, _ string) (*discordgo.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := &discordgo.Channel{
		ID:                   g.id(),
		GuildID:              guildID,
		Name:                 data.Name,
		Type:                 data.Type,
		ParentID:             data.ParentID,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	g.GuildChannels = append(g.GuildChannels, c)
	return c, nil
}

func (g *Guild) DeleteChannel(channelID, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, c := range g.GuildChannels {
		if c.ID == channelID {
			g.GuildChannels = append(g.GuildChannels[:i], g.GuildChannels[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("channel %s: %w", channelID, ErrUnknown)
}

func (g *Guild) CreateRole(_ string, params *discordgo.RoleParams, _ string) (*discordgo.Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := &discordgo.Role{ID: g.id(), Name: params.Name}
	if params.Mentionable != nil {
		r.Mentionable = *params.Mentionable
	}
	g.GuildRoles = append(g.GuildRoles, r)
	return r, nil
}

func (g *Guild) DeleteRole(_, roleID, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, r := range g.GuildRoles {
		if r.ID == roleID {
			g.GuildRoles = append(g.GuildRoles[:i], g.GuildRoles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("role %s: %w", roleID, ErrUnknown)
}
