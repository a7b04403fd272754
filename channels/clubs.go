// Package channels provisions club channels and the roles that go with them.
package channels

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Haibread/roycemorebot/database"
	"github.com/Haibread/roycemorebot/guild"
	"github.com/Haibread/roycemorebot/models"
	"github.com/Haibread/roycemorebot/subscriptions"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const auditReason = "Club Management"

// LeaderPermissions are granted to the leader role on its club channel.
const LeaderPermissions = discordgo.PermissionManageMessages | discordgo.PermissionMentionEveryone

var (
	ErrClubExists  = errors.New("club channel already exists")
	ErrUnknownClub = errors.New("no such club channel")
	ErrInvalidName = errors.New("invalid club channel name")
)

// ClubStore records provisioned clubs.
type ClubStore interface {
	Get(ctx context.Context, channelID string) (*models.Club, error)
	Upsert(ctx context.Context, club *models.Club) error
	Delete(ctx context.Context, channelID string) error
}

type ClubRequest struct {
	Name        string
	Leaders     []string // user ids
	Club        bool
	LeaderTitle string
}

type Provisioner struct {
	guildID    string
	categoryID string

	dir   guild.Directory
	prov  guild.Provisioner
	roles guild.RoleMutator
	store ClubStore
	namer *RoleNamer
	log   *zap.SugaredLogger
}

func NewProvisioner(guildID, categoryID string, dir guild.Directory, prov guild.Provisioner, roles guild.RoleMutator, store ClubStore, namer *RoleNamer, log *zap.SugaredLogger) *Provisioner {
	return &Provisioner{
		guildID:    guildID,
		categoryID: categoryID,
		dir:        dir,
		prov:       prov,
		roles:      roles,
		store:      store,
		namer:      namer,
		log:        log,
	}
}

var (
	channelNameChars  = regexp.MustCompile(`[^a-z0-9_-]+`)
	channelNameDashes = regexp.MustCompile(`-{2,}`)
)

// NormalizeChannelName turns a name into the form Discord gives text channels.
func NormalizeChannelName(name string) string {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "#")))
	name = strings.Join(strings.Fields(name), "-")
	name = channelNameChars.ReplaceAllString(name, "")
	return strings.Trim(channelNameDashes.ReplaceAllString(name, "-"), "-")
}

// CreateClub creates the club channel under the clubs category together with
// its announcement and leader roles, and hands the leader role to the leaders.
// Anything created before a failure is deleted again.
func (p *Provisioner) CreateClub(ctx context.Context, req ClubRequest) (*models.Club, error) {
	name := NormalizeChannelName(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, req.Name)
	}
	if c, err := p.findClubChannel(name); err == nil {
		return nil, fmt.Errorf("%w: #%s", ErrClubExists, c.Name)
	}

	vars := NewRoleName(name, req.Club, req.LeaderTitle)
	announcementName, err := p.namer.AnnouncementRole(vars)
	if err != nil {
		return nil, fmt.Errorf("error while naming announcement role: %w", err)
	}
	leaderName, err := p.namer.LeaderRole(vars)
	if err != nil {
		return nil, fmt.Errorf("error while naming leader role: %w", err)
	}

	var undo []func()
	rollback := func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}

	mentionable := true
	announcement, err := p.prov.CreateRole(p.guildID, &discordgo.RoleParams{Name: announcementName, Mentionable: &mentionable}, auditReason)
	if err != nil {
		return nil, fmt.Errorf("error while creating role %s: %w", announcementName, err)
	}
	undo = append(undo, func() { p.deleteRole(announcement.ID) })

	hoist := true
	leader, err := p.prov.CreateRole(p.guildID, &discordgo.RoleParams{Name: leaderName, Hoist: &hoist, Mentionable: &mentionable}, auditReason)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("error while creating role %s: %w", leaderName, err)
	}
	undo = append(undo, func() { p.deleteRole(leader.ID) })

	channel, err := p.prov.CreateChannel(p.guildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: p.categoryID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: leader.ID, Type: discordgo.PermissionOverwriteTypeRole, Allow: LeaderPermissions},
		},
	}, auditReason)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("error while creating channel #%s: %w", name, err)
	}
	undo = append(undo, func() {
		if err := p.prov.DeleteChannel(channel.ID, auditReason); err != nil {
			p.log.Errorw("Failed to delete club channel during rollback", "channel", channel.ID, "error", err)
		}
	})

	for _, userID := range req.Leaders {
		if err := p.roles.AddRole(p.guildID, userID, leader.ID, auditReason); err != nil {
			rollback()
			return nil, fmt.Errorf("error while giving %s the %s role: %w", userID, leaderName, err)
		}
	}

	club := &models.Club{
		ChannelID:          channel.ID,
		GuildID:            p.guildID,
		Name:               name,
		AnnouncementRoleID: announcement.ID,
		LeaderRoleID:       leader.ID,
		Club:               req.Club,
	}
	if err := p.store.Upsert(ctx, club); err != nil {
		rollback()
		return nil, err
	}

	p.log.Infow("Created club", "channel", channel.ID, "name", name, "announcement_role", announcementName, "leader_role", leaderName, "leaders", len(req.Leaders))
	return club, nil
}

func (p *Provisioner) deleteRole(roleID string) {
	if err := p.prov.DeleteRole(p.guildID, roleID, auditReason); err != nil {
		p.log.Errorw("Failed to delete club role during rollback", "role", roleID, "error", err)
	}
}

// RemoveClub deletes a club channel and its two roles. ref is a channel
// mention, id or name. Clubs created by hand have no record; their roles are
// found by name.
func (p *Provisioner) RemoveClub(ctx context.Context, ref string) (*models.Club, error) {
	channel, err := p.findClubChannel(ref)
	if err != nil {
		return nil, err
	}

	club, err := p.store.Get(ctx, channel.ID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		club, err = p.clubFromRoles(channel)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	if err := p.prov.DeleteChannel(channel.ID, auditReason); err != nil {
		return nil, fmt.Errorf("error while deleting channel #%s: %w", channel.Name, err)
	}
	for _, roleID := range []string{club.AnnouncementRoleID, club.LeaderRoleID} {
		if roleID == "" {
			continue
		}
		if err := p.prov.DeleteRole(p.guildID, roleID, auditReason); err != nil {
			return nil, fmt.Errorf("error while deleting role %s: %w", roleID, err)
		}
	}
	if err := p.store.Delete(ctx, channel.ID); err != nil {
		return nil, err
	}

	p.log.Infow("Removed club", "channel", channel.ID, "name", channel.Name)
	return club, nil
}

// Forget drops the record of a club channel deleted outside the bot. It
// reports whether the channel was a recorded club.
func (p *Provisioner) Forget(ctx context.Context, channelID string) (bool, error) {
	if _, err := p.store.Get(ctx, channelID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := p.store.Delete(ctx, channelID); err != nil {
		return false, err
	}
	p.log.Infow("Club channel was deleted, dropped its record", "channel", channelID)
	return true, nil
}

func (p *Provisioner) clubFromRoles(channel *discordgo.Channel) (*models.Club, error) {
	roles, err := guild.LiveRoles(p.dir, p.guildID)
	if err != nil {
		return nil, fmt.Errorf("error while listing roles: %w", err)
	}
	club := &models.Club{ChannelID: channel.ID, GuildID: p.guildID, Name: channel.Name}
	if r := subscriptions.AnnouncementRoleFor(channel.Name, roles); r != nil {
		club.AnnouncementRoleID = r.ID
		club.Club = strings.Contains(strings.ToLower(r.Name), "club")
	}
	if r := LeaderRoleFor(channel.Name, roles); r != nil {
		club.LeaderRoleID = r.ID
	}
	return club, nil
}

// findClubChannel resolves a channel mention, id or name to a channel of the
// clubs category.
func (p *Provisioner) findClubChannel(ref string) (*discordgo.Channel, error) {
	ref = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(ref), "<#"), ">")
	name := NormalizeChannelName(ref)

	channels, err := guild.LiveChannels(p.dir, p.guildID)
	if err != nil {
		return nil, fmt.Errorf("error while listing channels: %w", err)
	}
	for _, c := range channels {
		if c.ParentID != p.categoryID {
			continue
		}
		if c.ID == ref || c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownClub, ref)
}

// LeaderRoleFor finds the leader role of a club channel: the first role whose
// lower-cased name starts with the channel name and a space and that is not an
// announcement role.
func LeaderRoleFor(channelName string, roles []*discordgo.Role) *discordgo.Role {
	prefix := strings.ToLower(channelName) + " "
	for _, r := range roles {
		if strings.Contains(r.Name, "Announcements") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(r.Name), prefix) {
			return r
		}
	}
	return nil
}
