package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Haibread/roycemorebot/channels"
	"github.com/Haibread/roycemorebot/subscriptions"
)

// SubscriptionsCog serves the announcement subscription commands.
type SubscriptionsCog struct {
	svc       *subscriptions.Service
	clubs     *channels.Provisioner
	modRoles  []string
	adminRole string
	prefix    string
	okEmoji   string
}

func NewSubscriptionsCog(svc *subscriptions.Service, clubs *channels.Provisioner, modRoles []string, adminRole, prefix, okEmoji string) *SubscriptionsCog {
	return &SubscriptionsCog{
		svc:       svc,
		clubs:     clubs,
		modRoles:  modRoles,
		adminRole: adminRole,
		prefix:    prefix,
		okEmoji:   okEmoji,
	}
}

func (s *SubscriptionsCog) Commands() []*Command {
	return []*Command{
		{
			Name:    "subscribe",
			Aliases: []string{"sub"},
			Usage:   "<name>",
			Help:    "Subscribe to an announcement role",
			Run:     s.subscribe,
		},
		{
			Name:    "unsubscribe",
			Aliases: []string{"unsub"},
			Usage:   "<name>",
			Help:    "Unsubscribe from an announcement role",
			Run:     s.unsubscribe,
		},
		{
			Name:    "subscriptions",
			Aliases: []string{"subs"},
			Help:    "Manage announcement subscriptions",
			Subcommands: []*Command{
				{
					Name:    "list",
					Aliases: []string{"ls"},
					Help:    "List all subscriptions",
					Run:     s.list,
				},
				{
					Name:    "reload",
					Aliases: []string{"r"},
					Help:    "Reload the announcement roles",
					Checks:  []Check{HasAnyRole(s.modRoles...)},
					Run:     s.reload,
				},
				{
					Name:    "add-club",
					Aliases: []string{"ac"},
					Usage:   "<channel-name> [@leaders...] [club=true|false] [leader title]",
					Help:    "Create a club channel and its roles",
					Checks:  []Check{HasAnyRole(s.adminRole)},
					Run:     s.addClub,
				},
				{
					Name:    "remove-club",
					Aliases: []string{"rc"},
					Usage:   "<channel>",
					Help:    "Delete a club channel and its roles",
					Checks:  []Check{HasAnyRole(s.adminRole)},
					Run:     s.removeClub,
				},
			},
		},
	}
}

func (s *SubscriptionsCog) reloadHint() string {
	return fmt.Sprintf("Use `%ssubscriptions reload` to reload the announcement roles.", s.prefix)
}

func (s *SubscriptionsCog) subscribe(c *Context) error {
	return s.toggle(c, true)
}

func (s *SubscriptionsCog) unsubscribe(c *Context) error {
	return s.toggle(c, false)
}

func (s *SubscriptionsCog) toggle(c *Context, subscribe bool) error {
	query := strings.Join(c.Args, " ")
	if query == "" {
		return fmt.Errorf("%w: usage `%s%s <name>`", ErrUsage, s.prefix, c.Path)
	}
	if s.svc.Empty() {
		return c.Reply("No announcement roles are loaded. " + s.reloadHint())
	}

	var (
		name string
		err  error
	)
	if subscribe {
		name, err = s.svc.Subscribe(c.Author.User.ID, query)
	} else {
		name, err = s.svc.Unsubscribe(c.Author.User.ID, query)
	}
	if errors.Is(err, subscriptions.ErrNoMatch) {
		return c.Reply(fmt.Sprintf("No subscription matching `%s` was found. Use `%ssubscriptions list` to see them all.", query, s.prefix))
	}
	if err != nil {
		return err
	}

	if subscribe {
		return c.Reply(fmt.Sprintf("%s %s, you have subscribed to `%s` announcements.", s.okEmoji, c.Mention(), name))
	}
	return c.Reply(fmt.Sprintf("%s %s, you have unsubscribed from `%s` announcements.", s.okEmoji, c.Mention(), name))
}

func (s *SubscriptionsCog) list(c *Context) error {
	names := s.svc.List()
	if len(names) == 0 {
		return c.Reply("No announcement roles are loaded. " + s.reloadHint())
	}
	var b strings.Builder
	b.WriteString("**Subscriptions:**")
	for _, name := range names {
		b.WriteString("\n- ")
		b.WriteString(name)
	}
	return c.Reply(b.String())
}

func (s *SubscriptionsCog) reload(c *Context) error {
	idx, err := s.svc.Reload()
	if err != nil {
		return fmt.Errorf("announcement role reload failed: %w", err)
	}
	return c.Reply(fmt.Sprintf("Announcement roles reloaded! %d subscriptions loaded.", len(idx)))
}

// ParseClubArgs reads the add-club arguments. Leaders are user mentions, a
// club=true|false word sets the club flag (true when absent) and the other
// words form the leader title.
func ParseClubArgs(args []string) (channels.ClubRequest, error) {
	req := channels.ClubRequest{Club: true}
	if len(args) == 0 {
		return req, fmt.Errorf("%w: a channel name is required", ErrUsage)
	}
	req.Name = args[0]

	var title []string
	for _, arg := range args[1:] {
		if strings.HasPrefix(arg, "<@") {
			id, ok := ParseUserMention(arg)
			if !ok {
				return req, fmt.Errorf("%w: %q is not a member mention", ErrUsage, arg)
			}
			req.Leaders = append(req.Leaders, id)
			continue
		}
		if v, ok := strings.CutPrefix(strings.ToLower(arg), "club="); ok {
			club, err := strconv.ParseBool(v)
			if err != nil {
				return req, fmt.Errorf("%w: club must be true or false, got %q", ErrUsage, v)
			}
			req.Club = club
			continue
		}
		title = append(title, arg)
	}
	req.LeaderTitle = strings.Join(title, " ")
	return req, nil
}

func (s *SubscriptionsCog) addClub(c *Context) error {
	req, err := ParseClubArgs(c.Args)
	if err != nil {
		return err
	}
	club, err := s.clubs.CreateClub(c, req)
	if err != nil {
		return err
	}
	if err := c.Reply(fmt.Sprintf("%s Created <#%s> with roles <@&%s> and <@&%s>.", s.okEmoji, club.ChannelID, club.AnnouncementRoleID, club.LeaderRoleID)); err != nil {
		return err
	}
	return s.reload(c)
}

func (s *SubscriptionsCog) removeClub(c *Context) error {
	if len(c.Args) == 0 {
		return fmt.Errorf("%w: usage `%s%s <channel>`", ErrUsage, s.prefix, c.Path)
	}
	club, err := s.clubs.RemoveClub(c, strings.Join(c.Args, " "))
	if err != nil {
		return err
	}
	if err := c.Reply(fmt.Sprintf("%s Removed #%s and its roles.", s.okEmoji, club.Name)); err != nil {
		return err
	}
	return s.reload(c)
}
