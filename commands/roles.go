package commands

import (
	"errors"
	"fmt"

	"github.com/Haibread/roycemorebot/roles"
	"github.com/bwmarrin/discordgo"
)

// ClassRolesCog serves one command per grade and the school year rollover.
type ClassRolesCog struct {
	class     *roles.ClassRoles
	replier   *roles.Replier
	modmailID string
	okEmoji   string
	noEmoji   string
}

func NewClassRolesCog(class *roles.ClassRoles, replier *roles.Replier, modmailID, okEmoji, noEmoji string) *ClassRolesCog {
	return &ClassRolesCog{class: class, replier: replier, modmailID: modmailID, okEmoji: okEmoji, noEmoji: noEmoji}
}

func (cr *ClassRolesCog) Commands() []*Command {
	var cmds []*Command
	for _, g := range cr.class.Grades() {
		cmds = append(cmds, &Command{
			Name:    g.Command,
			Aliases: g.Aliases,
			Usage:   "[@member]",
			Help:    fmt.Sprintf("Give a member the `%s` role", g.Name),
			Run:     cr.assign(g),
		})
	}
	return append(cmds, &Command{
		Name:    "new-grade",
		Aliases: []string{"ng", "new-school-year"},
		Help:    "Move everyone's grade level role up one",
		Checks:  []Check{HasPermission(discordgo.PermissionManageRoles)},
		Run:     cr.newGrade,
	})
}

func (cr *ClassRolesCog) reply(c *Context, content string) error {
	return cr.replier.Reply(c.ChannelID, c.MessageID, content)
}

func (cr *ClassRolesCog) assign(g roles.Grade) Handler {
	return func(c *Context) error {
		var target *discordgo.Member
		if len(c.Args) > 0 {
			userID, ok := ParseUserMention(c.Args[0])
			if !ok {
				return fmt.Errorf("%w: %q is not a member", ErrUsage, c.Args[0])
			}
			member, err := c.Directory().Member(c.GuildID, userID)
			if err != nil {
				return fmt.Errorf("error while finding member %s: %w", userID, err)
			}
			target = member
		}

		err := cr.class.Assign(c.Author, target, g)
		switch {
		case errors.Is(err, roles.ErrNotModerator):
			return cr.reply(c, cr.noEmoji+" You cannot assign a user other than yourself a class role.")
		case errors.Is(err, roles.ErrHasClassRole):
			return cr.reply(c, fmt.Sprintf("%s You already have a class role. If you mistakenly assigned the wrong role, contact <@%s>.", cr.noEmoji, cr.modmailID))
		case err != nil:
			return err
		}

		if target != nil && target.User.ID != c.Author.User.ID {
			return cr.reply(c, fmt.Sprintf("%s User `%s` has been given the %s role.", cr.okEmoji, target.User.Username, g.Name))
		}
		return cr.reply(c, fmt.Sprintf("%s, you have successfully been given the %s role.", c.Mention(), g.Name))
	}
}

func (cr *ClassRolesCog) newGrade(c *Context) error {
	report, err := cr.class.Promote()
	if err != nil && report.Promoted == 0 && report.Failed == 0 {
		return err
	}
	msg := fmt.Sprintf("Updated all class roles! %d members moved up a grade.", report.Promoted)
	if report.Failed > 0 {
		msg += fmt.Sprintf(" %s %d members could not be updated, check the logs.", cr.noEmoji, report.Failed)
	}
	return c.Reply(msg)
}

// PronounsCog serves the pronoun role toggles.
type PronounsCog struct {
	pronouns *roles.PronounRoles
	replier  *roles.Replier
}

func NewPronounsCog(pronouns *roles.PronounRoles, replier *roles.Replier) *PronounsCog {
	return &PronounsCog{pronouns: pronouns, replier: replier}
}

func (pc *PronounsCog) Commands() []*Command {
	var cmds []*Command
	for _, p := range pc.pronouns.Pronouns() {
		p := p
		cmds = append(cmds, &Command{
			Name:    p.Command,
			Aliases: p.Aliases,
			Help:    fmt.Sprintf("Toggle the `%s` role", p.Label),
			Run: func(c *Context) error {
				if _, err := pc.pronouns.Toggle(c.Author, p); err != nil {
					return err
				}
				return pc.replier.Reply(c.ChannelID, c.MessageID, fmt.Sprintf("%s, you have successfully toggled the %s role.", c.Mention(), p.Label))
			},
		})
	}
	return cmds
}
