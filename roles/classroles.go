package roles

import (
	"errors"
	"fmt"

	"github.com/Haibread/roycemorebot/config"
	"github.com/Haibread/roycemorebot/guild"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const promotionReason = "Class Roles update."

var (
	ErrHasClassRole = errors.New("member already has a class role")
	ErrNotModerator = errors.New("only moderators can assign roles to other members")
)

// Grade is a class role and the command that assigns it.
type Grade struct {
	Command string
	Aliases []string
	Name    string
	RoleID  string
}

// Grades lists the class roles from youngest to oldest.
func Grades(cfg config.ClassRoles) []Grade {
	return []Grade{
		{Command: "5th-grade", Aliases: []string{"5th", "5th-grader"}, Name: "5th Graders", RoleID: cfg.Grade5},
		{Command: "6th-grade", Aliases: []string{"6th", "6th-grader"}, Name: "6th Graders", RoleID: cfg.Grade6},
		{Command: "7th-grade", Aliases: []string{"7th", "7th-grader"}, Name: "7th Graders", RoleID: cfg.Grade7},
		{Command: "8th-grade", Aliases: []string{"8th", "8th-grader"}, Name: "8th Graders", RoleID: cfg.Grade8},
		{Command: "freshman", Aliases: []string{"fm", "freshmen"}, Name: "Freshmen", RoleID: cfg.Freshmen},
		{Command: "sophomore", Aliases: []string{"sm", "sophomores"}, Name: "Sophomores", RoleID: cfg.Sophomores},
		{Command: "junior", Aliases: []string{"jr", "juniors"}, Name: "Juniors", RoleID: cfg.Juniors},
		{Command: "senior", Aliases: []string{"sr", "seniors"}, Name: "Seniors", RoleID: cfg.Seniors},
		{Command: "alum", Aliases: []string{"al", "alumni"}, Name: "Alumni", RoleID: cfg.Alumni},
	}
}

type ClassRoles struct {
	guildID  string
	grades   []Grade
	modRoles []string

	dir   guild.Directory
	roles guild.RoleMutator
	log   *zap.SugaredLogger
}

func NewClassRoles(guildID string, grades []Grade, modRoles []string, dir guild.Directory, roles guild.RoleMutator, log *zap.SugaredLogger) *ClassRoles {
	return &ClassRoles{
		guildID:  guildID,
		grades:   grades,
		modRoles: modRoles,
		dir:      dir,
		roles:    roles,
		log:      log,
	}
}

func (c *ClassRoles) Grades() []Grade {
	return c.grades
}

func (c *ClassRoles) roleIDs() []string {
	ids := make([]string, 0, len(c.grades))
	for _, g := range c.grades {
		ids = append(ids, g.RoleID)
	}
	return ids
}

// Assign gives target the grade's role. Members can only pick a class role
// for themselves once; moderators can replace anyone's class roles.
func (c *ClassRoles) Assign(author, target *discordgo.Member, grade Grade) error {
	if target == nil || target.User.ID == author.User.ID {
		if HasAnyRole(author, c.roleIDs()...) {
			return ErrHasClassRole
		}
		if err := c.roles.AddRole(c.guildID, author.User.ID, grade.RoleID, "Class Roles"); err != nil {
			return fmt.Errorf("error while assigning %s: %w", grade.Name, err)
		}
		c.log.Infow("Assigned class role", "user", author.User.ID, "role", grade.Name)
		return nil
	}

	if HasNoRoles(author, c.modRoles...) {
		return ErrNotModerator
	}

	c.log.Infow("Replacing class roles at request of moderator", "user", target.User.ID, "moderator", author.User.ID)
	reason := fmt.Sprintf("Moderator %s replacing %s's Class Roles", author.User.Username, target.User.Username)
	for _, held := range c.roleIDs() {
		if !HasAnyRole(target, held) {
			continue
		}
		if err := c.roles.RemoveRole(c.guildID, target.User.ID, held, reason); err != nil {
			return fmt.Errorf("error while removing class role %s: %w", held, err)
		}
	}
	if err := c.roles.AddRole(c.guildID, target.User.ID, grade.RoleID, "Class Roles"); err != nil {
		return fmt.Errorf("error while assigning %s: %w", grade.Name, err)
	}
	return nil
}

// NextGrade returns the class role a member holding roles moves to at the
// start of a school year. Alumni and members without a class role stay put.
func (c *ClassRoles) NextGrade(roles []string) (from, to Grade, ok bool) {
	member := &discordgo.Member{Roles: roles}
	for i, g := range c.grades[:len(c.grades)-1] {
		if HasAnyRole(member, g.RoleID) {
			return g, c.grades[i+1], true
		}
	}
	return Grade{}, Grade{}, false
}

// PromotionReport counts what a school year rollover did.
type PromotionReport struct {
	Promoted int
	Skipped  int
	Failed   int
}

// Promote moves every member up one grade. Failures are logged and the
// rollover continues with the next member; the joined errors are returned.
func (c *ClassRoles) Promote() (PromotionReport, error) {
	var report PromotionReport
	members, err := c.dir.Members(c.guildID)
	if err != nil {
		return report, err
	}

	c.log.Infow("Started class role update", "members", len(members))
	var errs []error
	for _, m := range members {
		if m.User == nil || m.User.Bot {
			report.Skipped++
			continue
		}
		from, to, ok := c.NextGrade(m.Roles)
		if !ok {
			report.Skipped++
			continue
		}
		if err := c.move(m.User.ID, from, to); err != nil {
			c.log.Errorw("Failed to update class role", "user", m.User.ID, "error", err)
			errs = append(errs, err)
			report.Failed++
			continue
		}
		report.Promoted++
	}

	c.log.Infow("Class roles update finished", "promoted", report.Promoted, "skipped", report.Skipped, "failed", report.Failed)
	return report, errors.Join(errs...)
}

func (c *ClassRoles) move(userID string, from, to Grade) error {
	if err := c.roles.RemoveRole(c.guildID, userID, from.RoleID, promotionReason); err != nil {
		return fmt.Errorf("error while removing %s from %s: %w", from.Name, userID, err)
	}
	if err := c.roles.AddRole(c.guildID, userID, to.RoleID, promotionReason); err != nil {
		return fmt.Errorf("error while giving %s to %s: %w", to.Name, userID, err)
	}
	c.log.Debugw("Moved class role", "user", userID, "from", from.Name, "to", to.Name)
	return nil
}
