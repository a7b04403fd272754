package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Haibread/roycemorebot/database"
	"github.com/Haibread/roycemorebot/models"
)

type InfractionStore interface {
	Create(ctx context.Context, inf *models.Infraction) error
	ListForUser(ctx context.Context, userID int64, activeOnly bool) ([]models.Infraction, error)
	Deactivate(ctx context.Context, id uint) error
}

// ModerationCog records warnings against members.
type ModerationCog struct {
	store    InfractionStore
	modRoles []string
	okEmoji  string
}

func NewModerationCog(store InfractionStore, modRoles []string, okEmoji string) *ModerationCog {
	return &ModerationCog{store: store, modRoles: modRoles, okEmoji: okEmoji}
}

func (m *ModerationCog) Commands() []*Command {
	mods := []Check{HasAnyRole(m.modRoles...)}
	return []*Command{
		{Name: "warn", Usage: "<@member> <reason>", Help: "Warn a member", Checks: mods, Run: m.warn},
		{Name: "infractions", Aliases: []string{"infr"}, Usage: "<@member>", Help: "List a member's infractions", Checks: mods, Run: m.infractions},
		{Name: "pardon", Usage: "<id>", Help: "Deactivate an infraction", Checks: mods, Run: m.pardon},
	}
}

func parseMemberArg(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: a member is required", ErrUsage)
	}
	id, ok := ParseUserMention(args[0])
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a member", ErrUsage, args[0])
	}
	return strconv.ParseInt(id, 10, 64)
}

func (m *ModerationCog) warn(c *Context) error {
	userID, err := parseMemberArg(c.Args)
	if err != nil {
		return err
	}
	moderatorID, err := strconv.ParseInt(c.Author.User.ID, 10, 64)
	if err != nil {
		return err
	}
	inf, err := models.NewInfraction(userID, moderatorID, strings.Join(c.Args[1:], " "))
	if err != nil {
		return err
	}
	if err := m.store.Create(c, inf); err != nil {
		return err
	}
	return c.Reply(fmt.Sprintf("%s Warned <@%d> (infraction #%d).", m.okEmoji, userID, inf.ID))
}

func (m *ModerationCog) infractions(c *Context) error {
	userID, err := parseMemberArg(c.Args)
	if err != nil {
		return err
	}
	infs, err := m.store.ListForUser(c, userID, false)
	if err != nil {
		return err
	}
	if len(infs) == 0 {
		return c.Reply(fmt.Sprintf("<@%d> has no infractions.", userID))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Infractions for <@%d>:**", userID)
	for _, inf := range infs {
		state := "active"
		if !inf.Active {
			state = "pardoned"
		}
		fmt.Fprintf(&b, "\n#%d (%s, %s) by <@%d>: %s", inf.ID, inf.CreatedAt.Format("2006-01-02"), state, inf.ModeratorID, inf.Reason)
	}
	return c.Reply(b.String())
}

func (m *ModerationCog) pardon(c *Context) error {
	if len(c.Args) == 0 {
		return fmt.Errorf("%w: an infraction id is required", ErrUsage)
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(c.Args[0], "#"), 10, 0)
	if err != nil {
		return fmt.Errorf("%w: %q is not an infraction id", ErrUsage, c.Args[0])
	}
	if err := m.store.Deactivate(c, uint(id)); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("infraction #%d does not exist", id)
		}
		return err
	}
	return c.Reply(fmt.Sprintf("%s Pardoned infraction #%d.", m.okEmoji, id))
}
