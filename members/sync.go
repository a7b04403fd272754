// Package members keeps the user records in step with the guild and greets
// members once they pass membership screening.
package members

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Haibread/roycemorebot/database"
	"github.com/Haibread/roycemorebot/guild"
	"github.com/Haibread/roycemorebot/models"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type UserStore interface {
	Upsert(ctx context.Context, user *models.User) error
	MarkLeft(ctx context.Context, userID int64) error
}

// Syncer mirrors guild members into user records.
type Syncer struct {
	guildID string
	dir     guild.Directory
	store   UserStore
	log     *zap.SugaredLogger
}

func NewSyncer(guildID string, dir guild.Directory, store UserStore, log *zap.SugaredLogger) *Syncer {
	return &Syncer{guildID: guildID, dir: dir, store: store, log: log}
}

// UserFromMember converts a guild member into a user record.
func UserFromMember(m *discordgo.Member) (*models.User, error) {
	if m == nil || m.User == nil {
		return nil, fmt.Errorf("%w: member has no user", models.ErrInvalid)
	}
	id, err := strconv.ParseInt(m.User.ID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: user id %q: %v", models.ErrInvalid, m.User.ID, err)
	}
	disc := 0
	if m.User.Discriminator != "" {
		if disc, err = strconv.Atoi(m.User.Discriminator); err != nil {
			return nil, fmt.Errorf("%w: discriminator %q: %v", models.ErrInvalid, m.User.Discriminator, err)
		}
	}
	roles := make([]int64, 0, len(m.Roles))
	for _, r := range m.Roles {
		roleID, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: role id %q: %v", models.ErrInvalid, r, err)
		}
		roles = append(roles, roleID)
	}
	return models.NewUser(id, m.User.Username, disc, roles)
}

// Sync records the member. Bots are not recorded.
func (s *Syncer) Sync(ctx context.Context, m *discordgo.Member) error {
	if m == nil || m.User == nil || m.User.Bot {
		return nil
	}
	user, err := UserFromMember(m)
	if err != nil {
		return err
	}
	if err := s.store.Upsert(ctx, user); err != nil {
		return err
	}
	s.log.Debugw("Synced user record", "user", user.String(), "roles", len(user.Roles))
	return nil
}

// Left marks the user as gone. Users without a record are ignored.
func (s *Syncer) Left(ctx context.Context, userID string) error {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: user id %q: %v", models.ErrInvalid, userID, err)
	}
	if err := s.store.MarkLeft(ctx, id); err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	return nil
}

// SyncAll records every member of the guild. It keeps going past members
// that fail and returns their joined errors.
func (s *Syncer) SyncAll(ctx context.Context) (int, error) {
	members, err := s.dir.Members(s.guildID)
	if err != nil {
		return 0, err
	}

	synced := 0
	var errs []error
	for _, m := range members {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if m.User == nil || m.User.Bot {
			continue
		}
		if err := s.Sync(ctx, m); err != nil {
			errs = append(errs, err)
			continue
		}
		synced++
	}
	s.log.Infow("Member sync finished", "synced", synced, "failed", len(errs))
	return synced, errors.Join(errs...)
}
