// Package subscriptions lets members subscribe to announcement roles by
// name. It keeps an index of subscription name to role, built from the
// guild's clubs category and persisted as JSON.
package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Haibread/roycemorebot/guild"
	"github.com/Haibread/roycemorebot/metrics"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var ErrNoMatch = errors.New("no matching subscription")

type Options struct {
	GuildID         string
	ClubsCategoryID string
	File            string
	// Threshold is the lowest match score accepted, 1-100. Zero means
	// DefaultThreshold.
	Threshold       int
	ReloadTimeout   time.Duration
}

type Service struct {
	opts    Options
	dir     guild.Directory
	roles   guild.RoleMutator
	metrics *metrics.Metrics
	log     *zap.SugaredLogger

	Flow *ReloadFlow

	mu    sync.RWMutex
	index Index
}

// NewService loads the persisted index. A malformed file is logged and the
// service starts with an empty index.
func NewService(opts Options, dir guild.Directory, roles guild.RoleMutator, m *metrics.Metrics, log *zap.SugaredLogger) (*Service, error) {
	idx, err := LoadIndex(opts.File)
	switch {
	case errors.Is(err, ErrMalformedIndex):
		log.Errorw("Announcement roles file is malformed, starting with no announcement roles", "file", opts.File, "error", err)
		idx = Index{}
	case err != nil:
		return nil, err
	case len(idx) > 0:
		log.Infow("Loaded announcement roles from save file", "file", opts.File, "count", len(idx))
	}

	m.IndexSize(len(idx))
	return &Service{
		opts:    opts,
		dir:     dir,
		roles:   roles,
		metrics: m,
		log:     log,
		Flow:    NewReloadFlow(opts.ReloadTimeout),
		index:   idx,
	}, nil
}

// Index returns the current index. Callers must not modify it.
func (s *Service) Index() Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

func (s *Service) Empty() bool {
	return len(s.Index()) == 0
}

// Reload rebuilds the index from the live guild, read past any cache, and
// persists it. On any failure the previous index stays in place.
func (s *Service) Reload() (Index, error) {
	s.log.Debugw("Starting announcement role reload", "guild", s.opts.GuildID)

	roles, err := guild.LiveRoles(s.dir, s.opts.GuildID)
	if err != nil {
		return nil, fmt.Errorf("error while listing roles: %w", err)
	}
	channels, err := guild.LiveChannels(s.dir, s.opts.GuildID)
	if err != nil {
		return nil, fmt.Errorf("error while listing channels: %w", err)
	}

	var clubs []*discordgo.Channel
	for _, c := range channels {
		if c.ParentID == s.opts.ClubsCategoryID {
			clubs = append(clubs, c)
		}
	}

	idx, err := Build(roles, clubs)
	if err != nil {
		return nil, err
	}
	if err := idx.Save(s.opts.File); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()

	s.metrics.IndexSize(len(idx))
	s.log.Infow("Announcement role reload finished", "count", len(idx))
	return idx, nil
}

// List returns the subscription names in order, clubs marked as such.
func (s *Service) List() []string {
	idx := s.Index()
	names := idx.Names()
	for i, name := range names {
		if idx[name].Club {
			names[i] = name + " (club)"
		}
	}
	return names
}

// Resolve finds the subscription closest to query.
func (s *Service) Resolve(query string) (string, Entry, bool) {
	idx := s.Index()
	threshold := s.opts.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	name, ok := Resolve(query, idx.Names(), threshold)
	s.metrics.Lookup(ok)
	if !ok {
		return "", Entry{}, false
	}
	return name, idx[name], true
}

// Subscribe gives the member the role of the subscription closest to query
// and returns the subscription name.
func (s *Service) Subscribe(userID, query string) (string, error) {
	name, entry, ok := s.Resolve(query)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoMatch, query)
	}

	roleID := strconv.FormatInt(entry.RoleID, 10)
	if err := s.roles.AddRole(s.opts.GuildID, userID, roleID, "Subscriptions"); err != nil {
		return name, fmt.Errorf("error while subscribing to %s: %w", name, err)
	}
	s.log.Infow("Subscribed member", "user", userID, "subscription", name)
	return name, nil
}

func (s *Service) Unsubscribe(userID, query string) (string, error) {
	name, entry, ok := s.Resolve(query)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoMatch, query)
	}

	roleID := strconv.FormatInt(entry.RoleID, 10)
	if err := s.roles.RemoveRole(s.opts.GuildID, userID, roleID, "Subscriptions"); err != nil {
		return name, fmt.Errorf("error while unsubscribing from %s: %w", name, err)
	}
	s.log.Infow("Unsubscribed member", "user", userID, "subscription", name)
	return name, nil
}

// PromptReload asks the moderators in channelID whether to reload, and
// reloads on confirmation.
func (s *Service) PromptReload(ctx context.Context, msgr guild.Messenger, channelID, modRoleID, prefix string) (Outcome, error) {
	s.log.Info("No announcement roles found, requesting to reload")

	if err := s.Flow.Arm(); err != nil {
		return 0, err
	}
	msg, err := msgr.Send(channelID, fmt.Sprintf("<@&%s>\nNo announcement roles are loaded. Reload?", modRoleID))
	if err != nil {
		s.Flow.Disarm()
		return 0, fmt.Errorf("error while sending reload prompt: %w", err)
	}
	s.Flow.Bind(msg.ID)
	for _, emoji := range []string{ConfirmEmoji, CancelEmoji} {
		if err := msgr.React(channelID, msg.ID, emoji); err != nil {
			s.Flow.Disarm()
			return 0, fmt.Errorf("error while reacting to reload prompt: %w", err)
		}
	}

	outcome, r, err := s.Flow.Wait(ctx)
	if err != nil {
		return 0, err
	}

	retry := fmt.Sprintf("Use `%ssubscriptions reload` to reload the announcement roles.", prefix)
	switch outcome {
	case Confirmed:
		s.log.Infow("Announcement role reload started", "user", r.UserID)
		if _, err := s.Reload(); err != nil {
			_, _ = msgr.Send(channelID, fmt.Sprintf("Announcement role reload failed: %v. %s", err, retry))
			return outcome, err
		}
		_, err = msgr.Send(channelID, "Announcement roles reloaded!")
	case Cancelled:
		s.log.Infow("Announcement role reload canceled", "user", r.UserID)
		_, err = msgr.Send(channelID, "Announcement role reload canceled. "+retry)
	case TimedOut:
		s.log.Info("Announcement role reload timed out")
		_, err = msgr.Send(channelID, "Announcement role reload timeout. "+retry)
	}
	return outcome, err
}
