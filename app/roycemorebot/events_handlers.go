package main

import (
	"context"
	"sync"

	"github.com/Haibread/roycemorebot/channels"
	"github.com/Haibread/roycemorebot/commands"
	"github.com/Haibread/roycemorebot/config"
	"github.com/Haibread/roycemorebot/guild"
	"github.com/Haibread/roycemorebot/members"
	"github.com/Haibread/roycemorebot/metrics"
	"github.com/Haibread/roycemorebot/subscriptions"
	"github.com/bwmarrin/discordgo"
)

type bot struct {
	cfg      *config.Config
	gs       *guild.Session
	metrics  *metrics.Metrics
	svc      *subscriptions.Service
	clubs    *channels.Provisioner
	router   *commands.Router
	syncer   *members.Syncer
	welcomer *members.Welcomer

	promptOnce sync.Once
}

func (b *bot) addHandlers(ctx context.Context, dg *discordgo.Session) {
	log.Info("Adding handlers")
	dg.AddHandler(func(s *discordgo.Session, e *discordgo.Ready) {
		log.Infow("Logged in", "user", s.State.User.Username, "guilds", len(e.Guilds))
	})
	dg.AddHandler(func(s *discordgo.Session, e *discordgo.GuildCreate) {
		b.guildCreate(ctx, e)
	})
	dg.AddHandler(func(s *discordgo.Session, e *discordgo.MessageCreate) {
		b.router.Dispatch(ctx, e.Message)
	})
	dg.AddHandler(func(s *discordgo.Session, e *discordgo.MessageReactionAdd) {
		b.reactionAdd(s, e)
	})
	dg.AddHandler(func(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
		if e.Member == nil || e.GuildID != b.cfg.Guild.ID {
			return
		}
		if err := b.syncer.Sync(ctx, e.Member); err != nil {
			log.Warnw("Could not record new member", "error", err)
		}
	})
	dg.AddHandler(func(s *discordgo.Session, e *discordgo.GuildMemberUpdate) {
		b.memberUpdate(ctx, s, e)
	})
	dg.AddHandler(func(s *discordgo.Session, e *discordgo.GuildMemberRemove) {
		if e.Member == nil || e.User == nil || e.GuildID != b.cfg.Guild.ID {
			return
		}
		if err := b.syncer.Left(ctx, e.User.ID); err != nil {
			log.Warnw("Could not record member leaving", "user", e.User.ID, "error", err)
		}
	})
	dg.AddHandler(func(s *discordgo.Session, e *discordgo.ChannelDelete) {
		if !b.clubs.ChannelDelete(ctx, e) {
			return
		}
		if _, err := b.svc.Reload(); err != nil {
			log.Errorw("Announcement role reload after club deletion failed", "channel", e.ID, "error", err)
		}
	})
}

// guildCreate offers the moderators a reload the first time the guild comes
// up without any announcement roles loaded.
func (b *bot) guildCreate(ctx context.Context, e *discordgo.GuildCreate) {
	if e.Guild == nil || e.ID != b.cfg.Guild.ID {
		return
	}
	b.promptOnce.Do(func() {
		if !b.svc.Empty() {
			return
		}
		go func() {
			outcome, err := b.svc.PromptReload(ctx, b.gs, b.cfg.Guild.Channels.ModBotCommands, b.cfg.Guild.StaffRoles.Mod, b.cfg.Bot.Prefix)
			if err != nil {
				log.Errorw("Announcement role reload prompt failed", "error", err)
				return
			}
			log.Infow("Announcement role reload prompt answered", "outcome", outcome.String())
		}()
	})
}

func (b *bot) reactionAdd(s *discordgo.Session, e *discordgo.MessageReactionAdd) {
	if e.GuildID != b.cfg.Guild.ID {
		return
	}
	isBot := e.UserID == s.State.User.ID
	if e.Member != nil && e.Member.User != nil {
		isBot = isBot || e.Member.User.Bot
	}
	b.svc.Flow.Offer(subscriptions.Reaction{
		MessageID: e.MessageID,
		UserID:    e.UserID,
		Emoji:     e.Emoji.Name,
		Bot:       isBot,
	})
}

func (b *bot) memberUpdate(ctx context.Context, s *discordgo.Session, e *discordgo.GuildMemberUpdate) {
	if e.Member == nil || e.GuildID != b.cfg.Guild.ID {
		return
	}
	if err := b.syncer.Sync(ctx, e.Member); err != nil {
		log.Warnw("Could not record member update", "error", err)
	}

	var icon string
	if g, err := s.State.Guild(e.GuildID); err == nil {
		icon = g.Icon
	}
	b.welcomer.MemberUpdate(e, icon)
}
