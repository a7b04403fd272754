package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Haibread/roycemorebot/channels"
	"github.com/Haibread/roycemorebot/commands"
	"github.com/Haibread/roycemorebot/config"
	"github.com/Haibread/roycemorebot/database"
	"github.com/Haibread/roycemorebot/guild"
	"github.com/Haibread/roycemorebot/logging"
	"github.com/Haibread/roycemorebot/members"
	"github.com/Haibread/roycemorebot/metrics"
	"github.com/Haibread/roycemorebot/roles"
	"github.com/Haibread/roycemorebot/subscriptions"
	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var log *zap.SugaredLogger

func main() {
	bootstrap, _ := zap.NewProduction()
	cfg, v, err := config.Load(os.Getenv("ROYCEMORE_CONFIG"))
	if err != nil {
		bootstrap.Sugar().Fatalw("Could not load config", "error", err)
	}
	log, err = logging.InitLogger(cfg.Logging)
	if err != nil {
		bootstrap.Sugar().Fatalw("Could not build logger", "error", err)
	}
	defer log.Sync()
	config.Watch(v, log)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalw("Could not open database", "driver", cfg.Database.Driver, "error", err)
	}

	dg, err := discordgo.New("Bot " + cfg.Bot.Token)
	if err != nil {
		log.Fatalw("Error creating discord session", "error", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := newBot(cfg, dg, db)
	if err != nil {
		log.Fatalw("Could not set up the bot", "error", err)
	}
	b.addHandlers(ctx, dg)

	log.Info("Opening Websocket connection")
	if err := dg.Open(); err != nil {
		log.Fatalw("Could not open Websocket connection", "error", err)
	}
	defer dg.Close()

	if err := dg.UpdateListeningStatus(cfg.Bot.Status); err != nil {
		log.Warnw("Could not set status", "error", err)
	}
	if err := commands.RegisterCommands(dg, cfg.Guild.ID, log); err != nil {
		log.Errorw("Could not register slash commands", "error", err)
	}

	if cfg.Metrics.Addr != "" {
		go b.metrics.Serve(ctx, cfg.Metrics.Addr, log)
	}

	sched := cron.New()
	if err := b.syncer.StartSyncLoop(ctx, sched, cfg.Members.SyncSchedule); err != nil {
		log.Errorw("Member sync is disabled", "error", err)
	}
	sched.Start()
	defer sched.Stop()

	// Wait here until CTRL-C or other term signal is received.
	log.Info("Bot is now running. Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	cancel()
	commands.RemoveCommands(dg, cfg.Guild.ID, log)
}

// newBot wires every component against the discord session.
func newBot(cfg *config.Config, dg *discordgo.Session, db *gorm.DB) (*bot, error) {
	m := metrics.New()
	gs := guild.NewSession(dg, m)

	svc, err := subscriptions.NewService(subscriptions.Options{
		GuildID:         cfg.Guild.ID,
		ClubsCategoryID: cfg.Guild.Categories.Clubs,
		File:            cfg.Subscriptions.File,
		Threshold:       cfg.Subscriptions.Threshold,
		ReloadTimeout:   cfg.Subscriptions.ReloadTimeout,
	}, gs, gs, m, log)
	if err != nil {
		return nil, err
	}

	namer, err := channels.NewRoleNamer(cfg.Subscriptions.AnnouncementRoleTemplate, cfg.Subscriptions.LeaderRoleTemplate)
	if err != nil {
		return nil, err
	}
	clubs := channels.NewProvisioner(cfg.Guild.ID, cfg.Guild.Categories.Clubs, gs, gs, gs, database.NewClubRepository(db), namer, log)

	replier := roles.NewReplier(gs, cfg.Guild.Channels.Roles, roles.DefaultDeleteAfter, log)
	class := roles.NewClassRoles(cfg.Guild.ID, roles.Grades(cfg.Guild.ClassRoles), cfg.ModRoles(), gs, gs, log)
	pronouns := roles.NewPronounRoles(cfg.Guild.ID, roles.Pronouns(cfg.Guild.PronounRoles), gs, log)

	emoji := cfg.Style.Emoji
	router := commands.NewRouter(commands.Options{Prefix: cfg.Bot.Prefix, NoEmoji: emoji.No}, gs, gs, m, log)
	router.Register(commands.NewStatusCog(dg.HeartbeatLatency).Commands()...)
	router.Register(commands.NewSubscriptionsCog(svc, clubs, cfg.ModRoles(), cfg.Guild.StaffRoles.Admin, cfg.Bot.Prefix, emoji.OK).Commands()...)
	router.Register(commands.NewClassRolesCog(class, replier, cfg.Guild.ModmailID, emoji.OK, emoji.No).Commands()...)
	router.Register(commands.NewPronounsCog(pronouns, replier).Commands()...)
	router.Register(commands.NewModerationCog(database.NewInfractionRepository(db), cfg.ModRoles(), emoji.OK).Commands()...)

	return &bot{
		cfg:     cfg,
		gs:      gs,
		metrics: m,
		svc:     svc,
		clubs:   clubs,
		router:  router,
		syncer:  members.NewSyncer(cfg.Guild.ID, gs, database.NewUserRepository(db), log),
		welcomer: members.NewWelcomer(members.WelcomeConfig{
			InviteLink:     cfg.Guild.InviteLink,
			RolesMessage:   cfg.Guild.Messages.Roles,
			WelcomeMessage: cfg.Guild.Messages.Welcome,
		}, gs, log),
	}, nil
}
