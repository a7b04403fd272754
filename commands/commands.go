// Package commands routes the bot's prefix commands to their cogs and
// registers the slash commands.
package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var (
	botCommands = []*discordgo.ApplicationCommand{
		{
			Type:        discordgo.ChatApplicationCommand,
			Name:        "ping",
			Description: "Send the latency of the bot",
		},
	}
	slashHandlers = map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) error{
		"ping": Ping,
	}
)

// RegisterCommands overwrites the guild's slash commands and installs their
// interaction handler.
func RegisterCommands(dg *discordgo.Session, guildID string, log *zap.SugaredLogger) error {
	log.Info("Adding slash commands")
	if _, err := dg.ApplicationCommandBulkOverwrite(dg.State.User.ID, guildID, botCommands); err != nil {
		return fmt.Errorf("cannot create commands: %w", err)
	}
	dg.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteraction(s, i, log)
	})
	return nil
}

func RemoveCommands(dg *discordgo.Session, guildID string, log *zap.SugaredLogger) {
	available, err := dg.ApplicationCommands(dg.State.User.ID, guildID)
	if err != nil {
		log.Errorw("Could not list commands", "error", err)
		return
	}
	for _, v := range available {
		if err := dg.ApplicationCommandDelete(dg.State.User.ID, guildID, v.ID); err != nil {
			log.Warnw("Could not delete command", "command", v.Name, "error", err)
			continue
		}
		log.Infow("Deleted command", "command", v.Name)
	}
	log.Info("Deleted commands")
}
