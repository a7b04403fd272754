package commands

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, log *zap.SugaredLogger) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := i.ApplicationCommandData().Name
	h, ok := slashHandlers[name]
	if !ok {
		return
	}
	if err := h(s, i); err != nil {
		log.Errorw("Slash command failed", "command", name, "error", err)
	}
}

// Ping answers /ping with the same embed as the prefix command.
func Ping(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sent, err := discordgo.SnowflakeTimestamp(i.ID)
	if err != nil {
		sent = time.Now()
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{PingEmbed(time.Since(sent), s.HeartbeatLatency())},
		},
	})
}
