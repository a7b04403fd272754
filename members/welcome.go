package members

import (
	"fmt"

	"github.com/Haibread/roycemorebot/guild"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const welcomeColor = 0x2ecc71

const welcomeTemplate = `**__To get started:__**
- Read the rules if you didn't already.

- **Go to the [#roles](%s) channel** and get a Class Role.
*Note: __This is mandatory!__ Read Rule #6.*

- Server invite link is %s. Invite your friends!

All of this, and more, is described in [#welcome](%s).
`

type WelcomeConfig struct {
	InviteLink string
	// Message links to the roles and welcome posts.
	RolesMessage   string
	WelcomeMessage string
}

type Welcomer struct {
	cfg  WelcomeConfig
	msgr guild.Messenger
	log  *zap.SugaredLogger
}

func NewWelcomer(cfg WelcomeConfig, msgr guild.Messenger, log *zap.SugaredLogger) *Welcomer {
	return &Welcomer{cfg: cfg, msgr: msgr, log: log}
}

func (w *Welcomer) Embed(guildID, guildIcon string) *discordgo.MessageEmbed {
	author := &discordgo.MessageEmbedAuthor{Name: "Welcome to the Roycemore Discord Server!"}
	if guildIcon != "" {
		author.IconURL = discordgo.EndpointGuildIcon(guildID, guildIcon)
	}
	return &discordgo.MessageEmbed{
		Color:       welcomeColor,
		Description: fmt.Sprintf(welcomeTemplate, w.cfg.RolesMessage, w.cfg.InviteLink, w.cfg.WelcomeMessage),
		Author:      author,
	}
}

// MemberUpdate sends the welcome DM when a member has just passed
// membership screening. It reports whether a message was sent.
func (w *Welcomer) MemberUpdate(e *discordgo.GuildMemberUpdate, guildIcon string) bool {
	if e.Member == nil || e.User == nil || e.BeforeUpdate == nil {
		return false
	}
	if !e.BeforeUpdate.Pending || e.Pending {
		return false
	}

	w.log.Infow("Member has just verified, sending them a welcome message", "user", e.User.ID)
	if err := w.msgr.SendDirect(e.User.ID, w.Embed(e.GuildID, guildIcon)); err != nil {
		w.log.Warnw("Failed to send welcome message", "user", e.User.ID, "error", err)
		return false
	}
	return true
}
