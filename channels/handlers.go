package channels

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// ChannelDelete drops the record of a club channel deleted by hand. It
// reports whether a club was forgotten, in which case the subscription index
// is stale.
func (p *Provisioner) ChannelDelete(ctx context.Context, e *discordgo.ChannelDelete) bool {
	if e.Channel == nil || e.GuildID != p.guildID || e.ParentID != p.categoryID {
		return false
	}
	forgotten, err := p.Forget(ctx, e.ID)
	if err != nil {
		p.log.Errorw("Failed to drop deleted club channel", "channel", e.ID, "error", err)
		return false
	}
	return forgotten
}
