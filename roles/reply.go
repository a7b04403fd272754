package roles

import (
	"time"

	"github.com/Haibread/roycemorebot/guild"
	"go.uber.org/zap"
)

// DefaultDeleteAfter is how long replies stay up in the roles channel.
const DefaultDeleteAfter = 5 * time.Second

// Replier answers role commands. In the roles channel the reply and the
// command message are deleted after a delay to keep the channel clean.
type Replier struct {
	msgr           guild.Messenger
	rolesChannelID string
	deleteAfter    time.Duration
	log            *zap.SugaredLogger
}

func NewReplier(msgr guild.Messenger, rolesChannelID string, deleteAfter time.Duration, log *zap.SugaredLogger) *Replier {
	if deleteAfter <= 0 {
		deleteAfter = DefaultDeleteAfter
	}
	return &Replier{msgr: msgr, rolesChannelID: rolesChannelID, deleteAfter: deleteAfter, log: log}
}

func (r *Replier) Reply(channelID, commandMessageID, content string) error {
	msg, err := r.msgr.Send(channelID, content)
	if err != nil {
		return err
	}
	if channelID != r.rolesChannelID {
		return nil
	}

	time.AfterFunc(r.deleteAfter, func() {
		for _, id := range []string{msg.ID, commandMessageID} {
			if err := r.msgr.Delete(channelID, id); err != nil {
				r.log.Warnw("Failed to clean up roles channel message", "channel", channelID, "message", id, "error", err)
			}
		}
	})
	return nil
}
