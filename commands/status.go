package commands

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	colorGreen  = 0x2ecc71
	colorOrange = 0xe67e22
	colorRed    = 0xe74c3c
)

// PingEmbed reports both latencies, coloured by the slower of the two.
func PingEmbed(botLatency, apiLatency time.Duration) *discordgo.MessageEmbed {
	color := colorRed
	switch {
	case botLatency <= 100*time.Millisecond && apiLatency <= 100*time.Millisecond:
		color = colorGreen
	case botLatency <= 250*time.Millisecond && apiLatency <= 250*time.Millisecond:
		color = colorOrange
	}
	return &discordgo.MessageEmbed{
		Title: "Pong!",
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Bot latency:", Value: formatLatency(botLatency)},
			{Name: "Discord API Latency:", Value: formatLatency(apiLatency)},
		},
	}
}

func formatLatency(d time.Duration) string {
	return fmt.Sprintf("%.3f ms", float64(d)/float64(time.Millisecond))
}

type StatusCog struct {
	heartbeat func() time.Duration
	now       func() time.Time
}

// NewStatusCog reads the gateway latency from heartbeat, usually
// (*discordgo.Session).HeartbeatLatency.
func NewStatusCog(heartbeat func() time.Duration) *StatusCog {
	return &StatusCog{heartbeat: heartbeat, now: time.Now}
}

func (s *StatusCog) Commands() []*Command {
	return []*Command{
		{Name: "ping", Help: "Send the latency of the bot", Run: s.ping},
		{Name: "hello", Help: "Say hello", Run: hello},
	}
}

func (s *StatusCog) ping(c *Context) error {
	return c.ReplyEmbed(PingEmbed(s.now().Sub(c.Timestamp), s.heartbeat()))
}

func hello(c *Context) error {
	return c.Reply("Hello!")
}
