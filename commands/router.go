package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Haibread/roycemorebot/guild"
	"github.com/Haibread/roycemorebot/metrics"
	"github.com/Haibread/roycemorebot/roles"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// ErrCheckFailure is returned by checks the invoking member does not pass.
var ErrCheckFailure = errors.New("you do not have permission to use this command")

type Handler func(c *Context) error

// Check decides whether the invoking member may run a command.
type Check func(c *Context) error

type Command struct {
	Name        string
	Aliases     []string
	Usage       string
	Help        string
	Checks      []Check
	Run         Handler
	Subcommands []*Command
}

// Context is a single command invocation.
type Context struct {
	context.Context

	GuildID   string
	ChannelID string
	MessageID string
	Author    *discordgo.Member
	Timestamp time.Time
	// Path is the command as resolved, e.g. "subscriptions reload".
	Path string
	Args []string

	router *Router
}

func (c *Context) Reply(content string) error {
	_, err := c.router.msgr.Send(c.ChannelID, content)
	return err
}

func (c *Context) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	_, err := c.router.msgr.SendEmbed(c.ChannelID, embed)
	return err
}

// Mention is the author mention.
func (c *Context) Mention() string {
	return "<@" + c.Author.User.ID + ">"
}

// Directory exposes the guild directory to handlers and checks.
func (c *Context) Directory() guild.Directory {
	return c.router.dir
}

type Options struct {
	Prefix  string
	NoEmoji string
}

// Router dispatches prefix commands from guild messages.
type Router struct {
	opts     Options
	commands map[string]*Command
	ordered  []*Command

	dir     guild.Directory
	msgr    guild.Messenger
	metrics *metrics.Metrics
	log     *zap.SugaredLogger
}

func NewRouter(opts Options, dir guild.Directory, msgr guild.Messenger, m *metrics.Metrics, log *zap.SugaredLogger) *Router {
	if opts.Prefix == "" {
		opts.Prefix = "?"
	}
	return &Router{
		opts:     opts,
		commands: map[string]*Command{},
		dir:      dir,
		msgr:     msgr,
		metrics:  m,
		log:      log,
	}
}

func (r *Router) Prefix() string {
	return r.opts.Prefix
}

// Register adds commands under their names and aliases. Registering a name
// twice is a programming error and panics.
func (r *Router) Register(cmds ...*Command) {
	for _, cmd := range cmds {
		for _, name := range append([]string{cmd.Name}, cmd.Aliases...) {
			if _, ok := r.commands[name]; ok {
				panic(fmt.Sprintf("commands: %q registered twice", name))
			}
			r.commands[name] = cmd
		}
		r.ordered = append(r.ordered, cmd)
		r.log.Debugw("Command registered", "command", cmd.Name, "aliases", cmd.Aliases)
	}
}

// Commands returns the registered commands sorted by name.
func (r *Router) Commands() []*Command {
	cmds := append([]*Command(nil), r.ordered...)
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

func findCommand(cmds []*Command, name string) *Command {
	for _, cmd := range cmds {
		if cmd.Name == name {
			return cmd
		}
		for _, alias := range cmd.Aliases {
			if alias == name {
				return cmd
			}
		}
	}
	return nil
}

// Resolve finds the command named by words, descending into subcommands.
// It returns the command, its full path and the remaining arguments.
func (r *Router) Resolve(words []string) (*Command, string, []string) {
	if len(words) == 0 {
		return nil, "", nil
	}
	cmd, ok := r.commands[words[0]]
	if !ok {
		return nil, "", nil
	}
	path := cmd.Name
	args := words[1:]
	for len(args) > 0 {
		sub := findCommand(cmd.Subcommands, args[0])
		if sub == nil {
			break
		}
		cmd = sub
		path += " " + sub.Name
		args = args[1:]
	}
	return cmd, path, args
}

// Dispatch runs the command in a guild message. It reports whether the
// message was a command.
func (r *Router) Dispatch(ctx context.Context, m *discordgo.Message) bool {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return false
	}
	if !strings.HasPrefix(m.Content, r.opts.Prefix) {
		return false
	}
	cmd, path, args := r.Resolve(strings.Fields(m.Content[len(r.opts.Prefix):]))
	if cmd == nil {
		return false
	}

	author := m.Member
	if author == nil || len(author.Roles) == 0 {
		if fetched, err := r.dir.Member(m.GuildID, m.Author.ID); err == nil {
			author = fetched
		}
	}
	if author == nil {
		author = &discordgo.Member{}
	}
	member := *author
	member.User = m.Author

	c := &Context{
		Context:   ctx,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		Author:    &member,
		Timestamp: m.Timestamp,
		Path:      path,
		Args:      args,
		router:    r,
	}
	err := r.run(c, cmd)
	r.metrics.Command(path, err)
	return true
}

func (r *Router) run(c *Context, cmd *Command) error {
	for _, check := range cmd.Checks {
		if err := check(c); err != nil {
			r.log.Infow("Command check failed", "command", c.Path, "user", c.Author.User.ID, "error", err)
			r.reply(c, err)
			return err
		}
	}

	if cmd.Run == nil {
		return c.Reply(r.usage(cmd, c.Path))
	}

	r.log.Debugw("Running command", "command", c.Path, "user", c.Author.User.ID, "args", c.Args)
	if err := cmd.Run(c); err != nil {
		r.log.Errorw("Command failed", "command", c.Path, "user", c.Author.User.ID, "error", err)
		r.reply(c, err)
		return err
	}
	return nil
}

func (r *Router) reply(c *Context, err error) {
	msg := err.Error()
	if r.opts.NoEmoji != "" {
		msg = r.opts.NoEmoji + " " + msg
	}
	if _, sendErr := r.msgr.Send(c.ChannelID, msg); sendErr != nil {
		r.log.Errorw("Failed to report command error", "command", c.Path, "error", sendErr)
	}
}

func (r *Router) usage(cmd *Command, path string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: `%s%s <subcommand>`\n", r.opts.Prefix, path)
	for _, sub := range cmd.Subcommands {
		fmt.Fprintf(&b, "- `%s`", sub.Name)
		if len(sub.Aliases) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(sub.Aliases, ", "))
		}
		if sub.Help != "" {
			b.WriteString(": " + sub.Help)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// HasAnyRole passes members holding one of the roles.
func HasAnyRole(roleIDs ...string) Check {
	return func(c *Context) error {
		if guild.HasAnyRole(c.Author, roleIDs...) {
			return nil
		}
		return ErrCheckFailure
	}
}

// HasPermission passes members holding perm in the invoking channel.
func HasPermission(perm int64) Check {
	return func(c *Context) error {
		ok, err := roles.HasPermission(c.router.dir, c.Author.User.ID, c.ChannelID, perm)
		if err != nil {
			return fmt.Errorf("error while checking permissions: %w", err)
		}
		if !ok {
			return ErrCheckFailure
		}
		return nil
	}
}
