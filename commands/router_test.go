package commands

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Haibread/roycemorebot/guild/guildtest"
	"github.com/Haibread/roycemorebot/metrics"
	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

const (
	testGuild = "759083170619588669"
	botChan   = "61"
	modRole   = "2"
	adminRole = "1"
)

func newTestRouter(g *guildtest.Guild, m *metrics.Metrics) *Router {
	return NewRouter(Options{Prefix: "?", NoEmoji: ":no_entry_sign:"}, g, g, m, zap.NewNop().Sugar())
}

func message(authorID, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "900",
		GuildID:   testGuild,
		ChannelID: botChan,
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: "user" + authorID},
		Timestamp: time.Now(),
	}
}

func lastContent(g *guildtest.Guild) string {
	sent := g.Sent()
	if len(sent) == 0 {
		return ""
	}
	return sent[len(sent)-1].Content
}

func TestRouterResolve(t *testing.T) {
	r := newTestRouter(guildtest.New(), nil)
	noop := func(*Context) error { return nil }
	r.Register(&Command{
		Name:    "subscriptions",
		Aliases: []string{"subs"},
		Subcommands: []*Command{
			{Name: "list", Aliases: []string{"ls"}, Run: noop},
			{Name: "reload", Aliases: []string{"r"}, Run: noop},
		},
	}, &Command{Name: "subscribe", Aliases: []string{"sub"}, Run: noop})

	tests := []struct {
		words []string
		path  string
		args  []string
	}{
		{[]string{"subs", "ls"}, "subscriptions list", nil},
		{[]string{"subscriptions", "r"}, "subscriptions reload", nil},
		{[]string{"subs"}, "subscriptions", nil},
		{[]string{"subs", "nope"}, "subscriptions", []string{"nope"}},
		{[]string{"sub", "model", "un"}, "subscribe", []string{"model", "un"}},
		{[]string{"unknown"}, "", nil},
	}

	for _, tt := range tests {
		cmd, path, args := r.Resolve(tt.words)
		if path != tt.path || strings.Join(args, " ") != strings.Join(tt.args, " ") {
			t.Errorf("Resolve(%v) = %q %v, want %q %v", tt.words, path, args, tt.path, tt.args)
		}
		if (cmd == nil) != (tt.path == "") {
			t.Errorf("Resolve(%v) command = %v", tt.words, cmd)
		}
	}
}

func TestRouterRegisterTwicePanics(t *testing.T) {
	r := newTestRouter(guildtest.New(), nil)
	r.Register(&Command{Name: "ping", Aliases: []string{"p"}})
	defer func() {
		if recover() == nil {
			t.Error("expected a panic on a duplicate alias")
		}
	}()
	r.Register(&Command{Name: "pong", Aliases: []string{"p"}})
}

func TestRouterDispatch(t *testing.T) {
	g := guildtest.New()
	g.AddMember("5", false)
	g.AddMember("6", false, modRole)
	m := metrics.New()
	r := newTestRouter(g, m)

	var got *Context
	r.Register(&Command{
		Name:   "reload",
		Checks: []Check{HasAnyRole(modRole, adminRole)},
		Run: func(c *Context) error {
			got = c
			return nil
		},
	}, &Command{
		Name: "fail",
		Run:  func(*Context) error { return errors.New("HTTP 403 Forbidden, Missing Permissions") },
	})
	ctx := context.Background()

	if r.Dispatch(ctx, message("5", "hello there")) {
		t.Error("plain messages are not commands")
	}
	if r.Dispatch(ctx, message("5", "?unknown")) {
		t.Error("unknown commands are ignored")
	}
	bot := message("7", "?reload")
	bot.Author.Bot = true
	if r.Dispatch(ctx, bot) {
		t.Error("bots are ignored")
	}
	if len(g.Sent()) != 0 {
		t.Fatalf("ignored messages should not be answered: %v", g.Sent())
	}

	if !r.Dispatch(ctx, message("5", "?reload")) {
		t.Fatal("expected the command to be handled")
	}
	if got != nil {
		t.Error("check should have stopped the command")
	}
	if lastContent(g) != ":no_entry_sign: "+ErrCheckFailure.Error() {
		t.Errorf("unexpected check failure reply %q", lastContent(g))
	}

	r.Dispatch(ctx, message("6", "?reload now"))
	if got == nil || got.Author.User.ID != "6" || got.Path != "reload" || got.Args[0] != "now" {
		t.Fatalf("unexpected context %+v", got)
	}

	r.Dispatch(ctx, message("5", "?fail"))
	if !strings.Contains(lastContent(g), "Missing Permissions") {
		t.Errorf("command errors should be reported, got %q", lastContent(g))
	}

	if v := testutil.ToFloat64(m.CommandsTotal.WithLabelValues("reload", "error")); v != 1 {
		t.Errorf("expected 1 failed reload, got %v", v)
	}
	if v := testutil.ToFloat64(m.CommandsTotal.WithLabelValues("reload", "ok")); v != 1 {
		t.Errorf("expected 1 successful reload, got %v", v)
	}
}

func TestRouterGroupUsage(t *testing.T) {
	g := guildtest.New()
	g.AddMember("5", false)
	r := newTestRouter(g, nil)
	r.Register(&Command{
		Name: "subscriptions",
		Subcommands: []*Command{
			{Name: "list", Aliases: []string{"ls"}, Help: "List all subscriptions", Run: func(*Context) error { return nil }},
		},
	})

	r.Dispatch(context.Background(), message("5", "?subscriptions"))
	want := "Usage: `?subscriptions <subcommand>`\n- `list` (ls): List all subscriptions"
	if lastContent(g) != want {
		t.Errorf("unexpected usage:\n%s", lastContent(g))
	}
}

func TestHasPermissionCheck(t *testing.T) {
	g := guildtest.New()
	g.AddMember("5", false)
	g.AddMember("6", false)
	g.MemberPermissions["6"] = discordgo.PermissionManageRoles
	r := newTestRouter(g, nil)

	ran := 0
	r.Register(&Command{
		Name:   "new-grade",
		Checks: []Check{HasPermission(discordgo.PermissionManageRoles)},
		Run:    func(*Context) error { ran++; return nil },
	})
	r.Dispatch(context.Background(), message("5", "?new-grade"))
	r.Dispatch(context.Background(), message("6", "?new-grade"))
	if ran != 1 {
		t.Errorf("expected only the member with Manage Roles to run it, ran %d times", ran)
	}
}

func TestParseUserMention(t *testing.T) {
	tests := map[string]struct {
		id string
		ok bool
	}{
		"<@575252669443211264>":  {"575252669443211264", true},
		"<@!575252669443211264>": {"575252669443211264", true},
		"575252669443211264":     {"575252669443211264", true},
		"<@&10>":                 {"&10", false},
		"royce":                  {"royce", false},
	}
	for in, want := range tests {
		id, ok := ParseUserMention(in)
		if id != want.id || ok != want.ok {
			t.Errorf("ParseUserMention(%q) = %q, %v; want %q, %v", in, id, ok, want.id, want.ok)
		}
	}
}
