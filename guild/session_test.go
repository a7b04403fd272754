package guild

import (
	"strconv"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func newCachedSession(t *testing.T) (*discordgo.Session, *Session) {
	t.Helper()
	dg, err := discordgo.New("Bot test")
	if err != nil {
		t.Fatal(err)
	}
	err = dg.State.GuildAdd(&discordgo.Guild{
		ID:       "1",
		Roles:    []*discordgo.Role{{ID: "10", Name: "Server Announcements"}},
		Channels: []*discordgo.Channel{{ID: "200", GuildID: "1", Name: "chess", ParentID: "42"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return dg, NewSession(dg, nil)
}

func TestSessionCachedCopies(t *testing.T) {
	dg, gs := newCachedSession(t)

	roles, err := gs.Roles("1")
	if err != nil || len(roles) != 1 {
		t.Fatalf("Roles() = %v, %v", roles, err)
	}
	roles[0].Name = "changed"
	channels, err := gs.Channels("1")
	if err != nil || len(channels) != 1 {
		t.Fatalf("Channels() = %v, %v", channels, err)
	}
	channels[0].Name = "changed"

	cached, _ := dg.State.Guild("1")
	if cached.Roles[0].Name != "Server Announcements" || cached.Channels[0].Name != "chess" {
		t.Error("callers must not share the cached roles and channels")
	}
}

func TestSessionCacheConcurrentUpdates(t *testing.T) {
	dg, gs := newCachedSession(t)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			id := strconv.Itoa(1000 + i)
			_ = dg.State.RoleAdd("1", &discordgo.Role{ID: id, Name: "Role " + id})
			_ = dg.State.ChannelAdd(&discordgo.Channel{ID: id, GuildID: "1", Name: "channel-" + id})
		}
	}()

	for i := 0; i < 200; i++ {
		if _, err := gs.Roles("1"); err != nil {
			t.Fatal(err)
		}
		if _, err := gs.Channels("1"); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()

	roles, _ := gs.Roles("1")
	channels, _ := gs.Channels("1")
	if len(roles) != 201 || len(channels) != 201 {
		t.Errorf("expected every update to land, got %d roles and %d channels", len(roles), len(channels))
	}
}
