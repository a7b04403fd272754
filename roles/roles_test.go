package roles

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Haibread/roycemorebot/config"
	"github.com/Haibread/roycemorebot/guild/guildtest"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	testGuild = "759083170619588669"
	modRole   = "2"
	rolesChan = "60"
)

var classConfig = config.ClassRoles{
	Grade5: "105", Grade6: "106", Grade7: "107", Grade8: "108",
	Freshmen: "109", Sophomores: "110", Juniors: "111", Seniors: "112", Alumni: "113",
}

func newClassRoles(g *guildtest.Guild) *ClassRoles {
	return NewClassRoles(testGuild, Grades(classConfig), []string{modRole, "1"}, g, g, zap.NewNop().Sugar())
}

func grade(c *ClassRoles, command string) Grade {
	for _, g := range c.Grades() {
		if g.Command == command {
			return g
		}
	}
	panic("unknown grade " + command)
}

func TestAssignSelf(t *testing.T) {
	g := guildtest.New()
	author := g.AddMember("5", false)
	c := newClassRoles(g)

	if err := c.Assign(author, nil, grade(c, "freshman")); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if got := g.MemberRoles("5"); !reflect.DeepEqual(got, []string{"109"}) {
		t.Errorf("unexpected roles %v", got)
	}

	if err := c.Assign(author, author, grade(c, "junior")); !errors.Is(err, ErrHasClassRole) {
		t.Fatalf("expected ErrHasClassRole, got %v", err)
	}
	if got := g.MemberRoles("5"); !reflect.DeepEqual(got, []string{"109"}) {
		t.Errorf("roles changed after refusal: %v", got)
	}
}

func TestAssignOther(t *testing.T) {
	g := guildtest.New()
	member := g.AddMember("5", false, "30")
	target := g.AddMember("6", false, "109", "110", "40")
	mod := g.AddMember("7", false, modRole)
	c := newClassRoles(g)

	if err := c.Assign(member, target, grade(c, "senior")); !errors.Is(err, ErrNotModerator) {
		t.Fatalf("expected ErrNotModerator, got %v", err)
	}

	if err := c.Assign(mod, target, grade(c, "senior")); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if got := g.MemberRoles("6"); !reflect.DeepEqual(got, []string{"40", "112"}) {
		t.Errorf("class roles were not replaced: %v", got)
	}
}

func TestNextGrade(t *testing.T) {
	c := newClassRoles(guildtest.New())
	tests := []struct {
		roles    []string
		from, to string
		ok       bool
	}{
		{[]string{"105"}, "105", "106", true},
		{[]string{"30", "108"}, "108", "109", true},
		{[]string{"112"}, "112", "113", true},
		{[]string{"113"}, "", "", false},
		{[]string{"30"}, "", "", false},
		{nil, "", "", false},
		// Lowest grade wins when a member holds two.
		{[]string{"111", "106"}, "106", "107", true},
	}

	for _, tt := range tests {
		from, to, ok := c.NextGrade(tt.roles)
		if ok != tt.ok || from.RoleID != tt.from || to.RoleID != tt.to {
			t.Errorf("NextGrade(%v) = %s -> %s, %v; want %s -> %s, %v", tt.roles, from.RoleID, to.RoleID, ok, tt.from, tt.to, tt.ok)
		}
	}
}

func TestPromote(t *testing.T) {
	g := guildtest.New()
	g.AddMember("1", false, "105")
	g.AddMember("2", false, "108", "40")
	g.AddMember("3", false, "112")
	g.AddMember("4", false, "113")
	g.AddMember("5", false)
	g.AddMember("6", true, "105")
	c := newClassRoles(g)

	report, err := c.Promote()
	if err != nil {
		t.Fatalf("Promote returned error: %v", err)
	}
	if report != (PromotionReport{Promoted: 3, Skipped: 3}) {
		t.Errorf("unexpected report %+v", report)
	}

	want := map[string][]string{
		"1": {"106"},
		"2": {"40", "109"},
		"3": {"113"},
		"4": {"113"},
		"5": nil,
		"6": {"105"},
	}
	for id, roles := range want {
		got := g.MemberRoles(id)
		if len(got) == 0 && len(roles) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, roles) {
			t.Errorf("member %s has roles %v, want %v", id, got, roles)
		}
	}
	for _, r := range g.Reasons {
		if r != promotionReason {
			t.Errorf("unexpected audit reason %q", r)
		}
	}
}

func TestPromoteContinuesAfterFailure(t *testing.T) {
	g := guildtest.New()
	g.AddMember("1", false, "105")
	g.AddMember("2", false, "106")
	g.RoleErr = errors.New("HTTP 403 Forbidden, Missing Permissions")
	c := newClassRoles(g)

	report, err := c.Promote()
	if err == nil {
		t.Fatal("expected an error")
	}
	if report.Failed != 2 || report.Promoted != 0 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestPronounToggle(t *testing.T) {
	g := guildtest.New()
	member := g.AddMember("5", false)
	p := NewPronounRoles(testGuild, Pronouns(config.PronounRoles{HeHim: "201", SheHer: "202", TheyThem: "203"}), g, zap.NewNop().Sugar())
	they := p.Pronouns()[2]

	added, err := p.Toggle(member, they)
	if err != nil || !added {
		t.Fatalf("first toggle = %v, %v; want added", added, err)
	}
	if got := g.MemberRoles("5"); !reflect.DeepEqual(got, []string{"203"}) {
		t.Errorf("unexpected roles %v", got)
	}

	added, err = p.Toggle(member, they)
	if err != nil || added {
		t.Fatalf("second toggle = %v, %v; want removed", added, err)
	}
	if got := g.MemberRoles("5"); len(got) != 0 {
		t.Errorf("role was not removed: %v", got)
	}
	if g.Reasons[0] != "Pronoun Roles" || g.Reasons[1] != "Pronoun Roles" {
		t.Errorf("unexpected audit reasons %v", g.Reasons)
	}
}

func TestReplierDeletesInRolesChannel(t *testing.T) {
	g := guildtest.New()
	r := NewReplier(g, rolesChan, 10*time.Millisecond, zap.NewNop().Sugar())

	if err := r.Reply("61", "cmd-1", "hello"); err != nil {
		t.Fatal(err)
	}
	if err := r.Reply(rolesChan, "cmd-2", "you have successfully toggled the He/Him role."); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(g.DeletedMessages()) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("messages were not deleted, got %v", g.DeletedMessages())
		}
		time.Sleep(time.Millisecond)
	}
	sent := g.Sent()
	if got := g.DeletedMessages(); !reflect.DeepEqual(got, []string{sent[1].ID, "cmd-2"}) {
		t.Errorf("unexpected deletions %v", got)
	}
}

func TestHasPermission(t *testing.T) {
	g := guildtest.New()
	g.MemberPermissions["5"] = discordgo.PermissionManageRoles | discordgo.PermissionSendMessages
	g.MemberPermissions["6"] = discordgo.PermissionSendMessages
	g.MemberPermissions["7"] = discordgo.PermissionAdministrator

	for id, want := range map[string]bool{"5": true, "6": false, "7": true} {
		got, err := HasPermission(g, id, "61", discordgo.PermissionManageRoles)
		if err != nil || got != want {
			t.Errorf("HasPermission(%s) = %v, %v; want %v", id, got, err, want)
		}
	}
}
