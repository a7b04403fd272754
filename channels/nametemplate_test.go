package channels

import "testing"

const (
	defaultAnnouncementTpl = "{{.Title}}{{if .Club}} Club{{end}} Announcements"
	defaultLeaderTpl       = "{{.Title}} {{.LeaderTitle}}"
)

func TestNewRoleName(t *testing.T) {
	tests := []struct {
		channel     string
		club        bool
		leaderTitle string
		want        RoleName
	}{
		{"chess", true, "", RoleName{Name: "chess", Title: "Chess", Club: true, LeaderTitle: "Club Leader"}},
		{"debate", false, "", RoleName{Name: "debate", Title: "Debate", LeaderTitle: "Leader"}},
		{"model-un", false, "Secretary General", RoleName{Name: "model-un", Title: "Model-Un", LeaderTitle: "Secretary General"}},
	}

	for _, tt := range tests {
		if got := NewRoleName(tt.channel, tt.club, tt.leaderTitle); got != tt.want {
			t.Errorf("NewRoleName(%q, %v, %q) = %+v, want %+v", tt.channel, tt.club, tt.leaderTitle, got, tt.want)
		}
	}
}

func TestRoleNamerDefaults(t *testing.T) {
	n, err := NewRoleNamer(defaultAnnouncementTpl, defaultLeaderTpl)
	if err != nil {
		t.Fatalf("NewRoleNamer returned error: %v", err)
	}

	tests := []struct {
		vars         RoleName
		announcement string
		leader       string
	}{
		{NewRoleName("chess", true, ""), "Chess Club Announcements", "Chess Club Leader"},
		{NewRoleName("debate", false, ""), "Debate Announcements", "Debate Leader"},
		{NewRoleName("robotics", false, "Captain"), "Robotics Announcements", "Robotics Captain"},
	}

	for _, tt := range tests {
		got, err := n.AnnouncementRole(tt.vars)
		if err != nil || got != tt.announcement {
			t.Errorf("AnnouncementRole(%+v) = %q, %v; want %q", tt.vars, got, err, tt.announcement)
		}
		got, err = n.LeaderRole(tt.vars)
		if err != nil || got != tt.leader {
			t.Errorf("LeaderRole(%+v) = %q, %v; want %q", tt.vars, got, err, tt.leader)
		}
	}
}

func TestTestTemplate(t *testing.T) {
	tests := []struct {
		tpl     string
		wantErr bool
	}{
		{defaultAnnouncementTpl, false},
		{defaultLeaderTpl, false},
		{"{{.Name}}-announcements", false},
		{"{{ .Title }} {{ .LeaderTitle }}", false},
		{"{{.Title", true},
		{"{{.GameName}} Announcements", true},
		{"{{.title}} Announcements", true},
		{"   ", true},
	}

	for _, tt := range tests {
		err := TestTemplate(tt.tpl)
		if (err != nil) != tt.wantErr {
			t.Errorf("TestTemplate(%q) error = %v, wantErr %v", tt.tpl, err, tt.wantErr)
		}
	}
}

func TestNeededVariables(t *testing.T) {
	got := neededVariables("{{ .Title }}{{if .Club}} Club{{end}}")
	if len(got) != 2 || got[0] != "Title" || got[1] != "Club" {
		t.Errorf("unexpected variables %v", got)
	}
}
