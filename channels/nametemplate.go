package channels

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RoleName holds the values a role name template can use.
type RoleName struct {
	Name        string // channel name, e.g. "model-un"
	Title       string // title-cased channel name, e.g. "Model-Un"
	Club        bool
	LeaderTitle string
}

var knownVariables = map[string]bool{
	"name":        true,
	"title":       true,
	"club":        true,
	"leadertitle": true,
}

var (
	templateActions = regexp.MustCompile(`{{[^{}]*}}`)
	templateFields  = regexp.MustCompile(`\.([A-Za-z]+)`)
)

var titleCaser = cases.Title(language.English)

// NewRoleName fills the template values for a club channel. An empty leader
// title defaults to "Club Leader" for clubs and "Leader" otherwise.
func NewRoleName(channelName string, club bool, leaderTitle string) RoleName {
	if leaderTitle == "" {
		leaderTitle = "Leader"
		if club {
			leaderTitle = "Club Leader"
		}
	}
	return RoleName{
		Name:        channelName,
		Title:       titleCaser.String(channelName),
		Club:        club,
		LeaderTitle: leaderTitle,
	}
}

// RoleNamer renders announcement and leader role names.
type RoleNamer struct {
	announcement *template.Template
	leader       *template.Template
}

func NewRoleNamer(announcementTpl, leaderTpl string) (*RoleNamer, error) {
	announcement, err := parseRoleTemplate("announcement_role", announcementTpl)
	if err != nil {
		return nil, err
	}
	leader, err := parseRoleTemplate("leader_role", leaderTpl)
	if err != nil {
		return nil, err
	}
	return &RoleNamer{announcement: announcement, leader: leader}, nil
}

func parseRoleTemplate(name, tpl string) (*template.Template, error) {
	if err := TestTemplate(tpl); err != nil {
		return nil, fmt.Errorf("invalid %s template %q: %w", name, tpl, err)
	}
	return template.New(name).Parse(tpl)
}

func (n *RoleNamer) AnnouncementRole(v RoleName) (string, error) {
	return render(n.announcement, v)
}

func (n *RoleNamer) LeaderRole(v RoleName) (string, error) {
	return render(n.leader, v)
}

func render(t *template.Template, v RoleName) (string, error) {
	var out bytes.Buffer
	if err := t.Execute(&out, v); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

func neededVariables(template string) []string {
	toReturn := []string{}
	withoutSpaces := regexp.MustCompile(`\s+`).ReplaceAllString(template, "")
	for _, action := range templateActions.FindAllString(withoutSpaces, -1) {
		for _, v := range templateFields.FindAllStringSubmatch(action, -1) {
			toReturn = append(toReturn, v[1])
		}
	}
	return toReturn
}

// TestTemplate renders a template with fake data.
func TestTemplate(tpl string) error {
	for _, v := range neededVariables(tpl) {
		if !knownVariables[strings.ToLower(v)] {
			return fmt.Errorf("unknown template variable %q", v)
		}
	}

	t, err := template.New("test_template").Option("missingkey=error").Parse(tpl)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := t.Execute(&out, NewRoleName("model-un", true, "")); err != nil {
		return err
	}
	if strings.TrimSpace(out.String()) == "" {
		return fmt.Errorf("template renders an empty name")
	}
	return nil
}
