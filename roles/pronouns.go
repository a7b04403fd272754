package roles

import (
	"fmt"

	"github.com/Haibread/roycemorebot/config"
	"github.com/Haibread/roycemorebot/guild"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Pronoun struct {
	Command string
	Aliases []string
	Label   string
	RoleID  string
}

func Pronouns(cfg config.PronounRoles) []Pronoun {
	return []Pronoun{
		{Command: "he-him", Aliases: []string{"he", "him", "hehim"}, Label: "He/Him", RoleID: cfg.HeHim},
		{Command: "she-her", Aliases: []string{"she", "her", "sheher"}, Label: "She/Her", RoleID: cfg.SheHer},
		{Command: "they-them", Aliases: []string{"they", "them", "theythem"}, Label: "They/Them", RoleID: cfg.TheyThem},
	}
}

type PronounRoles struct {
	guildID  string
	pronouns []Pronoun
	roles    guild.RoleMutator
	log      *zap.SugaredLogger
}

func NewPronounRoles(guildID string, pronouns []Pronoun, roles guild.RoleMutator, log *zap.SugaredLogger) *PronounRoles {
	return &PronounRoles{guildID: guildID, pronouns: pronouns, roles: roles, log: log}
}

func (p *PronounRoles) Pronouns() []Pronoun {
	return p.pronouns
}

// Toggle removes the pronoun role if the member holds it and adds it
// otherwise. It reports whether the role was added.
func (p *PronounRoles) Toggle(member *discordgo.Member, pronoun Pronoun) (bool, error) {
	userID := member.User.ID
	if HasAnyRole(member, pronoun.RoleID) {
		if err := p.roles.RemoveRole(p.guildID, userID, pronoun.RoleID, "Pronoun Roles"); err != nil {
			return false, fmt.Errorf("error while removing the %s role: %w", pronoun.Label, err)
		}
		p.log.Infow("Toggled pronoun role off", "user", userID, "role", pronoun.Label)
		return false, nil
	}
	if err := p.roles.AddRole(p.guildID, userID, pronoun.RoleID, "Pronoun Roles"); err != nil {
		return false, fmt.Errorf("error while adding the %s role: %w", pronoun.Label, err)
	}
	p.log.Infow("Toggled pronoun role on", "user", userID, "role", pronoun.Label)
	return true, nil
}
