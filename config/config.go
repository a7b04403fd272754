package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvSentinel marks a config value that must be read from the environment.
// The variable name is the upper-cased leaf key.
const EnvSentinel = "!ENV"

const (
	DefaultFile  = "config.json"
	FallbackFile = "config-default.json"
)

type Config struct {
	Bot           Bot           `mapstructure:"bot"`
	Guild         Guild         `mapstructure:"guild"`
	Style         Style         `mapstructure:"style"`
	Subscriptions Subscriptions `mapstructure:"subscriptions"`
	Database      Database      `mapstructure:"database"`
	Logging       Logging       `mapstructure:"logging"`
	Metrics       Metrics       `mapstructure:"metrics"`
	Members       Members       `mapstructure:"members"`
}

type Bot struct {
	Prefix string `mapstructure:"prefix"`
	Token  string `mapstructure:"bot_token"`
	Status string `mapstructure:"status"`
}

type Guild struct {
	ID           string       `mapstructure:"guild_id"`
	InviteLink   string       `mapstructure:"invite_link"`
	ModmailID    string       `mapstructure:"modmail_id"`
	StaffRoles   StaffRoles   `mapstructure:"staff_roles"`
	ClassRoles   ClassRoles   `mapstructure:"class_roles"`
	PronounRoles PronounRoles `mapstructure:"pronoun_roles"`
	Channels     Channels     `mapstructure:"channels"`
	Categories   Categories   `mapstructure:"categories"`
	Messages     Messages     `mapstructure:"messages"`
}

type StaffRoles struct {
	Admin   string `mapstructure:"admin_role"`
	Mod     string `mapstructure:"mod_role"`
	BotTeam string `mapstructure:"bot_team_role"`
	Muted   string `mapstructure:"muted_role"`
	DJ      string `mapstructure:"dj_role"`
}

type ClassRoles struct {
	Grade5     string `mapstructure:"grade_5"`
	Grade6     string `mapstructure:"grade_6"`
	Grade7     string `mapstructure:"grade_7"`
	Grade8     string `mapstructure:"grade_8"`
	Freshmen   string `mapstructure:"freshmen"`
	Sophomores string `mapstructure:"sophomores"`
	Juniors    string `mapstructure:"juniors"`
	Seniors    string `mapstructure:"seniors"`
	Alumni     string `mapstructure:"alumni"`
}

type PronounRoles struct {
	HeHim    string `mapstructure:"he_him"`
	SheHer   string `mapstructure:"she_her"`
	TheyThem string `mapstructure:"they_them"`
}

type Channels struct {
	BotCommands    string `mapstructure:"roycemorebot_commands"`
	BotLog         string `mapstructure:"bot_log"`
	ModBotCommands string `mapstructure:"mod_bot_commands"`
	Roles          string `mapstructure:"roles"`
}

type Categories struct {
	Clubs string `mapstructure:"clubs"`
}

type Messages struct {
	Welcome string `mapstructure:"welcome"`
	Roles   string `mapstructure:"roles"`
}

type Style struct {
	Emoji Emoji `mapstructure:"emoji"`
}

type Emoji struct {
	OK         string `mapstructure:"ok"`
	Warning    string `mapstructure:"warning"`
	No         string `mapstructure:"no"`
	GreenCheck string `mapstructure:"green_check"`
}

type Subscriptions struct {
	File                     string        `mapstructure:"file"`
	ReloadTimeout            time.Duration `mapstructure:"reload_timeout"`
	Threshold                int           `mapstructure:"threshold"`
	AnnouncementRoleTemplate string        `mapstructure:"announcement_role_template"`
	LeaderRoleTemplate       string        `mapstructure:"leader_role_template"`
}

type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type Logging struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	File        string `mapstructure:"file"`
	MaxSize     int    `mapstructure:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
}

type Metrics struct {
	Addr string `mapstructure:"addr"`
}

type Members struct {
	SyncSchedule string `mapstructure:"sync_schedule"`
}

// BotAdmins are the roles allowed to manage the bot itself.
func (c *Config) BotAdmins() []string {
	return []string{c.Guild.StaffRoles.BotTeam, c.Guild.StaffRoles.Admin}
}

func (c *Config) ModRoles() []string {
	return []string{c.Guild.StaffRoles.Mod, c.Guild.StaffRoles.Admin}
}

// ClassRoleIDs returns the class roles ordered from youngest to oldest.
func (c *Config) ClassRoleIDs() []string {
	r := c.Guild.ClassRoles
	return []string{
		r.Grade5, r.Grade6, r.Grade7, r.Grade8,
		r.Freshmen, r.Sophomores, r.Juniors, r.Seniors, r.Alumni,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.prefix", "?")
	v.SetDefault("bot.status", "Roycemore")
	v.SetDefault("subscriptions.file", "data/announcement_roles.json")
	v.SetDefault("subscriptions.reload_timeout", "300s")
	v.SetDefault("subscriptions.threshold", 75)
	v.SetDefault("subscriptions.announcement_role_template", "{{.Title}}{{if .Club}} Club{{end}} Announcements")
	v.SetDefault("subscriptions.leader_role_template", "{{.Title}} {{.LeaderTitle}}")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "db.sqlite3")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)
	v.SetDefault("members.sync_schedule", "@every 6h")
	v.SetDefault("style.emoji.ok", ":ok_hand:")
	v.SetDefault("style.emoji.warning", ":warning:")
	v.SetDefault("style.emoji.no", ":no_entry_sign:")
	v.SetDefault("style.emoji.green_check", ":white_check_mark:")
}

// Load reads the configuration file at path. An empty path means config.json
// when it exists, config-default.json otherwise.
func Load(path string) (*Config, *viper.Viper, error) {
	// .env is optional
	_ = godotenv.Load()

	if path == "" {
		path = FallbackFile
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("roycemore")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("error while reading config %s: %w", path, err)
	}

	if err := resolveEnv(v); err != nil {
		return nil, nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("error while decoding config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, v, nil
}

// resolveEnv swaps every "!ENV" value for the matching environment variable.
func resolveEnv(v *viper.Viper) error {
	for _, key := range v.AllKeys() {
		s, ok := v.Get(key).(string)
		if !ok || s != EnvSentinel {
			continue
		}
		leaf := key[strings.LastIndex(key, ".")+1:]
		name := strings.ToUpper(leaf)
		value, ok := os.LookupEnv(name)
		if !ok {
			return fmt.Errorf("config key %s is %s but $%s is not set", key, EnvSentinel, name)
		}
		v.Set(key, value)
	}
	return nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Bot.Token == "" {
		errs = append(errs, errors.New("bot.bot_token is required"))
	}
	if c.Guild.ID == "" {
		errs = append(errs, errors.New("guild.guild_id is required"))
	}
	if c.Guild.Categories.Clubs == "" {
		errs = append(errs, errors.New("guild.categories.clubs is required"))
	}
	if c.Subscriptions.Threshold < 1 || c.Subscriptions.Threshold > 100 {
		errs = append(errs, fmt.Errorf("subscriptions.threshold must be within 1-100, got %d", c.Subscriptions.Threshold))
	}
	return errors.Join(errs...)
}

// Watch logs changes to the config file. Values are not reloaded, a restart
// is needed for them to take effect.
func Watch(v *viper.Viper, log *zap.SugaredLogger) {
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Warnw("Config file changed, restart the bot to apply it", "file", e.Name, "op", e.Op.String())
	})
	v.WatchConfig()
}
