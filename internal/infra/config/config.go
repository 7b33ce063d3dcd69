package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Store       string `yaml:"store"` // postgres | memory
	DatabaseURL string `yaml:"database_url"`
	DBMaxConns  int    `yaml:"db_max_conns"`

	Discord DiscordConfig `yaml:"discord"`
	Rules   RulesConfig   `yaml:"rules"`
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
}

type DiscordConfig struct {
	Token    string   `yaml:"token"`
	GuildIDs []string `yaml:"guild_ids"` // guilds donde se registran los slash commands
	Prefix   string   `yaml:"prefix"`

	AdminRoleIDs      []string      `yaml:"admin_role_ids"`
	ModRoleIDs        []string      `yaml:"mod_role_ids"`
	OperatorChannelID string        `yaml:"operator_channel_id"`
	RoleCacheTTL      time.Duration `yaml:"role_cache_ttl"`
}

type RulesConfig struct {
	DispatchTimeout     time.Duration `yaml:"dispatch_timeout"`
	EventTimeout        time.Duration `yaml:"event_timeout"`
	PhraseAlertCooldown time.Duration `yaml:"phrase_alert_cooldown"`
	ReportEvery         time.Duration `yaml:"report_every"`
}

type HTTPConfig struct {
	Addr  string `yaml:"addr"` // vacío = sin servidor HTTP
	Token string `yaml:"token"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

func Default() Config {
	return Config{
		Store:      StorePostgres,
		DBMaxConns: 10,
		Discord: DiscordConfig{
			Prefix:       "!",
			RoleCacheTTL: time.Minute,
		},
		Rules: RulesConfig{
			DispatchTimeout: 5 * time.Second,
			EventTimeout:    12 * time.Second,
			ReportEvery:     time.Minute,
		},
		HTTP: HTTPConfig{Addr: ":8080"},
		Log:  LogConfig{Level: "info", Format: "text"},
	}
}

// Load parte de Default, aplica el YAML (si path no está vacío) y después las
// variables de entorno. Las variables ganan.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		defer f.Close()
		if err := decode(f, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(k string, dst *string) {
		if v, ok := lookup(k); ok && v != "" {
			*dst = v
		}
	}
	list := func(k string, dst *[]string) {
		if v, ok := lookup(k); ok && v != "" {
			*dst = splitList(v)
		}
	}
	var errs []error
	dur := func(k string, dst *time.Duration) {
		if v, ok := lookup(k); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("env %s: %w", k, err))
				return
			}
			*dst = d
		}
	}

	str("STORE", &cfg.Store)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("DISCORD_BOT_TOKEN", &cfg.Discord.Token)
	list("DISCORD_GUILD_ID", &cfg.Discord.GuildIDs)
	str("COMMAND_PREFIX", &cfg.Discord.Prefix)
	list("ADMIN_ROLE_IDS", &cfg.Discord.AdminRoleIDs)
	list("MOD_ROLE_IDS", &cfg.Discord.ModRoleIDs)
	str("OPERATOR_CHANNEL_ID", &cfg.Discord.OperatorChannelID)
	dur("DISPATCH_TIMEOUT", &cfg.Rules.DispatchTimeout)
	dur("PHRASE_ALERT_COOLDOWN", &cfg.Rules.PhraseAlertCooldown)
	str("HTTP_ADDR", &cfg.HTTP.Addr)
	str("HTTP_TOKEN", &cfg.HTTP.Token)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateStore chequea lo necesario para abrir el store (migrate, import).
func (c Config) ValidateStore() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("faltante DATABASE_URL")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("store desconocido %q (postgres|memory)", c.Store)
	}
	return nil
}

// Validate chequea lo necesario para correr el bot.
func (c Config) Validate() error {
	var errs []error
	if err := c.ValidateStore(); err != nil {
		errs = append(errs, err)
	}
	if c.Discord.Token == "" {
		errs = append(errs, errors.New("faltante DISCORD_BOT_TOKEN"))
	}
	if strings.TrimSpace(c.Discord.Prefix) == "" {
		errs = append(errs, errors.New("el prefijo de comandos no puede estar vacío"))
	}
	if c.Rules.DispatchTimeout <= 0 {
		errs = append(errs, errors.New("dispatch_timeout debe ser > 0"))
	}
	if c.Rules.PhraseAlertCooldown < 0 {
		errs = append(errs, errors.New("phrase_alert_cooldown no puede ser negativo"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Logger arma el *slog.Logger según el formato y nivel configurados.
func (l LogConfig) Logger(w io.Writer) *slog.Logger {
	lvl, err := parseLevel(l.Level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return lvl, nil
}
