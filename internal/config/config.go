// Package config loads and validates the watcher configuration from a
// YAML file. Secrets never live in the file; it names the environment
// variables that hold them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goldlure/blogwatch/internal/blog"
	"github.com/goldlure/blogwatch/internal/track"
)

const (
	DefaultConfigFile  = "config.yaml"
	DefaultStatePath   = ".blogwatch/state.db"
	DefaultJournalPath = ".blogwatch/outbox.jsonl"
	DefaultTokenEnv    = "BOT_TOKEN"
	DefaultChatIDEnv   = "CHAT_ID"
	DefaultInterval    = time.Hour
	DefaultTimeout     = 10 * time.Second
	DefaultSendDelay   = time.Second
)

// Duration wraps time.Duration for YAML unmarshaling from strings like "1h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Watch    WatchConfig    `yaml:"watch"`
	Track    TrackConfig    `yaml:"track"`
	Sources  []SourceConfig `yaml:"sources"`
}

type TelegramConfig struct {
	TokenEnv  string   `yaml:"token_env"`
	ChatIDEnv string   `yaml:"chat_id_env"`
	SendDelay Duration `yaml:"send_delay"`

	// Resolved from env vars at load time.
	Token  string `yaml:"-"`
	ChatID string `yaml:"-"`
}

type WatchConfig struct {
	Interval      Duration `yaml:"interval"`
	Timeout       Duration `yaml:"timeout"`
	AnnounceStart bool     `yaml:"announce_start"`
}

type TrackConfig struct {
	Mode     string `yaml:"mode"`
	FirstRun string `yaml:"first_run"`
	Path     string `yaml:"path"`
	Journal  string `yaml:"journal"`
}

type SourceConfig struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Feed   string `yaml:"feed"`
	Icon   string `yaml:"icon"`
	Parser string `yaml:"parser"`
	Limit  int    `yaml:"limit"`
}

// Load reads config.yaml from dir, applies defaults, resolves env vars, and validates.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	resolveEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Telegram.TokenEnv == "" {
		cfg.Telegram.TokenEnv = DefaultTokenEnv
	}
	if cfg.Telegram.ChatIDEnv == "" {
		cfg.Telegram.ChatIDEnv = DefaultChatIDEnv
	}
	if cfg.Telegram.SendDelay.Duration == 0 {
		cfg.Telegram.SendDelay.Duration = DefaultSendDelay
	}
	if cfg.Watch.Interval.Duration == 0 {
		cfg.Watch.Interval.Duration = DefaultInterval
	}
	if cfg.Watch.Timeout.Duration == 0 {
		cfg.Watch.Timeout.Duration = DefaultTimeout
	}
	if cfg.Track.Mode == "" {
		cfg.Track.Mode = string(track.ModeSeenSet)
	}
	if cfg.Track.FirstRun == "" {
		cfg.Track.FirstRun = string(track.FirstRunNotify)
	}
	if cfg.Track.Path == "" {
		cfg.Track.Path = DefaultStatePath
	}
	if cfg.Track.Journal == "" {
		cfg.Track.Journal = DefaultJournalPath
	}
	for i := range cfg.Sources {
		if cfg.Sources[i].Parser == "" {
			cfg.Sources[i].Parser = string(blog.ParserHelm)
		}
	}
}

func resolveEnv(cfg *Config) {
	if cfg.Telegram.TokenEnv != "" {
		cfg.Telegram.Token = os.Getenv(cfg.Telegram.TokenEnv)
	}
	if cfg.Telegram.ChatIDEnv != "" {
		cfg.Telegram.ChatID = os.Getenv(cfg.Telegram.ChatIDEnv)
	}
}

func validate(cfg *Config) error {
	if _, err := track.ParseMode(cfg.Track.Mode); err != nil {
		return fmt.Errorf("track.mode: %w", err)
	}
	if _, err := track.ParseFirstRun(cfg.Track.FirstRun); err != nil {
		return fmt.Errorf("track.first_run: %w", err)
	}

	if len(cfg.Sources) == 0 {
		return errors.New("sources: at least one source must be configured")
	}
	names := make(map[string]bool, len(cfg.Sources))
	for i, src := range cfg.Sources {
		if strings.TrimSpace(src.Name) == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if names[src.Name] {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, src.Name)
		}
		names[src.Name] = true
		if strings.TrimSpace(src.URL) == "" {
			return fmt.Errorf("sources[%d] (%s): url is required", i, src.Name)
		}
		if _, err := blog.ParseParser(src.Parser); err != nil {
			return fmt.Errorf("sources[%d] (%s): %w", i, src.Name, err)
		}
		if src.Limit < 0 {
			return fmt.Errorf("sources[%d] (%s): limit must not be negative", i, src.Name)
		}
	}
	return nil
}

// Mode returns the parsed tracking mode. Only meaningful after Load
// validated the config.
func (c *Config) Mode() track.Mode {
	mode, _ := track.ParseMode(c.Track.Mode)
	return mode
}

// FirstRun returns the parsed first-run policy.
func (c *Config) FirstRun() track.FirstRun {
	policy, _ := track.ParseFirstRun(c.Track.FirstRun)
	return policy
}

// BlogSources converts the configured sources to their domain form,
// preserving declaration order.
func (c *Config) BlogSources() []blog.Source {
	sources := make([]blog.Source, 0, len(c.Sources))
	for _, src := range c.Sources {
		parser, _ := blog.ParseParser(src.Parser)
		sources = append(sources, blog.Source{
			Name:   src.Name,
			URL:    src.URL,
			Feed:   src.Feed,
			Icon:   src.Icon,
			Parser: parser,
			Limit:  src.Limit,
		})
	}
	return sources
}
