package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the persisted application configuration, stored as YAML at
// $XDG_CONFIG_HOME/lazyfeed/config.yaml unless overridden by LAZYFEED_CONFIG.
type Config struct {
	RefreshEvery   int         `yaml:"refresh_every"`
	RefreshOnStart bool        `yaml:"refresh_on_start"`
	Display        Display     `yaml:"display"`
	Feeds          []FeedItem  `yaml:"feeds"`
	Keybindings    Keybindings `yaml:"keybindings"`
}

type Display struct {
	Format  DisplayFormat  `yaml:"format"`
	Columns DisplayColumns `yaml:"columns"`
	Colours DisplayColours `yaml:"colours"`
}

type DisplayFormat struct {
	Time       int    `yaml:"time"`
	Date       string `yaml:"date"`
	TitleLines int    `yaml:"title_lines"`
}

type DisplayColumns struct {
	FeedsList    int `yaml:"feeds_list"`
	ArticlesList int `yaml:"articles_list"`
	ArticleView  int `yaml:"article_view"`
}

type DisplayColours struct {
	ActiveBorder    string `yaml:"active_border"`
	InactiveBorder  string `yaml:"inactive_border"`
	BorderType      string `yaml:"border_type"`
	HighlightBg     string `yaml:"highlight_bg"`
	UnreadIndicator string `yaml:"unread_indicator"`
}

func Default() Config {
	return Config{
		RefreshEvery:   300,
		RefreshOnStart: true,
		Display: Display{
			Format: DisplayFormat{
				Time:       24,
				Date:       "2006-01-02",
				TitleLines: 2,
			},
			Columns: DisplayColumns{
				FeedsList:    25,
				ArticlesList: 35,
				ArticleView:  40,
			},
			Colours: DisplayColours{
				ActiveBorder:    "cyan",
				InactiveBorder:  "darkgray",
				BorderType:      "plain",
				HighlightBg:     "darkgray",
				UnreadIndicator: "cyan",
			},
		},
		Keybindings: DefaultKeybindings(),
	}
}

// Path returns the config file location, honouring LAZYFEED_CONFIG.
func Path() (string, error) {
	if p := os.Getenv("LAZYFEED_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine config directory: %w", err)
	}
	return filepath.Join(dir, "lazyfeed", "config.yaml"), nil
}

// DBPath returns the sqlite database location, honouring LAZYFEED_DB_PATH.
func DBPath() (string, error) {
	if p := os.Getenv("LAZYFEED_DB_PATH"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "lazyfeed", "news.db"), nil
}

// Load reads the config file at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.RefreshEvery <= 0 {
		c.RefreshEvery = def.RefreshEvery
	}
	if c.Display.Format.Time != 12 && c.Display.Format.Time != 24 {
		c.Display.Format.Time = def.Display.Format.Time
	}
	if c.Display.Format.Date == "" {
		c.Display.Format.Date = def.Display.Format.Date
	}
	if c.Display.Format.TitleLines <= 0 {
		c.Display.Format.TitleLines = def.Display.Format.TitleLines
	}
	if c.Display.Columns.FeedsList <= 0 {
		c.Display.Columns = def.Display.Columns
	}
	if c.Display.Colours.ActiveBorder == "" {
		c.Display.Colours = def.Display.Colours
	}
	c.Keybindings.fillDefaults(def.Keybindings)
}

// Save writes the whole config atomically (temp file plus rename).
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return writeAtomic(path, data)
}

// SaveFeeds rewrites only the feeds section of the config file, leaving the
// other top-level keys as found on disk. Falls back to a full save when the
// file does not exist yet.
func (c *Config) SaveFeeds(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c.Save(path)
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if doc == nil {
		doc = make(map[string]any)
	}

	feedsData, err := yaml.Marshal(c.Feeds)
	if err != nil {
		return fmt.Errorf("encode feeds: %w", err)
	}
	var feedsValue any
	if err := yaml.Unmarshal(feedsData, &feedsValue); err != nil {
		return fmt.Errorf("reparse feeds: %w", err)
	}
	doc["feeds"] = feedsValue

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return writeAtomic(path, out)
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
