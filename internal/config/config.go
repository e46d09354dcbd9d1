package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "UTC"
	defaultWindowDays  = 60
	defaultTimeoutSecs = 15
	defaultCollection  = "lotteries"

	configPathEnv     = "LOTTO_SCANNER_CONFIG"
	windowDaysEnv     = "DAYS_BACK"
	requestTimeoutEnv = "REQUEST_TIMEOUT"
	databaseDSNEnv    = "DATABASE_DSN"
	deviceIDEnv       = "LOTTERY_DEVICE_ID"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig       `yaml:"logging"`
	Database      DatabaseConfig      `yaml:"database"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Window        WindowConfig        `yaml:"window"`
	HTTP          HTTPConfig          `yaml:"http"`
	Output        OutputConfig        `yaml:"output"`
	Notifications NotificationConfig  `yaml:"notifications"`
	API           APIConfig           `yaml:"api"`
	Games         map[string]GameRule `yaml:"games"`
	Sources       []SourceConfig      `yaml:"sources"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details for the document store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when the scan should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// WindowConfig bounds the trailing recency window for hot-number counting.
type WindowConfig struct {
	Days int `yaml:"days"`
}

// HTTPConfig bounds each outbound request. No retries, no backoff: a failed
// fetch just advances the fallback chain.
type HTTPConfig struct {
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

// Timeout returns the per-request timeout as a duration.
func (h HTTPConfig) Timeout() time.Duration {
	secs := h.TimeoutSeconds
	if secs <= 0 {
		secs = defaultTimeoutSecs
	}
	return time.Duration(secs) * time.Second
}

// OutputConfig controls the local artifact directory and store collection.
type OutputConfig struct {
	Dir        string `yaml:"dir"`
	Collection string `yaml:"collection"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// APIConfig holds provider-specific extras. DeviceID is optional; when empty
// the corresponding header is simply skipped.
type APIConfig struct {
	DeviceID string `yaml:"deviceId"`
}

// GameRule mirrors domain.GameRule in configuration form.
type GameRule struct {
	MainCount  int `yaml:"mainCount"`
	BonusCount int `yaml:"bonusCount"`
	MainMax    int `yaml:"mainMax"`
	BonusMax   int `yaml:"bonusMax"`
}

// SourceConfig describes one lottery source and its extraction fallbacks.
type SourceConfig struct {
	Name    string   `yaml:"name"`
	Game    string   `yaml:"game"`
	PageID  string   `yaml:"pageId"`
	HTMLURL string   `yaml:"htmlUrl"`
	CSVURLs []string `yaml:"csvUrls"`
	APIURL  string   `yaml:"apiUrl"`
	// PagedURL points at a secondary aggregator requiring page traversal.
	PagedURL string `yaml:"pagedUrl"`
	// DiscoverAPI lets the API stage scrape the HTML page for a download id.
	DiscoverAPI bool `yaml:"discoverApi"`
	// Stages overrides the derived extractor priority order.
	Stages []string `yaml:"stages"`
	TopN   int      `yaml:"topN"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}
	if len(cfg.Games) == 0 {
		cfg.Games = defaultConfig().Games
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(windowDaysEnv); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			c.Window.Days = days
		}
	}

	if v := os.Getenv(requestTimeoutEnv); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.HTTP.TimeoutSeconds = secs
		}
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(deviceIDEnv); v != "" {
		c.API.DeviceID = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Window.Days > 0 {
		base.Window = override.Window
	}
	if override.HTTP.TimeoutSeconds > 0 {
		base.HTTP = override.HTTP
	}

	if override.Output.Dir != "" {
		base.Output.Dir = override.Output.Dir
	}
	if override.Output.Collection != "" {
		base.Output.Collection = override.Output.Collection
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.API.DeviceID != "" {
		base.API = override.API
	}

	if len(override.Games) > 0 {
		base.Games = override.Games
	}
	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Window:    WindowConfig{Days: defaultWindowDays},
		HTTP:      HTTPConfig{TimeoutSeconds: defaultTimeoutSecs},
		Output:    OutputConfig{Dir: ".", Collection: defaultCollection},
		Games: map[string]GameRule{
			"powerball":             {MainCount: 5, BonusCount: 1, MainMax: 69, BonusMax: 26},
			"megamillions":          {MainCount: 5, BonusCount: 1, MainMax: 70, BonusMax: 25},
			"euromillions":          {MainCount: 5, BonusCount: 2, MainMax: 50, BonusMax: 12},
			"lotto":                 {MainCount: 6, BonusCount: 1, MainMax: 59, BonusMax: 59},
			"thunderball":           {MainCount: 5, BonusCount: 1, MainMax: 39, BonusMax: 14},
			"set-for-life":          {MainCount: 5, BonusCount: 1, MainMax: 47, BonusMax: 10},
			"euromillions-hotpicks": {MainCount: 5, BonusCount: 0, MainMax: 50},
			"lotto-hotpicks":        {MainCount: 6, BonusCount: 0, MainMax: 59},
		},
		Sources: []SourceConfig{
			{
				Name:    "euromillions",
				Game:    "euromillions",
				PageID:  "euromillions",
				HTMLURL: "https://www.national-lottery.co.uk/results/euromillions/draw-history",
				CSVURLs: []string{"https://www.national-lottery.co.uk/results/euromillions/draw-history/csv"},
			},
			{
				Name:     "lotto",
				Game:     "lotto",
				PageID:   "lotto",
				HTMLURL:  "https://www.national-lottery.co.uk/results/lotto/draw-history",
				CSVURLs:  []string{"https://www.national-lottery.co.uk/results/lotto/draw-history/csv"},
				PagedURL: "https://www.lottery.co.uk/lotto/results/archive",
			},
			{
				Name:    "thunderball",
				Game:    "thunderball",
				PageID:  "thunderball",
				HTMLURL: "https://www.national-lottery.co.uk/results/thunderball/draw-history",
				CSVURLs: []string{"https://www.national-lottery.co.uk/results/thunderball/draw-history/csv"},
			},
			{
				Name:    "set-for-life",
				Game:    "set-for-life",
				PageID:  "set-for-life",
				HTMLURL: "https://www.national-lottery.co.uk/results/set-for-life/draw-history",
				CSVURLs: []string{"https://www.national-lottery.co.uk/results/set-for-life/draw-history/csv"},
			},
			{
				Name:   "megamillions",
				Game:   "megamillions",
				PageID: "megamillions",
				APIURL: "https://data.ny.gov/resource/h6w8-42p9.json",
			},
			{
				Name:   "powerball",
				Game:   "powerball",
				PageID: "powerball",
				APIURL: "https://data.ny.gov/resource/5xaw-6ayf.json",
			},
			{
				Name:        "euromillions-hotpicks",
				Game:        "euromillions-hotpicks",
				PageID:      "euromillions-hotpicks",
				HTMLURL:     "https://www.national-lottery.co.uk/results/euromillions-hotpicks/draw-history",
				DiscoverAPI: true,
			},
			{
				Name:        "lotto-hotpicks",
				Game:        "lotto-hotpicks",
				PageID:      "lotto-hotpicks",
				HTMLURL:     "https://www.national-lottery.co.uk/results/lotto-hotpicks/draw-history",
				DiscoverAPI: true,
			},
		},
	}
}

// RankCount returns the source's configured top-N or the default of 10.
func (s SourceConfig) RankCount() int {
	if s.TopN > 0 {
		return s.TopN
	}
	return 10
}
