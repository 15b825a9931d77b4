// Package daemon manages the HealthQuest runtime lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/healthquest/healthquest/internal/app/bmi"
	"github.com/healthquest/healthquest/internal/app/daily"
	"github.com/healthquest/healthquest/internal/app/engine"
	"github.com/healthquest/healthquest/internal/app/reward"
	"github.com/healthquest/healthquest/internal/app/streak"
	"github.com/healthquest/healthquest/internal/domain"
)

// Config holds all runtime configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Clock     ClockConfig     `toml:"clock"`
	Points    PointsConfig    `toml:"points"`
	BMI       BMIConfig       `toml:"bmi"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Rewards   []domain.Reward `toml:"rewards"`
	Backup    BackupConfig    `toml:"backup"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// TelemetryConfig controls the Prometheus endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// ClockConfig decides which calendar date "today" is.
type ClockConfig struct {
	Timezone string `toml:"timezone"`
}

// PointsConfig holds the scoring rules.
type PointsConfig struct {
	DietItem        int64          `toml:"diet_item"`
	ExerciseItem    int64          `toml:"exercise_item"`
	RequireActivity bool           `toml:"require_activity"`
	StreakBonuses   []streak.Bonus `toml:"streak_bonuses"`
}

// BMIConfig selects the classifier and its bands.
type BMIConfig struct {
	Mode  string     `toml:"mode"`
	Bands []bmi.Band `toml:"bands"`
}

// CatalogConfig lists the selectable items and daily tips.
type CatalogConfig struct {
	DietOptions     []string `toml:"diet_options"`
	ExerciseOptions []string `toml:"exercise_options"`
	DailyTips       []string `toml:"daily_tips"`
	StrictItems     bool     `toml:"strict_items"`
}

// BackupConfig controls scheduled database backups.
type BackupConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"`
	Dir      string `toml:"dir"`
	Keep     int    `toml:"keep"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := hqHome()
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8000,
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Clock: ClockConfig{
			Timezone: "Local",
		},
		Points: PointsConfig{
			DietItem:        1,
			ExerciseItem:    2,
			RequireActivity: true,
			StreakBonuses:   streak.DefaultBonuses(),
		},
		BMI: BMIConfig{
			Mode:  bmi.ModeFixed,
			Bands: bmi.DefaultBands(),
		},
		Catalog: CatalogConfig{
			DietOptions: []string{
				"Ate vegetables", "Ate fruit", "Drank water instead of soda",
				"No fried food", "No late-night snacks", "Balanced breakfast",
			},
			ExerciseOptions: []string{
				"Jump rope", "Running", "Swimming", "Cycling",
				"Ball games", "Stretching",
			},
			DailyTips: []string{
				"Drink a glass of water before every meal.",
				"Fill half your plate with vegetables.",
				"Take the stairs instead of the elevator.",
				"Sixty minutes of play a day keeps you strong.",
				"Swap sweet drinks for water or milk.",
				"Go to bed on time; sleep helps you grow.",
			},
		},
		Rewards: []domain.Reward{
			{Cost: 20, Description: "Pick tonight's dessert"},
			{Cost: 50, Description: "30 minutes of extra screen time"},
			{Cost: 100, Description: "A new book or toy"},
			{Cost: 200, Description: "A family day trip"},
		},
		Backup: BackupConfig{
			Enabled:  false,
			Schedule: "@daily",
			Dir:      filepath.Join(homeDir, "backups"),
			Keep:     7,
		},
	}
}

// LoadConfig reads config from $HEALTHQUEST_HOME/config.toml, falling back to
// defaults. A .env file in the working directory or the home directory is
// loaded first, and PORT overrides the API port.
func LoadConfig() (Config, error) {
	loadDotEnv()

	cfg := DefaultConfig()
	path := ConfigPath()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 || p > 65535 {
			return cfg, fmt.Errorf("invalid PORT %q", port)
		}
		cfg.API.Port = p
		// A platform-assigned port means we must listen on all interfaces.
		cfg.API.Host = "0.0.0.0"
	}
	return cfg, cfg.Validate()
}

// Validate checks every section the engine depends on.
func (c Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Points.DietItem < 0 || c.Points.ExerciseItem < 0 {
		return fmt.Errorf("points: item values must not be negative")
	}
	if err := streak.ValidateBonuses(c.Points.StreakBonuses); err != nil {
		return fmt.Errorf("points: %w", err)
	}
	if _, err := bmi.NewClassifier(c.BMI.Mode, c.BMI.Bands); err != nil {
		return err
	}
	if _, err := reward.NewCatalog(c.Rewards); err != nil {
		return fmt.Errorf("rewards: %w", err)
	}
	if c.Backup.Keep < 0 {
		return fmt.Errorf("backup: keep must not be negative")
	}
	return nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	switch c.Clock.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Clock.Timezone)
	if err != nil {
		return nil, fmt.Errorf("clock: unknown timezone %q: %w", c.Clock.Timezone, err)
	}
	return loc, nil
}

// EngineConfig translates the file sections into engine rules.
func (c Config) EngineConfig() (engine.Config, error) {
	loc, err := c.Location()
	if err != nil {
		return engine.Config{}, err
	}
	classifier, err := bmi.NewClassifier(c.BMI.Mode, c.BMI.Bands)
	if err != nil {
		return engine.Config{}, err
	}
	catalog, err := reward.NewCatalog(c.Rewards)
	if err != nil {
		return engine.Config{}, fmt.Errorf("rewards: %w", err)
	}
	return engine.Config{
		Location:           loc,
		DietItemPoints:     c.Points.DietItem,
		ExerciseItemPoints: c.Points.ExerciseItem,
		RequireActivity:    c.Points.RequireActivity,
		StreakBonuses:      c.Points.StreakBonuses,
		Classifier:         classifier,
		Rewards:            catalog,
		Items: daily.Options{
			Diet:     c.Catalog.DietOptions,
			Exercise: c.Catalog.ExerciseOptions,
			Strict:   c.Catalog.StrictItems,
		},
		Tips:  c.Catalog.DailyTips,
		Debug: c.Logging.Level == "debug",
	}, nil
}

// SaveConfig writes the config to $HEALTHQUEST_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// ConfigPath is the config file location.
func ConfigPath() string {
	return filepath.Join(hqHome(), "config.toml")
}

// loadDotEnv loads .env files without overriding variables already set.
func loadDotEnv() {
	for _, p := range []string{".env", filepath.Join(hqHome(), ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// hqHome returns the data directory: $HEALTHQUEST_HOME, a mounted /data
// volume, or ~/.healthquest.
func hqHome() string {
	if env := os.Getenv("HEALTHQUEST_HOME"); env != "" {
		return env
	}
	if fi, err := os.Stat("/data"); err == nil && fi.IsDir() {
		return "/data"
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".healthquest")
}

// Home is exported for use by other packages.
func Home() string {
	return hqHome()
}
