package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8000 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8000)
	}
	if cfg.Points.DietItem != 1 || cfg.Points.ExerciseItem != 2 {
		t.Errorf("Points = %+v, want diet 1 exercise 2", cfg.Points)
	}
	if len(cfg.Points.StreakBonuses) != 2 {
		t.Errorf("StreakBonuses = %+v, want 7 and 30", cfg.Points.StreakBonuses)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HEALTHQUEST_HOME", home)
	t.Setenv("PORT", "")

	data := `
[api]
port = 9090

[points]
diet_item = 3
exercise_item = 5
require_activity = false

[[points.streak_bonuses]]
days = 3
bonus = 4

[clock]
timezone = "Asia/Taipei"

[[rewards]]
cost = 15
description = "Ice cream"
`
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != 9090 || cfg.API.Host != "127.0.0.1" {
		t.Errorf("API = %+v", cfg.API)
	}
	if cfg.Points.DietItem != 3 || cfg.Points.RequireActivity {
		t.Errorf("Points = %+v", cfg.Points)
	}
	if len(cfg.Points.StreakBonuses) != 1 || cfg.Points.StreakBonuses[0].Points != 4 {
		t.Errorf("StreakBonuses = %+v", cfg.Points.StreakBonuses)
	}
	if len(cfg.Rewards) != 1 || cfg.Rewards[0].Cost != 15 {
		t.Errorf("Rewards = %+v", cfg.Rewards)
	}

	ec, err := cfg.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig() error: %v", err)
	}
	if ec.Location.String() != "Asia/Taipei" || ec.ExerciseItemPoints != 5 {
		t.Errorf("EngineConfig() = %+v", ec)
	}

	t.Setenv("PORT", "4321")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() with PORT error: %v", err)
	}
	if cfg.API.Port != 4321 || cfg.API.Host != "0.0.0.0" {
		t.Errorf("PORT override: API = %+v", cfg.API)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		port string
	}{
		{"bad toml", "[api\nport = ", ""},
		{"duplicate reward", "[[rewards]]\ncost = 5\ndescription = \"a\"\n[[rewards]]\ncost = 5\ndescription = \"b\"\n", ""},
		{"bad timezone", "[clock]\ntimezone = \"Mars/Olympus\"\n", ""},
		{"bad bands", "[bmi]\nmode = \"fixed\"\n[[bmi.bands]]\nbelow = 20.0\nstatus = \"a\"\n[[bmi.bands]]\nbelow = 10.0\nstatus = \"b\"\n", ""},
		{"bad port", "", "http"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			t.Setenv("HEALTHQUEST_HOME", home)
			t.Setenv("PORT", tt.port)
			if tt.data != "" {
				if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(tt.data), 0600); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := LoadConfig(); err == nil {
				t.Error("LoadConfig() should fail")
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HEALTHQUEST_HOME", home)
	t.Setenv("PORT", "")

	cfg := DefaultConfig()
	cfg.Catalog.StrictItems = true
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}
	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if !got.Catalog.StrictItems || len(got.Rewards) != len(cfg.Rewards) {
		t.Errorf("round trip lost data: %+v", got.Catalog)
	}
}

func TestHome_Env(t *testing.T) {
	t.Setenv("HEALTHQUEST_HOME", "/tmp/hq-test-home")
	if got := Home(); got != "/tmp/hq-test-home" {
		t.Errorf("Home() = %q", got)
	}
}
