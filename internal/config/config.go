package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Board struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Automation struct {
		// Per-user cap on automated submissions per calendar day.
		MaxDailyApplications int    `yaml:"max_daily_applications" json:"max_daily_applications"`
		RetryAttempts        int    `yaml:"retry_attempts" json:"retry_attempts"`
		RetryBackoffSeconds  int    `yaml:"retry_backoff_seconds" json:"retry_backoff_seconds"`
		CaptchaWaitSeconds   int    `yaml:"captcha_wait_seconds" json:"captcha_wait_seconds"`
		ElementWaitSeconds   int    `yaml:"element_wait_seconds" json:"element_wait_seconds"`
		Workers              int    `yaml:"workers" json:"workers"`
		Headless             bool   `yaml:"headless" json:"headless"`
		ScreenshotDir        string `yaml:"screenshot_dir" json:"screenshot_dir"`
		Timezone             string `yaml:"timezone" json:"timezone"`
		// Randomized pause between page actions, to keep the request
		// pattern irregular.
		DelayMinMs int `yaml:"delay_min_ms" json:"delay_min_ms"`
		DelayMaxMs int `yaml:"delay_max_ms" json:"delay_max_ms"`
		// Navigation rate limit, per target host.
		RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
		Burst             int     `yaml:"burst" json:"burst"`
	} `yaml:"automation" json:"automation"`

	Boards struct {
		PNet      Board `yaml:"pnet" json:"pnet"`
		Careers24 Board `yaml:"careers24" json:"careers24"`
		LinkedIn  Board `yaml:"linkedin" json:"linkedin"`
		Indeed    Board `yaml:"indeed" json:"indeed"`
	} `yaml:"boards" json:"boards"`

	Schedules struct {
		Reminders string `yaml:"reminders" json:"reminders"` // cron, default 08:00 daily
		Search    string `yaml:"search" json:"search"`       // cron, default 09:00 weekdays
		Cleanup   string `yaml:"cleanup" json:"cleanup"`     // cron, default Sunday 00:00
	} `yaml:"schedules" json:"schedules"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	a := &cfg.Automation
	if a.MaxDailyApplications <= 0 {
		a.MaxDailyApplications = 10
	}
	if a.RetryAttempts <= 0 {
		a.RetryAttempts = 3
	}
	if a.RetryBackoffSeconds <= 0 {
		a.RetryBackoffSeconds = 60
	}
	if a.CaptchaWaitSeconds <= 0 {
		a.CaptchaWaitSeconds = 120
	}
	if a.ElementWaitSeconds <= 0 {
		a.ElementWaitSeconds = 10
	}
	if a.Workers <= 0 {
		a.Workers = 2
	}
	if a.ScreenshotDir == "" {
		a.ScreenshotDir = "screenshots"
	}
	if a.Timezone == "" {
		a.Timezone = "UTC"
	}
	if a.DelayMinMs <= 0 {
		a.DelayMinMs = 1000
	}
	if a.DelayMaxMs <= a.DelayMinMs {
		a.DelayMaxMs = a.DelayMinMs + 2000
	}
	if a.RequestsPerSecond <= 0 {
		a.RequestsPerSecond = 1.0
	}
	if a.Burst <= 0 {
		a.Burst = 2
	}
	if cfg.Schedules.Reminders == "" {
		cfg.Schedules.Reminders = "0 8 * * *"
	}
	if cfg.Schedules.Search == "" {
		cfg.Schedules.Search = "0 9 * * 1-5"
	}
	if cfg.Schedules.Cleanup == "" {
		cfg.Schedules.Cleanup = "0 0 * * 0"
	}
	if cfg.App.Port == 0 {
		cfg.App.Port = 38472
	}
}

// Location resolves the configured time zone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Automation.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RetryBackoff is the fixed pause between task attempts.
func (c Config) RetryBackoff() time.Duration {
	return time.Duration(c.Automation.RetryBackoffSeconds) * time.Second
}

// BoardEnabled reports whether automation may touch the given board.
func (c Config) BoardEnabled(board string) bool {
	switch board {
	case "pnet":
		return c.Boards.PNet.Enabled
	case "careers24":
		return c.Boards.Careers24.Enabled
	case "linkedin":
		return c.Boards.LinkedIn.Enabled
	case "indeed":
		return c.Boards.Indeed.Enabled
	}
	return false
}
