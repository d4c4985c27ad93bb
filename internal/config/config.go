// Package config assembles the run configuration from defaults, an optional
// YAML file, and environment variables, in that order. The assembled value
// is passed explicitly to each component; nothing reads the environment at
// use time.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults target the EUGLOH open-registrations listing
const (
	DefaultTargetURL       = "https://www.eugloh.eu/courses-trainings/?openRegistrations=%5Byes%5D"
	DefaultRegLinkSelector = "div.buttons-wrap:nth-child(3) > div:nth-child(1) > p:nth-child(1) > a:nth-child(1)"
	DefaultTitleSelector   = "h5.headline"
	DefaultDateSelector    = "time, .date"
	DefaultStateFile       = "seen.json"
	DefaultFeedFile        = "feed.xml"
	DefaultUserAgent       = "Mozilla/5.0 (compatible; EUGLOH-Events-Bot/1.0)"
	DefaultTimeoutSeconds  = 30
	DefaultFeedTitle       = "EUGLOH Course Events"
	DefaultFeedDescription = "New course registration opportunities from EUGLOH"
)

// Config holds every knob for a single run
type Config struct {
	TargetURL       string `yaml:"target_url"`
	RegLinkSelector string `yaml:"reg_link_selector"`
	TitleSelector   string `yaml:"title_selector"`
	DateSelector    string `yaml:"date_selector"`
	StateFile       string `yaml:"state_file"`
	FeedFile        string `yaml:"feed_file"`
	WebhookURL      string `yaml:"webhook_url"`
	UserAgent       string `yaml:"user_agent"`
	TimeoutSeconds  int    `yaml:"timeout_s"`
	FeedTitle       string `yaml:"feed_title"`
	FeedDescription string `yaml:"feed_description"`
}

// Default returns a config populated with the built-in defaults
func Default() *Config {
	return &Config{
		TargetURL:       DefaultTargetURL,
		RegLinkSelector: DefaultRegLinkSelector,
		TitleSelector:   DefaultTitleSelector,
		DateSelector:    DefaultDateSelector,
		StateFile:       DefaultStateFile,
		FeedFile:        DefaultFeedFile,
		UserAgent:       DefaultUserAgent,
		TimeoutSeconds:  DefaultTimeoutSeconds,
		FeedTitle:       DefaultFeedTitle,
		FeedDescription: DefaultFeedDescription,
	}
}

// Load builds the effective config: defaults, overlaid with the YAML file
// at path (if path is non-empty), overlaid with environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overlays environment variables onto the config.
// Variable names match the original deployment's conventions.
func (c *Config) applyEnv() error {
	setIfPresent := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setIfPresent("TARGET_URL", &c.TargetURL)
	setIfPresent("REG_LINK_SELECTOR", &c.RegLinkSelector)
	setIfPresent("TITLE_SELECTOR", &c.TitleSelector)
	setIfPresent("DATE_SELECTOR", &c.DateSelector)
	setIfPresent("STATE_FILE", &c.StateFile)
	setIfPresent("FEED_FILE", &c.FeedFile)
	setIfPresent("WEBHOOK_URL", &c.WebhookURL)
	setIfPresent("USER_AGENT", &c.UserAgent)
	setIfPresent("FEED_TITLE", &c.FeedTitle)
	setIfPresent("FEED_DESCRIPTION", &c.FeedDescription)

	if v, ok := os.LookupEnv("REQUEST_TIMEOUT"); ok {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REQUEST_TIMEOUT must be an integer: %w", err)
		}
		c.TimeoutSeconds = seconds
	}

	return nil
}

// Validate checks that the config is usable for a run
func (c *Config) Validate() error {
	if c.TargetURL == "" {
		return fmt.Errorf("target_url is required")
	}
	if c.RegLinkSelector == "" {
		return fmt.Errorf("reg_link_selector is required")
	}
	if c.StateFile == "" {
		return fmt.Errorf("state_file is required")
	}
	if c.FeedFile == "" {
		return fmt.Errorf("feed_file is required")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_s must be > 0")
	}
	return nil
}

// Timeout returns the request timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
