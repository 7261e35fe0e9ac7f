package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Log struct {
		JSON  bool `yaml:"json" json:"json"`
		Debug bool `yaml:"debug" json:"debug"`
	} `yaml:"log" json:"log"`

	Scrape struct {
		UserAgent         string  `yaml:"user_agent" json:"user_agent"`
		TimeoutSeconds    int     `yaml:"timeout_seconds" json:"timeout_seconds"`
		MaxBodyBytes      int64   `yaml:"max_body_bytes" json:"max_body_bytes"`
		TextLimit         int     `yaml:"text_limit" json:"text_limit"`
		RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
		Burst             int     `yaml:"burst" json:"burst"`
	} `yaml:"scrape" json:"scrape"`

	Probe struct {
		Enabled        bool `yaml:"enabled" json:"enabled"`
		TimeoutSeconds int  `yaml:"timeout_seconds" json:"timeout_seconds"`
	} `yaml:"probe" json:"probe"`

	Templates struct {
		Default string `yaml:"default" json:"default"`
	} `yaml:"templates" json:"templates"`

	Tracker struct {
		Enabled bool `yaml:"enabled" json:"enabled"`
	} `yaml:"tracker" json:"tracker"`
}

func Default() Config {
	var c Config
	c.App.Port = 38471
	c.App.DataDir = "./data"
	c.Scrape.TimeoutSeconds = 20
	c.Scrape.MaxBodyBytes = 5 << 20
	c.Scrape.TextLimit = 5000
	c.Scrape.RequestsPerSecond = 1
	c.Scrape.Burst = 2
	c.Probe.Enabled = true
	c.Probe.TimeoutSeconds = 3
	c.Tracker.Enabled = true
	return c
}

// Load reads path over the defaults, so a partial file is fine.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) ScrapeTimeout() time.Duration {
	return time.Duration(c.Scrape.TimeoutSeconds) * time.Second
}

func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Probe.TimeoutSeconds) * time.Second
}
