package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Generator struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"generator"`
	Quiz struct {
		Duration      string `yaml:"duration"`       // default 60s
		QuestionCount int    `yaml:"question_count"` // default 10
	} `yaml:"quiz"`
	Challenge struct {
		Duration string `yaml:"duration"` // default 5m
	} `yaml:"challenge"`
	Leaderboard struct {
		TTL string `yaml:"ttl"` // cache TTL, default 1m
	} `yaml:"leaderboard"`
}

// Load reads YAML config from path. The generator API key may also be
// supplied via the GROQ_API_KEY environment variable, which wins over
// the file so keys stay out of checked-in config.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		cfg.Generator.APIKey = key
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// QuestionCount returns the configured questions per quiz, defaulting to 10.
func (c Config) QuestionCount() int {
	if c.Quiz.QuestionCount > 0 {
		return c.Quiz.QuestionCount
	}
	return 10
}
