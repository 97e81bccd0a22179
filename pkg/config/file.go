package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for the optional YAML file. Zero values mean
// "not set" and leave the default in place.
type fileConfig struct {
	Mongo struct {
		URI         string `yaml:"uri"`
		Database    string `yaml:"database"`
		ConnTimeout string `yaml:"conn_timeout"`
	} `yaml:"mongo"`

	Server struct {
		Port            string `yaml:"port"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		IdleTimeout     string `yaml:"idle_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
		RequestTimeout  string `yaml:"request_timeout"`
		MaxRequestSize  int    `yaml:"max_request_size"`
		IdempotencyTTL  string `yaml:"idempotency_ttl"`
	} `yaml:"server"`

	RateLimit struct {
		Requests int    `yaml:"requests"`
		Window   string `yaml:"window"`
	} `yaml:"rate_limit"`

	Locks struct {
		Backend       string `yaml:"backend"`
		TTL           string `yaml:"ttl"`
		SweepSchedule string `yaml:"sweep_schedule"`
		RedisURL      string `yaml:"redis_url"`
	} `yaml:"locks"`

	Events struct {
		Backend          string `yaml:"backend"`
		Topic            string `yaml:"topic"`
		RabbitMQURL      string `yaml:"rabbitmq_url"`
		RabbitMQExchange string `yaml:"rabbitmq_exchange"`
	} `yaml:"events"`

	Meetings struct {
		RejectUnknownParticipants *bool `yaml:"reject_unknown_participants"`
	} `yaml:"meetings"`

	LogLevel string `yaml:"log_level"`
}

func readFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

func (fc *fileConfig) apply(cfg *Config) error {
	setStr(&cfg.MongoURI, fc.Mongo.URI)
	setStr(&cfg.MongoDatabaseName, fc.Mongo.Database)
	setStr(&cfg.Port, fc.Server.Port)
	setStr(&cfg.LockBackend, fc.Locks.Backend)
	setStr(&cfg.LockSweepSchedule, fc.Locks.SweepSchedule)
	setStr(&cfg.RedisURL, fc.Locks.RedisURL)
	setStr(&cfg.EventBackend, fc.Events.Backend)
	setStr(&cfg.MeetingsTopic, fc.Events.Topic)
	setStr(&cfg.RabbitMQURL, fc.Events.RabbitMQURL)
	setStr(&cfg.RabbitMQExchange, fc.Events.RabbitMQExchange)
	setStr(&cfg.LogLevel, fc.LogLevel)

	if fc.Server.MaxRequestSize != 0 {
		cfg.MaxRequestSize = fc.Server.MaxRequestSize
	}
	if fc.RateLimit.Requests != 0 {
		cfg.RateLimitRequests = fc.RateLimit.Requests
	}
	if fc.Meetings.RejectUnknownParticipants != nil {
		cfg.RejectUnknownParticipants = *fc.Meetings.RejectUnknownParticipants
	}

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"mongo.conn_timeout", fc.Mongo.ConnTimeout, &cfg.MongoConnTimeout},
		{"server.read_timeout", fc.Server.ReadTimeout, &cfg.ReadTimeout},
		{"server.write_timeout", fc.Server.WriteTimeout, &cfg.WriteTimeout},
		{"server.idle_timeout", fc.Server.IdleTimeout, &cfg.IdleTimeout},
		{"server.shutdown_timeout", fc.Server.ShutdownTimeout, &cfg.ShutdownTimeout},
		{"server.request_timeout", fc.Server.RequestTimeout, &cfg.RequestTimeout},
		{"server.idempotency_ttl", fc.Server.IdempotencyTTL, &cfg.IdempotencyTTL},
		{"rate_limit.window", fc.RateLimit.Window, &cfg.RateLimitWindow},
		{"locks.ttl", fc.Locks.TTL, &cfg.LockTTL},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %q", d.name, d.value)
		}
		*d.dst = parsed
	}

	return nil
}

func setStr(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
