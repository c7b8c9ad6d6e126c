// Package config reads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultListen   = ":8080"
	defaultDBPath   = "clans.db"
	defaultRealm    = "eu"
	defaultInterval = time.Hour
)

var (
	ErrNoNATS   = errors.New("NATS_HOST and NATS_PORT must be set")
	ErrNoSource = errors.New("either API_HOST/API_PORT or WOWS_WOWSAPIKEY must be set")
)

type Config struct {
	ListenAddr string
	NATSURL    string

	// Store backend: the clan-store service when StoreHost is set,
	// otherwise the embedded sqlite store at StoreDBPath.
	StoreHost   string
	StorePort   string
	StoreDBPath string

	// Source backend: the API service when APIHost is set, otherwise the
	// Wargaming API directly.
	APIHost    string
	APIPort    string
	WowsAPIKey string
	WowsRealm  string

	SyncTags     []string
	SyncInterval time.Duration
}

func (c *Config) UseHTTPStore() bool {
	return c.StoreHost != ""
}

func (c *Config) UseHTTPSource() bool {
	return c.APIHost != ""
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:   envOr("CLAN_SYNC_LISTEN", defaultListen),
		StoreHost:    os.Getenv("STORE_HOST"),
		StorePort:    os.Getenv("STORE_PORT"),
		StoreDBPath:  envOr("STORE_DB_PATH", defaultDBPath),
		APIHost:      os.Getenv("API_HOST"),
		APIPort:      os.Getenv("API_PORT"),
		WowsAPIKey:   os.Getenv("WOWS_WOWSAPIKEY"),
		WowsRealm:    envOr("WOWS_REALM", defaultRealm),
		SyncInterval: defaultInterval,
	}

	natsHost := os.Getenv("NATS_HOST")
	natsPort := os.Getenv("NATS_PORT")
	if natsHost == "" || natsPort == "" {
		return nil, ErrNoNATS
	}
	cfg.NATSURL = fmt.Sprintf("nats://%s:%s", natsHost, natsPort)

	if cfg.StoreHost != "" && cfg.StorePort == "" {
		return nil, errors.New("STORE_PORT must be set when STORE_HOST is")
	}
	if cfg.APIHost != "" && cfg.APIPort == "" {
		return nil, errors.New("API_PORT must be set when API_HOST is")
	}
	if cfg.APIHost == "" && cfg.WowsAPIKey == "" {
		return nil, ErrNoSource
	}

	if tags := os.Getenv("SYNC_TAGS"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				cfg.SyncTags = append(cfg.SyncTags, tag)
			}
		}
	}
	if interval := os.Getenv("SYNC_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("parsing SYNC_INTERVAL: %w", err)
		}
		cfg.SyncInterval = d
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
