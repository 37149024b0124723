package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// ClientConfig configures the terminal client. Flags may override any field after LoadClient.
type ClientConfig struct {
	Env         string
	APIURL      string
	Profile     string
	Store       string
	SessionDir  string
	RedisAddr   string
	HTTPTimeout time.Duration
}

func LoadClient() (ClientConfig, error) {
	c := ClientConfig{
		Env:        strings.TrimSpace(os.Getenv("APP_ENV")),
		APIURL:     strings.TrimSpace(os.Getenv("CLUBHUB_API_URL")),
		Profile:    strings.TrimSpace(os.Getenv("CLUBHUB_PROFILE")),
		Store:      strings.TrimSpace(os.Getenv("CLUBHUB_SESSION_STORE")),
		SessionDir: strings.TrimSpace(os.Getenv("CLUBHUB_SESSION_DIR")),
		RedisAddr:  strings.TrimSpace(os.Getenv("CLUBHUB_REDIS_ADDR")),
	}

	d, err := optionalDuration("CLUBHUB_HTTP_TIMEOUT")
	if err != nil {
		return ClientConfig{}, err
	}
	c.HTTPTimeout = d

	if err := c.Validate(); err != nil {
		return ClientConfig{}, err
	}
	return c, nil
}

// Validate fills defaults and reports every invalid field at once.
func (c *ClientConfig) Validate() error {
	var errs []error

	if c.Env == "" {
		c.Env = "local"
	} else if !isValidEnv(c.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.Env))
	}

	if c.APIURL == "" {
		c.APIURL = "http://localhost:8080/api"
	}
	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("CLUBHUB_API_URL must be an absolute URL, got %q", c.APIURL))
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")

	if c.Profile == "" {
		c.Profile = "default"
	}
	if strings.ContainsAny(c.Profile, `/\:`) || c.Profile == "." || c.Profile == ".." {
		errs = append(errs, fmt.Errorf("CLUBHUB_PROFILE must be a plain name, got %q", c.Profile))
	}

	if c.Store == "" {
		c.Store = StoreFile
	}
	switch c.Store {
	case StoreFile:
		if c.SessionDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				errs = append(errs, fmt.Errorf("CLUBHUB_SESSION_DIR is required: %w", err))
			} else {
				c.SessionDir = filepath.Join(home, ".clubhub")
			}
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("CLUBHUB_REDIS_ADDR is required for the redis session store"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("CLUBHUB_SESSION_STORE must be one of file, redis, memory, got %q", c.Store))
	}

	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 15 * time.Second
	}

	return joinErrors(errs)
}

// ProfileDir is where the file store keeps this profile's credentials.
func (c ClientConfig) ProfileDir() string {
	return filepath.Join(c.SessionDir, c.Profile)
}
