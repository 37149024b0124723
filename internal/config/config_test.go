package config

import (
	"testing"
	"time"
)

func TestLoad_ReportsMissingRequired(t *testing.T) {
	// Ensure a clean env by not setting anything and calling validation directly.
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := Config{
		App:  AppConfig{Env: "production", Port: 8080},
		DB:   DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "clubhub", SSLMode: ""},
		Auth: AuthConfig{JWTSecret: "secret", JWTIssuer: "clubhub", JWTAudience: "clubhub-cli"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := Config{
		App:  AppConfig{Env: "local", Port: 8080},
		DB:   DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "clubhub", SSLMode: ""},
		Auth: AuthConfig{JWTSecret: "secret"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_DatabaseOptional(t *testing.T) {
	c := Config{
		App:  AppConfig{Env: "dev", Port: 8080},
		Auth: AuthConfig{JWTSecret: "secret"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.HasDatabase() {
		t.Fatalf("expected no database")
	}
	if c.Auth.AccessTokenTTL != 5*time.Minute || c.Auth.RefreshTokenTTL != 24*time.Hour {
		t.Fatalf("unexpected ttl defaults: %v %v", c.Auth.AccessTokenTTL, c.Auth.RefreshTokenTTL)
	}
}

func TestValidate_RefreshMustOutliveAccess(t *testing.T) {
	c := Config{
		App:  AppConfig{Env: "dev", Port: 8080},
		Auth: AuthConfig{JWTSecret: "secret", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Minute},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected ttl ordering error")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_ACCESS_TTL", "2m")
	t.Setenv("JWT_ROTATE_REFRESH", "true")
	t.Setenv("SEED_DEMO_DATA", "1")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.App.Port != 9090 || c.HTTPAddr() != ":9090" {
		t.Fatalf("port: %d", c.App.Port)
	}
	if c.Auth.AccessTokenTTL != 2*time.Minute || !c.Auth.RotateRefresh || !c.SeedDemoData {
		t.Fatalf("unexpected auth config: %+v seed=%v", c.Auth, c.SeedDemoData)
	}
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_ACCESS_TTL", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected duration error")
	}
}

func TestClientValidate_Defaults(t *testing.T) {
	c := ClientConfig{SessionDir: "/tmp/clubhub"}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.Env != "local" || c.Profile != "default" || c.Store != StoreFile {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.APIURL != "http://localhost:8080/api" || c.HTTPTimeout != 15*time.Second {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.ProfileDir() != "/tmp/clubhub/default" {
		t.Fatalf("profile dir: %s", c.ProfileDir())
	}
}

func TestClientValidate_Rejects(t *testing.T) {
	cases := map[string]ClientConfig{
		"relative url":  {APIURL: "localhost/api", SessionDir: "/tmp"},
		"profile path":  {Profile: "../etc", SessionDir: "/tmp"},
		"unknown store": {Store: "sqlite", SessionDir: "/tmp"},
		"redis no addr": {Store: StoreRedis},
		"unknown env":   {Env: "qa", SessionDir: "/tmp"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if err := c.Validate(); err == nil {
				t.Fatalf("expected error for %+v", c)
			}
		})
	}
}
