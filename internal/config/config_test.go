package config

import (
    "os"
    "testing"
)

func TestLoadDefaults(t *testing.T) {
    // Clear relevant envs
    os.Unsetenv("PORT")
    os.Unsetenv("LOG_LEVEL")
    os.Unsetenv("EDITOR_QUIET_MS")
    os.Unsetenv("GITHUB_API_BASE")

    c := Load()

    if c.Server.Port != "8080" {
        t.Fatalf("expected default port 8080, got %q", c.Server.Port)
    }
    if c.Server.LogLevel != "info" {
        t.Fatalf("expected default log level info, got %q", c.Server.LogLevel)
    }
    if c.Editor.QuietMs != 500 || c.Editor.GraceMs != 200 || c.Editor.RecencyMs != 500 {
        t.Fatalf("unexpected editor timing defaults: %+v", c.Editor)
    }
    if c.GitHub.APIBase != "https://api.github.com" {
        t.Fatalf("expected default github api base, got %q", c.GitHub.APIBase)
    }
}

func TestLoadEnvOverride(t *testing.T) {
    os.Setenv("EDITOR_QUIET_MS", "120")
    os.Setenv("REDIS_ADDR", "redis:6379")
    defer os.Unsetenv("EDITOR_QUIET_MS")
    defer os.Unsetenv("REDIS_ADDR")

    c := Load()

    if c.Editor.QuietMs != 120 {
        t.Fatalf("expected quiet period override 120, got %d", c.Editor.QuietMs)
    }
    if c.Feed.RedisAddr != "redis:6379" {
        t.Fatalf("expected redis addr override, got %q", c.Feed.RedisAddr)
    }
}
