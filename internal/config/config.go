package config

import (
    "fmt"
    "log"
    "strings"

    "github.com/spf13/viper"
)

type Config struct {
    Server struct {
        Port     string
        LogLevel string
    }
    Store struct {
        DatabaseURL string
    }
    Feed struct {
        RedisAddr     string
        TokenSecret   string
        TokenSkewSecs int
        TokenExpMin   int
    }
    Editor struct {
        QuietMs   int
        GraceMs   int
        RecencyMs int
    }
    Compile struct {
        URL    string
        APIKey string
    }
    GitHub struct {
        APIBase string
    }
    Copilot struct {
        UpstreamURL string
        APIKey      string
        Model       string
    }
}

func Load() Config {
    v := viper.New()
    v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
    v.AutomaticEnv()

    // Defaults
    v.SetDefault("server.port", 8080)
    v.SetDefault("server.log_level", "info")

    v.SetDefault("feed.redis_addr", "")
    v.SetDefault("feed.token_skew_secs", 30)
    v.SetDefault("feed.token_exp_min", 720)

    v.SetDefault("editor.quiet_ms", 500)
    v.SetDefault("editor.grace_ms", 200)
    v.SetDefault("editor.recency_ms", 500)

    v.SetDefault("github.api_base", "https://api.github.com")

    v.SetDefault("copilot.model", "gpt-3.5-turbo")

    // Map envs
    v.BindEnv("server.port", "PORT")
    v.BindEnv("server.log_level", "LOG_LEVEL")

    v.BindEnv("store.database_url", "DATABASE_URL")

    v.BindEnv("feed.redis_addr", "REDIS_ADDR")
    v.BindEnv("feed.token_secret", "FEED_TOKEN_SECRET")
    v.BindEnv("feed.token_skew_secs", "FEED_TOKEN_SKEW_SECS")
    v.BindEnv("feed.token_exp_min", "FEED_TOKEN_EXP_MIN")

    v.BindEnv("editor.quiet_ms", "EDITOR_QUIET_MS")
    v.BindEnv("editor.grace_ms", "EDITOR_GRACE_MS")
    v.BindEnv("editor.recency_ms", "EDITOR_RECENCY_MS")

    v.BindEnv("compile.url", "COMPILE_SERVICE_URL")
    v.BindEnv("compile.api_key", "COMPILE_SERVICE_KEY")

    v.BindEnv("github.api_base", "GITHUB_API_BASE")

    v.BindEnv("copilot.upstream_url", "COPILOT_UPSTREAM_URL")
    v.BindEnv("copilot.api_key", "COPILOT_API_KEY")
    v.BindEnv("copilot.model", "COPILOT_MODEL")

    var c Config
    c.Server.Port = toString(v.Get("server.port"))
    c.Server.LogLevel = v.GetString("server.log_level")

    c.Store.DatabaseURL = v.GetString("store.database_url")

    c.Feed.RedisAddr = v.GetString("feed.redis_addr")
    c.Feed.TokenSecret = v.GetString("feed.token_secret")
    c.Feed.TokenSkewSecs = v.GetInt("feed.token_skew_secs")
    c.Feed.TokenExpMin = v.GetInt("feed.token_exp_min")

    c.Editor.QuietMs = v.GetInt("editor.quiet_ms")
    c.Editor.GraceMs = v.GetInt("editor.grace_ms")
    c.Editor.RecencyMs = v.GetInt("editor.recency_ms")

    c.Compile.URL = v.GetString("compile.url")
    c.Compile.APIKey = v.GetString("compile.api_key")

    c.GitHub.APIBase = v.GetString("github.api_base")

    c.Copilot.UpstreamURL = v.GetString("copilot.upstream_url")
    c.Copilot.APIKey = v.GetString("copilot.api_key")
    c.Copilot.Model = v.GetString("copilot.model")

    log.Printf("config loaded: port=%s redis=%q db_configured=%v", c.Server.Port, c.Feed.RedisAddr, c.Store.DatabaseURL != "")
    return c
}

func toString(v any) string { return fmt.Sprint(v) }
