package main

import (
    "context"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/joho/godotenv"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"

    "livepair/editor/internal/api"
    "livepair/editor/internal/config"
    "livepair/editor/internal/copilot"
    "livepair/editor/internal/feed"
    "livepair/editor/internal/files"
    "livepair/editor/internal/health"
    "livepair/editor/internal/runner"
    "livepair/editor/internal/sessions"
    "livepair/editor/internal/sessionws"
)

func main() {
    // Load .env file if present (ignored if missing)
    _ = godotenv.Load()

    cfg := config.Load()
    log := newLogger(cfg.Server.LogLevel)
    defer log.Sync()

    ctx := context.Background()

    // Storage: Postgres when configured, in-memory otherwise.
    var (
        pool *pgxpool.Pool
        fs   files.Store
    )
    if cfg.Store.DatabaseURL != "" {
        p, err := pgxpool.New(ctx, cfg.Store.DatabaseURL)
        if err != nil {
            log.Fatal("connect postgres", zap.Error(err))
        }
        pg := files.NewPostgres(p)
        if err := pg.Init(ctx); err != nil {
            log.Fatal("init postgres schema", zap.Error(err))
        }
        pool = p
        fs = pg
        log.Info("using postgres file store")
    } else {
        fs = files.NewMemory()
        log.Warn("DATABASE_URL not set, using in-memory file store")
    }

    // Feed: Redis pub/sub when configured, in-process otherwise.
    var (
        rdb *redis.Client
        fd  feed.Feed
    )
    if cfg.Feed.RedisAddr != "" {
        rdb = redis.NewClient(&redis.Options{Addr: cfg.Feed.RedisAddr})
        if err := rdb.Ping(ctx).Err(); err != nil {
            log.Fatal("connect redis", zap.Error(err))
        }
        fd = feed.NewRedis(rdb, log)
        log.Info("using redis feed", zap.String("addr", cfg.Feed.RedisAddr))
    } else {
        fd = feed.NewMemory()
        log.Warn("REDIS_ADDR not set, using in-process feed")
    }

    // Every store mutation is announced on the feed.
    published := files.Publish(fs, fd, log)

    sess := sessions.NewStore()

    var remote *runner.RemoteClient
    if cfg.Compile.URL != "" {
        remote = runner.NewRemoteClient(cfg.Compile.URL, cfg.Compile.APIKey)
    }
    disp := runner.New(remote)

    h := api.NewHandlers(cfg, log, sess, published, disp, health.Deps{
        Pool:  pool,
        Redis: rdb,
        Cfg:   cfg,
    })
    cp := copilot.NewProxy(cfg.Copilot.UpstreamURL, cfg.Copilot.APIKey, cfg.Copilot.Model, log)

    mux := http.NewServeMux()
    mux.Handle("/", api.NewRouter(h, cp))
    mux.Handle("/metrics", promhttp.Handler())

    reg := sessionws.NewRegistry()
    wss := sessionws.NewServer(cfg, sess, fd, reg, log)
    mux.HandleFunc("/ws", wss.HandleSessionWS)

    addr := ":" + cfg.Server.Port
    srv := &http.Server{
        Addr:              addr,
        Handler:           logMiddleware(log, mux),
        ReadHeaderTimeout: 5 * time.Second,
    }

    // Graceful shutdown on SIGINT/SIGTERM
    sigc := make(chan os.Signal, 1)
    signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
    go func() {
        <-sigc
        log.Info("shutdown signal received, stopping server")
        reg.CloseAll()
        sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = srv.Shutdown(sctx)
        if rdb != nil {
            _ = rdb.Close()
        }
        if pool != nil {
            pool.Close()
        }
    }()

    log.Info("server starting", zap.String("addr", addr))
    if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        log.Fatal("server error", zap.Error(err))
    }
}

func newLogger(level string) *zap.Logger {
    lvl, err := zapcore.ParseLevel(level)
    if err != nil {
        lvl = zapcore.InfoLevel
    }
    cfg := zap.NewProductionConfig()
    cfg.Level = zap.NewAtomicLevelAt(lvl)
    log, err := cfg.Build()
    if err != nil {
        panic(err)
    }
    return log
}

func logMiddleware(log *zap.Logger, next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        next.ServeHTTP(w, r)
        log.Debug("request",
            zap.String("method", r.Method),
            zap.String("path", r.URL.Path),
            zap.Duration("took", time.Since(start)))
    })
}
