package health

import (
    "context"
    "fmt"
    "net/http"
    "time"

    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/redis/go-redis/v9"

    "livepair/editor/internal/config"
)

type CheckResult struct {
    Name    string `json:"name"`
    OK      bool   `json:"ok"`
    Latency int64  `json:"latency_ms"`
    Error   string `json:"error,omitempty"`
}

type HealthStatus struct {
    OK        bool          `json:"ok"`
    Checks    []CheckResult `json:"checks"`
    CheckedAt time.Time     `json:"checked_at"`
}

func (h HealthStatus) String() string {
    status := "OK"
    if !h.OK {
        status = "FAIL"
    }
    s := fmt.Sprintf("Health: %s\n", status)
    for _, c := range h.Checks {
        mark := "ok"
        if !c.OK {
            mark = "fail"
        }
        s += fmt.Sprintf("  [%s] %s (%dms)", mark, c.Name, c.Latency)
        if c.Error != "" {
            s += fmt.Sprintf(" - %s", c.Error)
        }
        s += "\n"
    }
    return s
}

// Deps holds the live dependencies to probe. Nil members are reported as
// not configured rather than failing.
type Deps struct {
    Pool  *pgxpool.Pool
    Redis *redis.Client
    Cfg   config.Config
}

// CheckAll runs all dependency probes and returns combined status.
func CheckAll(ctx context.Context, d Deps) HealthStatus {
    checks := []CheckResult{
        checkPostgres(ctx, d.Pool),
        checkRedis(ctx, d.Redis),
        checkCompileService(ctx, d.Cfg),
    }
    allOK := true
    for _, c := range checks {
        if !c.OK {
            allOK = false
        }
    }
    return HealthStatus{OK: allOK, Checks: checks, CheckedAt: time.Now().UTC()}
}

func checkPostgres(ctx context.Context, pool *pgxpool.Pool) CheckResult {
    res := CheckResult{Name: "postgres", OK: true}
    if pool == nil {
        res.Error = "not configured (memory store)"
        return res
    }
    start := time.Now()
    if err := pool.Ping(ctx); err != nil {
        res.OK = false
        res.Error = err.Error()
    }
    res.Latency = time.Since(start).Milliseconds()
    return res
}

func checkRedis(ctx context.Context, client *redis.Client) CheckResult {
    res := CheckResult{Name: "redis", OK: true}
    if client == nil {
        res.Error = "not configured (memory feed)"
        return res
    }
    start := time.Now()
    if err := client.Ping(ctx).Err(); err != nil {
        res.OK = false
        res.Error = err.Error()
    }
    res.Latency = time.Since(start).Milliseconds()
    return res
}

func checkCompileService(ctx context.Context, cfg config.Config) CheckResult {
    res := CheckResult{Name: "compile_service", OK: true}
    if cfg.Compile.URL == "" {
        res.Error = "not configured (local eval only)"
        return res
    }
    start := time.Now()
    req, err := http.NewRequestWithContext(ctx, http.MethodHead, cfg.Compile.URL, nil)
    if err != nil {
        res.OK = false
        res.Error = err.Error()
        return res
    }
    resp, err := http.DefaultClient.Do(req)
    if err != nil {
        res.OK = false
        res.Error = err.Error()
    } else {
        resp.Body.Close()
        if resp.StatusCode >= 500 {
            res.OK = false
            res.Error = resp.Status
        }
    }
    res.Latency = time.Since(start).Milliseconds()
    return res
}
