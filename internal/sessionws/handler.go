package sessionws

import (
    "context"
    "encoding/json"
    "net/http"
    "strings"
    "time"

    "go.uber.org/zap"
    ws "nhooyr.io/websocket"

    "livepair/editor/internal/auth"
    "livepair/editor/internal/config"
    "livepair/editor/internal/feed"
    "livepair/editor/internal/sessions"
    "livepair/editor/internal/types"
)

const writeTimeout = 5 * time.Second

// Server upgrades clients onto a session's change feed. The channel is
// one-way: clients receive JSON ChangeEvents; anything they send is ignored.
// All writes go through the REST API, which is what feeds the feed.
type Server struct {
    Cfg  config.Config
    Sess *sessions.Store
    Feed feed.Feed
    Reg  *Registry
    Log  *zap.Logger
}

func NewServer(cfg config.Config, sess *sessions.Store, f feed.Feed, reg *Registry, log *zap.Logger) *Server {
    return &Server{Cfg: cfg, Sess: sess, Feed: f, Reg: reg, Log: log}
}

func (s *Server) HandleSessionWS(w http.ResponseWriter, r *http.Request) {
    code := r.URL.Query().Get("session_code")
    if code == "" {
        http.Error(w, "missing session_code", http.StatusBadRequest)
        return
    }
    if s.Sess.Get(code) == nil {
        http.Error(w, "unknown session", http.StatusNotFound)
        return
    }
    token := bearerToken(r)
    if token == "" {
        token = r.URL.Query().Get("token") // browser websockets cannot set headers
    }
    if token == "" {
        http.Error(w, "missing feed token", http.StatusUnauthorized)
        return
    }
    if s.Cfg.Feed.TokenSecret == "" {
        http.Error(w, "feed auth not configured", http.StatusUnauthorized)
        return
    }
    if _, _, err := auth.ValidateFeedToken(s.Cfg.Feed.TokenSecret, token, code, time.Now(), s.Cfg.Feed.TokenSkewSecs); err != nil {
        http.Error(w, "invalid token", http.StatusUnauthorized)
        return
    }

    c, err := ws.Accept(w, r, nil)
    if err != nil {
        s.Log.Warn("ws accept failed", zap.Error(err))
        return
    }
    s.Reg.Add(code, c)
    s.Sess.AppendEvent(code, "client_connected", nil)

    unsub := s.Feed.Subscribe(code, func(evt types.ChangeEvent) {
        payload, err := json.Marshal(evt)
        if err != nil {
            return
        }
        ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
        defer cancel()
        if err := c.Write(ctx, ws.MessageText, payload); err != nil {
            s.Log.Debug("ws write failed", zap.String("session_code", code), zap.Error(err))
        }
    })

    // Drain the read side until the client goes away.
    ctx := r.Context()
    for {
        if _, _, err := c.Read(ctx); err != nil {
            break
        }
    }
    unsub()
    _ = c.Close(ws.StatusNormalClosure, "done")
    s.Reg.Remove(code, c)
    s.Sess.AppendEvent(code, "client_disconnected", nil)
}

func bearerToken(r *http.Request) string {
    authz := r.Header.Get("Authorization")
    if strings.HasPrefix(authz, "Bearer ") {
        return strings.TrimPrefix(authz, "Bearer ")
    }
    return ""
}
