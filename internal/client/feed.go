package client

import (
    "context"
    "encoding/json"
    "errors"
    "net/url"
    "strings"
    "sync"

    "go.uber.org/zap"
    ws "nhooyr.io/websocket"

    "livepair/editor/internal/feed"
    "livepair/editor/internal/types"
)

// ErrPublishUnsupported is returned by WSFeed.Publish. Remote clients do
// not write to the feed directly; their REST writes are echoed by the
// server, which is the publishing side of the channel.
var ErrPublishUnsupported = errors.New("feed publish goes through the REST API")

// WSFeed is a feed.Feed backed by a server's websocket channel. Each
// Subscribe call dials its own connection and pumps decoded events into
// the handler until unsubscribed or the connection drops.
type WSFeed struct {
    base  string // ws:// or wss:// server base
    token string
    log   *zap.Logger
}

var _ feed.Feed = (*WSFeed)(nil)

func NewWSFeed(baseURL, feedToken string, log *zap.Logger) *WSFeed {
    return &WSFeed{
        base:  strings.TrimSuffix(baseURL, "/"),
        token: feedToken,
        log:   log,
    }
}

func (f *WSFeed) Publish(ctx context.Context, sessionCode string, evt types.ChangeEvent) error {
    return ErrPublishUnsupported
}

func (f *WSFeed) Subscribe(sessionCode string, fn feed.Handler) func() {
    ctx, cancel := context.WithCancel(context.Background())
    var once sync.Once

    go func() {
        q := url.Values{}
        q.Set("session_code", sessionCode)
        q.Set("token", f.token)
        c, _, err := ws.Dial(ctx, f.base+"/ws?"+q.Encode(), nil)
        if err != nil {
            f.log.Warn("feed dial failed", zap.String("session_code", sessionCode), zap.Error(err))
            return
        }
        defer c.Close(ws.StatusNormalClosure, "unsubscribed")

        for {
            _, data, err := c.Read(ctx)
            if err != nil {
                if ctx.Err() == nil {
                    f.log.Debug("feed read ended", zap.String("session_code", sessionCode), zap.Error(err))
                }
                return
            }
            var evt types.ChangeEvent
            if err := json.Unmarshal(data, &evt); err != nil {
                f.log.Warn("dropping malformed feed event", zap.Error(err))
                continue
            }
            fn(evt)
        }
    }()

    return func() { once.Do(cancel) }
}
