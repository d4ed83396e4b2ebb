package feed

import (
    "context"
    "encoding/json"

    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "livepair/editor/internal/types"
)

// Redis carries change events over one pub/sub channel per session, JSON
// encoded. Malformed payloads are logged and dropped at this boundary.
type Redis struct {
    client *redis.Client
    log    *zap.Logger
}

func NewRedis(client *redis.Client, log *zap.Logger) *Redis {
    return &Redis{client: client, log: log}
}

func (r *Redis) Publish(ctx context.Context, sessionCode string, evt types.ChangeEvent) error {
    payload, err := json.Marshal(evt)
    if err != nil {
        return err
    }
    return r.client.Publish(ctx, ChannelName(sessionCode), payload).Err()
}

func (r *Redis) Subscribe(sessionCode string, fn Handler) func() {
    ps := r.client.Subscribe(context.Background(), ChannelName(sessionCode))
    ch := ps.Channel()
    go func() {
        for msg := range ch {
            var evt types.ChangeEvent
            if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
                r.log.Warn("dropping undecodable change event",
                    zap.String("session_code", sessionCode), zap.Error(err))
                continue
            }
            if !evt.Valid() {
                r.log.Warn("dropping malformed change event",
                    zap.String("session_code", sessionCode), zap.String("kind", string(evt.Kind)))
                continue
            }
            fn(evt)
        }
    }()
    return func() { _ = ps.Close() }
}
