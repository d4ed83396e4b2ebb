package files

import (
    "context"

    "go.uber.org/zap"

    "livepair/editor/internal/feed"
    "livepair/editor/internal/types"
)

// Published wraps a Store and announces every successful mutation on the
// change feed. The writer's own update comes back as an echo, which is the
// transport contract the editor core reconciles against. Publish failures
// are logged and swallowed: the write is already durable, and peers recover
// on their next reload.
type Published struct {
    Store
    feed feed.Feed
    log  *zap.Logger
}

func Publish(s Store, f feed.Feed, log *zap.Logger) *Published {
    return &Published{Store: s, feed: f, log: log}
}

func (p *Published) Create(ctx context.Context, sessionCode, filename, language string) (types.FileRecord, error) {
    rec, err := p.Store.Create(ctx, sessionCode, filename, language)
    if err != nil {
        return rec, err
    }
    p.announce(ctx, types.ChangeEvent{Kind: types.ChangeInsert, Record: rec})
    return rec, nil
}

func (p *Published) Update(ctx context.Context, id string, up Partial) (types.FileRecord, error) {
    rec, err := p.Store.Update(ctx, id, up)
    if err != nil {
        return rec, err
    }
    p.announce(ctx, types.ChangeEvent{Kind: types.ChangeUpdate, Record: rec})
    return rec, nil
}

func (p *Published) Delete(ctx context.Context, id string) error {
    rec, err := p.Store.Get(ctx, id)
    if err != nil {
        return err
    }
    if err := p.Store.Delete(ctx, id); err != nil {
        return err
    }
    p.announce(ctx, types.ChangeEvent{Kind: types.ChangeDelete, Record: rec})
    return nil
}

func (p *Published) announce(ctx context.Context, evt types.ChangeEvent) {
    if err := p.feed.Publish(ctx, evt.Record.SessionCode, evt); err != nil {
        p.log.Warn("change event publish failed",
            zap.String("session_code", evt.Record.SessionCode),
            zap.String("kind", string(evt.Kind)),
            zap.Error(err))
    }
}
