package files

import (
    "context"
    "sync"
    "testing"
    "time"

    "go.uber.org/zap"

    "livepair/editor/internal/feed"
    "livepair/editor/internal/types"
)

func collectEvents(t *testing.T, f *feed.Memory, code string) (func() []types.ChangeEvent, func()) {
    t.Helper()
    var mu sync.Mutex
    var got []types.ChangeEvent
    unsub := f.Subscribe(code, func(evt types.ChangeEvent) {
        mu.Lock()
        got = append(got, evt)
        mu.Unlock()
    })
    snapshot := func() []types.ChangeEvent {
        mu.Lock()
        defer mu.Unlock()
        out := make([]types.ChangeEvent, len(got))
        copy(out, got)
        return out
    }
    return snapshot, unsub
}

func TestPublishedAnnouncesMutations(t *testing.T) {
    ctx := context.Background()
    f := feed.NewMemory()
    st := Publish(NewMemory(), f, zap.NewNop())

    events, unsub := collectEvents(t, f, "ABC234")
    defer unsub()

    rec, err := st.Create(ctx, "ABC234", "main.go", "go")
    if err != nil {
        t.Fatalf("create: %v", err)
    }
    content := "package main"
    if _, err := st.Update(ctx, rec.ID, Partial{Content: &content}); err != nil {
        t.Fatalf("update: %v", err)
    }
    if err := st.Delete(ctx, rec.ID); err != nil {
        t.Fatalf("delete: %v", err)
    }

    deadline := time.Now().Add(time.Second)
    for len(events()) != 3 {
        if time.Now().After(deadline) {
            t.Fatalf("expected 3 events, got %d", len(events()))
        }
        time.Sleep(time.Millisecond)
    }
    kinds := map[types.ChangeKind]bool{}
    for _, evt := range events() {
        if evt.Record.ID != rec.ID {
            t.Fatalf("event for unexpected record %q", evt.Record.ID)
        }
        kinds[evt.Kind] = true
    }
    if !kinds[types.ChangeInsert] || !kinds[types.ChangeUpdate] || !kinds[types.ChangeDelete] {
        t.Fatalf("missing event kinds: %v", kinds)
    }
}
