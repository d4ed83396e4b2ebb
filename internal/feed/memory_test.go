package feed

import (
    "context"
    "sync/atomic"
    "testing"
    "time"

    "livepair/editor/internal/types"
)

func TestMemoryPublishSubscribe(t *testing.T) {
    m := NewMemory()
    var got atomic.Int64
    unsub := m.Subscribe("ABC234", func(evt types.ChangeEvent) {
        if evt.Kind != types.ChangeUpdate {
            t.Errorf("unexpected kind %q", evt.Kind)
        }
        got.Add(1)
    })
    defer unsub()

    evt := types.ChangeEvent{Kind: types.ChangeUpdate, Record: types.FileRecord{ID: "f1"}}
    if err := m.Publish(context.Background(), "ABC234", evt); err != nil {
        t.Fatalf("publish: %v", err)
    }
    // Other sessions must not hear it.
    if err := m.Publish(context.Background(), "OTHER1", evt); err != nil {
        t.Fatalf("publish: %v", err)
    }

    deadline := time.Now().Add(time.Second)
    for got.Load() != 1 {
        if time.Now().After(deadline) {
            t.Fatalf("expected exactly 1 delivery, got %d", got.Load())
        }
        time.Sleep(time.Millisecond)
    }
}

func TestMemoryUnsubscribeStopsDelivery(t *testing.T) {
    m := NewMemory()
    var got atomic.Int64
    unsub := m.Subscribe("ABC234", func(types.ChangeEvent) { got.Add(1) })
    unsub()

    evt := types.ChangeEvent{Kind: types.ChangeInsert, Record: types.FileRecord{ID: "f1"}}
    if err := m.Publish(context.Background(), "ABC234", evt); err != nil {
        t.Fatalf("publish: %v", err)
    }
    time.Sleep(20 * time.Millisecond)
    if got.Load() != 0 {
        t.Fatalf("expected no delivery after unsubscribe, got %d", got.Load())
    }
}
