package feed

import (
    "context"
    "sync"

    "livepair/editor/internal/types"
)

// Memory is an in-process feed for tests and single-node runs. Events are
// delivered on separate goroutines, so subscribers observe the same
// unordered, asynchronous contract as the networked implementation.
type Memory struct {
    mu   sync.Mutex
    subs map[string]map[int]Handler
    next int
}

func NewMemory() *Memory {
    return &Memory{subs: make(map[string]map[int]Handler)}
}

func (m *Memory) Publish(ctx context.Context, sessionCode string, evt types.ChangeEvent) error {
    m.mu.Lock()
    handlers := make([]Handler, 0, len(m.subs[sessionCode]))
    for _, fn := range m.subs[sessionCode] {
        handlers = append(handlers, fn)
    }
    m.mu.Unlock()
    for _, fn := range handlers {
        go fn(evt)
    }
    return nil
}

func (m *Memory) Subscribe(sessionCode string, fn Handler) func() {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.subs[sessionCode] == nil {
        m.subs[sessionCode] = make(map[int]Handler)
    }
    id := m.next
    m.next++
    m.subs[sessionCode][id] = fn
    return func() {
        m.mu.Lock()
        defer m.mu.Unlock()
        delete(m.subs[sessionCode], id)
    }
}
