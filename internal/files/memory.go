package files

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/google/uuid"

    "livepair/editor/internal/types"
)

type memEntry struct {
    rec types.FileRecord
    seq int64
}

// Memory is a map-backed store for tests and standalone runs.
type Memory struct {
    mu   sync.RWMutex
    byID map[string]*memEntry
    seq  int64
}

func NewMemory() *Memory {
    return &Memory{byID: make(map[string]*memEntry)}
}

func (m *Memory) List(ctx context.Context, sessionCode string) ([]types.FileRecord, error) {
    m.mu.RLock()
    defer m.mu.RUnlock()
    entries := make([]*memEntry, 0, len(m.byID))
    for _, e := range m.byID {
        if e.rec.SessionCode == sessionCode {
            entries = append(entries, e)
        }
    }
    sort.Slice(entries, func(i, j int) bool {
        if !entries[i].rec.CreatedAt.Equal(entries[j].rec.CreatedAt) {
            return entries[i].rec.CreatedAt.Before(entries[j].rec.CreatedAt)
        }
        return entries[i].seq < entries[j].seq
    })
    out := make([]types.FileRecord, len(entries))
    for i, e := range entries {
        out[i] = e.rec
    }
    return out, nil
}

func (m *Memory) Get(ctx context.Context, id string) (types.FileRecord, error) {
    m.mu.RLock()
    defer m.mu.RUnlock()
    e, ok := m.byID[id]
    if !ok {
        return types.FileRecord{}, ErrNotFound
    }
    return e.rec, nil
}

func (m *Memory) Create(ctx context.Context, sessionCode, filename, language string) (types.FileRecord, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.seq++
    rec := types.FileRecord{
        ID:          uuid.NewString(),
        SessionCode: sessionCode,
        Filename:    filename,
        Language:    language,
        CreatedAt:   time.Now().UTC(),
    }
    m.byID[rec.ID] = &memEntry{rec: rec, seq: m.seq}
    return rec, nil
}

func (m *Memory) Update(ctx context.Context, id string, p Partial) (types.FileRecord, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    e, ok := m.byID[id]
    if !ok {
        return types.FileRecord{}, ErrNotFound
    }
    if p.Filename != nil {
        e.rec.Filename = *p.Filename
    }
    if p.Content != nil {
        e.rec.Content = *p.Content
    }
    if p.Language != nil {
        e.rec.Language = *p.Language
    }
    return e.rec, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if _, ok := m.byID[id]; !ok {
        return ErrNotFound
    }
    delete(m.byID, id)
    return nil
}
