package sessions

import (
    "crypto/rand"
    "errors"
    "sync"
    "time"

    "livepair/editor/internal/types"
)

var ErrSessionExists = errors.New("session already exists")

// codeAlphabet omits easily-confused characters (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
const codeLength = 6

// Store is the in-memory registry of live collaboration sessions and their
// activity logs. File contents live in the file store, not here.
type Store struct {
    mu       sync.RWMutex
    sessions map[string]*types.Session
    events   map[string][]types.Event
}

func NewStore() *Store {
    return &Store{
        sessions: make(map[string]*types.Session),
        events:   make(map[string][]types.Event),
    }
}

// Create registers a new session under a fresh shareable code.
func (s *Store) Create() *types.Session {
    s.mu.Lock()
    defer s.mu.Unlock()
    code := randomCode()
    for s.sessions[code] != nil {
        code = randomCode()
    }
    sess := &types.Session{Code: code, CreatedAt: time.Now().UTC()}
    s.sessions[code] = sess
    s.events[code] = []types.Event{}
    return sess
}

func (s *Store) Get(code string) *types.Session {
    s.mu.RLock()
    defer s.mu.RUnlock()
    return s.sessions[code]
}

func (s *Store) ListCodes() []string {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]string, 0, len(s.sessions))
    for code := range s.sessions {
        out = append(out, code)
    }
    return out
}

func (s *Store) AppendEvent(code, typ string, payload map[string]any) types.Event {
    evt := types.Event{Type: typ, Ts: time.Now().UTC(), Payload: payload}
    s.mu.Lock()
    defer s.mu.Unlock()
    s.events[code] = append(s.events[code], evt)
    // Cap total events per session to avoid unbounded growth
    const maxEvents = 200
    if l := len(s.events[code]); l > maxEvents {
        keep := maxEvents - 1
        dropped := l - keep
        s.events[code] = append([]types.Event(nil), s.events[code][l-keep:]...)
        warn := types.Event{Type: "events_truncated", Ts: time.Now().UTC(), Payload: map[string]any{"dropped": dropped, "kept": keep}}
        s.events[code] = append(s.events[code], warn)
    }
    return evt
}

func (s *Store) ListEvents(code string) []types.Event {
    s.mu.RLock()
    defer s.mu.RUnlock()
    src := s.events[code]
    out := make([]types.Event, len(src))
    copy(out, src)
    return out
}

func randomCode() string {
    var b [codeLength]byte
    _, _ = rand.Read(b[:])
    for i := range b {
        b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
    }
    return string(b[:])
}
