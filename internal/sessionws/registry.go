package sessionws

import (
    "sync"

    ws "nhooyr.io/websocket"
)

// Registry tracks the websocket connections watching each session. Unlike a
// single-worker channel, any number of clients may watch one session.
type Registry struct {
    mu    sync.Mutex
    conns map[string]map[*ws.Conn]struct{}
}

func NewRegistry() *Registry {
    return &Registry{conns: make(map[string]map[*ws.Conn]struct{})}
}

func (r *Registry) Add(sessionCode string, c *ws.Conn) {
    r.mu.Lock()
    defer r.mu.Unlock()
    if r.conns[sessionCode] == nil {
        r.conns[sessionCode] = make(map[*ws.Conn]struct{})
    }
    r.conns[sessionCode][c] = struct{}{}
}

func (r *Registry) Remove(sessionCode string, c *ws.Conn) {
    r.mu.Lock()
    defer r.mu.Unlock()
    delete(r.conns[sessionCode], c)
    if len(r.conns[sessionCode]) == 0 {
        delete(r.conns, sessionCode)
    }
}

func (r *Registry) Count(sessionCode string) int {
    r.mu.Lock()
    defer r.mu.Unlock()
    return len(r.conns[sessionCode])
}

// CloseAll disconnects every watcher, used on shutdown.
func (r *Registry) CloseAll() {
    r.mu.Lock()
    defer r.mu.Unlock()
    for code, set := range r.conns {
        for c := range set {
            _ = c.Close(ws.StatusGoingAway, "server shutting down")
        }
        delete(r.conns, code)
    }
}
