// Package editor maintains one client's view of a multi-file session under
// concurrent remote edits: open tabs, the active edit buffer, debounced
// write-back, and reconciliation against the change feed.
//
// All state is owned by a single goroutine fed through a command queue, so
// local edits and remote events are serialized deterministically. The policy
// is last-writer-wins, biased toward the local typist during an active edit
// burst: a remote update to the active file is discarded while typing is
// recent, on the assumption that it is the stale echo of our own write. Two
// users typing in the same file inside the same window do not converge; the
// last successful write-back wins.
//
// No write-back is flushed when a tab is closed or deselected: edits made in
// the final quiet-period window before navigating away are lost. That is a
// deliberate trade-off, not an oversight.
package editor

import (
    "context"
    "errors"
    "sync"
    "time"

    "go.uber.org/zap"

    "livepair/editor/internal/feed"
    "livepair/editor/internal/files"
    "livepair/editor/internal/runner"
    "livepair/editor/internal/types"
)

const (
    DefaultQuietPeriod   = 500 * time.Millisecond
    DefaultTypingGrace   = 200 * time.Millisecond
    DefaultRecencyWindow = 500 * time.Millisecond

    ioTimeout = 5 * time.Second
    runTimeout = 30 * time.Second
)

var (
    ErrNoActiveFile = errors.New("no active file")
    ErrRunInFlight  = errors.New("a run is already in flight")
    ErrClosed       = errors.New("editor session closed")
)

type Options struct {
    // QuietPeriod is the debounce delay before a buffer edit is persisted.
    QuietPeriod time.Duration
    // TypingGrace keeps typing state set after a write-back completes, so
    // the echo of that very write is still suppressed.
    TypingGrace time.Duration
    // RecencyWindow is how long after a local edit remote updates to the
    // active file are presumed stale.
    RecencyWindow time.Duration
    Logger        *zap.Logger
}

// State is a point-in-time copy of the editor view, safe to retain.
type State struct {
    Files     []types.FileRecord
    OpenFiles []types.FileRecord
    ActiveID  string
    Buffer    string
    Language  string
    Output    string
    Running   bool
    IsTyping  bool
}

// Session is one connected client's editor. Create with New, start with
// Open, release with Close.
type Session struct {
    code  string
    store files.Store
    feed  feed.Feed
    disp  *runner.Dispatcher
    opts  Options
    log   *zap.Logger

    cmds      chan func()
    closed    chan struct{}
    closeOnce sync.Once

    // Everything below is owned by the loop goroutine.
    unsub       func()
    files       []types.FileRecord
    open        []types.FileRecord
    activeID    string
    buffer      string
    language    string
    output      string
    loadedOnce  bool
    isTyping    bool
    lastEdit    time.Time
    editSeq     uint64
    writeTimer  *time.Timer
    pendingID   string
    pendingText string
    running     bool
}

func New(sessionCode string, store files.Store, f feed.Feed, disp *runner.Dispatcher, opts Options) *Session {
    if opts.QuietPeriod <= 0 {
        opts.QuietPeriod = DefaultQuietPeriod
    }
    if opts.TypingGrace <= 0 {
        opts.TypingGrace = DefaultTypingGrace
    }
    if opts.RecencyWindow <= 0 {
        opts.RecencyWindow = DefaultRecencyWindow
    }
    if opts.Logger == nil {
        opts.Logger = zap.NewNop()
    }
    s := &Session{
        code:   sessionCode,
        store:  store,
        feed:   f,
        disp:   disp,
        opts:   opts,
        log:    opts.Logger.With(zap.String("session_code", sessionCode)),
        cmds:   make(chan func(), 64),
        closed: make(chan struct{}),
    }
    go s.loop()
    return s
}

func (s *Session) loop() {
    for {
        select {
        case fn := <-s.cmds:
            fn()
        case <-s.closed:
            return
        }
    }
}

// do runs fn on the owner goroutine and waits for it. Never call from inside
// the loop; continuations scheduled by loop-side code use post.
func (s *Session) do(fn func()) error {
    done := make(chan struct{})
    select {
    case s.cmds <- func() { fn(); close(done) }:
    case <-s.closed:
        return ErrClosed
    }
    select {
    case <-done:
        return nil
    case <-s.closed:
        return ErrClosed
    }
}

func (s *Session) post(fn func()) {
    select {
    case s.cmds <- fn:
    case <-s.closed:
    }
}

// Open performs the initial file load and subscribes to the change feed.
func (s *Session) Open(ctx context.Context) error {
    if err := s.LoadFiles(ctx); err != nil {
        return err
    }
    unsub := s.feed.Subscribe(s.code, func(evt types.ChangeEvent) {
        s.post(func() { s.handleRemote(evt) })
    })
    if err := s.do(func() { s.unsub = unsub }); err != nil {
        unsub()
        return err
    }
    return nil
}

// Close unsubscribes from the feed and drops any pending write-back.
func (s *Session) Close() error {
    err := s.do(func() {
        s.cancelPendingWrite()
        if s.unsub != nil {
            s.unsub()
            s.unsub = nil
        }
    })
    s.closeOnce.Do(func() { close(s.closed) })
    if errors.Is(err, ErrClosed) {
        return nil
    }
    return err
}

// LoadFiles fetches the session's file list. On the first successful load,
// if no files are open, the earliest-created file is opened automatically.
// A failed load leaves the previous snapshot in place.
func (s *Session) LoadFiles(ctx context.Context) error {
    recs, err := s.store.List(ctx, s.code)
    if err != nil {
        metricLoadErrors.Inc()
        return err
    }
    return s.do(func() { s.applyFiles(recs) })
}

// reload refreshes the file list in the background without blocking the
// owner goroutine. Failures keep the last-known-good snapshot.
func (s *Session) reload() {
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
        defer cancel()
        recs, err := s.store.List(ctx, s.code)
        if err != nil {
            metricLoadErrors.Inc()
            s.log.Warn("file list reload failed", zap.Error(err))
            return
        }
        s.post(func() { s.applyFiles(recs) })
    }()
}

func (s *Session) applyFiles(recs []types.FileRecord) {
    s.files = recs
    metricReloads.Inc()
    // Refresh open tab copies; membership and order never change here.
    for i, o := range s.open {
        for _, r := range recs {
            if r.ID == o.ID {
                s.open[i] = r
                break
            }
        }
    }
    if !s.loadedOnce {
        s.loadedOnce = true
        if len(s.open) == 0 && len(recs) > 0 {
            first := recs[0]
            s.open = append(s.open, first)
            s.activeID = first.ID
            s.buffer = first.Content
            s.language = first.Language
        }
    }
}

// SelectFile activates a file, opening a tab for it if needed. Tabs are
// appended in selection order and never reordered by selection. Any pending
// write-back for the file being left is dropped.
func (s *Session) SelectFile(f types.FileRecord) error {
    return s.do(func() {
        if s.activeID != f.ID {
            s.cancelPendingWrite()
        }
        if !s.isOpen(f.ID) {
            s.open = append(s.open, f)
        }
        s.activeID = f.ID
        s.buffer = f.Content
        s.language = f.Language
        s.output = ""
    })
}

// CloseFile removes a tab. Closing the active tab activates the rightmost
// remaining tab (most recently added wins); with no tabs left, active state
// and buffer are cleared.
func (s *Session) CloseFile(fileID string) error {
    return s.do(func() { s.closeTab(fileID, true) })
}

func (s *Session) closeTab(fileID string, activateLast bool) {
    idx := -1
    for i, o := range s.open {
        if o.ID == fileID {
            idx = i
            break
        }
    }
    if idx < 0 {
        return
    }
    s.open = append(s.open[:idx], s.open[idx+1:]...)
    if s.activeID != fileID {
        return
    }
    s.cancelPendingWrite()
    if activateLast && len(s.open) > 0 {
        next := s.open[len(s.open)-1]
        s.activeID = next.ID
        s.buffer = next.Content
        s.language = next.Language
    } else {
        s.activeID = ""
        s.buffer = ""
        s.output = ""
    }
}

// EditBuffer applies a local keystroke to the active file's buffer and
// (re)schedules the debounced write-back. No-op when no file is active.
func (s *Session) EditBuffer(content string) error {
    return s.do(func() {
        if s.activeID == "" {
            return
        }
        s.buffer = content
        s.isTyping = true
        s.lastEdit = time.Now()
        s.editSeq++
        s.pendingID = s.activeID
        s.pendingText = content
        if s.writeTimer != nil {
            s.writeTimer.Stop()
        }
        s.writeTimer = time.AfterFunc(s.opts.QuietPeriod, func() {
            s.post(s.flushPending)
        })
    })
}

// flushPending persists the coalesced buffer content. Runs on the owner
// goroutine; the store write itself happens off-loop. A failed write is not
// retried: the buffer stays the user's unsaved view until the next edit
// reschedules a write.
func (s *Session) flushPending() {
    id, text := s.pendingID, s.pendingText
    s.writeTimer = nil
    s.pendingID, s.pendingText = "", ""
    if id == "" {
        return
    }
    seq := s.editSeq
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
        _, err := s.store.Update(ctx, id, files.Partial{Content: &text})
        cancel()
        if err != nil {
            metricWriteErrors.Inc()
            s.log.Warn("write-back failed", zap.String("file_id", id), zap.Error(err))
        } else {
            metricWriteBacks.Inc()
        }
        // Keep suppressing until the echo of this write has had time to
        // arrive. A newer edit burst re-arms typing and must not be
        // clobbered by this older timer.
        time.AfterFunc(s.opts.TypingGrace, func() {
            s.post(func() {
                if s.editSeq == seq {
                    s.isTyping = false
                }
            })
        })
    }()
}

// ChangeLanguage retags the active file and writes through immediately;
// language changes are not keystroke-driven, so there is no debounce.
func (s *Session) ChangeLanguage(language string) error {
    return s.do(func() {
        if s.activeID == "" {
            return
        }
        s.language = language
        id := s.activeID
        go func() {
            ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
            defer cancel()
            if _, err := s.store.Update(ctx, id, files.Partial{Language: &language}); err != nil {
                metricWriteErrors.Inc()
                s.log.Warn("language write failed", zap.String("file_id", id), zap.Error(err))
            }
        }()
    })
}

// handleRemote reconciles one change-feed event against local state.
func (s *Session) handleRemote(evt types.ChangeEvent) {
    if !evt.Valid() {
        metricMalformedEvents.Inc()
        s.log.Warn("malformed change event dropped", zap.String("kind", string(evt.Kind)))
        return
    }
    metricRemoteEvents.WithLabelValues(string(evt.Kind)).Inc()
    switch evt.Kind {
    case types.ChangeInsert:
        // Never auto-opens for a peer; only the creator's own flow selects it.
        s.reload()
    case types.ChangeDelete:
        s.reload()
        s.closeTab(evt.Record.ID, false)
    case types.ChangeUpdate:
        if evt.Record.ID == s.activeID && s.isTyping && time.Since(s.lastEdit) < s.opts.RecencyWindow {
            // Presumed stale echo of our own write; the local buffer is newer.
            metricEchoesSuppressed.Inc()
            return
        }
        s.reload()
        if evt.Record.ID == s.activeID {
            s.buffer = evt.Record.Content
            s.language = evt.Record.Language
        }
    }
}

// Run dispatches the active buffer for execution. A run already in flight
// rejects the call; it is not queued and not cancelled.
func (s *Session) Run() error {
    var err error
    derr := s.do(func() {
        if s.activeID == "" {
            err = ErrNoActiveFile
            return
        }
        if s.running {
            err = ErrRunInFlight
            return
        }
        s.running = true
        s.output = ""
        code, lang := s.buffer, s.language
        go func() {
            start := time.Now()
            ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
            out, rerr := s.disp.Run(ctx, code, lang)
            cancel()
            metricRunSeconds.Observe(time.Since(start).Seconds())
            s.post(func() {
                s.running = false
                if rerr != nil {
                    s.output = "Compilation error: " + rerr.Error()
                } else {
                    s.output = out
                }
            })
        }()
    })
    if derr != nil {
        return derr
    }
    return err
}

// Snapshot returns a copy of the current editor state.
func (s *Session) Snapshot() State {
    var st State
    _ = s.do(func() {
        st = State{
            Files:     append([]types.FileRecord(nil), s.files...),
            OpenFiles: append([]types.FileRecord(nil), s.open...),
            ActiveID:  s.activeID,
            Buffer:    s.buffer,
            Language:  s.language,
            Output:    s.output,
            Running:   s.running,
            IsTyping:  s.isTyping,
        }
    })
    return st
}

func (s *Session) isOpen(fileID string) bool {
    for _, o := range s.open {
        if o.ID == fileID {
            return true
        }
    }
    return false
}

func (s *Session) cancelPendingWrite() {
    if s.writeTimer != nil {
        s.writeTimer.Stop()
        s.writeTimer = nil
    }
    s.pendingID, s.pendingText = "", ""
}
