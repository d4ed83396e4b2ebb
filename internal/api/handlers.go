package api

import (
    "encoding/json"
    "errors"
    "net/http"
    "time"

    "go.uber.org/zap"

    "livepair/editor/internal/auth"
    "livepair/editor/internal/config"
    "livepair/editor/internal/files"
    "livepair/editor/internal/health"
    "livepair/editor/internal/publish"
    "livepair/editor/internal/runner"
    "livepair/editor/internal/sessions"
    "livepair/editor/internal/types"
)

type Handlers struct {
    cfg    config.Config
    log    *zap.Logger
    sess   *sessions.Store
    files  files.Store
    disp   *runner.Dispatcher
    health health.Deps
}

func NewHandlers(cfg config.Config, log *zap.Logger, sess *sessions.Store, fs files.Store, disp *runner.Dispatcher, hd health.Deps) *Handlers {
    return &Handlers{cfg: cfg, log: log, sess: sess, files: fs, disp: disp, health: hd}
}

func (h *Handlers) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
    sess := h.sess.Create()
    h.sess.AppendEvent(sess.Code, "session_created", nil)

    var feedToken string
    if h.cfg.Feed.TokenSecret != "" {
        exp := time.Now().Add(time.Duration(h.cfg.Feed.TokenExpMin) * time.Minute).Unix()
        feedToken = auth.GenerateFeedToken(h.cfg.Feed.TokenSecret, sess.Code, exp)
    }
    writeJSON(w, http.StatusOK, map[string]any{
        "session_code": sess.Code,
        "created_at":   sess.CreatedAt,
        "feed_token":   feedToken,
    })
}

func (h *Handlers) HandleGetSession(w http.ResponseWriter, r *http.Request, code string) {
    sess := h.sess.Get(code)
    if sess == nil {
        http.NotFound(w, r)
        return
    }
    writeJSON(w, http.StatusOK, sess)
}

func (h *Handlers) HandleListEvents(w http.ResponseWriter, r *http.Request, code string) {
    if h.sess.Get(code) == nil {
        http.NotFound(w, r)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{
        "session_code": code,
        "events":       h.sess.ListEvents(code),
    })
}

func (h *Handlers) HandleListFiles(w http.ResponseWriter, r *http.Request, code string) {
    if h.sess.Get(code) == nil {
        http.NotFound(w, r)
        return
    }
    recs, err := h.files.List(r.Context(), code)
    if err != nil {
        h.log.Error("list files failed", zap.String("session_code", code), zap.Error(err))
        http.Error(w, "store unavailable", http.StatusBadGateway)
        return
    }
    if recs == nil {
        recs = []types.FileRecord{}
    }
    writeJSON(w, http.StatusOK, map[string]any{"files": recs})
}

func (h *Handlers) HandleCreateFile(w http.ResponseWriter, r *http.Request, code string) {
    if h.sess.Get(code) == nil {
        http.NotFound(w, r)
        return
    }
    var req struct {
        Filename string `json:"filename"`
        Language string `json:"language"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Filename == "" {
        http.Error(w, "filename required", http.StatusBadRequest)
        return
    }
    if req.Language == "" {
        req.Language = types.LangGo
    }
    rec, err := h.files.Create(r.Context(), code, req.Filename, req.Language)
    if err != nil {
        h.log.Error("create file failed", zap.String("session_code", code), zap.Error(err))
        http.Error(w, "store unavailable", http.StatusBadGateway)
        return
    }
    h.sess.AppendEvent(code, "file_created", map[string]any{"file_id": rec.ID, "filename": rec.Filename})
    writeJSON(w, http.StatusOK, rec)
}

func (h *Handlers) HandleUpdateFile(w http.ResponseWriter, r *http.Request, code, fileID string) {
    if h.sess.Get(code) == nil {
        http.NotFound(w, r)
        return
    }
    var req struct {
        Filename *string `json:"filename"`
        Content  *string `json:"content"`
        Language *string `json:"language"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }
    rec, err := h.files.Update(r.Context(), fileID, files.Partial{
        Filename: req.Filename,
        Content:  req.Content,
        Language: req.Language,
    })
    if errors.Is(err, files.ErrNotFound) {
        http.NotFound(w, r)
        return
    }
    if err != nil {
        h.log.Error("update file failed", zap.String("file_id", fileID), zap.Error(err))
        http.Error(w, "store unavailable", http.StatusBadGateway)
        return
    }
    writeJSON(w, http.StatusOK, rec)
}

func (h *Handlers) HandleDeleteFile(w http.ResponseWriter, r *http.Request, code, fileID string) {
    if h.sess.Get(code) == nil {
        http.NotFound(w, r)
        return
    }
    err := h.files.Delete(r.Context(), fileID)
    if errors.Is(err, files.ErrNotFound) {
        http.NotFound(w, r)
        return
    }
    if err != nil {
        h.log.Error("delete file failed", zap.String("file_id", fileID), zap.Error(err))
        http.Error(w, "store unavailable", http.StatusBadGateway)
        return
    }
    h.sess.AppendEvent(code, "file_deleted", map[string]any{"file_id": fileID})
    writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handlers) HandleRun(w http.ResponseWriter, r *http.Request, code string) {
    if h.sess.Get(code) == nil {
        http.NotFound(w, r)
        return
    }
    var req struct {
        Code     string `json:"code"`
        Language string `json:"language"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }
    h.sess.AppendEvent(code, "run_requested", map[string]any{"language": req.Language})
    out, err := h.disp.Run(r.Context(), req.Code, req.Language)
    if err != nil {
        writeJSON(w, http.StatusOK, map[string]any{"error": "Compilation error: " + err.Error()})
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"output": out})
}

func (h *Handlers) HandlePublish(w http.ResponseWriter, r *http.Request, code string) {
    if h.sess.Get(code) == nil {
        http.NotFound(w, r)
        return
    }
    var req struct {
        Name        string `json:"name"`
        Description string `json:"description"`
        Token       string `json:"token"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }
    recs, err := h.files.List(r.Context(), code)
    if err != nil {
        http.Error(w, "store unavailable", http.StatusBadGateway)
        return
    }
    pub := publish.New(h.cfg.GitHub.APIBase, publish.StaticToken(req.Token), h.log)
    url, err := pub.Publish(r.Context(), code, req.Name, req.Description, recs)
    switch {
    case errors.Is(err, publish.ErrEmptyRepoName), errors.Is(err, publish.ErrNoToken):
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    case err != nil:
        http.Error(w, err.Error(), http.StatusBadGateway)
        return
    }
    h.sess.AppendEvent(code, "repo_published", map[string]any{"name": req.Name, "url": url})
    writeJSON(w, http.StatusOK, map[string]any{"url": url})
}

func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
    status := health.CheckAll(r.Context(), h.health)
    code := http.StatusOK
    if !status.OK {
        code = http.StatusServiceUnavailable
    }
    writeJSON(w, code, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}
