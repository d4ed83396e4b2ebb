package api

import (
    "net/http"
    "strings"

    "livepair/editor/internal/copilot"
)

func NewRouter(h *Handlers, cp *copilot.Proxy) http.Handler {
    mux := http.NewServeMux()

    mux.HandleFunc("/healthz", h.HandleHealthz)

    mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
        if r.Method == http.MethodPost {
            h.HandleCreateSession(w, r)
            return
        }
        http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
    })

    mux.HandleFunc("/sessions/", func(w http.ResponseWriter, r *http.Request) {
        // /sessions/{code} | /events | /files | /files/{id} | /run | /publish
        path := strings.TrimSuffix(r.URL.Path, "/")
        const prefix = "/sessions/"
        rest := strings.TrimPrefix(path, prefix)
        parts := strings.Split(rest, "/")
        if len(parts) == 0 || parts[0] == "" {
            http.NotFound(w, r)
            return
        }
        code := parts[0]
        tail := ""
        if len(parts) > 1 {
            tail = parts[1]
        }

        switch tail {
        case "":
            if r.Method != http.MethodGet {
                http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
                return
            }
            h.HandleGetSession(w, r, code)
        case "events":
            if r.Method != http.MethodGet {
                http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
                return
            }
            h.HandleListEvents(w, r, code)
        case "files":
            if len(parts) > 2 {
                fileID := parts[2]
                switch r.Method {
                case http.MethodPatch:
                    h.HandleUpdateFile(w, r, code, fileID)
                case http.MethodDelete:
                    h.HandleDeleteFile(w, r, code, fileID)
                default:
                    http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
                }
                return
            }
            switch r.Method {
            case http.MethodGet:
                h.HandleListFiles(w, r, code)
            case http.MethodPost:
                h.HandleCreateFile(w, r, code)
            default:
                http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
            }
        case "run":
            if r.Method != http.MethodPost {
                http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
                return
            }
            h.HandleRun(w, r, code)
        case "publish":
            if r.Method != http.MethodPost {
                http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
                return
            }
            h.HandlePublish(w, r, code)
        default:
            http.NotFound(w, r)
        }
    })

    mux.HandleFunc("/api/copilots/", func(w http.ResponseWriter, r *http.Request) {
        if r.Method != http.MethodPost {
            http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
            return
        }
        copilotType := strings.TrimPrefix(strings.TrimSuffix(r.URL.Path, "/"), "/api/copilots/")
        cp.HandleCopilot(w, r, copilotType)
    })

    mux.HandleFunc("/api/agent/gemini", func(w http.ResponseWriter, r *http.Request) {
        if r.Method != http.MethodPost {
            http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
            return
        }
        cp.HandleAgent(w, r)
    })

    return mux
}
