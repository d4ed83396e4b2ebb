// Package copilot is a pass-through proxy in front of the LLM provider. It
// holds the provider key server-side and adds the copilot type tag; prompt
// assembly and the provider call itself live upstream.
package copilot

import (
    "bytes"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "strings"

    "go.uber.org/zap"
)

// Known copilot types. Anything else is rejected before forwarding.
var knownTypes = map[string]bool{
    "code":     true,
    "meeting":  true,
    "tutor":    true,
    "design":   true,
    "workflow": true,
}

type Proxy struct {
    http     *http.Client
    upstream string
    apiKey   string
    model    string
    log      *zap.Logger
}

func NewProxy(upstream, apiKey, model string, log *zap.Logger) *Proxy {
    return &Proxy{
        http:     &http.Client{},
        upstream: upstream,
        apiKey:   apiKey,
        model:    model,
        log:      log,
    }
}

type request struct {
    Message string         `json:"message"`
    Context map[string]any `json:"context,omitempty"`
}

func (p *Proxy) HandleCopilot(w http.ResponseWriter, r *http.Request, copilotType string) {
    if !knownTypes[copilotType] {
        writeJSON(w, http.StatusNotFound, map[string]any{
            "success": false,
            "error":   fmt.Sprintf("unknown copilot type %q", copilotType),
        })
        return
    }
    p.forward(w, r, map[string]any{"copilot": copilotType}, "copilot", copilotType)
}

func (p *Proxy) HandleAgent(w http.ResponseWriter, r *http.Request) {
    p.forward(w, r, map[string]any{"agent": "gemini"}, "agent", "gemini")
}

func (p *Proxy) forward(w http.ResponseWriter, r *http.Request, tags map[string]any, kindField, kind string) {
    var req request
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid request body"})
        return
    }
    if strings.TrimSpace(req.Message) == "" {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "message required"})
        return
    }
    if p.upstream == "" || p.apiKey == "" {
        writeJSON(w, http.StatusServiceUnavailable, map[string]any{
            "success": false,
            "error":   "copilot provider not configured",
        })
        return
    }

    body := map[string]any{
        "model":   p.model,
        "message": req.Message,
        "context": req.Context,
    }
    for k, v := range tags {
        body[k] = v
    }
    var out bytes.Buffer
    if err := json.NewEncoder(&out).Encode(body); err != nil {
        writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
        return
    }
    upReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost, p.upstream, &out)
    if err != nil {
        writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
        return
    }
    upReq.Header.Set("Authorization", "Bearer "+p.apiKey)
    upReq.Header.Set("Content-Type", "application/json")

    resp, err := p.http.Do(upReq)
    if err != nil {
        p.log.Warn("copilot upstream unreachable", zap.Error(err))
        writeJSON(w, http.StatusBadGateway, map[string]any{"success": false, "error": "provider unreachable"})
        return
    }
    defer resp.Body.Close()
    if resp.StatusCode/100 != 2 {
        b, _ := io.ReadAll(resp.Body)
        p.log.Warn("copilot upstream rejected request",
            zap.String("status", resp.Status), zap.ByteString("body", b))
        writeJSON(w, http.StatusBadGateway, map[string]any{"success": false, "error": "provider error"})
        return
    }
    var parsed struct {
        Response string `json:"response"`
    }
    if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
        writeJSON(w, http.StatusBadGateway, map[string]any{"success": false, "error": "undecodable provider response"})
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{
        "success":  true,
        kindField:  kind,
        "response": parsed.Response,
    })
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}
