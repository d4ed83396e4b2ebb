package api

import (
    "bytes"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"

    "go.uber.org/zap"

    "livepair/editor/internal/config"
    "livepair/editor/internal/copilot"
    "livepair/editor/internal/feed"
    "livepair/editor/internal/files"
    "livepair/editor/internal/health"
    "livepair/editor/internal/runner"
    "livepair/editor/internal/sessions"
    "livepair/editor/internal/types"
)

func testServer(t *testing.T) (*httptest.Server, *sessions.Store) {
    t.Helper()
    cfg := config.Load()
    sess := sessions.NewStore()
    fs := files.Publish(files.NewMemory(), feed.NewMemory(), zap.NewNop())
    h := NewHandlers(cfg, zap.NewNop(), sess, fs, runner.New(nil), health.Deps{Cfg: cfg})
    cp := copilot.NewProxy("", "", "model-x", zap.NewNop())
    srv := httptest.NewServer(NewRouter(h, cp))
    t.Cleanup(srv.Close)
    return srv, sess
}

func postJSON(t *testing.T, url string, body any) *http.Response {
    t.Helper()
    var buf bytes.Buffer
    if err := json.NewEncoder(&buf).Encode(body); err != nil {
        t.Fatalf("encode: %v", err)
    }
    resp, err := http.Post(url, "application/json", &buf)
    if err != nil {
        t.Fatalf("request: %v", err)
    }
    return resp
}

func TestUnknownSession404(t *testing.T) {
    srv, _ := testServer(t)

    resp, err := http.Get(srv.URL + "/sessions/NOPE42/files")
    if err != nil {
        t.Fatalf("request: %v", err)
    }
    if resp.StatusCode != http.StatusNotFound {
        t.Fatalf("expected 404, got %d", resp.StatusCode)
    }

    resp = postJSON(t, srv.URL+"/sessions/NOPE42/run", map[string]any{"code": "1", "language": "go"})
    if resp.StatusCode != http.StatusNotFound {
        t.Fatalf("expected 404, got %d", resp.StatusCode)
    }
}

func TestSessionFileLifecycle(t *testing.T) {
    srv, _ := testServer(t)

    resp := postJSON(t, srv.URL+"/sessions", nil)
    if resp.StatusCode != http.StatusOK {
        t.Fatalf("create session: %d", resp.StatusCode)
    }
    var created struct {
        SessionCode string `json:"session_code"`
    }
    json.NewDecoder(resp.Body).Decode(&created)
    if created.SessionCode == "" {
        t.Fatalf("expected session code in response")
    }
    base := srv.URL + "/sessions/" + created.SessionCode

    resp = postJSON(t, base+"/files", map[string]any{"filename": "main.go", "language": "go"})
    if resp.StatusCode != http.StatusOK {
        t.Fatalf("create file: %d", resp.StatusCode)
    }
    var rec types.FileRecord
    json.NewDecoder(resp.Body).Decode(&rec)
    if rec.ID == "" || rec.Filename != "main.go" {
        t.Fatalf("unexpected file record %#v", rec)
    }

    req, _ := http.NewRequest(http.MethodPatch, base+"/files/"+rec.ID,
        bytes.NewReader([]byte(`{"content":"package main"}`)))
    patchResp, err := http.DefaultClient.Do(req)
    if err != nil {
        t.Fatalf("patch: %v", err)
    }
    if patchResp.StatusCode != http.StatusOK {
        t.Fatalf("patch file: %d", patchResp.StatusCode)
    }

    resp, err = http.Get(base + "/files")
    if err != nil {
        t.Fatalf("list: %v", err)
    }
    var listed struct {
        Files []types.FileRecord `json:"files"`
    }
    json.NewDecoder(resp.Body).Decode(&listed)
    if len(listed.Files) != 1 || listed.Files[0].Content != "package main" {
        t.Fatalf("unexpected file list %#v", listed.Files)
    }

    req, _ = http.NewRequest(http.MethodDelete, base+"/files/"+rec.ID, nil)
    delResp, err := http.DefaultClient.Do(req)
    if err != nil {
        t.Fatalf("delete: %v", err)
    }
    if delResp.StatusCode != http.StatusOK {
        t.Fatalf("delete file: %d", delResp.StatusCode)
    }
}

func TestCreateFileRequiresFilename(t *testing.T) {
    srv, sess := testServer(t)
    s := sess.Create()

    resp := postJSON(t, srv.URL+"/sessions/"+s.Code+"/files", map[string]any{"language": "go"})
    if resp.StatusCode != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d", resp.StatusCode)
    }
}

func TestRunEndpointLocalGo(t *testing.T) {
    srv, sess := testServer(t)
    s := sess.Create()

    resp := postJSON(t, srv.URL+"/sessions/"+s.Code+"/run",
        map[string]any{"code": "fmt.Println(\"hi\")", "language": "go"})
    if resp.StatusCode != http.StatusOK {
        t.Fatalf("run: %d", resp.StatusCode)
    }
    var out struct {
        Output string `json:"output"`
        Error  string `json:"error"`
    }
    json.NewDecoder(resp.Body).Decode(&out)
    if out.Error != "" || out.Output != "hi" {
        t.Fatalf("unexpected run response %+v", out)
    }
}

func TestPublishValidation(t *testing.T) {
    srv, sess := testServer(t)
    s := sess.Create()

    resp := postJSON(t, srv.URL+"/sessions/"+s.Code+"/publish",
        map[string]any{"name": "", "token": "tok"})
    if resp.StatusCode != http.StatusBadRequest {
        t.Fatalf("expected 400 for empty name, got %d", resp.StatusCode)
    }

    resp = postJSON(t, srv.URL+"/sessions/"+s.Code+"/publish",
        map[string]any{"name": "proj", "token": ""})
    if resp.StatusCode != http.StatusBadRequest {
        t.Fatalf("expected 400 for missing token, got %d", resp.StatusCode)
    }
}

func TestEventsEndpoint(t *testing.T) {
    srv, sess := testServer(t)
    s := sess.Create()
    sess.AppendEvent(s.Code, "file_created", map[string]any{"file_id": "x"})

    resp, err := http.Get(srv.URL + "/sessions/" + s.Code + "/events")
    if err != nil {
        t.Fatalf("request: %v", err)
    }
    var out struct {
        Events []types.Event `json:"events"`
    }
    json.NewDecoder(resp.Body).Decode(&out)
    if len(out.Events) != 1 || out.Events[0].Type != "file_created" {
        t.Fatalf("unexpected events %#v", out.Events)
    }
}
