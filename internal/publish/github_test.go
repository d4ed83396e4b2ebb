package publish

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "net/http/httptest"
    "strings"
    "sync/atomic"
    "testing"

    "go.uber.org/zap"

    "livepair/editor/internal/types"
)

func testFiles() []types.FileRecord {
    return []types.FileRecord{
        {ID: "1", Filename: "main.go", Content: "package main", Language: "go"},
        {ID: "2", Filename: "notes.py", Content: "print(1)", Language: "python"},
    }
}

func TestPublishRejectsEmptyName(t *testing.T) {
    p := New("http://unused.invalid", StaticToken("tok"), zap.NewNop())
    if _, err := p.Publish(context.Background(), "ABC234", "   ", "", testFiles()); !errors.Is(err, ErrEmptyRepoName) {
        t.Fatalf("expected ErrEmptyRepoName, got %v", err)
    }
}

func TestPublishRejectsMissingToken(t *testing.T) {
    p := New("http://unused.invalid", StaticToken(""), zap.NewNop())
    if _, err := p.Publish(context.Background(), "ABC234", "proj", "", testFiles()); !errors.Is(err, ErrNoToken) {
        t.Fatalf("expected ErrNoToken, got %v", err)
    }
}

func TestPublishCreatesRepoAndUploads(t *testing.T) {
    var uploads atomic.Int64
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        switch {
        case r.Method == http.MethodPost && r.URL.Path == "/user/repos":
            if got := r.Header.Get("Authorization"); got != "token tok" {
                t.Errorf("unexpected auth header %q", got)
            }
            var body map[string]any
            json.NewDecoder(r.Body).Decode(&body)
            if body["name"] != "proj" {
                t.Errorf("unexpected repo name %v", body["name"])
            }
            w.WriteHeader(http.StatusCreated)
            w.Write([]byte(`{"full_name":"me/proj","html_url":"https://github.com/me/proj"}`))
        case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/repos/me/proj/contents/"):
            uploads.Add(1)
            w.WriteHeader(http.StatusCreated)
            w.Write([]byte(`{}`))
        default:
            t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
            w.WriteHeader(http.StatusNotFound)
        }
    }))
    defer srv.Close()

    p := New(srv.URL, StaticToken("tok"), zap.NewNop())
    url, err := p.Publish(context.Background(), "ABC234", "proj", "", testFiles())
    if err != nil {
        t.Fatalf("publish: %v", err)
    }
    if url != "https://github.com/me/proj" {
        t.Fatalf("unexpected repo url %q", url)
    }
    if uploads.Load() != 2 {
        t.Fatalf("expected 2 file uploads, got %d", uploads.Load())
    }
}

func TestPublishSurfacesNameCollision(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusUnprocessableEntity)
        w.Write([]byte(`{"message":"name already exists on this account"}`))
    }))
    defer srv.Close()

    p := New(srv.URL, StaticToken("tok"), zap.NewNop())
    _, err := p.Publish(context.Background(), "ABC234", "proj", "", testFiles())
    if err == nil || !strings.Contains(err.Error(), "name already exists") {
        t.Fatalf("expected remote message surfaced, got %v", err)
    }
}
