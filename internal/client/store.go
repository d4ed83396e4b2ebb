// Package client talks to an editor server over its REST and websocket
// surfaces. It backs remote editor.Session instances with the same Store
// and Feed interfaces the server uses in-process.
package client

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "strings"

    "livepair/editor/internal/files"
    "livepair/editor/internal/types"
)

// Store is an HTTP files.Store bound to one session on a remote server.
// The sessionCode arguments on List and Create must match the bound code.
type Store struct {
    http *http.Client
    base string
    code string
}

var _ files.Store = (*Store)(nil)

func NewStore(baseURL, sessionCode string) *Store {
    return &Store{
        http: &http.Client{},
        base: strings.TrimSuffix(baseURL, "/"),
        code: sessionCode,
    }
}

func (c *Store) List(ctx context.Context, sessionCode string) ([]types.FileRecord, error) {
    if sessionCode != c.code {
        return nil, fmt.Errorf("store is bound to session %s", c.code)
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.filesURL(), nil)
    if err != nil {
        return nil, err
    }
    var out struct {
        Files []types.FileRecord `json:"files"`
    }
    if err := c.do(req, &out); err != nil {
        return nil, err
    }
    return out.Files, nil
}

func (c *Store) Get(ctx context.Context, id string) (types.FileRecord, error) {
    recs, err := c.List(ctx, c.code)
    if err != nil {
        return types.FileRecord{}, err
    }
    for _, r := range recs {
        if r.ID == id {
            return r, nil
        }
    }
    return types.FileRecord{}, files.ErrNotFound
}

func (c *Store) Create(ctx context.Context, sessionCode, filename, language string) (types.FileRecord, error) {
    if sessionCode != c.code {
        return types.FileRecord{}, fmt.Errorf("store is bound to session %s", c.code)
    }
    body := map[string]any{"filename": filename, "language": language}
    req, err := c.jsonRequest(ctx, http.MethodPost, c.filesURL(), body)
    if err != nil {
        return types.FileRecord{}, err
    }
    var rec types.FileRecord
    if err := c.do(req, &rec); err != nil {
        return types.FileRecord{}, err
    }
    return rec, nil
}

func (c *Store) Update(ctx context.Context, id string, p files.Partial) (types.FileRecord, error) {
    body := map[string]any{}
    if p.Filename != nil {
        body["filename"] = *p.Filename
    }
    if p.Content != nil {
        body["content"] = *p.Content
    }
    if p.Language != nil {
        body["language"] = *p.Language
    }
    req, err := c.jsonRequest(ctx, http.MethodPatch, c.filesURL()+"/"+id, body)
    if err != nil {
        return types.FileRecord{}, err
    }
    var rec types.FileRecord
    if err := c.do(req, &rec); err != nil {
        return types.FileRecord{}, err
    }
    return rec, nil
}

func (c *Store) Delete(ctx context.Context, id string) error {
    req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.filesURL()+"/"+id, nil)
    if err != nil {
        return err
    }
    return c.do(req, nil)
}

// Run submits code for execution server-side and returns the output text.
func (c *Store) Run(ctx context.Context, code, language string) (string, error) {
    body := map[string]any{"code": code, "language": language}
    req, err := c.jsonRequest(ctx, http.MethodPost, c.base+"/sessions/"+c.code+"/run", body)
    if err != nil {
        return "", err
    }
    var out struct {
        Output string `json:"output"`
        Error  string `json:"error"`
    }
    if err := c.do(req, &out); err != nil {
        return "", err
    }
    if out.Error != "" {
        return out.Error, nil
    }
    return out.Output, nil
}

func (c *Store) filesURL() string {
    return c.base + "/sessions/" + c.code + "/files"
}

func (c *Store) jsonRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
    var buf bytes.Buffer
    if err := json.NewEncoder(&buf).Encode(body); err != nil {
        return nil, err
    }
    req, err := http.NewRequestWithContext(ctx, method, url, &buf)
    if err != nil {
        return nil, err
    }
    req.Header.Set("Content-Type", "application/json")
    return req, nil
}

func (c *Store) do(req *http.Request, out any) error {
    resp, err := c.http.Do(req)
    if err != nil {
        return err
    }
    defer resp.Body.Close()
    if resp.StatusCode == http.StatusNotFound {
        return files.ErrNotFound
    }
    if resp.StatusCode/100 != 2 {
        b, _ := io.ReadAll(resp.Body)
        return fmt.Errorf("%s %s: %s: %s", req.Method, req.URL.Path, resp.Status, strings.TrimSpace(string(b)))
    }
    if out == nil {
        return nil
    }
    return json.NewDecoder(resp.Body).Decode(out)
}

// CreateSession mints a new session on the server and returns its code
// plus the feed token to use on the websocket channel.
func CreateSession(ctx context.Context, baseURL string) (code, feedToken string, err error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(baseURL, "/")+"/sessions", nil)
    if err != nil {
        return "", "", err
    }
    resp, err := http.DefaultClient.Do(req)
    if err != nil {
        return "", "", err
    }
    defer resp.Body.Close()
    if resp.StatusCode/100 != 2 {
        b, _ := io.ReadAll(resp.Body)
        return "", "", fmt.Errorf("create session: %s: %s", resp.Status, string(b))
    }
    var out struct {
        SessionCode string `json:"session_code"`
        FeedToken   string `json:"feed_token"`
    }
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        return "", "", err
    }
    return out.SessionCode, out.FeedToken, nil
}
