// Package publish exports a session's file set to a freshly created GitHub
// repository.
package publish

import (
    "bytes"
    "context"
    "encoding/base64"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"

    "go.uber.org/zap"

    "livepair/editor/internal/types"
)

var (
    ErrEmptyRepoName = errors.New("repository name required")
    ErrNoToken       = errors.New("not connected to GitHub")
)

// TokenProvider supplies the access credential. Injected so the publisher
// never reaches into ambient storage for it.
type TokenProvider interface {
    Token() (string, error)
}

type TokenFunc func() (string, error)

func (f TokenFunc) Token() (string, error) { return f() }

// StaticToken wraps an already-obtained credential.
func StaticToken(token string) TokenProvider {
    return TokenFunc(func() (string, error) { return token, nil })
}

type Publisher struct {
    http   *http.Client
    base   string
    tokens TokenProvider
    log    *zap.Logger
}

func New(apiBase string, tokens TokenProvider, log *zap.Logger) *Publisher {
    if apiBase == "" {
        apiBase = "https://api.github.com"
    }
    return &Publisher{
        http:   &http.Client{},
        base:   strings.TrimSuffix(apiBase, "/"),
        tokens: tokens,
        log:    log,
    }
}

// Publish creates the repository and uploads the files, returning the
// repository's browse URL. Validation failures and a missing credential
// abort before any network call.
func (p *Publisher) Publish(ctx context.Context, sessionCode, name, description string, recs []types.FileRecord) (string, error) {
    if strings.TrimSpace(name) == "" {
        return "", ErrEmptyRepoName
    }
    token, err := p.tokens.Token()
    if err != nil || token == "" {
        return "", ErrNoToken
    }
    if description == "" {
        description = fmt.Sprintf("Code from livepair session %s", sessionCode)
    }

    fullName, htmlURL, err := p.createRepo(ctx, token, name, description)
    if err != nil {
        return "", err
    }
    for _, rec := range recs {
        if err := p.uploadFile(ctx, token, fullName, rec); err != nil {
            return "", fmt.Errorf("upload %s: %w", rec.Filename, err)
        }
    }
    p.log.Info("session published",
        zap.String("session_code", sessionCode),
        zap.String("repo", fullName),
        zap.Int("files", len(recs)))
    return htmlURL, nil
}

func (p *Publisher) createRepo(ctx context.Context, token, name, description string) (fullName, htmlURL string, err error) {
    body := map[string]any{
        "name":        name,
        "description": description,
        "private":     false,
        "auto_init":   false,
    }
    var out bytes.Buffer
    if err := json.NewEncoder(&out).Encode(body); err != nil {
        return "", "", err
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/user/repos", &out)
    if err != nil {
        return "", "", err
    }
    req.Header.Set("Authorization", "token "+token)
    req.Header.Set("Content-Type", "application/json")
    resp, err := p.http.Do(req)
    if err != nil {
        return "", "", err
    }
    defer resp.Body.Close()
    if resp.StatusCode/100 != 2 {
        return "", "", fmt.Errorf("create repository: %s", remoteMessage(resp))
    }
    var parsed struct {
        FullName string `json:"full_name"`
        HTMLURL  string `json:"html_url"`
    }
    if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
        return "", "", fmt.Errorf("create repository: decode response: %w", err)
    }
    if parsed.FullName == "" {
        return "", "", fmt.Errorf("create repository: empty repository name in response")
    }
    return parsed.FullName, parsed.HTMLURL, nil
}

func (p *Publisher) uploadFile(ctx context.Context, token, fullName string, rec types.FileRecord) error {
    body := map[string]any{
        "message": "Add " + rec.Filename,
        "content": base64.StdEncoding.EncodeToString([]byte(rec.Content)),
    }
    var out bytes.Buffer
    if err := json.NewEncoder(&out).Encode(body); err != nil {
        return err
    }
    target := fmt.Sprintf("%s/repos/%s/contents/%s", p.base, fullName, url.PathEscape(rec.Filename))
    req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, &out)
    if err != nil {
        return err
    }
    req.Header.Set("Authorization", "token "+token)
    req.Header.Set("Content-Type", "application/json")
    resp, err := p.http.Do(req)
    if err != nil {
        return err
    }
    defer resp.Body.Close()
    if resp.StatusCode/100 != 2 {
        return fmt.Errorf("%s", remoteMessage(resp))
    }
    return nil
}

// remoteMessage pulls GitHub's error message out of a failed response,
// falling back to the HTTP status.
func remoteMessage(resp *http.Response) string {
    b, _ := io.ReadAll(resp.Body)
    var parsed struct {
        Message string `json:"message"`
    }
    if err := json.Unmarshal(b, &parsed); err == nil && parsed.Message != "" {
        return parsed.Message
    }
    return resp.Status
}
