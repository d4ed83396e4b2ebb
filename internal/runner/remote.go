package runner

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
)

// RemoteClient forwards compile-and-run requests to the external execution
// service. It does not interpret or retry failures.
type RemoteClient struct {
    http   *http.Client
    url    string
    apiKey string
}

func NewRemoteClient(url, apiKey string) *RemoteClient {
    return &RemoteClient{http: &http.Client{}, url: url, apiKey: apiKey}
}

func (c *RemoteClient) Compile(ctx context.Context, code, language string) (string, error) {
    body := map[string]any{
        "code":     code,
        "language": language,
    }
    var out bytes.Buffer
    if err := json.NewEncoder(&out).Encode(body); err != nil {
        return "", err
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &out)
    if err != nil {
        return "", err
    }
    if c.apiKey != "" {
        req.Header.Set("Authorization", "Bearer "+c.apiKey)
    }
    req.Header.Set("Content-Type", "application/json")
    resp, err := c.http.Do(req)
    if err != nil {
        return "", err
    }
    defer resp.Body.Close()
    if resp.StatusCode/100 != 2 {
        b, _ := io.ReadAll(resp.Body)
        return "", fmt.Errorf("compile service: %s: %s", resp.Status, string(b))
    }
    var parsed struct {
        Output string `json:"output"`
        Error  string `json:"error"`
    }
    if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
        return "", fmt.Errorf("compile service: decode response: %w", err)
    }
    if parsed.Error != "" {
        return "", fmt.Errorf("compile service: %s", parsed.Error)
    }
    if parsed.Output == "" {
        return NoOutputMessage, nil
    }
    return parsed.Output, nil
}
