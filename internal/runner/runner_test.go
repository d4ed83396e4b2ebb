package runner

import (
    "context"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
)

func TestLocalCapturesPrintedLines(t *testing.T) {
    d := New(nil)
    code := "fmt.Println(\"hello\")\nfmt.Println(\"world\")\n1 + 2"
    out, err := d.Run(context.Background(), code, "go")
    if err != nil {
        t.Fatalf("run: %v", err)
    }
    // Printed output wins over the expression result.
    if out != "hello\nworld" {
        t.Fatalf("expected captured lines, got %q", out)
    }
}

func TestLocalExpressionResult(t *testing.T) {
    d := New(nil)
    out, err := d.Run(context.Background(), "6 * 7", "go")
    if err != nil {
        t.Fatalf("run: %v", err)
    }
    if out != "42" {
        t.Fatalf("expected expression result 42, got %q", out)
    }
}

func TestLocalFullProgram(t *testing.T) {
    d := New(nil)
    code := `package main

import "fmt"

func main() {
	fmt.Println("from main")
}`
    out, err := d.Run(context.Background(), code, "go")
    if err != nil {
        t.Fatalf("run: %v", err)
    }
    if out != "from main" {
        t.Fatalf("expected main output, got %q", out)
    }
}

func TestLocalEvalErrorReportedAsOutput(t *testing.T) {
    d := New(nil)
    out, err := d.Run(context.Background(), "this is not go", "go")
    if err != nil {
        t.Fatalf("local failures must not surface as errors: %v", err)
    }
    if !strings.HasPrefix(out, "Error: ") {
        t.Fatalf("expected Error prefix, got %q", out)
    }
}

func TestUnsupportedLanguage(t *testing.T) {
    d := New(nil)
    out, err := d.Run(context.Background(), "puts 1", "ruby")
    if err != nil {
        t.Fatalf("run: %v", err)
    }
    if out != NotSupportedMessage("ruby") {
        t.Fatalf("expected not-supported message, got %q", out)
    }
}

func TestRemoteLanguageWithoutService(t *testing.T) {
    d := New(nil)
    if _, err := d.Run(context.Background(), "print(1)", "python"); err == nil {
        t.Fatalf("expected error when no compile service is configured")
    }
}

func TestRemoteCompile(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Method != http.MethodPost {
            t.Errorf("expected POST, got %s", r.Method)
        }
        w.Header().Set("Content-Type", "application/json")
        w.Write([]byte(`{"output":"3\n"}`))
    }))
    defer srv.Close()

    d := New(NewRemoteClient(srv.URL, "k"))
    out, err := d.Run(context.Background(), "print(1+2)", "python")
    if err != nil {
        t.Fatalf("run: %v", err)
    }
    if out != "3\n" {
        t.Fatalf("expected service output, got %q", out)
    }
}

func TestRemoteCompileFailure(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        http.Error(w, "boom", http.StatusBadGateway)
    }))
    defer srv.Close()

    d := New(NewRemoteClient(srv.URL, ""))
    if _, err := d.Run(context.Background(), "int main(){}", "c"); err == nil {
        t.Fatalf("expected error from failing compile service")
    }
}

func TestRemoteCompileErrorField(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json")
        w.Write([]byte(`{"error":"syntax error on line 3"}`))
    }))
    defer srv.Close()

    d := New(NewRemoteClient(srv.URL, ""))
    _, err := d.Run(context.Background(), "class X {", "java")
    if err == nil || !strings.Contains(err.Error(), "syntax error on line 3") {
        t.Fatalf("expected service error surfaced, got %v", err)
    }
}
