// Command e2e exercises a running editord end to end: create a session,
// attach an editor over HTTP + websocket, create and edit a file, run a
// snippet, and print what the editor sees along the way.
package main

import (
    "context"
    "flag"
    "fmt"
    "log"
    "strings"
    "time"

    "go.uber.org/zap"

    "livepair/editor/internal/client"
    "livepair/editor/internal/editor"
    "livepair/editor/internal/runner"
    "livepair/editor/internal/types"
)

func main() {
    base := flag.String("base", "http://localhost:8080", "editord base URL")
    timeout := flag.Duration("timeout", 30*time.Second, "overall deadline")
    flag.Parse()

    ctx, cancel := context.WithTimeout(context.Background(), *timeout)
    defer cancel()

    zlog, _ := zap.NewDevelopment()
    defer zlog.Sync()

    fmt.Println("=== editord E2E smoke test ===")

    // Step 1: create a session.
    fmt.Println("[1] Creating session...")
    code, feedToken, err := client.CreateSession(ctx, *base)
    if err != nil {
        log.Fatalf("create session: %v", err)
    }
    fmt.Printf("    session %s (feed token %v)\n", code, feedToken != "")

    store := client.NewStore(*base, code)
    feed := client.NewWSFeed(wsBase(*base), feedToken, zlog)

    // Step 2: attach an editor session over the remote store and feed.
    fmt.Println("[2] Opening editor...")
    ed := editor.New(code, store, feed, runner.New(nil), editor.Options{Logger: zlog})
    if err := ed.Open(ctx); err != nil {
        log.Fatalf("open editor: %v", err)
    }
    defer ed.Close()

    // Step 3: create a file and wait for the feed to surface it.
    fmt.Println("[3] Creating main.go...")
    rec, err := store.Create(ctx, code, "main.go", types.LangGo)
    if err != nil {
        log.Fatalf("create file: %v", err)
    }
    waitFor(ctx, func() bool { return len(ed.Snapshot().Files) == 1 })
    if err := ed.SelectFile(rec); err != nil {
        log.Fatalf("select file: %v", err)
    }

    // Step 4: type into the buffer and let the debounce persist it.
    fmt.Println("[4] Editing buffer...")
    src := "fmt.Println(\"hello from e2e\")"
    if err := ed.EditBuffer(src); err != nil {
        log.Fatalf("edit buffer: %v", err)
    }
    waitFor(ctx, func() bool {
        recs, err := store.List(ctx, code)
        return err == nil && len(recs) == 1 && recs[0].Content == src
    })
    fmt.Println("    write-back persisted")

    // Step 5: run the snippet server-side.
    fmt.Println("[5] Running snippet...")
    out, err := store.Run(ctx, src, types.LangGo)
    if err != nil {
        log.Fatalf("run: %v", err)
    }
    fmt.Printf("    output: %q\n", out)

    st := ed.Snapshot()
    fmt.Printf("\nfinal state: %d files, active=%s, typing=%v\n", len(st.Files), st.ActiveID, st.IsTyping)
    fmt.Println("OK")
}

func waitFor(ctx context.Context, cond func() bool) {
    for {
        if cond() {
            return
        }
        select {
        case <-ctx.Done():
            log.Fatalf("timed out waiting: %v", ctx.Err())
        case <-time.After(50 * time.Millisecond):
        }
    }
}

func wsBase(httpBase string) string {
    s := strings.Replace(httpBase, "http://", "ws://", 1)
    return strings.Replace(s, "https://", "wss://", 1)
}
