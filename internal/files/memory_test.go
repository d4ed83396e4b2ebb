package files

import (
    "context"
    "errors"
    "testing"
)

func TestMemoryCreateListOrder(t *testing.T) {
    ctx := context.Background()
    m := NewMemory()

    a, err := m.Create(ctx, "ABC234", "a.go", "go")
    if err != nil {
        t.Fatalf("create: %v", err)
    }
    b, err := m.Create(ctx, "ABC234", "b.go", "go")
    if err != nil {
        t.Fatalf("create: %v", err)
    }
    if _, err := m.Create(ctx, "OTHER1", "c.go", "go"); err != nil {
        t.Fatalf("create: %v", err)
    }

    got, err := m.List(ctx, "ABC234")
    if err != nil {
        t.Fatalf("list: %v", err)
    }
    if len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
        t.Fatalf("expected creation order [a b], got %#v", got)
    }
}

func TestMemoryUpdatePartial(t *testing.T) {
    ctx := context.Background()
    m := NewMemory()
    rec, _ := m.Create(ctx, "ABC234", "main.go", "go")

    content := "package main"
    updated, err := m.Update(ctx, rec.ID, Partial{Content: &content})
    if err != nil {
        t.Fatalf("update: %v", err)
    }
    if updated.Content != content {
        t.Fatalf("expected content updated, got %q", updated.Content)
    }
    if updated.Filename != "main.go" || updated.Language != "go" {
        t.Fatalf("untouched fields changed: %#v", updated)
    }

    if _, err := m.Update(ctx, "missing", Partial{Content: &content}); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
}

func TestMemoryDelete(t *testing.T) {
    ctx := context.Background()
    m := NewMemory()
    rec, _ := m.Create(ctx, "ABC234", "main.go", "go")

    if err := m.Delete(ctx, rec.ID); err != nil {
        t.Fatalf("delete: %v", err)
    }
    if _, err := m.Get(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound after delete, got %v", err)
    }
    if err := m.Delete(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound for second delete, got %v", err)
    }
}

func TestSharedFilenamesAllowed(t *testing.T) {
    ctx := context.Background()
    m := NewMemory()
    if _, err := m.Create(ctx, "ABC234", "main.go", "go"); err != nil {
        t.Fatalf("create: %v", err)
    }
    if _, err := m.Create(ctx, "ABC234", "main.go", "go"); err != nil {
        t.Fatalf("duplicate filename must be allowed: %v", err)
    }
    got, _ := m.List(ctx, "ABC234")
    if len(got) != 2 || got[0].ID == got[1].ID {
        t.Fatalf("expected two distinct records, got %#v", got)
    }
}
