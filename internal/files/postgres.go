package files

import (
    "context"
    "errors"
    "fmt"
    "strings"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"

    "livepair/editor/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_files (
    id           text PRIMARY KEY,
    session_code text NOT NULL,
    filename     text NOT NULL,
    content      text NOT NULL DEFAULT '',
    language     text NOT NULL DEFAULT 'go',
    created_at   timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS session_files_session_idx ON session_files (session_code, created_at);
`

// Postgres persists session files in a single table. Creation order is the
// list order; the (created_at, id) index tiebreak makes it stable.
type Postgres struct {
    pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
    return &Postgres{pool: pool}
}

// Init creates the table if it does not exist yet.
func (p *Postgres) Init(ctx context.Context) error {
    _, err := p.pool.Exec(ctx, schema)
    return err
}

func (p *Postgres) List(ctx context.Context, sessionCode string) ([]types.FileRecord, error) {
    rows, err := p.pool.Query(ctx,
        `SELECT id, session_code, filename, content, language, created_at
         FROM session_files WHERE session_code = $1 ORDER BY created_at, id`, sessionCode)
    if err != nil {
        return nil, fmt.Errorf("list files: %w", err)
    }
    defer rows.Close()
    var out []types.FileRecord
    for rows.Next() {
        var r types.FileRecord
        if err := rows.Scan(&r.ID, &r.SessionCode, &r.Filename, &r.Content, &r.Language, &r.CreatedAt); err != nil {
            return nil, fmt.Errorf("scan file: %w", err)
        }
        out = append(out, r)
    }
    return out, rows.Err()
}

func (p *Postgres) Get(ctx context.Context, id string) (types.FileRecord, error) {
    var r types.FileRecord
    err := p.pool.QueryRow(ctx,
        `SELECT id, session_code, filename, content, language, created_at
         FROM session_files WHERE id = $1`, id).
        Scan(&r.ID, &r.SessionCode, &r.Filename, &r.Content, &r.Language, &r.CreatedAt)
    if errors.Is(err, pgx.ErrNoRows) {
        return types.FileRecord{}, ErrNotFound
    }
    if err != nil {
        return types.FileRecord{}, fmt.Errorf("get file: %w", err)
    }
    return r, nil
}

func (p *Postgres) Create(ctx context.Context, sessionCode, filename, language string) (types.FileRecord, error) {
    r := types.FileRecord{
        ID:          uuid.NewString(),
        SessionCode: sessionCode,
        Filename:    filename,
        Language:    language,
    }
    err := p.pool.QueryRow(ctx,
        `INSERT INTO session_files (id, session_code, filename, language)
         VALUES ($1, $2, $3, $4) RETURNING created_at`,
        r.ID, r.SessionCode, r.Filename, r.Language).Scan(&r.CreatedAt)
    if err != nil {
        return types.FileRecord{}, fmt.Errorf("create file: %w", err)
    }
    return r, nil
}

func (p *Postgres) Update(ctx context.Context, id string, up Partial) (types.FileRecord, error) {
    sets := make([]string, 0, 3)
    args := make([]any, 0, 4)
    add := func(col string, val any) {
        args = append(args, val)
        sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
    }
    if up.Filename != nil {
        add("filename", *up.Filename)
    }
    if up.Content != nil {
        add("content", *up.Content)
    }
    if up.Language != nil {
        add("language", *up.Language)
    }
    if len(sets) == 0 {
        return p.Get(ctx, id)
    }
    args = append(args, id)
    var r types.FileRecord
    err := p.pool.QueryRow(ctx,
        fmt.Sprintf(`UPDATE session_files SET %s WHERE id = $%d
         RETURNING id, session_code, filename, content, language, created_at`,
            strings.Join(sets, ", "), len(args)), args...).
        Scan(&r.ID, &r.SessionCode, &r.Filename, &r.Content, &r.Language, &r.CreatedAt)
    if errors.Is(err, pgx.ErrNoRows) {
        return types.FileRecord{}, ErrNotFound
    }
    if err != nil {
        return types.FileRecord{}, fmt.Errorf("update file: %w", err)
    }
    return r, nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
    tag, err := p.pool.Exec(ctx, `DELETE FROM session_files WHERE id = $1`, id)
    if err != nil {
        return fmt.Errorf("delete file: %w", err)
    }
    if tag.RowsAffected() == 0 {
        return ErrNotFound
    }
    return nil
}
