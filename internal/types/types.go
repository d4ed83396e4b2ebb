package types

import "time"

// Language tags assignable to a file. LangGo is evaluated in-process; the
// tags in RemoteLanguages are forwarded to the external compile service.
const (
	LangGo         = "go"
	LangC          = "c"
	LangCPP        = "cpp"
	LangPython     = "python"
	LangJava       = "java"
	LangJavaScript = "javascript"
)

var RemoteLanguages = map[string]bool{
	LangC:          true,
	LangCPP:        true,
	LangPython:     true,
	LangJava:       true,
	LangJavaScript: true,
}

// FileRecord is one source file in a collaboration session. Content is always
// replaced wholesale; there is no diffing. Filenames are not unique within a
// session, the ID is the real key.
type FileRecord struct {
	ID          string    `json:"id"`
	SessionCode string    `json:"session_code"`
	Filename    string    `json:"filename"`
	Content     string    `json:"content"`
	Language    string    `json:"language"`
	CreatedAt   time.Time `json:"created_at"`
}

type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeEvent is a row-level change to a session's files. Delivery is
// at-least-once with no ordering guarantee relative to the local writer's
// own writes.
type ChangeEvent struct {
	Kind   ChangeKind `json:"kind"`
	Record FileRecord `json:"record"`
}

// Valid reports whether the event carries a known kind and an identifiable
// record. Malformed events are dropped at the boundary, never propagated.
func (e ChangeEvent) Valid() bool {
	switch e.Kind {
	case ChangeInsert, ChangeUpdate, ChangeDelete:
	default:
		return false
	}
	return e.Record.ID != ""
}

// Session is a shareable collaboration context identified by a short code.
type Session struct {
	Code      string    `json:"session_code"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is one entry in a session's activity log.
type Event struct {
	Type    string         `json:"type"`
	Ts      time.Time      `json:"timestamp"`
	Payload map[string]any `json:"payload,omitempty"`
}
