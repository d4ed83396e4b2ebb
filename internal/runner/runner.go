// Package runner dispatches "run" requests: Go snippets are evaluated
// in-process, other supported languages go to the external compile service.
package runner

import (
    "context"
    "errors"
    "fmt"

    "livepair/editor/internal/types"
)

var ErrNoService = errors.New("no execution service configured")

// NoOutputMessage is returned when a run succeeds without printing anything.
const NoOutputMessage = "Code executed successfully (no output)"

func NotSupportedMessage(language string) string {
    return fmt.Sprintf("Language %s is not supported yet.", language)
}

type Dispatcher struct {
    remote *RemoteClient // nil when no compile service is configured
}

func New(remote *RemoteClient) *Dispatcher {
    return &Dispatcher{remote: remote}
}

// Run executes code for the given language tag. Local evaluation failures are
// reported in the returned output ("Error: ..."), never as an error; remote
// failures come back as an error for the caller to surface as a compilation
// error. Unsupported languages yield a fixed message.
func (d *Dispatcher) Run(ctx context.Context, code, language string) (string, error) {
    switch {
    case language == types.LangGo:
        return evalLocal(ctx, code), nil
    case types.RemoteLanguages[language]:
        if d.remote == nil {
            return "", ErrNoService
        }
        return d.remote.Compile(ctx, code, language)
    default:
        return NotSupportedMessage(language), nil
    }
}
