package runner

import (
    "bytes"
    "context"
    "fmt"
    "reflect"
    "regexp"
    "strings"

    "github.com/traefik/yaegi/interp"
    "github.com/traefik/yaegi/stdlib"
)

var mainFuncRe = regexp.MustCompile(`\bfunc\s+main\s*\(`)

// evalLocal runs a Go snippet or program in a fresh interpreter, capturing
// everything printed to stdout/stderr during evaluation. The report is the
// captured output if any, otherwise the final expression's value. Evaluation
// errors and panics become "Error: ..." text, never a thrown error.
//
// The interpreter cannot be interrupted; on context expiry the evaluation
// goroutine is abandoned and the run reported as an error.
func evalLocal(ctx context.Context, code string) (out string) {
    defer func() {
        if r := recover(); r != nil {
            out = fmt.Sprintf("Error: %v", r)
        }
    }()

    var stdout bytes.Buffer
    i := interp.New(interp.Options{Stdout: &stdout, Stderr: &stdout})
    if err := i.Use(stdlib.Symbols); err != nil {
        return "Error: " + err.Error()
    }

    src := strings.TrimSpace(code)
    type evalResult struct {
        v   reflect.Value
        err error
    }
    done := make(chan evalResult, 1)
    go func() {
        defer func() {
            if r := recover(); r != nil {
                done <- evalResult{err: fmt.Errorf("%v", r)}
            }
        }()
        if strings.HasPrefix(src, "package ") {
            if _, err := i.Eval(src); err != nil {
                done <- evalResult{err: err}
                return
            }
            if mainFuncRe.MatchString(src) {
                v, err := i.Eval("main.main()")
                done <- evalResult{v: v, err: err}
                return
            }
            done <- evalResult{}
            return
        }
        // Snippet mode: make console-style printing available.
        _, _ = i.Eval(`import "fmt"`)
        v, err := i.Eval(src)
        done <- evalResult{v: v, err: err}
    }()

    var res evalResult
    select {
    case res = <-done:
    case <-ctx.Done():
        return "Error: " + ctx.Err().Error()
    }
    if res.err != nil {
        return "Error: " + res.err.Error()
    }
    if printed := strings.TrimRight(stdout.String(), "\n"); printed != "" {
        return printed
    }
    if res.v.IsValid() && res.v.Kind() != reflect.Invalid {
        return fmt.Sprint(res.v)
    }
    return NoOutputMessage
}
