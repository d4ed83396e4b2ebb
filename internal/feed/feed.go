// Package feed is the realtime change channel for a session's files.
// Delivery is at-least-once, possibly reordered and delayed, with no
// ordering guarantee between a local write and its own echo.
package feed

import (
    "context"

    "livepair/editor/internal/types"
)

type Handler func(types.ChangeEvent)

type Feed interface {
    Publish(ctx context.Context, sessionCode string, evt types.ChangeEvent) error
    // Subscribe registers fn for a session's change events and returns an
    // unsubscribe handle to be invoked on teardown.
    Subscribe(sessionCode string, fn Handler) (unsubscribe func())
}

// ChannelName is the pub/sub channel carrying a session's file changes.
func ChannelName(sessionCode string) string {
    return "session-files:" + sessionCode
}
