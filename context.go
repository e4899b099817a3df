package graphstreams

import "context"

// contextDone reports whether the stream's context has been canceled,
// for whatever cause. Operators check it after every consumer call so a
// canceling consumer stops the traversal before the next element.
func contextDone(ctx context.Context) bool {
	return ctx.Err() != nil
}
