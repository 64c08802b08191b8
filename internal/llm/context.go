package llm

import (
	"context"
	"strconv"
)

// Purpose labels why a request was made. Logs, metrics and typed errors
// carry it.
type Purpose string

const (
	PurposeRefill  Purpose = "content-refill"
	PurposeSolve   Purpose = "solution-steps"
	PurposeUnknown Purpose = "unknown"
)

// Call describes one request in drill terms: the purpose and what it is
// about, a topic for refills or a problem id for solutions.
type Call struct {
	Purpose Purpose
	Subject string
}

func (c Call) String() string {
	if c.Subject == "" {
		return string(c.Purpose)
	}
	return string(c.Purpose) + " " + strconv.Quote(c.Subject)
}

type callKey struct{}

// WithCall attaches c to the context.
func WithCall(ctx context.Context, c Call) context.Context {
	if c.Purpose == "" {
		c.Purpose = PurposeUnknown
	}
	return context.WithValue(ctx, callKey{}, c)
}

// CallFrom returns the call attached to ctx. Untagged requests report
// PurposeUnknown.
func CallFrom(ctx context.Context) Call {
	if c, ok := ctx.Value(callKey{}).(Call); ok {
		return c
	}
	return Call{Purpose: PurposeUnknown}
}
