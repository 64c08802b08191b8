package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrRateLimit is a 429 from the provider. RetryAfter is zero when the
// provider sent no hint.
type ErrRateLimit struct {
	Call       Call
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return prefix(e.Call) + fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse means the output is not the JSON the schema asks
// for. Content keeps the raw output so callers can salvage a batch.
type ErrInvalidResponse struct {
	Call    Call
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return prefix(e.Call) + fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable means the provider is down, unreachable or
// rejected the request.
type ErrProviderUnavailable struct {
	Call Call
	Err  error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return prefix(e.Call) + fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return prefix(e.Call) + "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means the output was cut at Limit tokens. A
// truncated batch still holds the problems written before the cut.
type ErrMaxTokensExceeded struct {
	Call    Call
	Limit   int
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	if e.Limit > 0 {
		return prefix(e.Call) + fmt.Sprintf("LLM response truncated at %d tokens", e.Limit)
	}
	return prefix(e.Call) + "LLM response truncated: max tokens exceeded"
}

func prefix(c Call) string {
	if c.Purpose == "" {
		return ""
	}
	return c.String() + ": "
}

// annotate stamps c onto the typed errors that do not carry a call yet.
func annotate(err error, c Call) error {
	var (
		rl    *ErrRateLimit
		inv   *ErrInvalidResponse
		down  *ErrProviderUnavailable
		trunc *ErrMaxTokensExceeded
	)
	switch {
	case errors.As(err, &rl) && rl.Call.Purpose == "":
		rl.Call = c
	case errors.As(err, &inv) && inv.Call.Purpose == "":
		inv.Call = c
	case errors.As(err, &down) && down.Call.Purpose == "":
		down.Call = c
	case errors.As(err, &trunc) && trunc.Call.Purpose == "":
		trunc.Call = c
	}
	return err
}

// statusError maps an HTTP status from any provider onto the typed
// errors. Rate limits honor a Retry-After header given in seconds.
func statusError(status int, header http.Header, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{RetryAfter: retryAfter(header), Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
