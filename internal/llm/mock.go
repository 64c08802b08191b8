package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockCall is one recorded Generate call.
type MockCall struct {
	Call
	Request
}

// MockProvider is a deterministic Provider for testing. Responses scripted
// for a purpose answer calls tagged with it; everything else is served in
// FIFO order from the default queue.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	scripted  map[Purpose][]MockResponse
	Calls     []MockCall
}

// NewMockProvider creates a MockProvider with the given default responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses, scripted: map[Purpose][]MockResponse{}}
}

// Script queues responses for calls made with purpose.
func (m *MockProvider) Script(purpose Purpose, responses ...MockResponse) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted[purpose] = append(m.scripted[purpose], responses...)
	return m
}

// Generate returns the next canned response for the call's purpose, or
// ErrProviderUnavailable once both queues are drained.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := CallFrom(ctx)
	m.Calls = append(m.Calls, MockCall{Call: call, Request: req})

	var resp MockResponse
	switch {
	case len(m.scripted[call.Purpose]) > 0:
		resp = m.scripted[call.Purpose][0]
		m.scripted[call.Purpose] = m.scripted[call.Purpose][1:]
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
	default:
		return nil, &ErrProviderUnavailable{Call: call}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: StopEnd,
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the default queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// CallsFor returns the recorded calls made with purpose.
func (m *MockProvider) CallsFor(purpose Purpose) []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MockCall
	for _, c := range m.Calls {
		if c.Purpose == purpose {
			out = append(out, c)
		}
	}
	return out
}
