package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/toolbridge/toolbridge/core"
)

// MockModel is a lightweight in-memory Model useful for tests, examples and
// running the server without provider credentials.
//
// Behavior: scripted responses (Enqueue) are returned in FIFO order; once the
// script is exhausted, Generate echoes the last user message. Requests are
// recorded for assertions. Safe for concurrent use.
type MockModel struct {
	mu       sync.Mutex
	info     Info
	script   []Response
	requests []Request
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info: Info{Name: name, Provider: "mock", SupportsTools: true},
	}
}

// Enqueue appends a scripted response returned by a future Generate call.
func (m *MockModel) Enqueue(resp Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
}

// Requests returns a copy of every request seen so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if len(m.script) > 0 {
		resp := m.script[0]
		m.script = m.script[1:]
		if len(resp.ToolCalls) > 0 && !req.AllowTools {
			// Scripts must not leak tool calls into a tools-disabled pass.
			return nil, fmt.Errorf("mock model: scripted tool calls but tools are disabled")
		}
		return &resp, nil
	}

	var lastUser string
	for _, msg := range req.Messages {
		if msg.Role == core.RoleUser {
			lastUser = msg.Content
		}
	}
	return &Response{
		Text:         fmt.Sprintf("Mock response to: %s", lastUser),
		FinishReason: "stop",
	}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
