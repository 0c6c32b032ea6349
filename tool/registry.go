package tool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/toolbridge/toolbridge/internal/schema"
	"github.com/toolbridge/toolbridge/logging"
)

// Registry owns the authoritative set of invocable tools and executes them
// by name. Safe for concurrent use. List order is registration order, so
// schema output stays stable within a process run.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	order  []string
	logger logging.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Registry{tools: make(map[string]Tool), logger: logger}
}

// Register adds a tool, failing with ErrDuplicateTool if the name is taken.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	r.logger.Info("tool.registered", "tool", name)
	return nil
}

// List returns all registered tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Get returns the tool with the given name, or (nil, false) if not found.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Execute looks up name, coerces args to the tool's declared parameter types
// (applying declared defaults) and invokes the handler.
//
// Error semantics:
//
//	unknown name                    -> ErrToolNotFound (wrapped)
//	missing/uncoercible argument    -> *ArgumentError
//	handler error or panic          -> *ExecutionError (cause preserved)
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (result any, err error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	if args == nil {
		args = map[string]any{}
	}
	coerced, err := schema.Coerce(args, t.Parameters())
	if err != nil {
		var vErr *schema.ValidationError
		if errors.As(err, &vErr) {
			r.logger.Warn("tool.execute.invalid_args", "tool", name, "field", vErr.Field, "error", vErr.Message)
			return nil, &ArgumentError{Tool: name, Field: vErr.Field, Value: vErr.Value, Message: vErr.Message}
		}
		return nil, &ArgumentError{Tool: name, Message: err.Error()}
	}

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool.execute.panic", "tool", name, "recover", rec)
			err = &ExecutionError{Tool: name, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	result, err = t.Call(ctx, coerced)
	if err != nil {
		var argErr *ArgumentError
		if errors.As(err, &argErr) { // handlers may reject semantically invalid values
			r.logger.Warn("tool.execute.invalid_args", "tool", name, "error", argErr.Message)
			return nil, argErr
		}
		r.logger.Error("tool.execute.error", "tool", name, "error", err.Error())
		return nil, &ExecutionError{Tool: name, Err: err}
	}

	r.logger.Info("tool.execute.success", "tool", name, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}
