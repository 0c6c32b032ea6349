package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/toolbridge/toolbridge/core"
	"github.com/toolbridge/toolbridge/logging"
	"github.com/toolbridge/toolbridge/tool"
)

// JSON-RPC 2.0 error codes used by the stdio adapter.
const (
	rpcParseError     = -32700
	rpcMethodNotFound = -32601
	rpcInvalidParams  = -32602
	rpcInternalError  = -32603
)

// StdioServer serves the tool registry over line-delimited JSON-RPC 2.0.
// Every response carries the id of the request it answers, so callers can
// correlate replies even when they pipeline requests. Requests without an id
// are treated as notifications and receive no reply.
type StdioServer struct {
	registry *tool.Registry
	log      logging.Logger
	in       io.Reader
	out      io.Writer
}

// NewStdioServer wires the registry to a reader/writer pair (normally
// os.Stdin / os.Stdout).
func NewStdioServer(registry *tool.Registry, log logging.Logger, in io.Reader, out io.Writer) *StdioServer {
	if log == nil {
		log = logging.NoOpLogger{}
	}
	return &StdioServer{registry: registry, log: log, in: in, out: out}
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// Run reads requests until EOF or context cancellation. Malformed lines get
// a parse error response with a null id; they cannot be correlated.
func (s *StdioServer) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	enc := json.NewEncoder(s.out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req rpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("server.stdio.parse_error", "error", err.Error())
			s.reply(enc, rpcResponse{
				JSONRPC: "2.0",
				ID:      json.RawMessage("null"),
				Error:   &rpcError{Code: rpcParseError, Message: fmt.Sprintf("parse error: %v", err)},
			})
			continue
		}

		resp := s.handle(ctx, req)
		if req.ID == nil {
			continue // notification, no reply
		}
		resp.JSONRPC = "2.0"
		resp.ID = req.ID
		s.reply(enc, resp)
	}
	return scanner.Err()
}

func (s *StdioServer) reply(enc *json.Encoder, resp rpcResponse) {
	if err := enc.Encode(resp); err != nil {
		s.log.Error("server.stdio.write_error", "error", err.Error())
	}
}

func (s *StdioServer) handle(ctx context.Context, req rpcRequest) rpcResponse {
	switch req.Method {
	case "initialize":
		return rpcResponse{Result: map[string]any{
			"protocolVersion": "2024-11-05",
			"serverInfo":      map[string]any{"name": "toolbridge", "version": "0.1.0"},
			"capabilities":    map[string]any{"tools": map[string]any{}},
		}}
	case "tools/list":
		tools := s.registry.List()
		views := make([]toolView, 0, len(tools))
		for _, t := range tools {
			views = append(views, toolView{Name: t.Name(), Description: t.Description(), Parameters: t.Parameters()})
		}
		return rpcResponse{Result: map[string]any{"tools": views}}
	case "tools/call":
		return s.handleToolCall(ctx, req.Params)
	default:
		return rpcResponse{Error: &rpcError{Code: rpcMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}}
	}
}

func (s *StdioServer) handleToolCall(ctx context.Context, params json.RawMessage) rpcResponse {
	var call struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if len(params) == 0 {
		return rpcResponse{Error: &rpcError{Code: rpcInvalidParams, Message: "missing params"}}
	}
	if err := json.Unmarshal(params, &call); err != nil {
		return rpcResponse{Error: &rpcError{Code: rpcInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}}
	}
	if call.Name == "" {
		return rpcResponse{Error: &rpcError{Code: rpcInvalidParams, Message: "missing tool name"}}
	}

	result, err := s.registry.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		var argErr *tool.ArgumentError
		switch {
		case errors.Is(err, tool.ErrToolNotFound):
			return rpcResponse{Error: &rpcError{Code: rpcMethodNotFound, Message: err.Error()}}
		case errors.As(err, &argErr):
			return rpcResponse{Error: &rpcError{Code: rpcInvalidParams, Message: err.Error()}}
		default:
			return rpcResponse{Error: &rpcError{Code: rpcInternalError, Message: err.Error()}}
		}
	}
	return rpcResponse{Result: core.ToolResult{ToolName: call.Name, Result: result}}
}
