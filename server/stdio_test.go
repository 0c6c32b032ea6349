package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolbridge/toolbridge/tool"
)

func runStdio(t *testing.T, input string) []rpcResponse {
	t.Helper()
	registry := tool.NewRegistry(nil)
	require.NoError(t, tool.RegisterBuiltins(registry))

	var out bytes.Buffer
	s := NewStdioServer(registry, nil, strings.NewReader(input), &out)
	require.NoError(t, s.Run(context.Background()))

	var responses []rpcResponse
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp rpcResponse
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func TestStdioInitialize(t *testing.T) {
	responses := runStdio(t, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`+"\n")
	require.Len(t, responses, 1)

	resp := responses[0]
	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.Equal(t, json.RawMessage("1"), resp.ID)
	require.Nil(t, resp.Error)

	result := resp.Result.(map[string]any)
	assert.Equal(t, "2024-11-05", result["protocolVersion"])
}

func TestStdioToolsList(t *testing.T) {
	responses := runStdio(t, `{"jsonrpc":"2.0","id":"list-1","method":"tools/list"}`+"\n")
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)

	result := responses[0].Result.(map[string]any)
	tools := result["tools"].([]any)
	require.Len(t, tools, 5)
	first := tools[0].(map[string]any)
	assert.Equal(t, "get_current_time", first["name"])
}

func TestStdioToolsCall(t *testing.T) {
	responses := runStdio(t, `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"calculate","arguments":{"expression":"2 + 2*2"}}}`+"\n")
	require.Len(t, responses, 1)

	resp := responses[0]
	require.Nil(t, resp.Error)
	assert.Equal(t, json.RawMessage("7"), resp.ID)

	result := resp.Result.(map[string]any)
	assert.Equal(t, "calculate", result["tool_name"])
	assert.Equal(t, 6.0, result["result"])
}

func TestStdioIDCorrelation(t *testing.T) {
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":10,"method":"tools/call","params":{"name":"get_random_number","arguments":{"min":1,"max":1}}}`,
		`{"jsonrpc":"2.0","id":"abc","method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":12,"method":"initialize"}`,
	}, "\n") + "\n"

	responses := runStdio(t, input)
	require.Len(t, responses, 3)
	assert.Equal(t, json.RawMessage("10"), responses[0].ID)
	assert.Equal(t, json.RawMessage(`"abc"`), responses[1].ID)
	assert.Equal(t, json.RawMessage("12"), responses[2].ID)
}

func TestStdioNotificationNoReply(t *testing.T) {
	input := `{"jsonrpc":"2.0","method":"initialize"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"initialize"}` + "\n"

	responses := runStdio(t, input)
	require.Len(t, responses, 1)
	assert.Equal(t, json.RawMessage("2"), responses[0].ID)
}

func TestStdioUnknownMethod(t *testing.T) {
	responses := runStdio(t, `{"jsonrpc":"2.0","id":3,"method":"resources/list"}`+"\n")
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, rpcMethodNotFound, responses[0].Error.Code)
}

func TestStdioParseError(t *testing.T) {
	responses := runStdio(t, "{broken json\n")
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, rpcParseError, responses[0].Error.Code)
	assert.Equal(t, json.RawMessage("null"), responses[0].ID)
}

func TestStdioToolCallErrors(t *testing.T) {
	tests := []struct {
		name     string
		request  string
		wantCode int
	}{
		{
			"unknown tool",
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope"}}`,
			rpcMethodNotFound,
		},
		{
			"invalid arguments",
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_weather"}}`,
			rpcInvalidParams,
		},
		{
			"missing params",
			`{"jsonrpc":"2.0","id":1,"method":"tools/call"}`,
			rpcInvalidParams,
		},
		{
			"missing tool name",
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{}}`,
			rpcInvalidParams,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := runStdio(t, tt.request+"\n")
			require.Len(t, responses, 1)
			require.NotNil(t, responses[0].Error)
			assert.Equal(t, tt.wantCode, responses[0].Error.Code)
		})
	}
}

func TestStdioSkipsBlankLines(t *testing.T) {
	input := "\n" + `{"jsonrpc":"2.0","id":1,"method":"initialize"}` + "\n\n"
	responses := runStdio(t, input)
	assert.Len(t, responses, 1)
}
