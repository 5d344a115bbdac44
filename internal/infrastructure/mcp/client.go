package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Azamsaif47/Alfred-app/internal/domain/agent"
)

// Client talks JSON-RPC to the tool server hosting the retriever and the
// business tools.
type Client struct {
	httpClient *resty.Client
	nextID     atomic.Int64
}

var _ agent.MCPClient = (*Client)(nil)

// NewClient constructs the MCP client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		httpClient.SetTimeout(timeout)
	}
	return &Client{httpClient: httpClient}
}

// ListTools fetches the tools via JSON-RPC tools/list.
func (c *Client) ListTools(ctx context.Context) ([]agent.Tool, error) {
	var result struct {
		Tools []agent.Tool `json:"tools"`
	}
	if err := c.call(ctx, "tools/list", map[string]any{}, &result); err != nil {
		return nil, fmt.Errorf("mcp list tools: %w", err)
	}
	return result.Tools, nil
}

// CallTool triggers a tool execution via JSON-RPC tools/call.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*agent.ToolResult, error) {
	params := map[string]any{
		"name":      name,
		"arguments": args,
	}
	var result agent.ToolResult
	if err := c.call(ctx, "tools/call", params, &result); err != nil {
		return nil, fmt.Errorf("mcp call %s: %w", name, err)
	}
	return &result, nil
}

func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	payload := rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	}

	var rpcResp rpcResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&rpcResp).
		Post("/v1/mcp")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String())
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if len(rpcResp.Result) == 0 {
		return fmt.Errorf("empty result")
	}
	return json.Unmarshal(rpcResp.Result, out)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
	ID      any             `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (r *rpcError) Error() string {
	return fmt.Sprintf("mcp error (%d): %s", r.Code, r.Message)
}
