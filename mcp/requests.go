package mcp

import (
	"context"
	"encoding/json"
)

// ContentBlock is one item of a tool/prompt result's content array. Only
// the fields relevant to its Type are populated; unused fields are
// omitted on the wire.
type ContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	URI      string `json:"uri,omitempty"`
}

// Tool describes one tool a server advertises via tools/list.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

type ToolsListParams struct {
	Cursor string `json:"cursor,omitempty"`
}

type ToolsListResult struct {
	Tools      []Tool `json:"tools"`
	NextCursor string `json:"nextCursor,omitempty"`
}

type ToolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

type ToolsCallResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// Resource describes one resource a server advertises via resources/list.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

type ResourcesListParams struct {
	Cursor string `json:"cursor,omitempty"`
}

type ResourcesListResult struct {
	Resources  []Resource `json:"resources"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

type ResourcesReadParams struct {
	URI string `json:"uri"`
}

type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

type ResourcesReadResult struct {
	Contents []ResourceContents `json:"contents"`
}

type ResourcesSubscribeParams struct {
	URI string `json:"uri"`
}

type ResourcesUnsubscribeParams struct {
	URI string `json:"uri"`
}

// Prompt describes one prompt a server advertises via prompts/list.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

type PromptsListParams struct {
	Cursor string `json:"cursor,omitempty"`
}

type PromptsListResult struct {
	Prompts    []Prompt `json:"prompts"`
	NextCursor string   `json:"nextCursor,omitempty"`
}

type PromptsGetParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

type PromptMessage struct {
	Role    string       `json:"role"`
	Content ContentBlock `json:"content"`
}

type PromptsGetResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

type SamplingMessage struct {
	Role    string       `json:"role"`
	Content ContentBlock `json:"content"`
}

type SamplingCreateMessageParams struct {
	Messages         []SamplingMessage `json:"messages"`
	MaxTokens        int                `json:"maxTokens,omitempty"`
	SystemPrompt     string             `json:"systemPrompt,omitempty"`
	ModelPreferences map[string]any     `json:"modelPreferences,omitempty"`
}

type SamplingCreateMessageResult struct {
	Role    string       `json:"role"`
	Content ContentBlock `json:"content"`
	Model   string       `json:"model,omitempty"`
}

type CompletionCompleteParams struct {
	Ref      map[string]any `json:"ref"`
	Argument map[string]any `json:"argument"`
}

type CompletionCompleteResult struct {
	Completion struct {
		Values  []string `json:"values"`
		Total   int      `json:"total,omitempty"`
		HasMore bool     `json:"hasMore,omitempty"`
	} `json:"completion"`
}

type Root struct {
	URI  string `json:"uri"`
	Name string `json:"name,omitempty"`
}

type RootsListResult struct {
	Roots []Root `json:"roots"`
}

// ListTools lists the server's tools (tools/list). Requires the server to
// have declared the tools capability during initialize.
func (c *Client) ListTools(ctx context.Context, cursor string) (*ToolsListResult, error) {
	if err := c.requireCapability(func(s *SessionContext) bool { return s.HasToolsCapability() }, "tools"); err != nil {
		return nil, err
	}
	var result ToolsListResult
	if err := c.call(ctx, "tools/list", ToolsListParams{Cursor: cursor}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CallTool invokes a tool (tools/call).
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (*ToolsCallResult, error) {
	if err := c.requireCapability(func(s *SessionContext) bool { return s.HasToolsCapability() }, "tools"); err != nil {
		return nil, err
	}
	var result ToolsCallResult
	if err := c.call(ctx, "tools/call", ToolsCallParams{Name: name, Arguments: arguments}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListResources lists the server's resources (resources/list).
func (c *Client) ListResources(ctx context.Context, cursor string) (*ResourcesListResult, error) {
	if err := c.requireCapability(func(s *SessionContext) bool { return s.HasResourcesCapability() }, "resources"); err != nil {
		return nil, err
	}
	var result ResourcesListResult
	if err := c.call(ctx, "resources/list", ResourcesListParams{Cursor: cursor}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReadResource reads one resource's contents (resources/read).
func (c *Client) ReadResource(ctx context.Context, uri string) (*ResourcesReadResult, error) {
	if err := c.requireCapability(func(s *SessionContext) bool { return s.HasResourcesCapability() }, "resources"); err != nil {
		return nil, err
	}
	var result ResourcesReadResult
	if err := c.call(ctx, "resources/read", ResourcesReadParams{URI: uri}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubscribeResource subscribes to change notifications for one resource
// (resources/subscribe). Requires the server's resources capability to
// advertise subscribe support specifically.
func (c *Client) SubscribeResource(ctx context.Context, uri string) error {
	if err := c.requireCapability(func(s *SessionContext) bool { return s.HasResourcesSubscribe() }, "resources.subscribe"); err != nil {
		return err
	}
	return c.call(ctx, "resources/subscribe", ResourcesSubscribeParams{URI: uri}, nil)
}

// UnsubscribeResource cancels a prior subscription (resources/unsubscribe).
func (c *Client) UnsubscribeResource(ctx context.Context, uri string) error {
	if err := c.requireCapability(func(s *SessionContext) bool { return s.HasResourcesSubscribe() }, "resources.subscribe"); err != nil {
		return err
	}
	return c.call(ctx, "resources/unsubscribe", ResourcesUnsubscribeParams{URI: uri}, nil)
}

// ListPrompts lists the server's prompts (prompts/list).
func (c *Client) ListPrompts(ctx context.Context, cursor string) (*PromptsListResult, error) {
	if err := c.requireCapability(func(s *SessionContext) bool { return s.HasPromptsCapability() }, "prompts"); err != nil {
		return nil, err
	}
	var result PromptsListResult
	if err := c.call(ctx, "prompts/list", PromptsListParams{Cursor: cursor}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPrompt resolves a named prompt template (prompts/get).
func (c *Client) GetPrompt(ctx context.Context, name string, arguments map[string]string) (*PromptsGetResult, error) {
	if err := c.requireCapability(func(s *SessionContext) bool { return s.HasPromptsCapability() }, "prompts"); err != nil {
		return nil, err
	}
	var result PromptsGetResult
	if err := c.call(ctx, "prompts/get", PromptsGetParams{Name: name, Arguments: arguments}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateSamplingMessage asks the server to sample an LLM completion
// (sampling/createMessage).
func (c *Client) CreateSamplingMessage(ctx context.Context, params SamplingCreateMessageParams) (*SamplingCreateMessageResult, error) {
	if err := c.requireCapability(func(s *SessionContext) bool { return s.HasSamplingCapability() }, "sampling"); err != nil {
		return nil, err
	}
	var result SamplingCreateMessageResult
	if err := c.call(ctx, "sampling/createMessage", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Complete asks the server for completion suggestions (completion/complete).
func (c *Client) Complete(ctx context.Context, params CompletionCompleteParams) (*CompletionCompleteResult, error) {
	if err := c.requireCapability(func(s *SessionContext) bool { return s.HasCompletionsCapability() }, "completions"); err != nil {
		return nil, err
	}
	var result CompletionCompleteResult
	if err := c.call(ctx, "completion/complete", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListRoots sends roots/list to the server and returns the roots it
// reports. Requires the server to have declared the roots capability
// during initialize.
func (c *Client) ListRoots(ctx context.Context) (*RootsListResult, error) {
	if err := c.requireCapability(func(s *SessionContext) bool { return s.HasRootsCapability() }, "roots"); err != nil {
		return nil, err
	}
	var result RootsListResult
	if err := c.call(ctx, "roots/list", struct{}{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping is a liveness check with no capability gate — every server must
// answer it.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, "ping", struct{}{}, nil)
}
