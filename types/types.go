package types

// Role identifies the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of a conversation. ToolCalls is only set on assistant
// messages produced by a structured backend; ToolCallID correlates a tool
// result with the call that requested it.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a call request as recorded in the transcript. Arguments keeps
// the raw payload the backend sent so it can be replayed verbatim.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition describes a callable function to a backend.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// CallRequest is the body accepted by the HTTP and stdio front-ends.
type CallRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Budget int    `json:"budget,omitempty"`
}

// CallResponse is returned by the front-ends. Messages holds the final (or
// partial, when Error is set) conversation.
type CallResponse struct {
	Error    string    `json:"error,omitempty"`
	Messages []Message `json:"messages"`
}
