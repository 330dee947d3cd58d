package models

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fncall/logger"
	"github.com/fncall/registry"
	"github.com/fncall/toolcall"
	"github.com/fncall/transport"
	"github.com/fncall/types"

	"github.com/google/uuid"
)

const structuredSystemPrompt = "You are an assistant helping users to get an answer to their query. " +
	"You do not guess, and call functions to get the information you need to answer the query."

type wireTool struct {
	Type     string               `json:"type"`
	Function types.ToolDefinition `json:"function"`
}

type wireMessage struct {
	Role       types.Role          `json:"role"`
	Content    *string             `json:"content"`
	Name       string              `json:"name,omitempty"`
	ToolCalls  []toolcall.WireCall `json:"tool_calls,omitempty"`
	ToolCallID string              `json:"tool_call_id,omitempty"`
}

type chatRequest struct {
	Model      string        `json:"model"`
	Messages   []wireMessage `json:"messages"`
	Tools      []wireTool    `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role      string              `json:"role"`
			Content   *string             `json:"content"`
			ToolCalls []toolcall.WireCall `json:"tool_calls,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Structured talks to OpenAI-compatible chat completion endpoints that
// return discrete tool call objects.
type Structured struct {
	conf   BackendConf
	client transport.Interface
	tools  []wireTool
	log    *logger.Logger
}

func NewStructured(client transport.Interface, reg *registry.Registry, conf BackendConf) *Structured {
	defs := reg.Definitions()
	tools := make([]wireTool, 0, len(defs))
	for _, d := range defs {
		tools = append(tools, wireTool{Type: "function", Function: d})
	}
	return &Structured{
		conf:   conf,
		client: client,
		tools:  tools,
		log:    logger.NewLogger("StructuredAdapter", uuid.NewString()).With("model", conf.Model),
	}
}

func (s *Structured) Name() string { return KindStructured + ":" + s.conf.Model }

func (s *Structured) SystemPrompt() string { return structuredSystemPrompt }

func (s *Structured) Send(ctx context.Context, conv []types.Message) (*Response, error) {
	body := chatRequest{
		Model:    s.conf.Model,
		Messages: toWireMessages(conv),
		Tools:    s.tools,
	}
	if len(s.tools) > 0 {
		body.ToolChoice = "auto"
	}

	var out chatResponse
	if err := s.client.Do(ctx, transport.Post(s.conf.Endpoint, body).WithBearer(s.conf.APIKey), &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, fmt.Errorf("backend error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("backend returned no choices")
	}

	choice := out.Choices[len(out.Choices)-1]
	resp := &Response{
		Calls:        choice.Message.ToolCalls,
		FinishReason: choice.FinishReason,
	}
	// ids correlate results with calls on the next round
	for i := range resp.Calls {
		if resp.Calls[i].ID == "" {
			resp.Calls[i].ID = "call_" + uuid.NewString()
		}
	}
	if choice.Message.Content != nil {
		resp.Content = *choice.Message.Content
	}
	s.log.Debug("assistant response", "finish_reason", resp.FinishReason, "tool_calls", len(resp.Calls))
	return resp, nil
}

func (s *Structured) IsFinal(resp *Response) bool { return len(resp.Calls) == 0 }

func (s *Structured) AssistantMessage(resp *Response) types.Message {
	msg := types.Message{Role: types.RoleAssistant, Content: resp.Content}
	for _, p := range toolcall.ParseStructured(resp.Calls) {
		tc := types.ToolCall{ID: p.Request.CorrelationID, Name: p.Request.Name, Arguments: p.Request.Raw}
		if pe, ok := p.Err.(*toolcall.ParseError); ok {
			tc = types.ToolCall{ID: pe.CorrelationID, Name: pe.Name, Arguments: pe.Payload}
		}
		if tc.Arguments == "" {
			tc.Arguments = "{}"
		}
		msg.ToolCalls = append(msg.ToolCalls, tc)
	}
	return msg
}

func (s *Structured) ToolCalls(resp *Response) []toolcall.Parsed {
	return toolcall.ParseStructured(resp.Calls)
}

// toWireMessages converts the transcript, sending null content for
// assistant messages that only carry tool calls.
func toWireMessages(conv []types.Message) []wireMessage {
	out := make([]wireMessage, 0, len(conv))
	for _, m := range conv {
		wm := wireMessage{Role: m.Role, ToolCallID: m.ToolCallID}
		if m.Role != types.RoleTool {
			wm.Name = m.Name
		}
		if m.Role == types.RoleAssistant && len(m.ToolCalls) > 0 && m.Content == "" {
			wm.Content = nil
		} else {
			content := m.Content
			wm.Content = &content
		}
		for _, tc := range m.ToolCalls {
			args, _ := json.Marshal(tc.Arguments)
			wm.ToolCalls = append(wm.ToolCalls, toolcall.WireCall{
				ID:       tc.ID,
				Type:     "function",
				Function: toolcall.WireFunction{Name: tc.Name, Arguments: args},
			})
		}
		out = append(out, wm)
	}
	return out
}
