package models

import (
	"context"

	"github.com/fncall/toolcall"
	"github.com/fncall/types"
)

// Response is the raw answer of one backend round.
type Response struct {
	Content      string
	Calls        []toolcall.WireCall
	FinishReason string
}

// Adapter hides the wire protocol of one kind of model backend from the
// orchestration loop.
type Adapter interface {
	// Name identifies the adapter in logs.
	Name() string
	// SystemPrompt is the system message a new conversation starts with.
	SystemPrompt() string
	// Send transmits the whole conversation and returns the model's answer.
	// Errors are transport failures; they end the loop.
	Send(ctx context.Context, conv []types.Message) (*Response, error)
	// IsFinal reports whether resp contains no call requests.
	IsFinal(resp *Response) bool
	// AssistantMessage is the transcript entry recording resp.
	AssistantMessage(resp *Response) types.Message
	// ToolCalls extracts the calls to run this round, in request order.
	ToolCalls(resp *Response) []toolcall.Parsed
}

const (
	KindStructured = "structured"
	KindText       = "text"
)

// BackendConf configures one selectable model.
type BackendConf struct {
	Adapter  string `mapstructure:"adapter"`
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
}
