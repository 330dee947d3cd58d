package models

import (
	"context"
	"fmt"

	"github.com/fncall/logger"
	"github.com/fncall/registry"
	"github.com/fncall/toolcall"
	"github.com/fncall/transport"
	"github.com/fncall/types"

	"github.com/google/uuid"
)

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Raw    bool   `json:"raw"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Text talks to Ollama-style generate endpoints for models without native
// tool calling. Calls are embedded in the output between <tool_call> tags.
type Text struct {
	conf     BackendConf
	client   transport.Interface
	preamble string
	log      *logger.Logger
}

func NewText(client transport.Interface, reg *registry.Registry, conf BackendConf) *Text {
	return &Text{
		conf:     conf,
		client:   client,
		preamble: TextPreamble(reg),
		log:      logger.NewLogger("TextAdapter", uuid.NewString()).With("model", conf.Model),
	}
}

func (t *Text) Name() string { return KindText + ":" + t.conf.Model }

func (t *Text) SystemPrompt() string { return t.preamble }

func (t *Text) Send(ctx context.Context, conv []types.Message) (*Response, error) {
	body := generateRequest{
		Model:  t.conf.Model,
		Prompt: RenderChatML(t.preamble, conv),
		Raw:    true,
	}

	var out generateResponse
	if err := t.client.Do(ctx, transport.Post(t.conf.Endpoint, body).WithBearer(t.conf.APIKey), &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("backend error: %s", out.Error)
	}
	t.log.Debug("assistant response", "response", out.Response)
	return &Response{Content: out.Response}, nil
}

func (t *Text) IsFinal(resp *Response) bool { return !toolcall.HasCall(resp.Content) }

func (t *Text) AssistantMessage(resp *Response) types.Message {
	return types.Message{Role: types.RoleAssistant, Content: resp.Content}
}

// ToolCalls returns only the first delimited call. Later calls in the same
// output tend to carry placeholder arguments that depend on the first
// result; the model is asked again once that result is in the transcript.
func (t *Text) ToolCalls(resp *Response) []toolcall.Parsed {
	parsed := toolcall.ParseText(resp.Content)
	if len(parsed) > 1 {
		t.log.Info("deferring extra tool calls to the next round", "extracted", len(parsed))
		parsed = parsed[:1]
	}
	return parsed
}
