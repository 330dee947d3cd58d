package orchestrator

import (
	"context"
	"errors"

	"github.com/fncall/models"
	"github.com/fncall/toolcall"
	"github.com/fncall/types"
)

// scripted replays canned responses and counts sends. Once the script is
// exhausted the last response is repeated.
type scripted struct {
	responses []*models.Response
	err       error
	sends     int
	seen      [][]types.Message
}

var _ models.Adapter = (*scripted)(nil)

func (s *scripted) Name() string         { return "scripted" }
func (s *scripted) SystemPrompt() string { return "system" }

func (s *scripted) Send(_ context.Context, conv []types.Message) (*models.Response, error) {
	s.sends++
	s.seen = append(s.seen, conv)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return nil, errors.New("empty script")
	}
	i := min(s.sends-1, len(s.responses)-1)
	return s.responses[i], nil
}

func (s *scripted) IsFinal(resp *models.Response) bool { return len(resp.Calls) == 0 }

func (s *scripted) AssistantMessage(resp *models.Response) types.Message {
	return types.Message{Role: types.RoleAssistant, Content: resp.Content}
}

func (s *scripted) ToolCalls(resp *models.Response) []toolcall.Parsed {
	return toolcall.ParseStructured(resp.Calls)
}

func call(id, name, args string) toolcall.WireCall {
	return toolcall.WireCall{ID: id, Type: "function", Function: toolcall.WireFunction{Name: name, Arguments: []byte(args)}}
}

func calling(calls ...toolcall.WireCall) *models.Response {
	return &models.Response{Calls: calls, FinishReason: "tool_calls"}
}

func answer(content string) *models.Response {
	return &models.Response{Content: content, FinishReason: "stop"}
}
