package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fncall/codec"
	"github.com/fncall/integrations"
	"github.com/fncall/logger"
	"github.com/fncall/models"
	"github.com/fncall/registry"
	"github.com/fncall/transport"
	"github.com/fncall/types"
	"github.com/fncall/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []validate.Arguments
}

func (r *recorder) callback(result any) registry.Callback {
	return func(_ context.Context, args validate.Arguments) (any, error) {
		r.calls = append(r.calls, args)
		return result, nil
	}
}

func newLoop(t *testing.T, descs ...registry.FunctionDescriptor) *Loop {
	t.Helper()
	reg, err := registry.New(descs...)
	require.NoError(t, err)
	return New(reg, 0).WithLogger(logger.Discard())
}

func start(prompt string) []types.Message {
	return []types.Message{types.SystemMessage("system"), types.UserMessage(prompt)}
}

func toolMessages(conv []types.Message) []types.Message {
	var out []types.Message
	for _, m := range conv {
		if m.Role == types.RoleTool {
			out = append(out, m)
		}
	}
	return out
}

func TestNew_DefaultBudget(t *testing.T) {
	assert.Equal(t, DefaultBudget, newLoop(t).Budget())
	reg, err := registry.New()
	require.NoError(t, err)
	assert.Equal(t, 3, New(reg, 3).Budget())
}

func TestRun_FinalAnswer(t *testing.T) {
	adapter := &scripted{responses: []*models.Response{answer("Hello!")}}

	conv, err := newLoop(t).Run(context.Background(), adapter, start("hi"), 5)

	require.NoError(t, err)
	require.Len(t, conv, 3)
	assert.Equal(t, types.Message{Role: types.RoleAssistant, Content: "Hello!"}, conv[2])
	assert.Equal(t, 1, adapter.sends)
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	rec := &recorder{}
	loop := newLoop(t, registry.FunctionDescriptor{Name: "getISSLocation", Callback: rec.callback("ok")})
	adapter := &scripted{responses: []*models.Response{calling(call("c1", "getISSLocation", "{}")), answer("done")}}
	in := start("where")

	conv, err := loop.Run(context.Background(), adapter, in, 5)

	require.NoError(t, err)
	assert.Len(t, in, 2)
	assert.Equal(t, in, conv[:2])
	assert.Len(t, conv, 5)
}

func TestRun_FunctionNotFound(t *testing.T) {
	rec := &recorder{}
	loop := newLoop(t, registry.FunctionDescriptor{Name: "getISSLocation", Callback: rec.callback("ok")})
	adapter := &scripted{responses: []*models.Response{calling(call("c1", "getMoonPhase", "{}")), answer("sorry")}}

	conv, err := loop.Run(context.Background(), adapter, start("moon?"), 5)

	require.NoError(t, err)
	tools := toolMessages(conv)
	require.Len(t, tools, 1)
	assert.Equal(t, "c1", tools[0].ToolCallID)
	te, ok := codec.DecodeToolError(tools[0].Content)
	require.True(t, ok)
	assert.Equal(t, codec.FunctionNotFound, te.Type)
	assert.Contains(t, te.Message, "getMoonPhase")
	assert.Empty(t, rec.calls)
}

func TestRun_MissingRequiredArgument(t *testing.T) {
	rec := &recorder{}
	loop := newLoop(t, registry.FunctionDescriptor{
		Name:       "getCityByCoordinates",
		Parameters: []validate.Param{{Name: "latitude", Types: []string{"number", "string"}}, {Name: "longitude", Types: []string{"number", "string"}}},
		Required:   []string{"latitude", "longitude"},
		Callback:   rec.callback("ok"),
	})
	adapter := &scripted{responses: []*models.Response{
		calling(call("c1", "getCityByCoordinates", `{"latitude": 1.5}`)),
		answer("need longitude"),
	}}

	conv, err := loop.Run(context.Background(), adapter, start("city?"), 5)

	require.NoError(t, err)
	assert.Empty(t, rec.calls)
	tools := toolMessages(conv)
	require.Len(t, tools, 1)
	te, ok := codec.DecodeToolError(tools[0].Content)
	require.True(t, ok)
	assert.Equal(t, codec.ArgumentValidationFailure, te.Type)
	require.Len(t, te.Violations, 1)
	assert.Equal(t, "longitude", te.Violations[0].Parameter)
}

func TestRun_ParseFailure(t *testing.T) {
	loop := newLoop(t, registry.FunctionDescriptor{Name: "getISSLocation", Callback: (&recorder{}).callback("ok")})
	adapter := &scripted{responses: []*models.Response{calling(call("c1", "getISSLocation", `"{not json"`)), answer("oops")}}

	conv, err := loop.Run(context.Background(), adapter, start("iss"), 5)

	require.NoError(t, err)
	tools := toolMessages(conv)
	require.Len(t, tools, 1)
	assert.Equal(t, "c1", tools[0].ToolCallID)
	te, ok := codec.DecodeToolError(tools[0].Content)
	require.True(t, ok)
	assert.Equal(t, codec.ToolCallParseFailure, te.Type)
}

func TestRun_RemoteCallFailure(t *testing.T) {
	loop := newLoop(t, registry.FunctionDescriptor{
		Name: "getISSLocation",
		Callback: func(context.Context, validate.Arguments) (any, error) {
			return nil, &registry.RemoteCallError{Function: "getISSLocation", Err: errors.New("connection refused")}
		},
	})
	adapter := &scripted{responses: []*models.Response{calling(call("c1", "getISSLocation", "{}")), answer("down")}}

	conv, err := loop.Run(context.Background(), adapter, start("iss"), 5)

	require.NoError(t, err)
	tools := toolMessages(conv)
	require.Len(t, tools, 1)
	te, ok := codec.DecodeToolError(tools[0].Content)
	require.True(t, ok)
	assert.Equal(t, codec.RemoteCallFailure, te.Type)
	assert.Contains(t, te.Message, "connection refused")
	assert.Equal(t, types.RoleAssistant, conv[len(conv)-1].Role)
}

func TestRun_SequentialCallsInRequestOrder(t *testing.T) {
	var order []string
	cb := func(name string) registry.Callback {
		return func(context.Context, validate.Arguments) (any, error) {
			order = append(order, name)
			return map[string]string{"from": name}, nil
		}
	}
	loop := newLoop(t,
		registry.FunctionDescriptor{Name: "a", Callback: cb("a")},
		registry.FunctionDescriptor{Name: "b", Callback: cb("b")},
	)
	adapter := &scripted{responses: []*models.Response{
		calling(call("c2", "b", "{}"), call("c1", "a", "{}")),
		answer("both"),
	}}

	conv, err := loop.Run(context.Background(), adapter, start("go"), 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, order)
	tools := toolMessages(conv)
	require.Len(t, tools, 2)
	assert.Equal(t, "c2", tools[0].ToolCallID)
	assert.Equal(t, `{"from":"b"}`, tools[0].Content)
	assert.Equal(t, "c1", tools[1].ToolCallID)
	// the second send sees both results
	assert.Len(t, adapter.seen[1], 5)
}

func TestRun_BudgetExhaustedIsNotAnError(t *testing.T) {
	loop := newLoop(t, registry.FunctionDescriptor{Name: "getISSLocation", Callback: (&recorder{}).callback("ok")})
	adapter := &scripted{responses: []*models.Response{calling(call("c1", "getISSLocation", "{}"))}}

	conv, err := loop.Run(context.Background(), adapter, start("loop"), 2)

	require.NoError(t, err)
	assert.Equal(t, 2, adapter.sends)
	assert.Len(t, conv, 2+2*2)
	assert.Equal(t, types.RoleTool, conv[len(conv)-1].Role)
}

func TestRun_BackendError(t *testing.T) {
	adapter := &scripted{err: &transport.StatusError{StatusCode: http.StatusBadGateway}}

	conv, err := newLoop(t).Run(context.Background(), adapter, start("hi"), 5)

	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 1, be.Round)
	var se *transport.StatusError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, start("hi"), conv)
}

func TestRun_TextAdapterProcessesFirstCallOnly(t *testing.T) {
	rec := &recorder{}
	loop := newLoop(t,
		registry.FunctionDescriptor{Name: "getISSLocation", Callback: rec.callback(map[string]any{"latitude": "1.0", "longitude": "2.0"})},
		registry.FunctionDescriptor{
			Name:       "getCityByCoordinates",
			Parameters: []validate.Param{{Name: "latitude", Types: []string{"number", "string"}}, {Name: "longitude", Types: []string{"number", "string"}}},
			Required:   []string{"latitude", "longitude"},
			Callback:   rec.callback("Paris"),
		},
	)

	replies := []string{
		"<tool_call>\n{'name': 'getISSLocation', 'arguments': {}}\n</tool_call>\n" +
			"<tool_call>\n{\"name\": \"getCityByCoordinates\", \"arguments\": {\"latitude\": \"LAT\", \"longitude\": \"LONG\"}}\n</tool_call>",
		"<tool_call>\n{\"name\": \"getCityByCoordinates\", \"arguments\": {\"latitude\": \"1.0\", \"longitude\": \"2.0\"}}\n</tool_call>",
		"The ISS is over Paris.",
	}
	var sends atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(sends.Add(1))
		reply := replies[min(n-1, len(replies)-1)]
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{"response": reply, "done": true}))
	}))
	defer ts.Close()
	client := transport.NewHTTPClientWith(ts.Client(), transport.Conf{Timeout: time.Second, Backoff: time.Millisecond})
	adapter := models.NewText(client, loop.reg, models.BackendConf{Endpoint: ts.URL, Model: "mistral:7b-instruct"})

	conv, err := loop.Run(context.Background(), adapter, []types.Message{types.UserMessage("Where is the ISS?")}, 5)

	require.NoError(t, err)
	assert.Equal(t, int32(3), sends.Load())
	require.Len(t, rec.calls, 2)
	assert.Equal(t, 0, rec.calls[0].Len())
	lat, err := rec.calls[1].Float("latitude")
	require.NoError(t, err)
	assert.Equal(t, 1.0, lat)

	tools := toolMessages(conv)
	require.Len(t, tools, 2)
	assert.Equal(t, "getISSLocation", tools[0].Name)
	assert.Equal(t, "Paris", tools[1].Content)
	assert.Equal(t, "The ISS is over Paris.", conv[len(conv)-1].Content)
}

func TestRun_ISSLocationEndToEnd(t *testing.T) {
	services := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/iss-now.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"iss_position":{"latitude":"-12.1","longitude":"44.7"},"message":"success","timestamp":1700000000}`))
	}))
	defer services.Close()

	var sends atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if sends.Add(1) == 1 {
			w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":null,"tool_calls":[
				{"id":"call_iss","type":"function","function":{"name":"getISSLocation","arguments":"{}"}}]},"finish_reason":"tool_calls"}]}`))
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"The ISS is at -12.1, 44.7."},"finish_reason":"stop"}]}`))
	}))
	defer backend.Close()

	client := transport.NewHTTPClientWith(backend.Client(), transport.Conf{Timeout: time.Second, Backoff: time.Millisecond})
	conf := integrations.DefaultConf()
	conf.OpenNotifyURL = services.URL
	var descs []registry.FunctionDescriptor
	for _, d := range integrations.Builtin(client, conf) {
		if d.Name == "getISSLocation" {
			descs = append(descs, d)
		}
	}
	loop := newLoop(t, descs...)
	adapter := models.NewStructured(client, loop.reg, models.BackendConf{Endpoint: backend.URL, Model: "gpt-4-turbo-preview"})

	conv, err := loop.Run(context.Background(), adapter, start("What is the ISS location?"), 5)

	require.NoError(t, err)
	last, ok := types.Last(conv)
	require.True(t, ok)
	assert.Equal(t, types.RoleAssistant, last.Role)
	tools := toolMessages(conv)
	require.Len(t, tools, 1)
	assert.Equal(t, "getISSLocation", tools[0].Name)
	assert.Equal(t, "call_iss", tools[0].ToolCallID)
	assert.Contains(t, tools[0].Content, `"iss_position"`)
}

func TestRun_WeatherWithStringCoordinates(t *testing.T) {
	var query atomic.Value
	services := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.Query().Get("location"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"values":{"temperature":21.5,"weatherCode":1000}}}`))
	}))
	defer services.Close()

	client := transport.NewHTTPClientWith(services.Client(), transport.Conf{Timeout: time.Second, Backoff: time.Millisecond})
	conf := integrations.DefaultConf()
	conf.TomorrowIOURL = services.URL
	loop := newLoop(t, integrations.Builtin(client, conf)...)
	adapter := &scripted{responses: []*models.Response{
		calling(call("c1", "getWeatherByCoordinates", `"{\"latitude\": \"12.3\", \"longitude\": \"-4.5\"}"`)),
		answer("21.5 degrees"),
	}}

	conv, err := loop.Run(context.Background(), adapter, start("weather?"), 5)

	require.NoError(t, err)
	assert.Equal(t, "12.3,-4.5", query.Load())
	tools := toolMessages(conv)
	require.Len(t, tools, 1)
	_, isErr := codec.DecodeToolError(tools[0].Content)
	assert.False(t, isErr)
	assert.Contains(t, tools[0].Content, "weatherCode")
}

func TestRun_ContextCanceledBeforeCalls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	loop := newLoop(t, registry.FunctionDescriptor{Name: "getISSLocation", Callback: rec.callback("ok")})
	adapter := &scripted{responses: []*models.Response{calling(call("c1", "getISSLocation", "{}"))}}
	cancel()

	_, err := loop.Run(ctx, adapter, start("iss"), 5)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.calls)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "AwaitingResponse", AwaitingResponse.String())
	assert.Equal(t, "ProcessingCalls", ProcessingCalls.String())
	assert.Equal(t, "Done", Done.String())
}

func TestRun_PlaceholderCoordinatesAreInvalidArguments(t *testing.T) {
	var hits atomic.Int32
	services := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer services.Close()

	client := transport.NewHTTPClientWith(services.Client(), transport.Conf{Timeout: time.Second, Backoff: time.Millisecond})
	conf := integrations.DefaultConf()
	conf.TomorrowIOURL = services.URL
	loop := newLoop(t, integrations.Builtin(client, conf)...)
	adapter := &scripted{responses: []*models.Response{
		calling(call("c1", "getWeatherByCoordinates", `{"latitude": "<lat>", "longitude": "north"}`)),
		answer("which coordinates?"),
	}}

	conv, err := loop.Run(context.Background(), adapter, start("weather?"), 5)

	require.NoError(t, err)
	assert.Zero(t, hits.Load())
	tools := toolMessages(conv)
	require.Len(t, tools, 1)
	te, ok := codec.DecodeToolError(tools[0].Content)
	require.True(t, ok)
	assert.Equal(t, codec.ArgumentValidationFailure, te.Type)
	require.Len(t, te.Violations, 2)
	assert.Equal(t, "latitude", te.Violations[0].Parameter)
	assert.Equal(t, "longitude", te.Violations[1].Parameter)
}

func TestRun_UnconvertibleArgumentInCallback(t *testing.T) {
	loop := newLoop(t, registry.FunctionDescriptor{
		Name:       "square",
		Parameters: []validate.Param{{Name: "n", Types: []string{"number", "string"}}},
		Required:   []string{"n"},
		Callback: func(_ context.Context, args validate.Arguments) (any, error) {
			n, err := args.Float("n")
			if err != nil {
				return nil, err
			}
			return n * n, nil
		},
	})
	adapter := &scripted{responses: []*models.Response{calling(call("c1", "square", `{"n": "N"}`)), answer("?")}}

	conv, err := loop.Run(context.Background(), adapter, start("square"), 5)

	require.NoError(t, err)
	tools := toolMessages(conv)
	require.Len(t, tools, 1)
	te, ok := codec.DecodeToolError(tools[0].Content)
	require.True(t, ok)
	assert.Equal(t, codec.ArgumentValidationFailure, te.Type)
	assert.Equal(t, []validate.Violation{{Parameter: "n", Reason: "is not a number: N"}}, te.Violations)
}
