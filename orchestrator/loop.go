package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/fncall/codec"
	"github.com/fncall/logger"
	"github.com/fncall/models"
	"github.com/fncall/registry"
	"github.com/fncall/toolcall"
	"github.com/fncall/types"
	"github.com/fncall/validate"

	"github.com/google/uuid"
)

const DefaultBudget = 5

// Loop drives a conversation between a model backend and the registered
// functions until the model answers without calls or the budget runs out.
type Loop struct {
	reg    *registry.Registry
	budget int
	log    *logger.Logger
}

// New returns a Loop over reg. A budget <= 0 selects DefaultBudget.
func New(reg *registry.Registry, budget int) *Loop {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Loop{
		reg:    reg,
		budget: budget,
		log:    logger.NewLogger("Loop", uuid.NewString()),
	}
}

func (l *Loop) Budget() int { return l.budget }

// WithLogger replaces the loop's logger.
func (l *Loop) WithLogger(log *logger.Logger) *Loop {
	l.log = log
	return l
}

// Run sends conv to the adapter and executes the requested calls, at most
// budget rounds. The returned conversation always starts with conv. A
// *BackendError is returned together with the conversation built so far.
func (l *Loop) Run(ctx context.Context, adapter models.Adapter, conv []types.Message, budget int) ([]types.Message, error) {
	if budget <= 0 {
		return conv, nil
	}

	out := slices.Clone(conv)
	log := l.log.With("adapter", adapter.Name())
	state := AwaitingResponse

	for round := 1; budget > 0; round++ {
		log.Debug("round", "n", round, "state", state, "messages", len(out))

		resp, err := adapter.Send(ctx, out)
		if err != nil {
			log.Error("backend failed", "round", round, "error", err)
			return out, &BackendError{Adapter: adapter.Name(), Round: round, Err: err}
		}
		out = append(out, adapter.AssistantMessage(resp))

		if adapter.IsFinal(resp) {
			log.Info("final answer", "rounds", round, "state", Done)
			return out, nil
		}

		state = ProcessingCalls
		for _, p := range adapter.ToolCalls(resp) {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			out = append(out, l.execute(ctx, p, log))
		}

		budget--
		state = AwaitingResponse
	}

	log.Warn("call budget exhausted", "messages", len(out))
	return out, nil
}

// execute runs one parsed call and returns the tool-role message answering it.
// Every failure becomes a synthetic error message.
func (l *Loop) execute(ctx context.Context, p toolcall.Parsed, log *logger.Logger) types.Message {
	if p.Err != nil {
		var pe *toolcall.ParseError
		id, name := "", ""
		if errors.As(p.Err, &pe) {
			id, name = pe.CorrelationID, pe.Name
		}
		log.Warn("unparseable tool call", "id", id, "error", p.Err)
		return synthetic(id, name, codec.NewToolError(codec.ToolCallParseFailure, p.Err.Error()))
	}

	req := p.Request
	desc, err := l.reg.Get(req.Name)
	if err != nil {
		log.Warn("unknown function", "function", req.Name, "id", req.CorrelationID)
		return synthetic(req.CorrelationID, req.Name, codec.NewToolError(codec.FunctionNotFound, err.Error()))
	}

	outcome := desc.Validate(req.Arguments)
	if !outcome.Valid() {
		log.Warn("invalid arguments", "function", req.Name, "violations", outcome.Violations)
		te := codec.NewToolError(codec.ArgumentValidationFailure, fmt.Sprintf("Invalid arguments for %s", req.Name))
		te.Violations = outcome.Violations
		return synthetic(req.CorrelationID, req.Name, te)
	}

	log.Info("calling function", "function", req.Name, "id", req.CorrelationID, "arguments", outcome.Args)
	result, err := desc.Callback(ctx, outcome.Args)
	var ae *validate.ArgumentError
	if errors.As(err, &ae) {
		log.Warn("unusable argument", "function", req.Name, "error", err)
		te := codec.NewToolError(codec.ArgumentValidationFailure, fmt.Sprintf("Invalid arguments for %s", req.Name))
		te.Violations = []validate.Violation{ae.Violation()}
		return synthetic(req.CorrelationID, req.Name, te)
	}
	if err != nil {
		log.Error("function failed", "function", req.Name, "error", err)
		return synthetic(req.CorrelationID, req.Name, codec.NewToolError(codec.RemoteCallFailure, err.Error()))
	}

	content, err := codec.EncodeResult(result)
	if err != nil {
		log.Error("unserializable result", "function", req.Name, "error", err)
		return synthetic(req.CorrelationID, req.Name, codec.NewToolError(codec.RemoteCallFailure, err.Error()))
	}
	return types.ToolResultMessage(req.CorrelationID, req.Name, content)
}

func synthetic(id, name string, te codec.ToolError) types.Message {
	return types.ToolResultMessage(id, name, te.Encode())
}
