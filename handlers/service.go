package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/fncall/logger"
	"github.com/fncall/models"
	"github.com/fncall/orchestrator"
	"github.com/fncall/types"

	"github.com/google/uuid"
)

// Service answers call requests for every front-end: it selects the adapter
// for the requested model, seeds the conversation and runs the loop.
type Service struct {
	selector *models.Selector
	loop     *orchestrator.Loop
	log      *logger.Logger
}

func NewService(selector *models.Selector, loop *orchestrator.Loop) *Service {
	return &Service{
		selector: selector,
		loop:     loop,
		log:      logger.NewLogger("Service", uuid.NewString()),
	}
}

// Call returns the response body together with the HTTP status matching it.
func (s *Service) Call(ctx context.Context, req *types.CallRequest) (int, types.CallResponse) {
	adapter, err := s.selector.Select(req.Model)
	if err != nil {
		return http.StatusBadRequest, types.CallResponse{Error: err.Error(), Messages: []types.Message{}}
	}

	budget := req.Budget
	if budget == 0 {
		budget = s.loop.Budget()
	}
	conv := []types.Message{
		types.SystemMessage(adapter.SystemPrompt()),
		types.UserMessage(req.Prompt),
	}

	s.log.Info("function call", "model", req.Model, "adapter", adapter.Name(), "budget", budget)
	conv, err = s.loop.Run(ctx, adapter, conv, budget)
	if err != nil {
		var be *orchestrator.BackendError
		if errors.As(err, &be) {
			return http.StatusBadGateway, types.CallResponse{Error: err.Error(), Messages: conv}
		}
		s.log.Error("loop aborted", "error", err)
		return http.StatusInternalServerError, types.CallResponse{Error: err.Error(), Messages: conv}
	}
	return http.StatusOK, types.CallResponse{Messages: conv}
}
