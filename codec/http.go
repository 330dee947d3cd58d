package codec

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/fncall/types"
)

// DecodeCallRequest reads a {model, prompt} body.
func DecodeCallRequest(r io.Reader) (*types.CallRequest, error) {
	var req types.CallRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, errors.New("missing model")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("missing prompt")
	}
	if req.Budget < 0 {
		return nil, errors.New("budget must not be negative")
	}
	return &req, nil
}

func WriteMessages(w http.ResponseWriter, messages []types.Message) error {
	return writeJSON(w, http.StatusOK, types.CallResponse{Messages: nonNil(messages)})
}

// WriteError writes an error payload. messages may carry the partial
// conversation reached before the failure.
func WriteError(w http.ResponseWriter, code int, message string, messages []types.Message) error {
	if message == "" {
		message = http.StatusText(code)
	}
	return writeJSON(w, code, types.CallResponse{Error: message, Messages: nonNil(messages)})
}

func writeJSON(w http.ResponseWriter, code int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(body)
}

func nonNil(messages []types.Message) []types.Message {
	if messages == nil {
		return []types.Message{}
	}
	return messages
}
