package codec

import (
	"encoding/json"

	"github.com/fncall/validate"
)

// ErrorType classifies a failure reported back to the model.
type ErrorType string

const (
	FunctionNotFound          ErrorType = "FunctionNotFound"
	ArgumentValidationFailure ErrorType = "ArgumentValidationFailure"
	ToolCallParseFailure      ErrorType = "ToolCallParseFailure"
	RemoteCallFailure         ErrorType = "RemoteCallFailure"
)

var errorMessages = map[ErrorType]string{
	FunctionNotFound:          "Function not found",
	ArgumentValidationFailure: "Invalid arguments",
	ToolCallParseFailure:      "Could not parse the tool call",
	RemoteCallFailure:         "The function call failed",
}

// ToolError is the payload of a synthetic message telling the model what
// went wrong with one of its calls.
type ToolError struct {
	Type       ErrorType            `json:"type"`
	Message    string               `json:"message"`
	Violations []validate.Violation `json:"violations,omitempty"`
}

type toolErrorEnvelope struct {
	Error ToolError `json:"error"`
}

func NewToolError(typ ErrorType, message string) ToolError {
	if message == "" {
		message = errorMessages[typ]
	}
	return ToolError{Type: typ, Message: message}
}

// Encode renders the error as {"error": {...}}.
func (e ToolError) Encode() string {
	data, err := json.Marshal(toolErrorEnvelope{Error: e})
	if err != nil {
		return `{"error":{"type":"` + string(e.Type) + `"}}`
	}
	return string(data)
}

// DecodeToolError reports whether content is an encoded ToolError.
func DecodeToolError(content string) (ToolError, bool) {
	var env toolErrorEnvelope
	if err := json.Unmarshal([]byte(content), &env); err != nil || env.Error.Type == "" {
		return ToolError{}, false
	}
	return env.Error, true
}

// EncodeResult serializes a callback result for a tool-role message.
// Strings are passed through unchanged.
func EncodeResult(result any) (string, error) {
	if s, ok := result.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
