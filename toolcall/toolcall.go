package toolcall

import (
	"encoding/json"
	"fmt"
)

// Request is one call extracted from a model response. Name may refer to a
// function that is not registered.
type Request struct {
	Name          string         `json:"name"`
	Arguments     map[string]any `json:"arguments"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	// Raw is the argument payload exactly as the backend sent it.
	Raw string `json:"-"`
}

// Parsed is the result of extracting one call: a Request, or a *ParseError
// when the payload could not be decoded.
type Parsed struct {
	Request Request
	Err     error
}

// ParseError reports a call payload that could not be decoded.
type ParseError struct {
	CorrelationID string
	Name          string
	Payload       string
	Err           error
}

func (e *ParseError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("failed to parse tool call %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("failed to parse tool call: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// decodeArguments accepts an object, a string holding an object, null or
// nothing at all.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]any{}, nil
	}
	if raw[0] == '"' {
		var embedded string
		if err := json.Unmarshal(raw, &embedded); err != nil {
			return nil, err
		}
		if embedded == "" {
			return map[string]any{}, nil
		}
		raw = json.RawMessage(embedded)
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
