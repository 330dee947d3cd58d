package toolcall

import (
	"encoding/json"
	"fmt"
)

// WireCall is a call object as returned by a structured (OpenAI-compatible)
// backend.
type WireCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function WireFunction `json:"function"`
}

type WireFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ParseStructured trusts the backend's delimiting of calls and only decodes
// each embedded argument payload.
func ParseStructured(calls []WireCall) []Parsed {
	out := make([]Parsed, 0, len(calls))
	for _, c := range calls {
		raw := rawArguments(c.Function.Arguments)
		args, err := decodeArguments(c.Function.Arguments)
		if err != nil {
			out = append(out, Parsed{Err: &ParseError{
				CorrelationID: c.ID,
				Name:          c.Function.Name,
				Payload:       raw,
				Err:           err,
			}})
			continue
		}
		if c.Function.Name == "" {
			out = append(out, Parsed{Err: &ParseError{
				CorrelationID: c.ID,
				Payload:       raw,
				Err:           fmt.Errorf("missing function name"),
			}})
			continue
		}
		out = append(out, Parsed{Request: Request{
			Name:          c.Function.Name,
			Arguments:     args,
			CorrelationID: c.ID,
			Raw:           raw,
		}})
	}
	return out
}

// rawArguments returns the payload as text, unwrapping a JSON string.
func rawArguments(raw json.RawMessage) string {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
