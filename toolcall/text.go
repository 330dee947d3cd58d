package toolcall

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	OpenTag  = "<tool_call>"
	CloseTag = "</tool_call>"
)

var delimited = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(OpenTag) + `(.*?)` + regexp.QuoteMeta(CloseTag))

// textPayload is the JSON shape the text protocol asks for. Some models
// answer with "parameters" or "properties" instead of "arguments".
type textPayload struct {
	Name       string          `json:"name"`
	Arguments  json.RawMessage `json:"arguments"`
	Parameters json.RawMessage `json:"parameters"`
	Properties json.RawMessage `json:"properties"`
}

func (p textPayload) args() json.RawMessage {
	switch {
	case len(p.Arguments) > 0:
		return p.Arguments
	case len(p.Parameters) > 0:
		return p.Parameters
	default:
		return p.Properties
	}
}

// HasCall reports whether text contains at least one delimited call.
func HasCall(text string) bool {
	return delimited.MatchString(text)
}

// ParseText extracts every delimited call payload from text, in order. Each
// successfully decoded call gets a fresh correlation id.
func ParseText(text string) []Parsed {
	matches := delimited.FindAllStringSubmatch(text, -1)
	out := make([]Parsed, 0, len(matches))
	for _, m := range matches {
		id := "call_" + uuid.NewString()
		payload, err := decodePayload(m[1])
		if err != nil {
			out = append(out, Parsed{Err: &ParseError{CorrelationID: id, Payload: m[1], Err: err}})
			continue
		}
		args, err := decodeArguments(payload.args())
		if err != nil {
			out = append(out, Parsed{Err: &ParseError{CorrelationID: id, Name: payload.Name, Payload: m[1], Err: err}})
			continue
		}
		out = append(out, Parsed{Request: Request{
			Name:          payload.Name,
			Arguments:     args,
			CorrelationID: id,
			Raw:           string(payload.args()),
		}})
	}
	return out
}

// decodePayload decodes strictly first and falls back to Repair.
func decodePayload(s string) (textPayload, error) {
	var p textPayload
	err := json.Unmarshal([]byte(strings.TrimSpace(s)), &p)
	if err != nil {
		if rerr := json.Unmarshal([]byte(Repair(s)), &p); rerr != nil {
			return textPayload{}, rerr
		}
	}
	if p.Name == "" {
		return textPayload{}, errors.New(`payload has no "name"`)
	}
	return p, nil
}

// Repair fixes the formatting defects text models commonly produce: single
// quoted keys and strings, and stray newlines around or inside the payload.
func Repair(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, "'", `"`)
}
