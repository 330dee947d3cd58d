package validate

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// ArgumentError reports an argument that passed the schema but cannot be
// converted to the type a callback asked for.
type ArgumentError struct {
	Parameter string
	Reason    string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %q %s", e.Parameter, e.Reason)
}

// Violation converts e for an ArgumentValidationFailure payload.
func (e *ArgumentError) Violation() Violation {
	return Violation{Parameter: e.Parameter, Reason: e.Reason}
}

// Arguments is a validated, keyed argument set. Names iterates in the
// parameter declaration order of the schema it was checked against.
type Arguments struct {
	names  []string
	values map[string]any
}

func newArguments(order []string, raw map[string]any) Arguments {
	a := Arguments{values: make(map[string]any, len(raw))}
	for _, name := range order {
		if val, ok := raw[name]; ok {
			a.names = append(a.names, name)
			a.values[name] = val
		}
	}
	return a
}

// NewArguments builds Arguments without validation, for callers and tests
// that invoke a callback directly.
func NewArguments(values map[string]any, order ...string) Arguments {
	return newArguments(order, values)
}

func (a Arguments) Names() []string { return a.names }

func (a Arguments) Len() int { return len(a.names) }

func (a Arguments) Get(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Float returns the named argument as a float64, accepting numbers that the
// model sent as quoted strings.
func (a Arguments) Float(name string) (float64, error) {
	v, ok := a.values[name]
	if !ok {
		return 0, &ArgumentError{Parameter: name, Reason: "is missing"}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, &ArgumentError{Parameter: name, Reason: fmt.Sprintf("is not a number: %v", v)}
	}
	return f, nil
}

func (a Arguments) String(name string) (string, error) {
	v, ok := a.values[name]
	if !ok {
		return "", &ArgumentError{Parameter: name, Reason: "is missing"}
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", &ArgumentError{Parameter: name, Reason: fmt.Sprintf("is not a string: %v", v)}
	}
	return s, nil
}

func (a Arguments) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.values)
}
