package validate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Violation is one machine-readable validation failure. It is serialized
// back into the conversation so the model can correct itself.
type Violation struct {
	Parameter string `json:"parameter"`
	Reason    string `json:"reason"`
}

// Outcome of Validator.Check: either Valid with the accepted Arguments, or
// Invalid with at least one Violation.
type Outcome struct {
	Args       Arguments
	Violations []Violation
}

func (o Outcome) Valid() bool { return len(o.Violations) == 0 }

// Validator checks argument objects against one compiled schema. It is
// immutable and safe for concurrent use.
type Validator struct {
	schema   *gojsonschema.Schema
	order    []string
	required []string
}

// Compile builds a Validator for s. Schemas are compiled once at startup and
// reused for every call.
func Compile(s Schema) (*Validator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(s.JSONSchema()))
	if err != nil {
		return nil, fmt.Errorf("invalid parameter schema: %w", err)
	}
	return &Validator{
		schema:   compiled,
		order:    s.names(),
		required: slices.Clone(s.Required),
	}, nil
}

func (v *Validator) Check(args map[string]any) Outcome {
	if args == nil {
		args = map[string]any{}
	}

	var violations []Violation
	for _, name := range v.required {
		if val, ok := args[name]; ok && val == nil {
			violations = append(violations, Violation{Parameter: name, Reason: name + " must not be null"})
		}
	}

	result, err := v.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		violations = append(violations, Violation{Parameter: "(root)", Reason: err.Error()})
	} else if !result.Valid() {
		for _, desc := range result.Errors() {
			violations = appendUnique(violations, violationFor(desc))
		}
	}

	if len(violations) > 0 {
		slices.SortStableFunc(violations, func(a, b Violation) int {
			return strings.Compare(a.Parameter, b.Parameter)
		})
		return Outcome{Violations: violations}
	}
	return Outcome{Args: newArguments(v.order, args)}
}

func violationFor(desc gojsonschema.ResultError) Violation {
	param := desc.Field()
	if desc.Type() == "required" {
		if p, ok := desc.Details()["property"].(string); ok {
			param = p
		}
	}
	return Violation{Parameter: param, Reason: desc.Description()}
}

// appendUnique drops a schema error for a parameter already reported as null.
func appendUnique(vs []Violation, v Violation) []Violation {
	for _, existing := range vs {
		if existing.Parameter == v.Parameter {
			return vs
		}
	}
	return append(vs, v)
}
