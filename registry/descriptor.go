package registry

import (
	"context"

	"github.com/fncall/types"
	"github.com/fncall/validate"
)

// Callback executes a function with validated arguments and returns a
// JSON-serializable result.
type Callback func(ctx context.Context, args validate.Arguments) (any, error)

// FunctionDescriptor declares one callable function.
type FunctionDescriptor struct {
	Name        string
	Description string
	Parameters  []validate.Param
	Required    []string
	Callback    Callback

	validator *validate.Validator
}

func (d *FunctionDescriptor) Schema() validate.Schema {
	return validate.Schema{Params: d.Parameters, Required: d.Required}
}

// Validate checks raw arguments with the validator compiled when the
// registry was built.
func (d *FunctionDescriptor) Validate(args map[string]any) validate.Outcome {
	return d.validator.Check(args)
}

func (d *FunctionDescriptor) Definition() types.ToolDefinition {
	return types.ToolDefinition{
		Name:        d.Name,
		Description: d.Description,
		Parameters:  d.Schema().JSONSchema(),
	}
}
