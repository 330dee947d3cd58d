package validate

// JSON Schema primitive type names accepted in Param.Types.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// NumericPattern restricts the string branch of a number|string parameter
// to decimal numbers.
const NumericPattern = `^-?[0-9]+(\.[0-9]+)?$`

// Param declares one named parameter. Types is a type set: a value is
// accepted when it matches any of them. An empty set accepts any non-null
// value. Pattern, when set, applies to string values only.
type Param struct {
	Name        string
	Types       []string
	Pattern     string
	Description string
}

// Schema is the parameter schema of a function: parameters in declaration
// order plus the names that must be present.
type Schema struct {
	Params   []Param
	Required []string
}

// JSONSchema renders s as an object JSON Schema, the shape both backends and
// gojsonschema understand.
func (s Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Params))
	for _, p := range s.Params {
		prop := map[string]any{}
		switch len(p.Types) {
		case 0:
			prop["not"] = map[string]any{"type": "null"}
		case 1:
			prop["type"] = p.Types[0]
		default:
			types := make([]any, len(p.Types))
			for i, t := range p.Types {
				types[i] = t
			}
			prop["type"] = types
		}
		if p.Pattern != "" {
			prop["pattern"] = p.Pattern
		}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props[p.Name] = prop
	}
	schema := map[string]any{
		"type":       TypeObject,
		"properties": props,
	}
	if len(s.Required) > 0 {
		required := make([]any, len(s.Required))
		for i, r := range s.Required {
			required[i] = r
		}
		schema["required"] = required
	}
	return schema
}

func (s Schema) names() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}
