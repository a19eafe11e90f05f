package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// NewTool builds a tool whose arguments decode into T. The parameter
// schema is reflected from T's json and jsonschema struct tags.
func NewTool[C, T any](name, description string, fn func(ctx context.Context, state *C, args T) (string, error)) FunctionTool[C] {
	return FunctionTool[C]{
		Name:        name,
		Description: description,
		Parameters:  ReflectParameters[T](),
		Fn: func(ctx context.Context, state *C, raw json.RawMessage) (string, error) {
			var args T
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &args); err != nil {
					return "", fmt.Errorf("decode %s arguments: %w", name, err)
				}
			}
			return fn(ctx, state, args)
		},
	}
}

// ReflectParameters returns the JSON schema of an arguments struct as an
// object schema map.
func ReflectParameters[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var args T
	reflected := reflector.Reflect(args)
	params := emptyParameters()
	if reflected.Properties != nil && reflected.Properties.Len() > 0 {
		data, err := json.Marshal(reflected.Properties)
		if err == nil {
			var props map[string]any
			if json.Unmarshal(data, &props) == nil {
				params["properties"] = props
			}
		}
	}
	if len(reflected.Required) > 0 {
		params["required"] = reflected.Required
	}
	return params
}
