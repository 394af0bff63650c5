package relay

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
)

// SchemaFor derives the JSON schema for a tool's args struct. Fields use
// standard json tags plus jsonschema tags for descriptions; fields without
// omitempty are required. The schema is fully inlined (no $ref) so it can be
// sent to providers verbatim.
//
// Reflection of a static type cannot fail at runtime, so SchemaFor panics on
// marshal errors instead of returning one.
func SchemaFor[T any]() json.RawMessage {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(&v)
	schema.Version = ""
	b, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("relay: reflect schema for %T: %v", v, err))
	}
	return b
}

var argsValidator = validator.New(validator.WithRequiredStructEnabled())

// UnmarshalArgs decodes raw tool arguments into a typed args struct and
// applies its validate tags. Handlers call it after Tool.Invoke's structural
// check; the error is suitable for an IsError tool result.
func UnmarshalArgs[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &v); err != nil {
			return v, fmt.Errorf("decode arguments: %w", err)
		}
	}
	if err := argsValidator.Struct(&v); err != nil {
		return v, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	return v, nil
}
