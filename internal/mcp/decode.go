package mcp

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/yada/internal/errors"
)

// decode unmarshals tool arguments into a typed request struct. Malformed
// arguments become INVALID_REQUEST errors naming the offending field.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, errors.NewInvalidRequest(fmt.Sprintf("malformed arguments: %v", err))
	}
	if err := json.Unmarshal(b, &result); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) && typeErr.Field != "" {
			return result, errors.NewInvalidRequest(fmt.Sprintf("%s must be a %s, got %s", typeErr.Field, jsonKind(typeErr.Type.Kind().String()), typeErr.Value))
		}
		return result, errors.NewInvalidRequest(fmt.Sprintf("malformed arguments: %v", err))
	}
	return result, nil
}

// jsonKind names a Go kind the way a JSON client would.
func jsonKind(kind string) string {
	switch kind {
	case "float64", "float32", "int", "int64", "int32":
		return "number"
	case "bool":
		return "boolean"
	case "slice", "array":
		return "array"
	case "ptr":
		return "value"
	}
	return kind
}
