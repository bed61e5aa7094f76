package tools

import "encoding/json"

// NormalizePayload collapses the remote session's duck-typed tool
// parameters into one canonical map shape before any handler runs:
// absent input becomes an empty map, a string is parsed as JSON (empty
// map on parse failure, never an error), a map passes through, and any
// other type becomes an empty map.
func NormalizePayload(raw interface{}) map[string]interface{} {
	switch v := raw.(type) {
	case nil:
		return map[string]interface{}{}
	case string:
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(v), &parsed); err != nil || parsed == nil {
			return map[string]interface{}{}
		}
		return parsed
	case map[string]interface{}:
		return v
	default:
		return map[string]interface{}{}
	}
}

func getStringArg(args map[string]interface{}, key string) string {
	val, ok := args[key]
	if !ok {
		return ""
	}
	s, ok := val.(string)
	if !ok {
		return ""
	}
	return s
}
