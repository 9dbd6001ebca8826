package openapi

// Schema helpers keep the per-domain documentation terse.

func Ref(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

func ArrayOf(items map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "array", "items": items}
}

func String() map[string]interface{} {
	return map[string]interface{}{"type": "string"}
}

// StringFormat is a string with an OpenAPI format such as "email" or "date".
func StringFormat(format string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "format": format}
}

func MinLength(n int) map[string]interface{} {
	return map[string]interface{}{"type": "string", "minLength": n}
}

func Enum(values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "enum": values}
}

func Integer() map[string]interface{} {
	return map[string]interface{}{"type": "integer", "format": "int64"}
}

func MinInteger(min int) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "minimum": min}
}

// Object builds an object schema. required may be nil.
func Object(required []string, props map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{"type": "object", "properties": props}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func errorSchema() map[string]interface{} {
	return Object([]string{"error", "message"}, map[string]interface{}{
		"error":   String(),
		"message": String(),
		"fields": map[string]interface{}{
			"type":                 "object",
			"additionalProperties": String(),
		},
	})
}
