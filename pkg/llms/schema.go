package llms

import (
	"encoding/json"
	"strings"

	"github.com/invopop/jsonschema"
)

// SchemaFor reflects a JSON schema from the destination struct. The
// result is inlined (no $ref/$defs) so it can be pasted into a prompt or
// a provider's response_format field verbatim.
func SchemaFor(v interface{}) map[string]interface{} {
	reflector := &jsonschema.Reflector{
		DoNotReference:            true,
		Anonymous:                 true,
		AllowAdditionalProperties: false,
	}

	schema := reflector.Reflect(v)

	data, err := json.Marshal(schema)
	if err != nil {
		return map[string]interface{}{"type": "object"}
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]interface{}{"type": "object"}
	}

	delete(m, "$schema")
	delete(m, "$id")
	return m
}

// ExtractJSON pulls the JSON document out of model response text that
// may be wrapped in markdown fences or surrounded by prose.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return text
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	var end int
	if text[start] == '{' {
		end = strings.LastIndex(text, "}")
	} else {
		end = strings.LastIndex(text, "]")
	}
	if end <= start {
		return text
	}
	return text[start : end+1]
}
