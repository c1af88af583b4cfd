package oracle

import "fmt"

// schemaFor maps a typed result pointer onto the JSON response schema sent to
// the model. Keeping the mapping explicit (rather than reflective) makes the
// wire contract reviewable in one place.
func schemaFor(out any) (map[string]any, error) {
	switch out.(type) {
	case *Resolution:
		return objectSchema(map[string]any{
			"resolved_query": stringProp,
		}, "resolved_query"), nil
	case *Relevance:
		return objectSchema(map[string]any{
			"is_domain_relevant": boolProp,
			"rejection_reason":   stringProp,
		}, "is_domain_relevant"), nil
	case *Routing:
		return objectSchema(map[string]any{
			"lookup_key":      stringProp,
			"needs_lookup":    boolProp,
			"is_key_valid":    boolProp,
			"validation_hint": stringProp,
		}, "lookup_key", "needs_lookup", "is_key_valid"), nil
	case *Synthesis:
		return objectSchema(map[string]any{
			"final_text":           stringProp,
			"selected_record_id":   stringProp,
			"attach_diagram":       boolProp,
			"attach_pronunciation": boolProp,
		}, "final_text"), nil
	default:
		return nil, fmt.Errorf("unsupported oracle result type %T", out)
	}
}

var (
	stringProp = map[string]any{"type": "string"}
	boolProp   = map[string]any{"type": "boolean"}
)

func objectSchema(props map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}
