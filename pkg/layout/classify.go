package layout

import "strings"

// Plugin identifier prefixes the classifier understands. Everything else
// falls through to the generic block kind.
const (
	prefixFieldBlock      = "field_block:"
	prefixExtraFieldBlock = "extra_field_block:"
	prefixInlineBlock     = "inline_block"
)

// classifyKind maps a raw plugin identifier to a component kind.
// The second return value is false for the drop signal: placements without
// an identifier are not emitted at all.
func classifyKind(pluginID string) (string, bool) {
	switch {
	case pluginID == "":
		return "", false
	case strings.HasPrefix(pluginID, prefixFieldBlock),
		strings.HasPrefix(pluginID, prefixExtraFieldBlock):
		return KindField, true
	case strings.HasPrefix(pluginID, prefixInlineBlock):
		// Bare "inline_block" and "inline_block:<derivative>" both match.
		return KindInlineBlock, true
	default:
		return KindBlock, true
	}
}

// parseFieldRef extracts the field reference from a field-block identifier.
// A valid reference has exactly 4 colon-delimited segments with the final
// three all non-empty; anything else yields nil while the component is still
// emitted as a field.
func parseFieldRef(pluginID string) *FieldRef {
	parts := strings.SplitN(pluginID, ":", 4)
	if len(parts) != 4 {
		return nil
	}
	if parts[1] == "" || parts[2] == "" || parts[3] == "" {
		return nil
	}
	return &FieldRef{
		EntityTypeID: parts[1],
		Bundle:       parts[2],
		FieldName:    parts[3],
	}
}

// extractSettings projects the allow-listed keys out of the raw component
// configuration. Absent keys are omitted, not defaulted: arbitrary backend
// configuration must never leak to the public API.
func extractSettings(config map[string]any) map[string]any {
	settings := make(map[string]any)
	for _, key := range settingsAllowList {
		if v, ok := config[key]; ok {
			settings[key] = v
		}
	}
	return settings
}
