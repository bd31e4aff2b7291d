package layout

import (
	"context"
	"fmt"

	"github.com/wayfind-cms/wayfind/pkg/cacheability"
	"github.com/wayfind-cms/wayfind/pkg/content"
)

// AccessFunc evaluates an operation on an entity for the current request.
// content.Store.Access satisfies it.
type AccessFunc func(ctx context.Context, e *content.Entity, op string) bool

// resolveInline produces the inline_block payload for a component
// configuration. It never fails: every unresolvable reference degrades to a
// null sub-field so a single bad placement cannot break the tree.
//
// Successfully loaded block revisions are registered as cache dependencies
// in meta; their invalidation is part of the response's cache contract.
func resolveInline(ctx context.Context, config map[string]any, blocks content.BlockStore, access AccessFunc, meta *cacheability.Metadata) *InlineBlock {
	out := &InlineBlock{}

	if vm, ok := config["view_mode"].(string); ok && vm != "" {
		out.ViewMode = &vm
	}

	revisionID, ok := parseRevisionID(config["block_revision_id"])
	if !ok {
		return out
	}
	out.BlockRevisionID = &revisionID

	if blocks == nil || !blocks.Available() {
		return out
	}

	block, err := blocks.LoadRevision(ctx, revisionID)
	if err != nil || block == nil {
		return out
	}

	// The slot stays visible when access is denied; its content does not.
	if access != nil && !access(ctx, block, "view") {
		return out
	}

	meta.AddDependency(block)

	if block.Bundle == "" {
		return out
	}

	out.Block = &BlockRef{
		Type:       block.EntityType + "--" + block.Bundle,
		ID:         block.UUID,
		JSONAPIURL: fmt.Sprintf("/jsonapi/%s/%s/%s", block.EntityType, block.Bundle, block.UUID),
	}
	return out
}

// parseRevisionID coerces a raw configuration value into a revision
// identifier. Accepted shapes: a native integer (any Go integer width a
// decoded configuration may carry), or a string composed entirely of decimal
// digits. Floats, booleans, negative numbers, and anything else are
// rejected; rejection is not an error condition.
func parseRevisionID(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		if v < 0 {
			return 0, false
		}
		return v, true
	case int8:
		if v < 0 {
			return 0, false
		}
		return int(v), true
	case int16:
		if v < 0 {
			return 0, false
		}
		return int(v), true
	case int32:
		if v < 0 {
			return 0, false
		}
		return int(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	case string:
		if v == "" {
			return 0, false
		}
		n := 0
		for _, r := range v {
			if r < '0' || r > '9' {
				return 0, false
			}
			n = n*10 + int(r-'0')
		}
		return n, true
	default:
		return 0, false
	}
}
