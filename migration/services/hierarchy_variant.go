package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/parishsource/shepherd/migration/domain"
)

// Variant classifies a hierarchy node. Serving nodes live in a parallel
// tree rooted at the serving archive node, mirroring the plain tree.
type Variant int

const (
	VariantPlain Variant = iota
	// VariantServingDirect: the node's own name carries the serving marker.
	VariantServingDirect
	// VariantServingCascade: an ancestor carries the marker; the node is
	// serving by inheritance even though its own name is unmarked.
	VariantServingCascade
)

const (
	servingMarker   = "SERV:"
	deletedSentinel = "delete"

	servingDirectPrefix  = "SERV_"
	servingCascadePrefix = "SERVT_"
)

// HasServingMarker reports whether a raw source name starts with the
// serving marker token, ignoring case and interior spaces ("serv :" and
// "SERV:" both count).
func HasServingMarker(name string) bool {
	collapsed := strings.ToUpper(strings.ReplaceAll(name, " ", ""))
	return strings.HasPrefix(collapsed, servingMarker)
}

// StripServingMarker removes the marker token from a raw name, leaving
// the display name. Names without the marker pass through unchanged.
func StripServingMarker(name string) string {
	if !HasServingMarker(name) {
		return strings.TrimSpace(name)
	}
	trimmed := strings.TrimSpace(name)
	// Marker may contain interior spaces; cut everything through the colon.
	if i := strings.Index(trimmed, ":"); i >= 0 {
		return strings.TrimSpace(trimmed[i+1:])
	}
	return trimmed
}

// IsDeletedSentinel reports whether the display name is the reserved
// deletion marker. Such rows produce no node at all.
func IsDeletedSentinel(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), deletedSentinel)
}

// ClassifyVariant decides a node's variant from its own raw name and the
// variant of its resolved ancestor. Cascade wins over direct: once an
// ancestor is serving, every descendant is serving regardless of its own
// name.
func ClassifyVariant(name string, ancestor Variant) Variant {
	if ancestor != VariantPlain {
		return VariantServingCascade
	}
	if HasServingMarker(name) {
		return VariantServingDirect
	}
	return VariantPlain
}

// VariantKey derives the foreign key for a node variant from the plain
// base key.
func VariantKey(v Variant, base string) string {
	switch v {
	case VariantServingDirect:
		return servingDirectPrefix + base
	case VariantServingCascade:
		return servingCascadePrefix + base
	}
	return base
}

// MissingAncestors computes the serving-variant clones needed before a
// serving node can attach under the given plain ancestor chain. chain is
// ordered root-most first. lookup resolves a foreign key against what
// already exists (reference set plus anything staged this run); the
// function itself performs no writes, so it is testable in isolation.
//
// For each chain level the cascading variant is preferred, then the
// direct variant; only levels with neither get a clone. Clones keep the
// plain node's name and campus, carry cascading foreign keys, and are
// returned in creation order with parents wired, starting under
// servingRoot.
func MissingAncestors(
	chain []domain.GroupNode,
	lookup func(key string) (domain.GroupNode, bool),
	servingRoot domain.GroupNode,
) (clones []domain.GroupNode, parent domain.GroupNode) {
	parent = servingRoot
	for _, plain := range chain {
		if existing, ok := lookup(servingCascadePrefix + plain.Key); ok {
			parent = existing
			continue
		}
		if existing, ok := lookup(servingDirectPrefix + plain.Key); ok {
			parent = existing
			continue
		}
		parentID := parent.ID
		clone := domain.GroupNode{
			ID:          uuid.New(),
			Key:         servingCascadePrefix + plain.Key,
			ParentID:    &parentID,
			GroupTypeID: plain.GroupTypeID,
			CampusID:    plain.CampusID,
			Name:        plain.Name,
		}
		clones = append(clones, clone)
		parent = clone
	}
	return clones, parent
}
