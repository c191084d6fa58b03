package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/parishsource/shepherd/migration/domain"
)

// Level is the depth of a node in the synthesized tree.
type Level int

const (
	LevelMinistry Level = iota
	LevelActivity
	LevelRoom
)

// Well-known archive roots. Everything imported attaches under one of
// these two top-level nodes: the organizational root for the plain tree,
// a distinct root for the serving-team mirror.
const (
	archiveRootKey        = "ARCHIVE_MINISTRIES"
	servingArchiveRootKey = "ARCHIVE_SERVING_TEAMS"
)

var levelTypeKeys = map[Level]string{
	LevelMinistry: "GT_MINISTRY",
	LevelActivity: "GT_ACTIVITY",
	LevelRoom:     "GT_ROOM",
}

var levelTypeNames = map[Level]string{
	LevelMinistry: "Ministry",
	LevelActivity: "Activity",
	LevelRoom:     "Room",
}

// Hierarchy synthesizes the multi-level group tree from flat source
// rows. It never overwrites an existing node: every creation is preceded
// by a foreign-key lookup against the reference set, which also indexes
// nodes staged earlier in the same run.
type Hierarchy struct {
	refs   *domain.ReferenceSet
	writer *BatchWriter
	log    *logrus.Logger
}

func NewHierarchy(refs *domain.ReferenceSet, writer *BatchWriter, log *logrus.Logger) *Hierarchy {
	return &Hierarchy{refs: refs, writer: writer, log: log}
}

// EnsureGroupType returns the group type for a level, creating and
// staging it on first use.
func (h *Hierarchy) EnsureGroupType(level Level) domain.GroupTypeNode {
	return h.ensureType(levelTypeKeys[level], levelTypeNames[level])
}

// EnsureNamedGroupType is for source-defined types (flat small-group
// imports carry their own type names).
func (h *Hierarchy) EnsureNamedGroupType(key, name string) domain.GroupTypeNode {
	return h.ensureType(key, name)
}

func (h *Hierarchy) ensureType(key, name string) domain.GroupTypeNode {
	if t, ok := h.refs.GroupTypeByKey(key); ok {
		return t
	}
	t := domain.GroupTypeNode{ID: uuid.New(), Key: key, Name: name}
	h.writer.Stage(t)
	h.refs.AddGroupType(t)
	return t
}

// EnsureRoot returns the archive root for a variant, creating it on
// first use. Serving variants share one root.
func (h *Hierarchy) EnsureRoot(v Variant) domain.GroupNode {
	key, name := archiveRootKey, "Archived Ministries"
	if v != VariantPlain {
		key, name = servingArchiveRootKey, "Archived Serving Teams"
	}
	if g, ok := h.refs.GroupByKey(key); ok {
		return g
	}
	root := domain.GroupNode{
		ID:          uuid.New(),
		Key:         key,
		GroupTypeID: h.EnsureGroupType(LevelMinistry).ID,
		Name:        name,
	}
	h.writer.Stage(root)
	h.refs.AddGroup(root)
	return root
}

// EnsureMinistry synthesizes a top-level node.
func (h *Hierarchy) EnsureMinistry(baseKey, rawName string) *domain.GroupNode {
	return h.EnsureNode(LevelMinistry, baseKey, rawName, nil, nil)
}

// EnsureActivity synthesizes a mid-level node under a ministry.
func (h *Hierarchy) EnsureActivity(baseKey, rawName, ministryBase string, scheduleID *uuid.UUID) *domain.GroupNode {
	return h.EnsureNode(LevelActivity, baseKey, rawName, []string{ministryBase}, scheduleID)
}

// EnsureRoom synthesizes a bottom-level node under an activity.
func (h *Hierarchy) EnsureRoom(baseKey, rawName, ministryBase, activityBase string, scheduleID *uuid.UUID) *domain.GroupNode {
	return h.EnsureNode(LevelRoom, baseKey, rawName, []string{ministryBase, activityBase}, scheduleID)
}

// EnsureNode synthesizes one node. chain lists the plain base keys of
// the node's ancestors, root-most first. Returns nil for rows named with
// the deletion sentinel — no node is created for them.
//
// A node whose raw name carries the serving marker, or whose ancestor is
// serving, lands in the serving tree. Parent lookup tries the cascading
// serving variant, then the direct one, then the plain chain; when only
// the plain chain exists, the missing serving ancestors are cloned first
// so the serving tree never lacks intermediate levels. Cloning is
// idempotent: every level is looked up by foreign key before creation.
func (h *Hierarchy) EnsureNode(level Level, baseKey, rawName string, chain []string, scheduleID *uuid.UUID) *domain.GroupNode {
	if IsDeletedSentinel(rawName) || IsDeletedSentinel(StripServingMarker(rawName)) {
		return nil
	}

	variant := ClassifyVariant(rawName, h.ancestorVariant(chain))
	key := VariantKey(variant, baseKey)
	if existing, ok := h.refs.GroupByKey(key); ok {
		return &existing
	}
	if variant != VariantPlain {
		// A serving node created under the other serving form in an
		// earlier run or chunk still satisfies this request; one source
		// row never produces two destination nodes.
		for _, alt := range []string{servingCascadePrefix + baseKey, servingDirectPrefix + baseKey} {
			if existing, ok := h.refs.GroupByKey(alt); ok {
				return &existing
			}
		}
	}

	name, campusID := ExtractCampus(StripServingMarker(rawName), h.refs.Campuses())
	if IsDeletedSentinel(name) {
		return nil
	}

	parent := h.resolveParent(variant, chain)
	parentID := parent.ID
	node := domain.GroupNode{
		ID:          uuid.New(),
		Key:         key,
		ParentID:    &parentID,
		GroupTypeID: h.EnsureGroupType(level).ID,
		CampusID:    campusID,
		ScheduleID:  scheduleID,
		Name:        name,
	}
	h.writer.Stage(node)
	h.refs.AddGroup(node)
	return &node
}

// ancestorVariant classifies the nearest ancestor. A plain key for the
// base means the ancestor itself is not serving, even when a serving
// mirror clone of it exists: clones of unmarked ancestors must not
// cascade onto plain siblings. Only a base whose sole identity is a
// serving variant makes its descendants serving.
func (h *Hierarchy) ancestorVariant(chain []string) Variant {
	if len(chain) == 0 {
		return VariantPlain
	}
	parentBase := chain[len(chain)-1]
	if _, ok := h.refs.GroupByKey(parentBase); ok {
		return VariantPlain
	}
	if _, ok := h.refs.GroupByKey(servingCascadePrefix + parentBase); ok {
		return VariantServingCascade
	}
	if _, ok := h.refs.GroupByKey(servingDirectPrefix + parentBase); ok {
		return VariantServingDirect
	}
	return VariantPlain
}

func (h *Hierarchy) resolveParent(variant Variant, chain []string) domain.GroupNode {
	if variant == VariantPlain {
		if len(chain) > 0 {
			parentBase := chain[len(chain)-1]
			if parent, ok := h.refs.GroupByKey(parentBase); ok {
				return parent
			}
			h.log.WithField("parent_key", parentBase).Warn("plain parent missing, attaching node to archive root")
		}
		return h.EnsureRoot(VariantPlain)
	}

	// Serving target: cascading variant first, direct second. Only when
	// neither exists is the plain chain consulted and cloned.
	if len(chain) > 0 {
		parentBase := chain[len(chain)-1]
		if parent, ok := h.refs.GroupByKey(servingCascadePrefix + parentBase); ok {
			return parent
		}
		if parent, ok := h.refs.GroupByKey(servingDirectPrefix + parentBase); ok {
			return parent
		}
	}

	plainChain := make([]domain.GroupNode, 0, len(chain))
	for _, base := range chain {
		if node, ok := h.refs.GroupByKey(base); ok {
			plainChain = append(plainChain, node)
		}
	}
	clones, parent := MissingAncestors(plainChain, h.refs.GroupByKey, h.EnsureRoot(variant))
	for _, clone := range clones {
		h.writer.Stage(clone)
		h.refs.AddGroup(clone)
	}
	return parent
}
