package services

import (
	"github.com/parishsource/shepherd/migration/domain"
)

// PersonResolver maps source person/household identifiers to imported
// destination identities. All lookups hit the in-memory reference set;
// nothing here touches the store.
type PersonResolver struct {
	refs *domain.ReferenceSet
}

func NewPersonResolver(refs *domain.ReferenceSet) *PersonResolver {
	return &PersonResolver{refs: refs}
}

// ResolvePerson returns the destination identity for a source reference,
// or nil when nothing matches — the caller must then skip the row, since
// dependent data cannot be created without an owner.
//
// An individual id resolves exactly. A household id alone resolves to the
// primary member: candidates filtered by includeVisitors, ordered by
// family-role rank then gender, first taken. The ordering is total, so
// the same household always resolves to the same person across calls and
// runs.
func (r *PersonResolver) ResolvePerson(individualID, householdID *int, includeVisitors bool) *domain.PersonKey {
	if individualID != nil {
		if k, ok := r.refs.PersonByForeignID(*individualID); ok {
			return &k
		}
		return nil
	}
	if householdID == nil {
		return nil
	}
	candidates := r.ResolveFamily(*householdID, includeVisitors)
	if len(candidates) == 0 {
		return nil
	}
	return &candidates[0]
}

// ResolveFamily returns every household member, primary first, with
// visitors filtered out when includeVisitors is false. No tie-break is
// applied beyond the ordering; family-wide updates want all of them.
func (r *PersonResolver) ResolveFamily(householdID int, includeVisitors bool) []domain.PersonKey {
	members := r.refs.PersonsByHousehold(householdID)
	if includeVisitors {
		return members
	}
	out := make([]domain.PersonKey, 0, len(members))
	for _, m := range members {
		if m.Role == domain.RoleVisitor {
			continue
		}
		out = append(out, m)
	}
	return out
}
