package domain

import "github.com/google/uuid"

// PersonKey is the resolver-facing identity of an imported person. One
// exists per imported person and is immutable once created.
type PersonKey struct {
	PersonID           uuid.UUID
	AliasID            uuid.UUID
	ForeignID          int
	HouseholdForeignID int
	Gender             Gender
	Role               FamilyRole
}

// Less orders household candidates for the primary-person tie-break:
// family-role rank first, gender second. Adults beat children beat
// visitors; the ordering is total so the pick is deterministic.
func (k PersonKey) Less(other PersonKey) bool {
	if k.Role != other.Role {
		return k.Role < other.Role
	}
	if k.Gender != other.Gender {
		return k.Gender < other.Gender
	}
	return k.ForeignID < other.ForeignID
}
