package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/parishsource/shepherd/migration/domain"
)

func intPtr(n int) *int { return &n }

func householdRefs() *domain.ReferenceSet {
	refs := domain.NewReferenceSet()
	refs.AddPerson(domain.PersonKey{PersonID: uuid.New(), ForeignID: 1, HouseholdForeignID: 5, Role: domain.RoleChild, Gender: domain.GenderMale})
	refs.AddPerson(domain.PersonKey{PersonID: uuid.New(), ForeignID: 2, HouseholdForeignID: 5, Role: domain.RoleAdult, Gender: domain.GenderFemale})
	refs.AddPerson(domain.PersonKey{PersonID: uuid.New(), ForeignID: 3, HouseholdForeignID: 5, Role: domain.RoleAdult, Gender: domain.GenderMale})
	refs.AddPerson(domain.PersonKey{PersonID: uuid.New(), ForeignID: 4, HouseholdForeignID: 5, Role: domain.RoleVisitor, Gender: domain.GenderFemale})
	return refs
}

func TestResolvePerson_IndividualExactMatch(t *testing.T) {
	resolver := NewPersonResolver(householdRefs())

	got := resolver.ResolvePerson(intPtr(2), intPtr(5), false)
	require.NotNil(t, got)
	require.Equal(t, 2, got.ForeignID)
}

func TestResolvePerson_UnknownIndividualDoesNotFallBack(t *testing.T) {
	resolver := NewPersonResolver(householdRefs())

	require.Nil(t, resolver.ResolvePerson(intPtr(99), intPtr(5), false))
}

func TestResolvePerson_HouseholdTieBreak(t *testing.T) {
	resolver := NewPersonResolver(householdRefs())

	// Adult male outranks adult female outranks child.
	got := resolver.ResolvePerson(nil, intPtr(5), false)
	require.NotNil(t, got)
	require.Equal(t, 3, got.ForeignID)
}

func TestResolvePerson_Deterministic(t *testing.T) {
	resolver := NewPersonResolver(householdRefs())

	first := resolver.ResolvePerson(nil, intPtr(5), false)
	for i := 0; i < 10; i++ {
		again := resolver.ResolvePerson(nil, intPtr(5), false)
		require.Equal(t, first.ForeignID, again.ForeignID)
	}
}

func TestResolvePerson_NoReference(t *testing.T) {
	resolver := NewPersonResolver(householdRefs())

	require.Nil(t, resolver.ResolvePerson(nil, nil, false))
	require.Nil(t, resolver.ResolvePerson(nil, intPtr(999), false))
}

func TestResolveFamily_VisitorFiltering(t *testing.T) {
	resolver := NewPersonResolver(householdRefs())

	withVisitors := resolver.ResolveFamily(5, true)
	require.Len(t, withVisitors, 4)

	withoutVisitors := resolver.ResolveFamily(5, false)
	require.Len(t, withoutVisitors, 3)
	for _, m := range withoutVisitors {
		require.NotEqual(t, domain.RoleVisitor, m.Role)
	}
}
