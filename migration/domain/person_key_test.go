package domain_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parishsource/shepherd/migration/domain"
)

func TestPersonKeyLess_RoleBeforeGender(t *testing.T) {
	adultFemale := domain.PersonKey{ForeignID: 1, Role: domain.RoleAdult, Gender: domain.GenderFemale}
	childMale := domain.PersonKey{ForeignID: 2, Role: domain.RoleChild, Gender: domain.GenderMale}

	require.True(t, adultFemale.Less(childMale))
	require.False(t, childMale.Less(adultFemale))
}

func TestPersonKeyLess_GenderBreaksRoleTie(t *testing.T) {
	adultMale := domain.PersonKey{ForeignID: 1, Role: domain.RoleAdult, Gender: domain.GenderMale}
	adultFemale := domain.PersonKey{ForeignID: 2, Role: domain.RoleAdult, Gender: domain.GenderFemale}
	adultUnknown := domain.PersonKey{ForeignID: 3, Role: domain.RoleAdult, Gender: domain.GenderUnknown}

	require.True(t, adultMale.Less(adultFemale))
	require.True(t, adultFemale.Less(adultUnknown))
}

func TestPersonKeyLess_TotalOrder(t *testing.T) {
	keys := []domain.PersonKey{
		{ForeignID: 4, Role: domain.RoleVisitor, Gender: domain.GenderFemale},
		{ForeignID: 3, Role: domain.RoleChild, Gender: domain.GenderMale},
		{ForeignID: 2, Role: domain.RoleAdult, Gender: domain.GenderFemale},
		{ForeignID: 1, Role: domain.RoleAdult, Gender: domain.GenderMale},
	}

	// Same elements in any starting order must sort identically.
	shuffled := []domain.PersonKey{keys[2], keys[0], keys[3], keys[1]}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	sort.Slice(shuffled, func(i, j int) bool { return shuffled[i].Less(shuffled[j]) })

	require.Equal(t, keys, shuffled)
	require.Equal(t, 1, keys[0].ForeignID)
	require.Equal(t, 4, keys[3].ForeignID)
}
