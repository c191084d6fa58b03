package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/parishsource/shepherd/migration/domain"
)

func testCampuses() []domain.CampusRecord {
	return []domain.CampusRecord{
		{ID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001"), Key: "CAMPUS_NORTH", Name: "North Campus", ShortCode: "North"},
		{ID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002"), Key: "CAMPUS_DT", Name: "Downtown", ShortCode: "DT"},
	}
}

func TestExtractCampus_PrefixToken(t *testing.T) {
	name, id := ExtractCampus("North - Youth Group", testCampuses())
	require.Equal(t, "Youth Group", name)
	require.NotNil(t, id)
	require.Equal(t, "aaaaaaaa-0000-0000-0000-000000000001", id.String())
}

func TestExtractCampus_SuffixToken(t *testing.T) {
	name, id := ExtractCampus("Youth Group - DT", testCampuses())
	require.Equal(t, "Youth Group", name)
	require.NotNil(t, id)
	require.Equal(t, "aaaaaaaa-0000-0000-0000-000000000002", id.String())
}

func TestExtractCampus_CaseInsensitive(t *testing.T) {
	name, id := ExtractCampus("downtown: Choir", testCampuses())
	require.Equal(t, "Choir", name)
	require.NotNil(t, id)
}

func TestExtractCampus_UnresolvedTokenLeftInName(t *testing.T) {
	name, id := ExtractCampus("Eastside - Youth Group", testCampuses())
	require.Equal(t, "Eastside - Youth Group", name)
	require.Nil(t, id)
}

func TestExtractCampus_NoDelimiter(t *testing.T) {
	name, id := ExtractCampus("Youth Group", testCampuses())
	require.Equal(t, "Youth Group", name)
	require.Nil(t, id)
}
