package fossil

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	assert.Equal(t, PetrifiedWood, ParseType("petrified_wood"))
	assert.Equal(t, AmberInclusion, ParseType("amber_inclusion"))
	assert.Equal(t, Unknown, ParseType("meteorite"))
	assert.Equal(t, Unknown, ParseType(""))
}

func TestAgeRangeJSON(t *testing.T) {
	data, err := json.Marshal(AgeRange{Low: 66, High: 252})
	require.NoError(t, err)
	assert.Equal(t, "[66,252]", string(data))

	var a AgeRange
	require.NoError(t, json.Unmarshal([]byte("[23.5,66]"), &a))
	assert.Equal(t, AgeRange{Low: 23.5, High: 66}, a)

	assert.Error(t, json.Unmarshal([]byte("[100,50]"), &a), "inverted bounds must be rejected")
	assert.Error(t, json.Unmarshal([]byte(`"66-252"`), &a))
}

func TestFailedResult(t *testing.T) {
	r := FailedResult("dig/site4/broken.png", errors.New("image load failed: corrupt data"))

	assert.True(t, r.Failed())
	assert.Equal(t, "dig/site4/broken.png", r.SourcePath)
	assert.Equal(t, Unknown, r.Classification)
	assert.Equal(t, "unknown", r.GeologicalPeriod)
	assert.Zero(t, r.Confidence)
	assert.Zero(t, r.PreservationQuality)
	assert.NotNil(t, r.SpeciesCandidates)
	assert.Empty(t, r.SpeciesCandidates)
	assert.False(t, r.AnalyzedAt.IsZero())
}

func TestAllSpeciesSorted(t *testing.T) {
	all := AllSpecies()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Name, all[i].Name)
	}
}

func TestSpeciesFor(t *testing.T) {
	for _, typ := range Types {
		entries := SpeciesFor(typ)
		require.NotEmptyf(t, entries, "no reference species for %s", typ)
		for _, s := range entries {
			assert.Equal(t, typ, s.Type)
			assert.LessOrEqual(t, s.Age[0], s.Age[1])
		}
	}
	assert.Empty(t, SpeciesFor(Unknown))
}

func TestSearchSpecies(t *testing.T) {
	matches := SearchSpecies("tyrannosaurus")
	require.Len(t, matches, 1)
	assert.Equal(t, "Tyrannosaurus rex", matches[0].Name)

	// period names match too
	byPeriod := SearchSpecies("jurassic")
	assert.NotEmpty(t, byPeriod)
	for _, s := range byPeriod {
		assert.Equal(t, "Jurassic", s.Period)
	}

	assert.Empty(t, SearchSpecies("meteorite"))
	assert.Empty(t, SearchSpecies("   "))
}
