package lineage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestforge/hatchery/hatchery/address"
	"github.com/nestforge/hatchery/hatchery/lineage"
	"github.com/nestforge/hatchery/hatchery/testutil"
)

func TestUnknownLineageHasNoEntries(t *testing.T) {
	db := testutil.NewMemState()

	_, ok := lineage.Level(db, "1")
	assert.False(t, ok)
	_, ok = lineage.Species(db, "1")
	assert.False(t, ok)
}

func TestZeroValuesAreDistinctFromAbsence(t *testing.T) {
	db := testutil.NewMemState()

	lineage.SetLevel(db, "1", 0)
	lineage.SetSpecies(db, "1", 0)

	level, ok := lineage.Level(db, "1")
	require.True(t, ok)
	assert.Equal(t, uint64(0), level)

	species, ok := lineage.Species(db, "1")
	require.True(t, ok)
	assert.Equal(t, uint64(0), species)
}

func TestMoveAcrossIds(t *testing.T) {
	db := testutil.NewMemState()

	lineage.SetLevel(db, "1", 1)
	lineage.SetSpecies(db, "1", 2)

	// The evolve path rewrites the entries under the successor id.
	lineage.Clear(db, "1")
	lineage.SetLevel(db, "2", 2)
	lineage.SetSpecies(db, "2", 2)

	_, ok := lineage.Level(db, "1")
	assert.False(t, ok)

	level, ok := lineage.Level(db, "2")
	require.True(t, ok)
	assert.Equal(t, uint64(2), level)

	species, ok := lineage.Species(db, "2")
	require.True(t, ok)
	assert.Equal(t, uint64(2), species)
}

func TestClearLeavesNoOccupiedSlots(t *testing.T) {
	db := testutil.NewMemState()

	lineage.SetLevel(db, "1", 3)
	lineage.SetSpecies(db, "1", 7)
	require.Greater(t, db.EntryCount(address.HatcheryProcessorAddress), 0)

	lineage.Clear(db, "1")
	assert.Equal(t, 0, db.EntryCount(address.HatcheryProcessorAddress))
}
