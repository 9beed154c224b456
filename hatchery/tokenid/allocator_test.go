package tokenid_test

import (
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestforge/hatchery/hatchery/storageutil/stateblob"
	"github.com/nestforge/hatchery/hatchery/testutil"
	"github.com/nestforge/hatchery/hatchery/token"
	"github.com/nestforge/hatchery/hatchery/tokenid"
)

func TestNextIsStrictlyIncreasing(t *testing.T) {
	db := testutil.NewMemState()
	tokenid.Reset(db)

	seen := map[token.ID]bool{}
	var last uint64

	for i := range 100 {
		id, err := tokenid.Next(db)
		require.NoError(t, err)

		require.False(t, seen[id], "id %s allocated twice", id)
		seen[id] = true

		n, err := strconv.ParseUint(string(id), 10, 64)
		require.NoError(t, err)
		require.Equal(t, uint64(i+1), n)
		require.Greater(t, n, last)
		last = n
	}
}

func TestCurrentDoesNotAdvance(t *testing.T) {
	db := testutil.NewMemState()
	tokenid.Reset(db)

	_, err := tokenid.Next(db)
	require.NoError(t, err)

	for range 3 {
		id, err := tokenid.Current(db)
		require.NoError(t, err)
		assert.Equal(t, token.ID("1"), id)
	}
}

func TestCorruptCounterIsFatal(t *testing.T) {
	db := testutil.NewMemState()
	stateblob.SetBlob(db, tokenid.CounterKey, []byte("not a number"))

	_, err := tokenid.Next(db)
	assert.ErrorIs(t, err, tokenid.ErrCorruptCounter)

	_, err = tokenid.Current(db)
	assert.ErrorIs(t, err, tokenid.ErrCorruptCounter)
}

func TestOverflowIsFatalNotWrapping(t *testing.T) {
	db := testutil.NewMemState()
	stateblob.SetBlob(db, tokenid.CounterKey, fmt.Appendf(nil, "%d", uint64(math.MaxUint64)))

	_, err := tokenid.Next(db)
	assert.ErrorIs(t, err, tokenid.ErrCounterOverflow)

	// The stored counter is left as it was.
	id, err := tokenid.Current(db)
	require.NoError(t, err)
	assert.Equal(t, token.ID("18446744073709551615"), id)
}
