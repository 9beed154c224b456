package sqlitestate_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestforge/hatchery/hatchery/statestore/sqlitestate"
)

var processor = common.HexToAddress("0x1234")

func openStore(t *testing.T) *sqlitestate.Store {
	t.Helper()

	store, err := sqlitestate.Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSlotRoundTrip(t *testing.T) {
	store := openStore(t)

	key := common.HexToHash("0x1")
	value := common.HexToHash("0xabcd")

	prev := store.SetState(processor, key, value)
	assert.Equal(t, common.Hash{}, prev)
	assert.Equal(t, value, store.GetState(processor, key))

	next := common.HexToHash("0xbeef")
	prev = store.SetState(processor, key, next)
	assert.Equal(t, value, prev)
	assert.Equal(t, next, store.GetState(processor, key))
}

func TestAbsentSlotReadsZero(t *testing.T) {
	store := openStore(t)

	assert.Equal(t, common.Hash{}, store.GetState(processor, common.HexToHash("0x99")))
}

func TestZeroWriteDeletesRow(t *testing.T) {
	store := openStore(t)

	key := common.HexToHash("0x2")
	store.SetState(processor, key, common.HexToHash("0x1"))

	prev := store.SetState(processor, key, common.Hash{})
	assert.Equal(t, common.HexToHash("0x1"), prev)
	assert.Equal(t, common.Hash{}, store.GetState(processor, key))
}

func TestSlotsAreScopedByAddress(t *testing.T) {
	store := openStore(t)

	other := common.HexToAddress("0x5678")
	key := common.HexToHash("0x3")

	store.SetState(processor, key, common.HexToHash("0xaa"))
	store.SetState(other, key, common.HexToHash("0xbb"))

	assert.Equal(t, common.HexToHash("0xaa"), store.GetState(processor, key))
	assert.Equal(t, common.HexToHash("0xbb"), store.GetState(other, key))
}

func TestReopenKeepsState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.db")
	key := common.HexToHash("0x4")

	store, err := sqlitestate.Open(context.Background(), path)
	require.NoError(t, err)
	store.SetState(processor, key, common.HexToHash("0xcafe"))
	require.NoError(t, store.Close())

	reopened, err := sqlitestate.Open(context.Background(), path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, common.HexToHash("0xcafe"), reopened.GetState(processor, key))
}
