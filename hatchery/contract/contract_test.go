package contract_test

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestforge/hatchery/hatchery/catalog"
	"github.com/nestforge/hatchery/hatchery/contract"
	"github.com/nestforge/hatchery/hatchery/ledger"
	"github.com/nestforge/hatchery/hatchery/rent"
	"github.com/nestforge/hatchery/hatchery/testutil"
	"github.com/nestforge/hatchery/hatchery/token"
)

var (
	admin = common.HexToAddress("0xad0000000000000000000000000000000000000d")
	alice = common.HexToAddress("0xa11ce00000000000000000000000000000000001")
	bob   = common.HexToAddress("0xb0b0000000000000000000000000000000000002")
)

// recordingRefunder captures dispatched refund transfers.
type recordingRefunder struct {
	to      []common.Address
	amounts []*uint256.Int
}

func (r *recordingRefunder) Transfer(to common.Address, amount *uint256.Int) {
	r.to = append(r.to, to)
	r.amounts = append(r.amounts, amount)
}

type world struct {
	db       *testutil.MemState
	contract *contract.Contract
	refunder *recordingRefunder
}

// flat fee used throughout the flow tests; deposits of exactly this amount
// settle with nothing left to refund.
const fee = 10

func adminCall(now uint64) contract.Call {
	return contract.Call{Caller: admin, Deposit: uint256.NewInt(fee), Now: now}
}

func callBy(caller common.Address, now uint64) contract.Call {
	return contract.Call{Caller: caller, Deposit: uint256.NewInt(fee), Now: now}
}

// newWorld initializes a contract with three templates per stage type and
// the given selection policy. Cooldown is 100 seconds, terminal level 3.
func newWorld(t *testing.T, selection contract.SelectionPolicy, seed byte) *world {
	t.Helper()

	db := testutil.NewMemState()
	refunder := &recordingRefunder{}

	cfg := contract.Config{
		MaxLevel:        3,
		CooldownSeconds: 100,
		Selection:       selection,
		RentMode:        rent.Flat,
		FlatFee:         uint256.NewInt(fee),
		Random:          contract.RandomFunc(func() byte { return seed }),
		Refunder:        refunder,
	}

	c := contract.New(db, cfg)
	require.NoError(t, c.InitializeDefault(admin))

	for _, typ := range []string{"egg", "level1", "level2", "level3"} {
		for i := range 3 {
			err := c.AddMetadata(adminCall(0), typ, token.Metadata{
				Title: fmt.Sprintf("%s variant %d", typ, i),
				Media: fmt.Sprintf("%s/%d.png", typ, i),
			})
			require.NoError(t, err)
		}
	}

	return &world{db: db, contract: c, refunder: refunder}
}

func TestInitializeIsOneShot(t *testing.T) {
	db := testutil.NewMemState()
	c := contract.New(db, contract.DefaultConfig())

	require.NoError(t, c.Initialize(admin, token.Descriptor{
		Name:    "Hatchery Collectibles",
		Symbol:  "HATCH",
		BaseURI: "https://cdn.example/hatch/",
	}))

	err := c.InitializeDefault(admin)
	assert.ErrorIs(t, err, contract.ErrAlreadyInitialized)

	desc, err := c.Descriptor()
	require.NoError(t, err)
	assert.Equal(t, "HATCH", desc.Symbol)
	assert.Equal(t, "https://cdn.example/hatch/", desc.BaseURI)
	assert.Equal(t, admin, c.Owner())
}

func TestInitializeRejectsInvalidDescriptor(t *testing.T) {
	c := contract.New(testutil.NewMemState(), contract.DefaultConfig())

	err := c.Initialize(admin, token.Descriptor{Name: "no symbol"})
	assert.ErrorIs(t, err, token.ErrInvalidDescriptor)

	_, err = c.Descriptor()
	assert.ErrorIs(t, err, contract.ErrNotInitialized)
}

func TestAddMetadataIsOwnerOnly(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)

	err := w.contract.AddMetadata(callBy(alice, 0), "egg", token.Metadata{Title: "intruder"})
	assert.ErrorIs(t, err, contract.ErrUnauthorized)
	assert.Equal(t, uint64(3), catalog.Count(w.db, "egg"))
}

func TestMintAllocatesUniqueIncreasingIds(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)

	seen := map[token.ID]bool{}
	for i := range 10 {
		minted, _, err := w.contract.Mint(callBy(alice, 1000), alice, uint64(i%3))
		require.NoError(t, err)

		require.False(t, seen[minted.ID])
		seen[minted.ID] = true
		assert.Equal(t, token.ID(fmt.Sprintf("%d", i+1)), minted.ID)
	}
}

func TestMintStampsSelection(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)

	minted, logEntries, err := w.contract.Mint(callBy(alice, 1000), alice, 1)
	require.NoError(t, err)

	assert.Equal(t, alice, minted.Owner)
	assert.Equal(t, "egg variant 1", minted.Metadata.Title)
	assert.Equal(t, uint64(1), minted.Metadata.Copies)
	assert.Equal(t, uint64(1000), minted.Metadata.IssuedAt)
	assert.Equal(t, uint64(1100), minted.Metadata.Extra, "next unlock is issue time plus cooldown")
	require.Len(t, logEntries, 1)

	level, err := w.contract.LevelOf(minted.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), level)

	species, err := w.contract.SpeciesOf(minted.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), species)

	// The stored template is untouched by the stamping.
	stored, err := catalog.EntryAt(w.db, "egg", 1)
	require.NoError(t, err)
	assert.Zero(t, stored.IssuedAt)
	assert.Zero(t, stored.Copies)
	assert.Zero(t, stored.Extra)
}

func TestMintRandomizedSelectionUsesSeed(t *testing.T) {
	// seed 5 over 3 entries: 5 mod 3 = position 2.
	w := newWorld(t, contract.Randomized, 5)

	minted, _, err := w.contract.Mint(callBy(alice, 1000), alice, 99)
	require.NoError(t, err)

	assert.Equal(t, "egg variant 2", minted.Metadata.Title, "explicit entry argument must be ignored")

	species, err := w.contract.SpeciesOf(minted.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), species)
}

func TestMintUnknownTypeOrIndexFails(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)

	_, _, err := w.contract.Mint(callBy(alice, 1000), alice, 3)
	assert.ErrorIs(t, err, catalog.ErrEntryOutOfRange)

	empty := contract.New(testutil.NewMemState(), contract.DefaultConfig())
	require.NoError(t, empty.InitializeDefault(admin))
	_, _, err = empty.Mint(contract.Call{Caller: alice, Deposit: uint256.NewInt(1e18), Now: 1}, alice, 0)
	assert.ErrorIs(t, err, catalog.ErrUnknownType)
}

func TestMintInsufficientDepositLeavesStateUntouched(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)
	before := w.db.Snapshot()

	_, _, err := w.contract.Mint(contract.Call{Caller: alice, Deposit: uint256.NewInt(fee - 1), Now: 1000}, alice, 0)
	assert.ErrorIs(t, err, rent.ErrInsufficientDeposit)

	assert.Equal(t, before, w.db.Snapshot(), "failed mint must not leave any write behind")
	assert.Empty(t, w.refunder.to)
}

func TestMintRefundsExcessDeposit(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)

	_, _, err := w.contract.Mint(contract.Call{Caller: alice, Deposit: uint256.NewInt(fee + 5), Now: 1000}, alice, 0)
	require.NoError(t, err)

	require.Len(t, w.refunder.to, 1)
	assert.Equal(t, alice, w.refunder.to[0])
	assert.Equal(t, uint64(5), w.refunder.amounts[0].Uint64())
}

func TestEvolveBeforeCooldownFails(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)

	minted, _, err := w.contract.Mint(callBy(alice, 1000), alice, 0)
	require.NoError(t, err)

	before := w.db.Snapshot()

	_, _, err = w.contract.Evolve(callBy(alice, 1099), minted.ID, alice)
	assert.ErrorIs(t, err, contract.ErrCooldownActive)
	assert.Equal(t, before, w.db.Snapshot())
}

func TestEvolveByNonOwnerFails(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)

	minted, _, err := w.contract.Mint(callBy(alice, 1000), alice, 0)
	require.NoError(t, err)

	before := w.db.Snapshot()

	_, _, err = w.contract.Evolve(callBy(bob, 2000), minted.ID, bob)
	assert.ErrorIs(t, err, contract.ErrNotTokenOwner)
	assert.Equal(t, before, w.db.Snapshot())
}

func TestEvolveReceiverMustMatchOwner(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)

	minted, _, err := w.contract.Mint(callBy(alice, 1000), alice, 0)
	require.NoError(t, err)

	_, _, err = w.contract.Evolve(callBy(alice, 2000), minted.ID, bob)
	assert.ErrorIs(t, err, contract.ErrNotTokenOwner)
}

func TestEvolveUnknownTokenFails(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)

	_, _, err := w.contract.Evolve(callBy(alice, 2000), "42", alice)
	assert.ErrorIs(t, err, ledger.ErrTokenNotFound)
}

func TestEvolveRetiresOldIdAndAdvancesLineage(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)

	minted, _, err := w.contract.Mint(callBy(alice, 1000), alice, 2)
	require.NoError(t, err)

	evolved, logEntries, err := w.contract.Evolve(callBy(alice, 1100), minted.ID, alice)
	require.NoError(t, err)
	require.Len(t, logEntries, 1)

	// The old id is gone everywhere.
	old, err := w.contract.TokenByID(minted.ID)
	require.NoError(t, err)
	assert.Nil(t, old)
	_, err = w.contract.LevelOf(minted.ID)
	assert.ErrorIs(t, err, ledger.ErrTokenNotFound)

	// The new id carries the lineage forward.
	assert.Equal(t, token.ID("2"), evolved.ID)
	assert.Equal(t, alice, evolved.Owner)
	assert.Equal(t, "level1 variant 2", evolved.Metadata.Title)
	assert.Equal(t, uint64(1100), evolved.Metadata.IssuedAt)
	assert.Equal(t, uint64(1200), evolved.Metadata.Extra)

	level, err := w.contract.LevelOf(evolved.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), level)

	species, err := w.contract.SpeciesOf(evolved.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), species, "species carries forward unchanged")

	page, err := w.contract.TokensForOwner(alice, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, evolved.ID, page[0].ID)
}

func TestEvolvePastTerminalStageFails(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)

	minted, _, err := w.contract.Mint(callBy(alice, 0), alice, 0)
	require.NoError(t, err)

	id := minted.ID
	now := uint64(0)
	for range 3 {
		now += 100
		evolved, _, err := w.contract.Evolve(callBy(alice, now), id, alice)
		require.NoError(t, err)
		id = evolved.ID
	}

	level, err := w.contract.LevelOf(id)
	require.NoError(t, err)
	require.Equal(t, uint64(3), level)

	before := w.db.Snapshot()
	now += 100

	_, _, err = w.contract.Evolve(callBy(alice, now), id, alice)
	assert.ErrorIs(t, err, contract.ErrMaxLevelReached)
	assert.Equal(t, before, w.db.Snapshot())
}

func TestEvolveInsufficientDepositLeavesStateUntouched(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)

	minted, _, err := w.contract.Mint(callBy(alice, 1000), alice, 0)
	require.NoError(t, err)

	before := w.db.Snapshot()

	_, _, err = w.contract.Evolve(contract.Call{Caller: alice, Deposit: uint256.NewInt(fee - 1), Now: 1100}, minted.ID, alice)
	assert.ErrorIs(t, err, rent.ErrInsufficientDeposit)
	assert.Equal(t, before, w.db.Snapshot())

	// The allocator counter did not advance: the next mint is still id 2.
	next, _, err := w.contract.Mint(callBy(alice, 1100), alice, 0)
	require.NoError(t, err)
	assert.Equal(t, token.ID("2"), next.ID)
}

func TestTokensForOwnerPagination(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)

	for i := range 5 {
		_, _, err := w.contract.Mint(callBy(alice, 1000), alice, uint64(i%3))
		require.NoError(t, err)
	}

	page, err := w.contract.TokensForOwner(alice, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, token.ID("2"), page[0].ID)
	assert.Equal(t, token.ID("3"), page[1].ID)

	tail, err := w.contract.TokensForOwner(alice, 4, 10)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, token.ID("5"), tail[0].ID)

	empty, err := w.contract.TokensForOwner(bob, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	none, err := w.contract.TokensForOwner(alice, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTokenByIDUnknownIsAbsent(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)

	got, err := w.contract.TokenByID("404")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCatalogViews(t *testing.T) {
	w := newWorld(t, contract.ExplicitIndex, 0)

	assert.ElementsMatch(t, []string{"egg", "level1", "level2", "level3"}, w.contract.CatalogTypes())

	entries, err := w.contract.CatalogEntries("egg")
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	_, err = w.contract.CatalogEntries("dragon")
	assert.ErrorIs(t, err, catalog.ErrUnknownType)
}

// The end-to-end walk from the acceptance scenario: three egg templates, a
// randomized mint landing on position 2, a premature evolve, then a
// successful one.
func TestMintEvolveScenario(t *testing.T) {
	// seed 2 over 3 entries: 2 mod 3 = position 2.
	w := newWorld(t, contract.Randomized, 2)

	minted, _, err := w.contract.Mint(callBy(alice, 1000), alice, 0)
	require.NoError(t, err)

	got, err := w.contract.TokenByID(minted.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice, got.Owner)
	assert.Equal(t, "egg variant 2", got.Metadata.Title)

	level, err := w.contract.LevelOf(minted.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), level)

	_, _, err = w.contract.Evolve(callBy(alice, 1050), minted.ID, alice)
	assert.ErrorIs(t, err, contract.ErrCooldownActive)

	evolved, _, err := w.contract.Evolve(callBy(alice, 1100), minted.ID, alice)
	require.NoError(t, err)

	gone, err := w.contract.TokenByID(minted.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	level, err = w.contract.LevelOf(evolved.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), level)

	species, err := w.contract.SpeciesOf(evolved.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), species)
	assert.Equal(t, alice, evolved.Owner)
}
