// Package lineage keeps the two side-tables that carry a collectible's
// identity across its chain of token ids: the evolution level and the
// species (the catalog position chosen at mint). Both are keyed by the
// current token id and are moved, not updated in place, on every evolution.
//
// Values are stored off by one so a zero slot always means "no entry":
// level 0 is a valid state, an empty slot is not.
package lineage

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/nestforge/hatchery/hatchery/address"
	"github.com/nestforge/hatchery/hatchery/storageutil"
	"github.com/nestforge/hatchery/hatchery/token"
)

var (
	levelSalt   = []byte("hatcheryV1/levelPerToken")
	speciesSalt = []byte("hatcheryV1/speciesPerToken")
)

func levelSlot(key common.Hash) common.Hash {
	return crypto.Keccak256Hash(levelSalt, key[:])
}

func speciesSlot(key common.Hash) common.Hash {
	return crypto.Keccak256Hash(speciesSalt, key[:])
}

func get(db storageutil.StateAccess, slot common.Hash) (uint64, bool) {
	v := new(uint256.Int).SetBytes32(db.GetState(address.HatcheryProcessorAddress, slot).Bytes())
	if v.IsZero() {
		return 0, false
	}
	return v.Uint64() - 1, true
}

func set(db storageutil.StateAccess, slot common.Hash, value uint64) {
	db.SetState(address.HatcheryProcessorAddress, slot, uint256.NewInt(value+1).Bytes32())
}

// SetLevel records the evolution level of id.
func SetLevel(db storageutil.StateAccess, id token.ID, level uint64) {
	set(db, levelSlot(id.Key()), level)
}

// Level returns the evolution level of id, or false if the lineage is
// unknown.
func Level(db storageutil.StateAccess, id token.ID) (uint64, bool) {
	return get(db, levelSlot(id.Key()))
}

// SetSpecies records the species of id.
func SetSpecies(db storageutil.StateAccess, id token.ID, species uint64) {
	set(db, speciesSlot(id.Key()), species)
}

// Species returns the species of id, or false if the lineage is unknown.
func Species(db storageutil.StateAccess, id token.ID) (uint64, bool) {
	return get(db, speciesSlot(id.Key()))
}

// Clear drops both side-table entries of id. Called when the id is retired;
// the successor id gets fresh entries of its own.
func Clear(db storageutil.StateAccess, id token.ID) {
	key := id.Key()
	db.SetState(address.HatcheryProcessorAddress, levelSlot(key), common.Hash{})
	db.SetState(address.HatcheryProcessorAddress, speciesSlot(key), common.Hash{})
}
