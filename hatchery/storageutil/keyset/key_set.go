// Package keyset implements an enumerable set of 32-byte members stored in
// state slots, the EnumerableSet pattern: a dense slot array provides stable
// enumeration and positional access, a salted index map records each
// member's 1-based array position for O(1) membership checks and removal.
package keyset

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nestforge/hatchery/hatchery/storageutil"
)

// MapSaltPrefix versions the slot layout of the position maps. Bumping it
// invalidates every stored set.
var MapSaltPrefix = []byte("hatcheryV1/keysetMap")

var zeroHash = common.Hash{}

// Contains reports whether member is in the set identified by setKey.
func Contains(db storageutil.StateAccess, setKey common.Hash, member common.Hash) bool {
	m := newIndexMap(db, MapSaltPrefix, setKey[:])
	return m.get(member) != zeroHash
}

// Add inserts member into the set identified by setKey. Inserting a member
// that is already present is a no-op.
func Add(db storageutil.StateAccess, setKey common.Hash, member common.Hash) error {
	if Contains(db, setKey, member) {
		return nil
	}

	arr := newSlotArray(db, setKey)
	m := newIndexMap(db, MapSaltPrefix, setKey[:])

	arr.append(member)
	m.set(member, arr.size().Bytes32())

	return nil
}

// Remove deletes member from the set identified by setKey, moving the last
// array element into the vacated position to keep the array dense. Removing
// an absent member is a no-op.
func Remove(db storageutil.StateAccess, setKey common.Hash, member common.Hash) error {
	if !Contains(db, setKey, member) {
		return nil
	}

	arr := newSlotArray(db, setKey)
	m := newIndexMap(db, MapSaltPrefix, setKey[:])

	position := new(uint256.Int).SetBytes32(m.get(member).Bytes())
	position.SubUint64(position, 1)

	lastPosition := arr.size()
	lastPosition.SubUint64(lastPosition, 1)

	lastMember, err := arr.get(lastPosition)
	if err != nil {
		return fmt.Errorf("failed to read last member: %w", err)
	}

	m.set(member, zeroHash)

	if lastPosition.Cmp(position) != 0 {
		if err := arr.set(position, lastMember); err != nil {
			return fmt.Errorf("failed to move last member: %w", err)
		}
		newPosition := new(uint256.Int).Set(position)
		newPosition.AddUint64(newPosition, 1)
		m.set(lastMember, newPosition.Bytes32())
	}

	if err := arr.removeLast(); err != nil {
		return fmt.Errorf("failed to shrink array: %w", err)
	}

	return nil
}

// Size returns the number of members in the set.
func Size(db storageutil.StateAccess, setKey common.Hash) uint64 {
	return newSlotArray(db, setKey).size().Uint64()
}

// At returns the member at the 0-based position within the set's stable
// enumeration order.
func At(db storageutil.StateAccess, setKey common.Hash, position uint64) (common.Hash, error) {
	return newSlotArray(db, setKey).get(uint256.NewInt(position))
}

// Clear removes every member from the set, including the position map
// entries, leaving no occupied slots behind.
func Clear(db storageutil.StateAccess, setKey common.Hash) {
	arr := newSlotArray(db, setKey)
	m := newIndexMap(db, MapSaltPrefix, setKey[:])

	for member := range arr.iterate {
		m.set(member, zeroHash)
	}
	arr.clear()
}

// Iterate yields the members of the set in enumeration order.
func Iterate(db storageutil.StateAccess, setKey common.Hash) func(yield func(member common.Hash) bool) {
	return newSlotArray(db, setKey).iterate
}
