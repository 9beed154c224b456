package keyset

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/nestforge/hatchery/hatchery/address"
	"github.com/nestforge/hatchery/hatchery/storageutil"
)

// indexMap maps a set member to its 1-based position in the backing array.
// Slot addresses are derived by hashing the combined salt with the member,
// so maps with distinct salts can never collide.
type indexMap struct {
	db   storageutil.StateAccess
	salt []byte
}

func newIndexMap(db storageutil.StateAccess, salts ...[]byte) *indexMap {
	combined := []byte{}
	for _, s := range salts {
		combined = append(combined, s...)
	}
	return &indexMap{db: db, salt: combined}
}

func (m *indexMap) get(member common.Hash) common.Hash {
	return m.db.GetState(address.HatcheryProcessorAddress, crypto.Keccak256Hash(m.salt, member.Bytes()))
}

func (m *indexMap) set(member common.Hash, position common.Hash) {
	m.db.SetState(address.HatcheryProcessorAddress, crypto.Keccak256Hash(m.salt, member.Bytes()), position)
}
