// Package testutil provides test doubles shared by the hatchery package
// tests.
package testutil

import (
	"github.com/ethereum/go-ethereum/common"
)

// MemState is a map-backed StateAccess. Zero-value writes delete the slot,
// so EntryCount reflects exactly the occupied slots, which the storage-rent
// tests lean on.
type MemState struct {
	storage map[common.Address]map[common.Hash]common.Hash
}

func NewMemState() *MemState {
	return &MemState{
		storage: make(map[common.Address]map[common.Hash]common.Hash),
	}
}

func (m *MemState) GetState(addr common.Address, key common.Hash) common.Hash {
	if slots, ok := m.storage[addr]; ok {
		return slots[key]
	}
	return common.Hash{}
}

func (m *MemState) SetState(addr common.Address, key common.Hash, value common.Hash) common.Hash {
	slots, ok := m.storage[addr]
	if !ok {
		slots = make(map[common.Hash]common.Hash)
		m.storage[addr] = slots
	}

	prev := slots[key]

	if value == (common.Hash{}) {
		delete(slots, key)
		if len(slots) == 0 {
			delete(m.storage, addr)
		}
		return prev
	}

	slots[key] = value
	return prev
}

// EntryCount returns the number of occupied slots under addr.
func (m *MemState) EntryCount(addr common.Address) int {
	return len(m.storage[addr])
}

// Snapshot returns a deep copy of the occupied slots, for
// nothing-changed assertions around failing calls.
func (m *MemState) Snapshot() map[common.Address]map[common.Hash]common.Hash {
	snap := make(map[common.Address]map[common.Hash]common.Hash, len(m.storage))
	for addr, slots := range m.storage {
		copied := make(map[common.Hash]common.Hash, len(slots))
		for k, v := range slots {
			copied[k] = v
		}
		snap[addr] = copied
	}
	return snap
}
