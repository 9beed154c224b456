package rent

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nestforge/hatchery/hatchery/address"
	"github.com/nestforge/hatchery/hatchery/storageutil"
)

// UsedSlotsKey is the slot holding the running total of occupied slots.
var UsedSlotsKey = crypto.Keccak256Hash([]byte("hatcheryV1/usedSlots"))

// SlotUsageCounter wraps a StateAccess and counts the net storage effect of
// the writes that pass through it: a slot going zero→non-zero is a created
// slot, non-zero→zero a freed one. Mutating operations run through a
// counter so the rent accountant can price exactly what they stored.
type SlotUsageCounter struct {
	created uint64
	freed   uint64
	db      storageutil.StateAccess
}

func NewSlotUsageCounter(db storageutil.StateAccess) *SlotUsageCounter {
	return &SlotUsageCounter{db: db}
}

func (c *SlotUsageCounter) GetState(addr common.Address, key common.Hash) common.Hash {
	return c.db.GetState(addr, key)
}

func (c *SlotUsageCounter) SetState(addr common.Address, key common.Hash, value common.Hash) common.Hash {
	prev := c.db.SetState(addr, key, value)
	if prev == value {
		return prev
	}

	switch {
	case prev == (common.Hash{}) && value != (common.Hash{}):
		c.created++
	case prev != (common.Hash{}) && value == (common.Hash{}):
		c.freed++
	}

	return prev
}

// NetCreatedSlots returns the number of slots the counted writes added over
// what they freed. An operation that frees more than it creates costs
// nothing; freed slots are not credited back.
func (c *SlotUsageCounter) NetCreatedSlots() uint64 {
	if c.created <= c.freed {
		return 0
	}
	return c.created - c.freed
}

// UpdateUsedSlots folds the counted delta into the persistent used-slots
// total and resets the counter.
func (c *SlotUsageCounter) UpdateUsedSlots() {
	total := new(uint256.Int).SetBytes32(c.db.GetState(address.HatcheryProcessorAddress, UsedSlotsKey).Bytes())
	total.AddUint64(total, c.created)
	if sub := uint256.NewInt(c.freed); total.Cmp(sub) >= 0 {
		total.Sub(total, sub)
	} else {
		total.Clear()
	}
	c.db.SetState(address.HatcheryProcessorAddress, UsedSlotsKey, total.Bytes32())
	c.created = 0
	c.freed = 0
}

// UsedSlots reads the persistent total of occupied slots.
func UsedSlots(db storageutil.StateAccess) *uint256.Int {
	return new(uint256.Int).SetBytes32(db.GetState(address.HatcheryProcessorAddress, UsedSlotsKey).Bytes())
}
