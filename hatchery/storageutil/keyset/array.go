package keyset

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nestforge/hatchery/hatchery/address"
	"github.com/nestforge/hatchery/hatchery/storageutil"
)

var (
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	ErrArrayEmpty       = errors.New("array is empty")
)

// slotArray is a dense array laid out in consecutive state slots: the base
// slot holds the size, element i lives at base+1+i.
type slotArray struct {
	db   storageutil.StateAccess
	base common.Hash
}

func newSlotArray(db storageutil.StateAccess, base common.Hash) *slotArray {
	return &slotArray{db: db, base: base}
}

func (a *slotArray) size() *uint256.Int {
	return new(uint256.Int).SetBytes32(a.db.GetState(address.HatcheryProcessorAddress, a.base).Bytes())
}

func (a *slotArray) elementSlot(index *uint256.Int) common.Hash {
	s := new(uint256.Int).SetBytes32(a.base.Bytes())
	s.Add(s, index)
	s.AddUint64(s, 1)
	return s.Bytes32()
}

func (a *slotArray) get(index *uint256.Int) (common.Hash, error) {
	if index.Cmp(a.size()) >= 0 {
		return common.Hash{}, ErrIndexOutOfBounds
	}
	return a.db.GetState(address.HatcheryProcessorAddress, a.elementSlot(index)), nil
}

func (a *slotArray) set(index *uint256.Int, value common.Hash) error {
	if index.Cmp(a.size()) >= 0 {
		return ErrIndexOutOfBounds
	}
	a.db.SetState(address.HatcheryProcessorAddress, a.elementSlot(index), value)
	return nil
}

func (a *slotArray) append(value common.Hash) {
	size := a.size()
	a.db.SetState(address.HatcheryProcessorAddress, a.elementSlot(size), value)
	size.AddUint64(size, 1)
	a.db.SetState(address.HatcheryProcessorAddress, a.base, size.Bytes32())
}

func (a *slotArray) removeLast() error {
	size := a.size()
	if size.IsZero() {
		return ErrArrayEmpty
	}
	size.SubUint64(size, 1)
	a.db.SetState(address.HatcheryProcessorAddress, a.base, size.Bytes32())
	a.db.SetState(address.HatcheryProcessorAddress, a.elementSlot(size), common.Hash{})
	return nil
}

func (a *slotArray) iterate(yield func(value common.Hash) bool) {
	size := a.size()
	for i := uint256.NewInt(0); i.Cmp(size) < 0; i.AddUint64(i, 1) {
		value, err := a.get(i)
		if err != nil {
			return
		}
		if !yield(value) {
			return
		}
	}
}

func (a *slotArray) clear() {
	size := a.size()
	a.db.SetState(address.HatcheryProcessorAddress, a.base, common.Hash{})
	for i := uint256.NewInt(0); i.Cmp(size) < 0; i.AddUint64(i, 1) {
		a.db.SetState(address.HatcheryProcessorAddress, a.elementSlot(i), common.Hash{})
	}
}
