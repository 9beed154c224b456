// Package pending provides a write-buffering overlay on top of a StateAccess.
//
// Every mutating contract call runs against an overlay: writes accumulate in
// memory while reads see the overlay first and the backing store second. On
// success the overlay is committed in one pass; on any failure it is simply
// dropped, so no partial write of an aborted call ever reaches the backing
// store.
package pending

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/nestforge/hatchery/hatchery/storageutil"
)

type slot struct {
	addr common.Address
	key  common.Hash
}

type Overlay struct {
	backing storageutil.StateAccess
	writes  map[slot]common.Hash
	order   []slot
}

func NewOverlay(backing storageutil.StateAccess) *Overlay {
	return &Overlay{
		backing: backing,
		writes:  make(map[slot]common.Hash),
	}
}

func (o *Overlay) GetState(addr common.Address, key common.Hash) common.Hash {
	if v, ok := o.writes[slot{addr, key}]; ok {
		return v
	}
	return o.backing.GetState(addr, key)
}

func (o *Overlay) SetState(addr common.Address, key common.Hash, value common.Hash) common.Hash {
	s := slot{addr, key}
	prev, buffered := o.writes[s]
	if !buffered {
		prev = o.backing.GetState(addr, key)
		o.order = append(o.order, s)
	}
	o.writes[s] = value
	return prev
}

// Commit flushes the buffered writes to the backing store in write order and
// resets the overlay for reuse.
func (o *Overlay) Commit() {
	for _, s := range o.order {
		o.backing.SetState(s.addr, s.key, o.writes[s])
	}
	o.Discard()
}

// Discard drops all buffered writes without touching the backing store.
func (o *Overlay) Discard() {
	o.writes = make(map[slot]common.Hash)
	o.order = nil
}

// Dirty reports whether the overlay holds uncommitted writes.
func (o *Overlay) Dirty() bool {
	return len(o.writes) > 0
}
