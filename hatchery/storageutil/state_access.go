package storageutil

import (
	"github.com/ethereum/go-ethereum/common"
)

// StateAccess is the narrow view of the durable slot store that every
// hatchery structure composes against. SetState returns the previous value
// of the slot, which the rent accounting relies on.
type StateAccess interface {
	GetState(common.Address, common.Hash) common.Hash
	SetState(common.Address, common.Hash, common.Hash) common.Hash
}
