// Package rent reconciles a caller's attached deposit against the storage
// cost of the operation they ran. Two modes exist across deployments:
// Measured prices the net slots the operation actually created, Flat
// charges a fixed per-operation fee. Excess deposit beyond a negligible
// unit is refunded through a fire-and-forget transfer.
package rent

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Mode selects how the required cost of an operation is determined.
type Mode int

const (
	// Measured charges per net created storage slot.
	Measured Mode = iota
	// Flat charges a fixed fee per mutating operation.
	Flat
)

var ErrInsufficientDeposit = errors.New("attached deposit does not cover storage cost")

// Refunder dispatches the asynchronous refund transfer. The accountant
// never awaits, verifies or retries the transfer; a failed refund does not
// roll back the committed state change.
type Refunder interface {
	Transfer(to common.Address, amount *uint256.Int)
}

// Accountant settles one operation's storage bill.
type Accountant struct {
	mode        Mode
	costPerSlot *uint256.Int
	flatFee     *uint256.Int
	counter     *SlotUsageCounter
	refunder    Refunder
}

func NewAccountant(mode Mode, costPerSlot, flatFee *uint256.Int, counter *SlotUsageCounter, refunder Refunder) *Accountant {
	return &Accountant{
		mode:        mode,
		costPerSlot: costPerSlot,
		flatFee:     flatFee,
		counter:     counter,
		refunder:    refunder,
	}
}

// Required returns the cost the settled operation must cover.
func (a *Accountant) Required() *uint256.Int {
	if a.mode == Flat {
		return new(uint256.Int).Set(a.flatFee)
	}
	return new(uint256.Int).Mul(a.costPerSlot, uint256.NewInt(a.counter.NetCreatedSlots()))
}

// Settle checks the attached deposit against the required cost. On success
// it folds the slot delta into the persistent total and, if the excess is
// more than one unit, dispatches the refund to payer and returns the
// dispatched amount; otherwise it returns nil. On failure nothing is
// persisted and the caller must discard the operation's writes.
func (a *Accountant) Settle(payer common.Address, deposit *uint256.Int) (*uint256.Int, error) {
	required := a.Required()

	if deposit == nil || deposit.Cmp(required) < 0 {
		return nil, fmt.Errorf("%w: required %s, attached %s", ErrInsufficientDeposit, required, deposit)
	}

	a.counter.UpdateUsedSlots()

	refund := new(uint256.Int).Sub(deposit, required)
	if refund.CmpUint64(1) > 0 && a.refunder != nil {
		a.refunder.Transfer(payer, refund)
		return refund, nil
	}

	return nil, nil
}
