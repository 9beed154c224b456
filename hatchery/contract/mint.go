package contract

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/nestforge/hatchery/hatchery/address"
	"github.com/nestforge/hatchery/hatchery/ledger"
	"github.com/nestforge/hatchery/hatchery/lineage"
	"github.com/nestforge/hatchery/hatchery/logs"
	"github.com/nestforge/hatchery/hatchery/rent"
	"github.com/nestforge/hatchery/hatchery/storageutil/pending"
	"github.com/nestforge/hatchery/hatchery/token"
	"github.com/nestforge/hatchery/hatchery/tokenid"
)

// Mint creates a base-stage token for receiver: a fresh id, an egg template
// selected under the configured policy (entry names the catalog position in
// explicit mode and is ignored in randomized mode), the ownership and index
// bindings, and the lineage counters at level 0. The storage bill is
// settled from the call's deposit before anything is committed.
func (c *Contract) Mint(call Call, receiver common.Address, entry uint64) (_ *token.Token, _ []*types.Log, err error) {
	defer func() {
		if err != nil {
			log.Error("failed to run mint", "receiver", receiver, "error", err)
		}
	}()

	overlay := pending.NewOverlay(c.db)
	defer overlay.Discard()

	counter := rent.NewSlotUsageCounter(overlay)
	led := ledger.New(counter)

	id, err := tokenid.Next(counter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to allocate token id: %w", err)
	}

	position, err := c.selectPosition(counter, EggType, entry)
	if err != nil {
		return nil, nil, err
	}

	md, err := c.selectStamped(counter, EggType, position, call.Now)
	if err != nil {
		return nil, nil, err
	}

	led.InsertOwner(id, receiver)
	if err := led.InsertMetadata(id, *md); err != nil {
		return nil, nil, err
	}
	if err := led.AddToOwnerIndex(receiver, id); err != nil {
		return nil, nil, err
	}

	lineage.SetLevel(counter, id, 0)
	lineage.SetSpecies(counter, id, position)

	refund, err := c.accountant(counter).Settle(call.Caller, call.Deposit)
	if err != nil {
		return nil, nil, err
	}

	overlay.Commit()

	emitted := []*types.Log{mintedLog(id, receiver, position)}
	if refund != nil {
		emitted = append(emitted, refundedLog(call.Caller, refund))
	}

	minted := &token.Token{ID: id, Owner: receiver, Metadata: *md}
	return minted, emitted, nil
}

func mintedLog(id token.ID, owner common.Address, species uint64) *types.Log {
	data := make([]byte, 32)
	uint256.NewInt(species).PutUint256(data)

	return &types.Log{
		Address: address.HatcheryProcessorAddress,
		Topics: []common.Hash{
			logs.HatcheryTokenMinted,
			id.Key(),
			token.AddressToHash(owner),
		},
		Data: data,
	}
}

func refundedLog(payer common.Address, amount *uint256.Int) *types.Log {
	data := make([]byte, 32)
	amount.PutUint256(data)

	return &types.Log{
		Address: address.HatcheryProcessorAddress,
		Topics: []common.Hash{
			logs.HatcheryDepositRefunded,
			token.AddressToHash(payer),
		},
		Data: data,
	}
}
