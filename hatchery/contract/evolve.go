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

// Evolve advances the lineage carried by id to its next stage: the old
// token is retired (ownership, metadata, index and approval records all
// removed) and a new token is issued under a fresh id with the same species
// and level+1. Preconditions are checked before any mutation: the token
// must exist, the caller must own it, receiver must name that same owner,
// the cooldown stamped in the token's metadata must have elapsed, and the
// next stage must not exceed the terminal level.
func (c *Contract) Evolve(call Call, id token.ID, receiver common.Address) (_ *token.Token, _ []*types.Log, err error) {
	defer func() {
		if err != nil {
			log.Error("failed to run evolve", "tokenId", id, "error", err)
		}
	}()

	overlay := pending.NewOverlay(c.db)
	defer overlay.Discard()

	counter := rent.NewSlotUsageCounter(overlay)
	led := ledger.New(counter)

	owner, ok := led.LookupOwner(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ledger.ErrTokenNotFound, id)
	}
	if call.Caller != owner {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotTokenOwner, call.Caller)
	}
	if receiver != owner {
		return nil, nil, fmt.Errorf("%w: receiver %s does not match the current owner", ErrNotTokenOwner, receiver)
	}

	md, err := led.LookupMetadata(id)
	if err != nil {
		return nil, nil, err
	}
	if md.Extra > call.Now {
		return nil, nil, fmt.Errorf("%w: unlocks at %d, now %d", ErrCooldownActive, md.Extra, call.Now)
	}

	level, ok := lineage.Level(counter, id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: no level recorded for %s", ledger.ErrTokenNotFound, id)
	}
	species, ok := lineage.Species(counter, id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: no species recorded for %s", ledger.ErrTokenNotFound, id)
	}

	nextLevel := level + 1
	if nextLevel > c.cfg.MaxLevel {
		return nil, nil, fmt.Errorf("%w: level %d is terminal", ErrMaxLevelReached, level)
	}

	nextMD, err := c.selectStamped(counter, StageType(nextLevel), species, call.Now)
	if err != nil {
		return nil, nil, err
	}

	led.RemoveApprovals(id)
	led.RemoveMetadata(id)
	if err := led.RemoveFromOwnerIndex(owner, id); err != nil {
		return nil, nil, err
	}
	led.RemoveOwner(id)
	lineage.Clear(counter, id)

	newID, err := tokenid.Next(counter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to allocate token id: %w", err)
	}

	led.InsertOwner(newID, owner)
	if err := led.InsertMetadata(newID, *nextMD); err != nil {
		return nil, nil, err
	}
	if err := led.AddToOwnerIndex(owner, newID); err != nil {
		return nil, nil, err
	}

	lineage.SetLevel(counter, newID, nextLevel)
	lineage.SetSpecies(counter, newID, species)

	refund, err := c.accountant(counter).Settle(call.Caller, call.Deposit)
	if err != nil {
		return nil, nil, err
	}

	overlay.Commit()

	emitted := []*types.Log{evolvedLog(id, newID, owner, nextLevel)}
	if refund != nil {
		emitted = append(emitted, refundedLog(call.Caller, refund))
	}

	evolved := &token.Token{ID: newID, Owner: owner, Metadata: *nextMD}
	return evolved, emitted, nil
}

func evolvedLog(oldID, newID token.ID, owner common.Address, level uint64) *types.Log {
	data := make([]byte, 64)
	copy(data[:32], oldID.Key().Bytes())
	uint256.NewInt(level).PutUint256(data[32:])

	return &types.Log{
		Address: address.HatcheryProcessorAddress,
		Topics: []common.Hash{
			logs.HatcheryTokenEvolved,
			newID.Key(),
			token.AddressToHash(owner),
		},
		Data: data,
	}
}
