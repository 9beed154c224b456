// Package ledger is the durable token ledger: the ownership map, the
// metadata-by-id map, the per-owner index and the approval bookkeeping.
// The contract core drives it only through the narrow insert/remove/lookup
// surface; nothing else touches these structures.
package ledger

import (
	"errors"
	"fmt"
	"iter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/nestforge/hatchery/hatchery/address"
	"github.com/nestforge/hatchery/hatchery/compression"
	"github.com/nestforge/hatchery/hatchery/storageutil"
	"github.com/nestforge/hatchery/hatchery/storageutil/keyset"
	"github.com/nestforge/hatchery/hatchery/storageutil/stateblob"
	"github.com/nestforge/hatchery/hatchery/token"
)

var (
	ownerSalt          = []byte("hatcheryV1/ledgerOwner")
	metadataSalt       = []byte("hatcheryV1/ledgerMetadata")
	idRecordSalt       = []byte("hatcheryV1/ledgerIdRecord")
	ownerIndexSalt     = []byte("hatcheryV1/ledgerOwnerIndex")
	approvalsSalt      = []byte("hatcheryV1/ledgerApprovals")
	nextApprovalIDSalt = []byte("hatcheryV1/ledgerNextApprovalId")
)

var ErrTokenNotFound = errors.New("token not found in ledger")

// State implements the ledger over a slot store.
type State struct {
	db storageutil.StateAccess
}

func New(db storageutil.StateAccess) *State {
	return &State{db: db}
}

func ownerSlot(key common.Hash) common.Hash {
	return crypto.Keccak256Hash(ownerSalt, key[:])
}

func metadataSlot(key common.Hash) common.Hash {
	return crypto.Keccak256Hash(metadataSalt, key[:])
}

func idRecordSlot(key common.Hash) common.Hash {
	return crypto.Keccak256Hash(idRecordSalt, key[:])
}

// OwnerIndexKey identifies the per-owner token set.
func OwnerIndexKey(owner common.Address) common.Hash {
	return crypto.Keccak256Hash(ownerIndexSalt, owner[:])
}

func approvalsKey(key common.Hash) common.Hash {
	return crypto.Keccak256Hash(approvalsSalt, key[:])
}

// InsertOwner binds id to owner. The raw id string is kept alongside the
// binding so the per-owner index can be listed back as ids.
func (s *State) InsertOwner(id token.ID, owner common.Address) {
	key := id.Key()
	s.db.SetState(address.HatcheryProcessorAddress, ownerSlot(key), token.AddressToHash(owner))
	stateblob.SetBlob(s.db, idRecordSlot(key), []byte(id))
}

// RemoveOwner drops the ownership binding of id.
func (s *State) RemoveOwner(id token.ID) {
	key := id.Key()
	s.db.SetState(address.HatcheryProcessorAddress, ownerSlot(key), common.Hash{})
	stateblob.DeleteBlob(s.db, idRecordSlot(key))
}

// LookupOwner returns the account that owns id, or false if the id is not
// live.
func (s *State) LookupOwner(id token.ID) (common.Address, bool) {
	v := s.db.GetState(address.HatcheryProcessorAddress, ownerSlot(id.Key()))
	if v == (common.Hash{}) {
		return common.Address{}, false
	}
	return token.HashToAddress(v), true
}

// InsertMetadata stores the metadata snapshot of id.
func (s *State) InsertMetadata(id token.ID, md token.Metadata) error {
	encoded, err := rlp.EncodeToBytes(&md)
	if err != nil {
		return fmt.Errorf("failed to encode token metadata: %w", err)
	}
	stateblob.SetBlob(s.db, metadataSlot(id.Key()), compression.ZstdCompress(encoded))
	return nil
}

// RemoveMetadata drops the metadata snapshot of id.
func (s *State) RemoveMetadata(id token.ID) {
	stateblob.DeleteBlob(s.db, metadataSlot(id.Key()))
}

// LookupMetadata returns the metadata snapshot of id, or ErrTokenNotFound
// if none is stored.
func (s *State) LookupMetadata(id token.ID) (*token.Metadata, error) {
	compressed := stateblob.GetBlob(s.db, metadataSlot(id.Key()))
	if len(compressed) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}

	encoded, err := compression.ZstdDecompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress token metadata: %w", err)
	}

	md := token.Metadata{}
	if err := rlp.DecodeBytes(encoded, &md); err != nil {
		return nil, fmt.Errorf("failed to decode token metadata: %w", err)
	}
	return &md, nil
}

// AddToOwnerIndex records id in owner's enumerable token set.
func (s *State) AddToOwnerIndex(owner common.Address, id token.ID) error {
	if err := keyset.Add(s.db, OwnerIndexKey(owner), id.Key()); err != nil {
		return fmt.Errorf("failed to add token to owner index: %w", err)
	}
	return nil
}

// RemoveFromOwnerIndex drops id from owner's token set.
func (s *State) RemoveFromOwnerIndex(owner common.Address, id token.ID) error {
	if err := keyset.Remove(s.db, OwnerIndexKey(owner), id.Key()); err != nil {
		return fmt.Errorf("failed to remove token from owner index: %w", err)
	}
	return nil
}

// OwnerIndexSize returns the number of tokens in owner's set.
func (s *State) OwnerIndexSize(owner common.Address) uint64 {
	return keyset.Size(s.db, OwnerIndexKey(owner))
}

// ListOwnerIndex yields the ids in owner's set in enumeration order.
func (s *State) ListOwnerIndex(owner common.Address) iter.Seq[token.ID] {
	return func(yield func(token.ID) bool) {
		for key := range keyset.Iterate(s.db, OwnerIndexKey(owner)) {
			id := token.ID(stateblob.GetBlob(s.db, idRecordSlot(key)))
			if !yield(id) {
				return
			}
		}
	}
}

// Approve grants account an approval on id and returns the approval id.
// The delegation protocol itself lives outside the core; the ledger only
// keeps the books.
func (s *State) Approve(id token.ID, account common.Address) (uint64, error) {
	key := id.Key()

	nextSlot := crypto.Keccak256Hash(nextApprovalIDSalt, key[:])
	next := new(uint256.Int).SetBytes32(s.db.GetState(address.HatcheryProcessorAddress, nextSlot).Bytes())
	next.AddUint64(next, 1)
	s.db.SetState(address.HatcheryProcessorAddress, nextSlot, next.Bytes32())

	if err := keyset.Add(s.db, approvalsKey(key), token.AddressToHash(account)); err != nil {
		return 0, fmt.Errorf("failed to record approval: %w", err)
	}
	return next.Uint64(), nil
}

// IsApproved reports whether account holds an approval on id.
func (s *State) IsApproved(id token.ID, account common.Address) bool {
	return keyset.Contains(s.db, approvalsKey(id.Key()), token.AddressToHash(account))
}

// Revoke removes account's approval on id.
func (s *State) Revoke(id token.ID, account common.Address) error {
	return keyset.Remove(s.db, approvalsKey(id.Key()), token.AddressToHash(account))
}

// RemoveApprovals clears every approval record of id, including the
// next-approval-id counter. Called when a token is retired.
func (s *State) RemoveApprovals(id token.ID) {
	key := id.Key()
	keyset.Clear(s.db, approvalsKey(key))
	s.db.SetState(address.HatcheryProcessorAddress, crypto.Keccak256Hash(nextApprovalIDSalt, key[:]), common.Hash{})
}
