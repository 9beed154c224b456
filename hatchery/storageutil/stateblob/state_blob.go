// Package stateblob stores variable-length byte strings in 32-byte state
// slots using the Solidity string layout: payloads of up to 31 bytes live
// inline in the head slot with the length marker in the final byte, longer
// payloads keep a length marker in the head slot and the data in the
// consecutive slots that follow it.
package stateblob

import (
	"encoding/binary"
	"iter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nestforge/hatchery/hatchery/address"
	"github.com/nestforge/hatchery/hatchery/storageutil"
)

var emptyHash = common.Hash{}

// SetBlob writes value under key, spreading it over as many consecutive
// slots as the encoding needs. Writing an empty value clears the head slot.
func SetBlob(db storageutil.StateAccess, key common.Hash, value []byte) {
	slot := new(uint256.Int).SetBytes(key[:])
	for chunk := range chunks(value) {
		db.SetState(address.HatcheryProcessorAddress, slot.Bytes32(), chunk)
		slot.AddUint64(slot, 1)
	}
}

// chunks yields the 32-byte slot sequence encoding value.
func chunks(value []byte) iter.Seq[common.Hash] {
	return func(yield func(common.Hash) bool) {
		if len(value) <= 31 {
			head := common.RightPadBytes(value, 32)
			head[31] = byte(len(value) * 2)
			yield(common.BytesToHash(head))
			return
		}

		// Long form: head slot holds 2*len+1, the low bit marking the
		// out-of-line layout.
		marker := uint256.NewInt(uint64(len(value)*2 + 1))
		if !yield(common.BytesToHash(marker.Bytes())) {
			return
		}

		for start := 0; start < len(value); start += 32 {
			end := min(start+32, len(value))
			if !yield(common.BytesToHash(common.RightPadBytes(value[start:end], 32))) {
				return
			}
		}
	}
}

// GetBlob reads the value stored under key. A missing blob reads back as an
// empty slice.
func GetBlob(db storageutil.StateAccess, key common.Hash) []byte {
	head := db.GetState(address.HatcheryProcessorAddress, key)
	if head == emptyHash {
		return []byte{}
	}

	if head[31]&0x01 == 0 {
		length := head[31] / 2
		return head[:length]
	}

	marker := binary.BigEndian.Uint64(head[24:])
	dataLength := (marker - 1) / 2

	value := make([]byte, 0, dataLength)
	remaining := dataLength

	slot := new(uint256.Int).SetBytes(key[:])
	slot.AddUint64(slot, 1)

	for remaining > 0 {
		chunk := db.GetState(address.HatcheryProcessorAddress, slot.Bytes32())
		n := min(remaining, 32)
		value = append(value, chunk[:n]...)
		remaining -= n
		slot.AddUint64(slot, 1)
	}

	return value
}

// DeleteBlob clears every slot occupied by the blob stored under key.
func DeleteBlob(db storageutil.StateAccess, key common.Hash) {
	head := db.GetState(address.HatcheryProcessorAddress, key)
	if head == emptyHash {
		return
	}

	db.SetState(address.HatcheryProcessorAddress, key, emptyHash)

	if head[31]&0x01 == 0 {
		return
	}

	marker := binary.BigEndian.Uint64(head[24:])
	dataLength := (marker - 1) / 2
	numberOfSlots := (dataLength + 31) / 32

	slot := new(uint256.Int).SetBytes(key[:])
	slot.AddUint64(slot, 1)
	for range numberOfSlots {
		db.SetState(address.HatcheryProcessorAddress, slot.Bytes32(), emptyHash)
		slot.AddUint64(slot, 1)
	}
}
