// Package tokenid allocates token identifiers. The running counter is kept
// as a decimal string blob; the next id is always parse+1, re-serialized.
// The counter is the only mutation site for id allocation, so ids come out
// unique and strictly increasing, and a retired id can never be handed out
// again.
package tokenid

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/nestforge/hatchery/hatchery/storageutil"
	"github.com/nestforge/hatchery/hatchery/storageutil/stateblob"
	"github.com/nestforge/hatchery/hatchery/token"
)

// CounterKey is the slot key of the current-token-id blob.
var CounterKey = crypto.Keccak256Hash([]byte("hatcheryV1/currentTokenId"))

var (
	// ErrCorruptCounter means the stored counter does not parse as an
	// unsigned integer. This is state corruption, not a caller mistake.
	ErrCorruptCounter = errors.New("token id counter is corrupt")
	// ErrCounterOverflow means incrementing the counter would exceed the
	// integer width. There is no wraparound.
	ErrCounterOverflow = errors.New("token id counter overflow")
)

// Reset writes the counter's initial value. Called once at contract
// initialization.
func Reset(db storageutil.StateAccess) {
	stateblob.SetBlob(db, CounterKey, []byte("0"))
}

// Current returns the most recently allocated id without advancing the
// counter.
func Current(db storageutil.StateAccess) (token.ID, error) {
	raw := stateblob.GetBlob(db, CounterKey)
	if _, err := strconv.ParseUint(string(raw), 10, 64); err != nil {
		return "", fmt.Errorf("%w: %q", ErrCorruptCounter, raw)
	}
	return token.ID(raw), nil
}

// Next advances the counter by one and returns the newly allocated id.
func Next(db storageutil.StateAccess) (token.ID, error) {
	raw := stateblob.GetBlob(db, CounterKey)

	current, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrCorruptCounter, raw)
	}
	if current == math.MaxUint64 {
		return "", ErrCounterOverflow
	}

	next := strconv.FormatUint(current+1, 10)
	stateblob.SetBlob(db, CounterKey, []byte(next))

	return token.ID(next), nil
}
