// Package token defines the durable record types of the hatchery: token
// identifiers, the per-token metadata snapshot, and the contract-level
// descriptor. Records are serialized with RLP before being blobbed into
// state slots.
package token

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeySalt versions the derivation of slot keys from token ids.
var KeySalt = []byte("hatcheryV1/token")

// ID is a token identifier: the decimal rendering of a strictly increasing
// unsigned counter. Ids are never reused; retiring a token retires its id
// for good.
type ID string

// Key derives the 32-byte state key under which everything about this token
// is stored.
func (id ID) Key() common.Hash {
	return crypto.Keccak256Hash(KeySalt, []byte(id))
}

// Metadata is the snapshot stored with a live token. Title, Description,
// Media, MediaHash and Reference come from the catalog template verbatim;
// Copies, IssuedAt and Extra are stamped fresh at selection time and never
// written back into the catalog.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Media       string `json:"media"`
	MediaHash   []byte `json:"mediaHash"`
	Reference   string `json:"reference"`
	Copies      uint64 `json:"copies"`
	IssuedAt    uint64 `json:"issuedAt"`
	// Extra carries the lineage's next-eligible-evolution time in unix
	// seconds. Zero means the snapshot predates any cooldown stamping.
	Extra uint64 `json:"extra"`
}

// Descriptor is the contract-level metadata, written exactly once at
// initialization.
type Descriptor struct {
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Icon    string `json:"icon"`
	BaseURI string `json:"baseUri"`
}

var ErrInvalidDescriptor = errors.New("descriptor requires a name and a symbol")

func (d *Descriptor) Validate() error {
	if d.Name == "" || d.Symbol == "" {
		return ErrInvalidDescriptor
	}
	return nil
}

// Token is the external view of a live token.
type Token struct {
	ID       ID             `json:"tokenId"`
	Owner    common.Address `json:"ownerId"`
	Metadata Metadata       `json:"metadata"`
}

// AddressToHash left-pads an account address into a 32-byte slot value.
func AddressToHash(a common.Address) common.Hash {
	h := common.Hash{}
	copy(h[12:], a[:])
	return h
}

// HashToAddress recovers an account address from a slot value written by
// AddressToHash.
func HashToAddress(h common.Hash) common.Address {
	return common.BytesToAddress(h[12:])
}
