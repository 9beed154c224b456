// Package contract is the hatchery core: the evolving-collectible state
// machine layered above the token ledger. It owns initialization, the
// owner-gated catalog surface, the mint and evolve transitions and the
// read-only views. Each exposed operation runs to completion as one atomic
// unit against the shared state; the external dispatcher serializes calls,
// so there is no internal locking.
package contract

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/nestforge/hatchery/hatchery/address"
	"github.com/nestforge/hatchery/hatchery/catalog"
	"github.com/nestforge/hatchery/hatchery/compression"
	"github.com/nestforge/hatchery/hatchery/rent"
	"github.com/nestforge/hatchery/hatchery/storageutil"
	"github.com/nestforge/hatchery/hatchery/storageutil/stateblob"
	"github.com/nestforge/hatchery/hatchery/token"
	"github.com/nestforge/hatchery/hatchery/tokenid"
)

var (
	// OwnerKey is the slot holding the administrative account.
	OwnerKey = crypto.Keccak256Hash([]byte("hatcheryV1/contractOwner"))
	// DescriptorKey is the slot of the contract descriptor blob. Its
	// presence doubles as the initialized flag.
	DescriptorKey = crypto.Keccak256Hash([]byte("hatcheryV1/contractDescriptor"))
)

// EggType is the catalog type of the base stage.
const EggType = "egg"

// StageType maps an evolution level to its catalog type label.
func StageType(level uint64) string {
	if level == 0 {
		return EggType
	}
	return fmt.Sprintf("level%d", level)
}

// SelectionPolicy decides how the catalog entry of a mint or evolution is
// chosen.
type SelectionPolicy int

const (
	// ExplicitIndex lets the caller supply the catalog position.
	ExplicitIndex SelectionPolicy = iota
	// Randomized derives the position from the injected random source,
	// removing caller control over the minted variant.
	Randomized
)

// Config fixes the deployment-mode knobs of a contract instance.
type Config struct {
	// MaxLevel is the terminal evolution stage.
	MaxLevel uint64
	// CooldownSeconds is the fixed time a lineage must wait between stage
	// transitions.
	CooldownSeconds uint64
	Selection       SelectionPolicy
	RentMode        rent.Mode
	// CostPerSlot prices one created storage slot in Measured mode.
	CostPerSlot *uint256.Int
	// FlatFee is the per-operation charge in Flat mode.
	FlatFee  *uint256.Int
	Random   RandomSource
	Refunder rent.Refunder
}

// DefaultConfig is the production deployment shape: three evolution stages
// past the egg, a day of cooldown, randomized selection, measured rent.
func DefaultConfig() Config {
	return Config{
		MaxLevel:        3,
		CooldownSeconds: 86400,
		Selection:       Randomized,
		RentMode:        rent.Measured,
		CostPerSlot:     uint256.NewInt(1_000_000_000_000_000),
		FlatFee:         uint256.NewInt(0),
		Random:          CryptoRandom(),
	}
}

// Call carries the per-call environment the external dispatcher supplies:
// the validated caller account, the attached deposit and the current time
// in unix seconds.
type Call struct {
	Caller  common.Address
	Deposit *uint256.Int
	Now     uint64
}

type Contract struct {
	db  storageutil.StateAccess
	cfg Config
}

func New(db storageutil.StateAccess, cfg Config) *Contract {
	return &Contract{db: db, cfg: cfg}
}

// Initialize performs the one-time setup: administrative owner, token id
// counter, contract descriptor. Re-initialization is forbidden once state
// exists.
func (c *Contract) Initialize(owner common.Address, descriptor token.Descriptor) error {
	if len(stateblob.GetBlob(c.db, DescriptorKey)) > 0 {
		return ErrAlreadyInitialized
	}
	if err := descriptor.Validate(); err != nil {
		return err
	}

	encoded, err := rlp.EncodeToBytes(&descriptor)
	if err != nil {
		return fmt.Errorf("failed to encode descriptor: %w", err)
	}

	c.db.SetState(address.HatcheryProcessorAddress, OwnerKey, token.AddressToHash(owner))
	tokenid.Reset(c.db)
	stateblob.SetBlob(c.db, DescriptorKey, compression.ZstdCompress(encoded))

	return nil
}

// InitializeDefault sets up the contract with the stock descriptor.
func (c *Contract) InitializeDefault(owner common.Address) error {
	return c.Initialize(owner, token.Descriptor{
		Name:   "Hatchery Collectibles",
		Symbol: "HATCH",
	})
}

// Owner returns the administrative account.
func (c *Contract) Owner() common.Address {
	return token.HashToAddress(c.db.GetState(address.HatcheryProcessorAddress, OwnerKey))
}

// Descriptor returns the contract-level metadata set at initialization.
func (c *Contract) Descriptor() (*token.Descriptor, error) {
	compressed := stateblob.GetBlob(c.db, DescriptorKey)
	if len(compressed) == 0 {
		return nil, ErrNotInitialized
	}

	encoded, err := compression.ZstdDecompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress descriptor: %w", err)
	}

	descriptor := token.Descriptor{}
	if err := rlp.DecodeBytes(encoded, &descriptor); err != nil {
		return nil, fmt.Errorf("failed to decode descriptor: %w", err)
	}
	return &descriptor, nil
}

// AddMetadata inserts a template into the catalog under typ. Restricted to
// the administrative owner.
func (c *Contract) AddMetadata(call Call, typ string, template token.Metadata) error {
	if call.Caller != c.Owner() {
		return fmt.Errorf("%w: %s", ErrUnauthorized, call.Caller)
	}
	return catalog.Add(c.db, typ, template)
}

// accountant builds the rent accountant for one mutating operation.
func (c *Contract) accountant(counter *rent.SlotUsageCounter) *rent.Accountant {
	return rent.NewAccountant(c.cfg.RentMode, c.cfg.CostPerSlot, c.cfg.FlatFee, counter, c.cfg.Refunder)
}

// selectStamped reads the catalog entry at position within typ and stamps
// the per-issue fields on the returned copy: issue time, single copy, next
// evolution unlock. The stored template is never written back.
func (c *Contract) selectStamped(db storageutil.StateAccess, typ string, position uint64, now uint64) (*token.Metadata, error) {
	md, err := catalog.EntryAt(db, typ, position)
	if err != nil {
		return nil, err
	}

	md.IssuedAt = now
	md.Copies = 1
	md.Extra = now + c.cfg.CooldownSeconds

	return md, nil
}

// selectPosition resolves the catalog position for a selection under the
// configured policy. Randomized mode reduces a seed byte modulo the type's
// entry count; the 1-based step mirrors the position encoding of the
// backing set and cancels out before the fetch.
func (c *Contract) selectPosition(db storageutil.StateAccess, typ string, explicit uint64) (uint64, error) {
	if c.cfg.Selection == ExplicitIndex {
		return explicit, nil
	}

	count := catalog.Count(db, typ)
	if count == 0 {
		return 0, fmt.Errorf("%w: %q", catalog.ErrUnknownType, typ)
	}

	position := uint64(c.cfg.Random.NextByte())%count + 1
	return position - 1, nil
}
