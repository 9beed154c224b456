// Package catalog is the owner-curated collection of metadata templates,
// grouped by a lowercase type label. Each type holds a set of templates:
// the set member is the keccak hash of the template's canonical RLP
// encoding, so an exact duplicate maps to the same member and inserting it
// again is a no-op. Members are enumerable and addressable by a stable
// position, which is what selection runs on. Templates are immutable once
// added; selection only ever reads them. Template bodies are stored
// brotli-compressed, the codec used elsewhere for write-once payloads.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/nestforge/hatchery/hatchery/compression"
	"github.com/nestforge/hatchery/hatchery/storageutil"
	"github.com/nestforge/hatchery/hatchery/storageutil/keyset"
	"github.com/nestforge/hatchery/hatchery/storageutil/stateblob"
	"github.com/nestforge/hatchery/hatchery/token"
)

var (
	// TypesKey identifies the set of registered type labels.
	TypesKey = crypto.Keccak256Hash([]byte("hatcheryV1/catalogTypes"))

	typeLabelSalt    = []byte("hatcheryV1/catalogTypeLabel")
	typeEntriesSalt  = []byte("hatcheryV1/catalogEntries")
	templateBodySalt = []byte("hatcheryV1/catalogTemplate")
)

var (
	ErrUnknownType     = errors.New("metadata type has not been registered")
	ErrEntryOutOfRange = errors.New("metadata entry index out of range")
)

// Normalize maps a caller-supplied type label to its canonical lowercase
// form. All catalog operations key on the normalized label.
func Normalize(typ string) string {
	return strings.ToLower(typ)
}

func entriesKey(typ string) common.Hash {
	return crypto.Keccak256Hash(typeEntriesSalt, []byte(typ))
}

// Add inserts template into the set registered under typ, normalizing the
// label first. Adding an exact duplicate leaves the set unchanged.
func Add(db storageutil.StateAccess, typ string, template token.Metadata) error {
	typ = Normalize(typ)

	encoded, err := rlp.EncodeToBytes(&template)
	if err != nil {
		return fmt.Errorf("failed to encode template: %w", err)
	}
	member := crypto.Keccak256Hash(encoded)

	labelMember := crypto.Keccak256Hash([]byte(typ))
	if err := keyset.Add(db, TypesKey, labelMember); err != nil {
		return fmt.Errorf("failed to register type: %w", err)
	}
	stateblob.SetBlob(db, crypto.Keccak256Hash(typeLabelSalt, labelMember[:]), []byte(typ))

	if err := keyset.Add(db, entriesKey(typ), member); err != nil {
		return fmt.Errorf("failed to add template to type set: %w", err)
	}
	body, err := compression.BrotliCompress(encoded)
	if err != nil {
		return fmt.Errorf("failed to compress template: %w", err)
	}
	stateblob.SetBlob(db, crypto.Keccak256Hash(templateBodySalt, member[:]), body)

	return nil
}

// Count returns the number of templates registered under typ.
func Count(db storageutil.StateAccess, typ string) uint64 {
	return keyset.Size(db, entriesKey(Normalize(typ)))
}

// EntryAt returns the template at the 0-based logical position within typ's
// set. The returned value is a fresh copy; stamping it never touches the
// stored template.
func EntryAt(db storageutil.StateAccess, typ string, position uint64) (*token.Metadata, error) {
	typ = Normalize(typ)

	size := keyset.Size(db, entriesKey(typ))
	if size == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	if position >= size {
		return nil, fmt.Errorf("%w: %d of %d in %q", ErrEntryOutOfRange, position, size, typ)
	}

	member, err := keyset.At(db, entriesKey(typ), position)
	if err != nil {
		return nil, fmt.Errorf("failed to read template member: %w", err)
	}

	return loadTemplate(db, member)
}

func loadTemplate(db storageutil.StateAccess, member common.Hash) (*token.Metadata, error) {
	compressed := stateblob.GetBlob(db, crypto.Keccak256Hash(templateBodySalt, member[:]))
	encoded, err := compression.BrotliDecompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress template: %w", err)
	}

	template := token.Metadata{}
	if err := rlp.DecodeBytes(encoded, &template); err != nil {
		return nil, fmt.Errorf("failed to decode template: %w", err)
	}
	return &template, nil
}

// Types returns the registered type labels in registration order.
func Types(db storageutil.StateAccess) []string {
	labels := []string{}
	for member := range keyset.Iterate(db, TypesKey) {
		labels = append(labels, string(stateblob.GetBlob(db, crypto.Keccak256Hash(typeLabelSalt, member[:]))))
	}
	return labels
}

// Entries returns every template registered under typ in insertion order.
func Entries(db storageutil.StateAccess, typ string) ([]token.Metadata, error) {
	typ = Normalize(typ)

	if keyset.Size(db, entriesKey(typ)) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}

	templates := []token.Metadata{}
	var loadErr error
	for member := range keyset.Iterate(db, entriesKey(typ)) {
		template, err := loadTemplate(db, member)
		if err != nil {
			loadErr = err
			break
		}
		templates = append(templates, *template)
	}
	if loadErr != nil {
		return nil, loadErr
	}
	return templates, nil
}
