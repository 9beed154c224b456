package contract

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nestforge/hatchery/hatchery/catalog"
	"github.com/nestforge/hatchery/hatchery/ledger"
	"github.com/nestforge/hatchery/hatchery/lineage"
	"github.com/nestforge/hatchery/hatchery/token"
)

// TokensForOwner returns a page of account's live tokens: offset tokens are
// skipped, at most limit are returned. An unknown owner yields an empty
// page, never an error.
func (c *Contract) TokensForOwner(account common.Address, offset, limit uint64) ([]token.Token, error) {
	led := ledger.New(c.db)

	page := []token.Token{}
	var skipped uint64
	var loadErr error

	for id := range led.ListOwnerIndex(account) {
		if skipped < offset {
			skipped++
			continue
		}
		if uint64(len(page)) >= limit {
			break
		}

		t, err := c.TokenByID(id)
		if err != nil {
			loadErr = err
			break
		}
		if t == nil {
			loadErr = fmt.Errorf("owner index lists unknown token %s", id)
			break
		}
		page = append(page, *t)
	}
	if loadErr != nil {
		return nil, loadErr
	}

	return page, nil
}

// TokenByID returns the owner and metadata of id, or nil if the id is not
// live.
func (c *Contract) TokenByID(id token.ID) (*token.Token, error) {
	led := ledger.New(c.db)

	owner, ok := led.LookupOwner(id)
	if !ok {
		return nil, nil
	}

	md, err := led.LookupMetadata(id)
	if err != nil {
		if errors.Is(err, ledger.ErrTokenNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &token.Token{ID: id, Owner: owner, Metadata: *md}, nil
}

// CatalogTypes lists the registered catalog type labels.
func (c *Contract) CatalogTypes() []string {
	return catalog.Types(c.db)
}

// CatalogEntries lists the templates registered under typ.
func (c *Contract) CatalogEntries(typ string) ([]token.Metadata, error) {
	return catalog.Entries(c.db, typ)
}

// LevelOf returns the current evolution level of the lineage carried by id.
func (c *Contract) LevelOf(id token.ID) (uint64, error) {
	level, ok := lineage.Level(c.db, id)
	if !ok {
		return 0, fmt.Errorf("%w: no level recorded for %s", ledger.ErrTokenNotFound, id)
	}
	return level, nil
}

// SpeciesOf returns the catalog variant the lineage carried by id
// originated from.
func (c *Contract) SpeciesOf(id token.ID) (uint64, error) {
	species, ok := lineage.Species(c.db, id)
	if !ok {
		return 0, fmt.Errorf("%w: no species recorded for %s", ledger.ErrTokenNotFound, id)
	}
	return species, nil
}
