package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	"github.com/iqbalbaharum/transitive-swap-router/internal/generators"
	"github.com/iqbalbaharum/transitive-swap-router/internal/storage"
)

var ErrLookupIndexOutOfRange = errors.New("lookup table index out of range")

type LookupFetcher interface {
	GetLookupTable(ctx context.Context, addr solana.PublicKey) (addresslookuptable.AddressLookupTableState, error)
}

type LookupCache interface {
	Get(ctx context.Context, table solana.PublicKey) (solana.PublicKeySlice, error)
	Set(ctx context.Context, table solana.PublicKey, addresses solana.PublicKeySlice) error
}

// LookupTables resolves address lookup tables from the cache, falling back to
// the chain when a table is unknown or has grown since it was cached.
type LookupTables struct {
	cache   LookupCache
	fetcher LookupFetcher
}

func NewLookupTables(cache LookupCache, fetcher LookupFetcher) *LookupTables {
	return &LookupTables{cache: cache, fetcher: fetcher}
}

func (l *LookupTables) fetch(ctx context.Context, table solana.PublicKey) (solana.PublicKeySlice, error) {
	state, err := l.fetcher.GetLookupTable(ctx, table)
	if err != nil {
		return nil, err
	}

	if err := l.cache.Set(ctx, table, state.Addresses); err != nil {
		return nil, err
	}

	return state.Addresses, nil
}

func (l *LookupTables) Address(ctx context.Context, table solana.PublicKey, index uint8) (solana.PublicKey, error) {
	addresses, err := l.cache.Get(ctx, table)
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		return solana.PublicKey{}, err
	}

	if err != nil || int(index) >= len(addresses) {
		addresses, err = l.fetch(ctx, table)
		if err != nil {
			return solana.PublicKey{}, err
		}
	}

	if int(index) >= len(addresses) {
		return solana.PublicKey{}, fmt.Errorf("%w: %s[%d]", ErrLookupIndexOutOfRange, table, index)
	}

	return addresses[index], nil
}

// AccountKeys returns the full account list of a versioned transaction: static
// keys, then writable lookups of every table, then readonly lookups.
func (l *LookupTables) AccountKeys(ctx context.Context, tx generators.MempoolTxn) (solana.PublicKeySlice, error) {
	keys := make(solana.PublicKeySlice, 0, len(tx.AccountKeys))
	for _, k := range tx.AccountKeys {
		key, err := solana.PublicKeyFromBase58(k)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	tables := make([]solana.PublicKey, len(tx.AddressTableLookups))
	for i, lookup := range tx.AddressTableLookups {
		table, err := solana.PublicKeyFromBase58(lookup.AccountKey)
		if err != nil {
			return nil, err
		}
		tables[i] = table
	}

	for i, lookup := range tx.AddressTableLookups {
		for _, index := range lookup.WritableIndexes {
			key, err := l.Address(ctx, tables[i], index)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		}
	}

	for i, lookup := range tx.AddressTableLookups {
		for _, index := range lookup.ReadonlyIndexes {
			key, err := l.Address(ctx, tables[i], index)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		}
	}

	return keys, nil
}
