package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
)

type LookupTableAccount struct {
	Addresses []solana.PublicKey
}

// LookupTableStorage keeps resolved address lookup tables in memory, backed by
// a redis hash so other instances can reuse them.
type LookupTableStorage struct {
	client  *redis.Client
	mu      sync.RWMutex
	storage map[solana.PublicKey]solana.PublicKeySlice
}

func NewLookupTableStorage(client *redis.Client) *LookupTableStorage {
	return &LookupTableStorage{
		client:  client,
		storage: make(map[solana.PublicKey]solana.PublicKeySlice),
	}
}

func (s *LookupTableStorage) Set(ctx context.Context, table solana.PublicKey, addresses solana.PublicKeySlice) error {
	s.mu.Lock()
	s.storage[table] = addresses
	s.mu.Unlock()

	data, err := json.Marshal(LookupTableAccount{Addresses: addresses})
	if err != nil {
		return err
	}

	return s.client.HSet(ctx, KEY_LOOKUP, table.String(), data).Err()
}

func (s *LookupTableStorage) Get(ctx context.Context, table solana.PublicKey) (solana.PublicKeySlice, error) {
	s.mu.RLock()
	addresses, ok := s.storage[table]
	s.mu.RUnlock()
	if ok {
		return addresses, nil
	}

	data, err := s.client.HGet(ctx, KEY_LOOKUP, table.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}

	var account LookupTableAccount
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.storage[table] = account.Addresses
	s.mu.Unlock()

	return account.Addresses, nil
}
