package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/transitive-swap-router/internal/types"
	"github.com/redis/go-redis/v9"
)

func SetMarketKeys(ctx context.Context, client *redis.Client, keys *types.MarketKeys) error {
	data, err := json.Marshal(keys)
	if err != nil {
		return err
	}

	return client.HSet(ctx, KEY_MARKETKEYS, keys.ID.String(), data).Err()
}

func GetMarketKeys(ctx context.Context, client *redis.Client, marketId solana.PublicKey) (*types.MarketKeys, error) {
	data, err := client.HGet(ctx, KEY_MARKETKEYS, marketId.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}

	var keys types.MarketKeys
	if err := json.Unmarshal([]byte(data), &keys); err != nil {
		return nil, err
	}

	return &keys, nil
}
