package market

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/transitive-swap-router/internal/coder"
	"github.com/iqbalbaharum/transitive-swap-router/internal/storage"
	"github.com/iqbalbaharum/transitive-swap-router/internal/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type StateReader interface {
	GetMarketState(ctx context.Context, marketId solana.PublicKey) (*coder.MarketStateLayoutV3, error)
}

type Resolver struct {
	reader     StateReader
	cache      *redis.Client
	dexProgram solana.PublicKey
	logger     *zap.Logger
}

// NewResolver returns a Resolver reading market state through reader. cache may
// be nil, in which case every call goes to the reader.
func NewResolver(reader StateReader, cache *redis.Client, dexProgram solana.PublicKey, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Resolver{
		reader:     reader,
		cache:      cache,
		dexProgram: dexProgram,
		logger:     logger,
	}
}

// ResolveMarket returns market keys from storage if available, otherwise decodes
// the market account and stores the result.
func (r *Resolver) ResolveMarket(ctx context.Context, marketId solana.PublicKey) (*types.MarketKeys, error) {
	if r.cache != nil {
		keys, err := storage.GetMarketKeys(ctx, r.cache, marketId)
		if err == nil {
			return keys, nil
		}
		if !errors.Is(err, storage.ErrKeyNotFound) {
			r.logger.Warn("market cache read failed", zap.Stringer("market", marketId), zap.Error(err))
		}
	}

	state, err := r.reader.GetMarketState(ctx, marketId)
	if err != nil {
		return nil, err
	}

	vaultSigner, err := VaultSigner(marketId, state.VaultSignerNonce, r.dexProgram)
	if err != nil {
		return nil, err
	}

	keys := &types.MarketKeys{
		ID:               marketId,
		ProgramID:        r.dexProgram,
		BaseMint:         state.BaseMint,
		QuoteMint:        state.QuoteMint,
		BaseVault:        state.BaseVault,
		QuoteVault:       state.QuoteVault,
		RequestQueue:     state.RequestQueue,
		EventQueue:       state.EventQueue,
		Bids:             state.Bids,
		Asks:             state.Asks,
		VaultSigner:      vaultSigner,
		VaultSignerNonce: state.VaultSignerNonce,
	}

	if r.cache != nil {
		if err := storage.SetMarketKeys(ctx, r.cache, keys); err != nil {
			r.logger.Warn("market cache write failed", zap.Stringer("market", marketId), zap.Error(err))
		}
	}

	return keys, nil
}

// VaultSigner derives the dex vault signer from the market address and its nonce.
func VaultSigner(marketId solana.PublicKey, nonce uint64, dexProgram solana.PublicKey) (solana.PublicKey, error) {
	seed := make([]byte, 8)
	binary.LittleEndian.PutUint64(seed, nonce)

	signer, err := solana.CreateProgramAddress([][]byte{marketId.Bytes(), seed}, dexProgram)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("vault signer for market %s: %w", marketId, err)
	}

	return signer, nil
}
