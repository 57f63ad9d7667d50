package market

import (
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/transitive-swap-router/internal/instructions"
	"github.com/iqbalbaharum/transitive-swap-router/internal/types"
)

var ErrQuoteMismatch = errors.New("markets do not share a quote mint")

type SwapParams struct {
	From              *types.MarketKeys
	To                *types.MarketKeys
	FromOpenOrders    solana.PublicKey
	ToOpenOrders      solana.PublicKey
	SourceWallet      solana.PublicKey
	PcWallet          solana.PublicKey
	DestinationWallet solana.PublicKey
	Authority         solana.PublicKey
	SwapProgram       solana.PublicKey
}

func marketKeys(keys *types.MarketKeys, openOrders solana.PublicKey) instructions.MarketKeys {
	return instructions.MarketKeys{
		Market:       keys.ID,
		RequestQueue: keys.RequestQueue,
		EventQueue:   keys.EventQueue,
		Bids:         keys.Bids,
		Asks:         keys.Asks,
		CoinVault:    keys.BaseVault,
		PcVault:      keys.QuoteVault,
		VaultSigner:  keys.VaultSigner,
		OpenOrders:   openOrders,
	}
}

// BuildAccounts lays two resolved markets and the caller's wallets out in the
// router's account order. Both markets must quote in the same mint.
func BuildAccounts(params SwapParams) (*instructions.RouterAccounts, error) {
	if !params.From.QuoteMint.Equals(params.To.QuoteMint) {
		return nil, ErrQuoteMismatch
	}

	return &instructions.RouterAccounts{
		MarketA:      marketKeys(params.From, params.FromOpenOrders),
		SourceWallet: params.SourceWallet,
		PcWallet:     params.PcWallet,
		MarketB:      marketKeys(params.To, params.ToOpenOrders),
		DestWallet:   params.DestinationWallet,
		Authority:    params.Authority,
		DexProgram:   params.From.ProgramID,
		TokenProgram: solana.TokenProgramID,
		SwapProgram:  params.SwapProgram,
		Rent:         solana.SysVarRentPubkey,
	}, nil
}
