package router

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// MarketLeg is the account set the swap routine expects for one order-book market.
type MarketLeg struct {
	Market                 *solana.AccountMeta
	OpenOrders             *solana.AccountMeta
	RequestQueue           *solana.AccountMeta
	EventQueue             *solana.AccountMeta
	Bids                   *solana.AccountMeta
	Asks                   *solana.AccountMeta
	OrderPayerTokenAccount *solana.AccountMeta
	CoinVault              *solana.AccountMeta
	PcVault                *solana.AccountMeta
	VaultSigner            *solana.AccountMeta
	CoinWallet             *solana.AccountMeta
}

// ExchangeRate is the minimum rate the swap routine must honour.
type ExchangeRate struct {
	Rate          uint64
	FromDecimals  uint8
	QuoteDecimals uint8
	Strict        bool
}

// TransitiveCall is one swap_transitive invocation scoped to Program.
type TransitiveCall struct {
	Program *solana.AccountMeta

	From         MarketLeg
	To           MarketLeg
	Authority    *solana.AccountMeta
	PcWallet     *solana.AccountMeta
	DexProgram   *solana.AccountMeta
	TokenProgram *solana.AccountMeta
	Rent         *solana.AccountMeta

	Amount          uint64
	MinExchangeRate ExchangeRate
}

// SwapInvoker performs the cross-program swap. The returned error is surfaced to
// the caller as is.
type SwapInvoker interface {
	SwapTransitive(ctx context.Context, call *TransitiveCall) error
}

func newMarketLeg(accounts MarketAccounts, payer *solana.AccountMeta, wallet *solana.AccountMeta) MarketLeg {
	return MarketLeg{
		Market:                 accounts.Market,
		OpenOrders:             accounts.OpenOrders,
		RequestQueue:           accounts.RequestQueue,
		EventQueue:             accounts.EventQueue,
		Bids:                   accounts.Bids,
		Asks:                   accounts.Asks,
		OrderPayerTokenAccount: payer,
		CoinVault:              accounts.CoinVault,
		PcVault:                accounts.PcVault,
		VaultSigner:            accounts.VaultSigner,
		CoinWallet:             wallet,
	}
}

// NewTransitiveCall maps the bound accounts onto the two legs. The first leg is
// paid from the source wallet, the second from the pc wallet the first leg fills.
func NewTransitiveCall(bindings *AccountBindings, req *SwapRequest) *TransitiveCall {
	return &TransitiveCall{
		Program:      bindings.SwapProgram,
		From:         newMarketLeg(bindings.From, bindings.From.CoinWallet, bindings.From.CoinWallet),
		To:           newMarketLeg(bindings.To, bindings.PcWallet, bindings.To.CoinWallet),
		Authority:    bindings.Authority,
		PcWallet:     bindings.PcWallet,
		DexProgram:   bindings.DexProgram,
		TokenProgram: bindings.TokenProgram,
		Rent:         bindings.Rent,
		Amount:       req.Amount,
		MinExchangeRate: ExchangeRate{
			Rate:          req.Rate,
			FromDecimals:  req.SourceDecimals,
			QuoteDecimals: req.DestinationDecimals,
			Strict:        req.Strict,
		},
	}
}

// Invoke performs exactly one swap_transitive call and returns its outcome unchanged.
func Invoke(ctx context.Context, invoker SwapInvoker, bindings *AccountBindings, req *SwapRequest) error {
	return invoker.SwapTransitive(ctx, NewTransitiveCall(bindings, req))
}
