package types

import "github.com/gagliardetto/solana-go"

// MarketKeys are the order-book accounts of a serum market that a swap leg needs.
type MarketKeys struct {
	ID               solana.PublicKey
	ProgramID        solana.PublicKey
	BaseMint         solana.PublicKey
	QuoteMint        solana.PublicKey
	BaseVault        solana.PublicKey
	QuoteVault       solana.PublicKey
	RequestQueue     solana.PublicKey
	EventQueue       solana.PublicKey
	Bids             solana.PublicKey
	Asks             solana.PublicKey
	VaultSigner      solana.PublicKey
	VaultSignerNonce uint64
}
