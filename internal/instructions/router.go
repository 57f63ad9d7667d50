package instructions

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/transitive-swap-router/internal/router"
)

// RouterAccounts are the public keys behind the router program's 26 roles.
type RouterAccounts struct {
	MarketA      MarketKeys
	SourceWallet solana.PublicKey
	PcWallet     solana.PublicKey
	MarketB      MarketKeys
	DestWallet   solana.PublicKey
	Authority    solana.PublicKey
	DexProgram   solana.PublicKey
	TokenProgram solana.PublicKey
	SwapProgram  solana.PublicKey
	Rent         solana.PublicKey
}

// MarketKeys are the per-market accounts in router role order.
type MarketKeys struct {
	Market       solana.PublicKey
	RequestQueue solana.PublicKey
	EventQueue   solana.PublicKey
	Bids         solana.PublicKey
	Asks         solana.PublicKey
	CoinVault    solana.PublicKey
	PcVault      solana.PublicKey
	VaultSigner  solana.PublicKey
	OpenOrders   solana.PublicKey
}

func (m MarketKeys) metas() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		solana.Meta(m.Market).WRITE(),
		solana.Meta(m.RequestQueue).WRITE(),
		solana.Meta(m.EventQueue).WRITE(),
		solana.Meta(m.Bids).WRITE(),
		solana.Meta(m.Asks).WRITE(),
		solana.Meta(m.CoinVault).WRITE(),
		solana.Meta(m.PcVault).WRITE(),
		solana.Meta(m.VaultSigner).WRITE(),
		solana.Meta(m.OpenOrders).WRITE(),
	}
}

// Metas returns the 26 account metas in the order the router program binds them.
func (a *RouterAccounts) Metas() solana.AccountMetaSlice {
	metas := make(solana.AccountMetaSlice, 0, router.AccountCount)

	metas = append(metas, a.MarketA.metas()...)
	metas = append(metas,
		solana.Meta(a.SourceWallet).WRITE(),
		solana.Meta(a.PcWallet).WRITE(),
	)
	metas = append(metas, a.MarketB.metas()...)
	metas = append(metas,
		solana.Meta(a.DestWallet).WRITE(),
		solana.Meta(a.Authority).WRITE().SIGNER(),
		solana.Meta(a.DexProgram),
		solana.Meta(a.TokenProgram),
		solana.Meta(a.SwapProgram),
		solana.Meta(a.Rent),
	)

	return metas
}

// MakeRouterInstruction builds the instruction a client sends to the deployed
// router program.
func MakeRouterInstruction(programID solana.PublicKey, metas solana.AccountMetaSlice, req *router.SwapRequest) solana.Instruction {
	return solana.NewInstruction(programID, metas, router.EncodeRequest(req))
}

// RouterMetasFromCall rebuilds the router's account list from a resolved call.
func RouterMetasFromCall(call *router.TransitiveCall) solana.AccountMetaSlice {
	bindings := &router.AccountBindings{
		From: router.MarketAccounts{
			Market:       call.From.Market,
			RequestQueue: call.From.RequestQueue,
			EventQueue:   call.From.EventQueue,
			Bids:         call.From.Bids,
			Asks:         call.From.Asks,
			CoinVault:    call.From.CoinVault,
			PcVault:      call.From.PcVault,
			VaultSigner:  call.From.VaultSigner,
			OpenOrders:   call.From.OpenOrders,
			CoinWallet:   call.From.CoinWallet,
		},
		PcWallet: call.PcWallet,
		To: router.MarketAccounts{
			Market:       call.To.Market,
			RequestQueue: call.To.RequestQueue,
			EventQueue:   call.To.EventQueue,
			Bids:         call.To.Bids,
			Asks:         call.To.Asks,
			CoinVault:    call.To.CoinVault,
			PcVault:      call.To.PcVault,
			VaultSigner:  call.To.VaultSigner,
			OpenOrders:   call.To.OpenOrders,
			CoinWallet:   call.To.CoinWallet,
		},
		Authority:    call.Authority,
		DexProgram:   call.DexProgram,
		TokenProgram: call.TokenProgram,
		SwapProgram:  call.Program,
		Rent:         call.Rent,
	}

	return bindings.Metas()
}
