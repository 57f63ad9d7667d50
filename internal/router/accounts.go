package router

import (
	"github.com/gagliardetto/solana-go"
)

// Role is the fixed position of an account in the instruction's account list.
type Role int

const (
	RoleMarketA Role = iota
	RoleRequestQueueA
	RoleEventQueueA
	RoleBidsA
	RoleAsksA
	RoleCoinVaultA
	RolePcVaultA
	RoleVaultSignerA
	RoleOpenOrdersA
	RoleSourceWallet
	RolePcWallet
	RoleMarketB
	RoleRequestQueueB
	RoleEventQueueB
	RoleBidsB
	RoleAsksB
	RoleCoinVaultB
	RolePcVaultB
	RoleVaultSignerB
	RoleOpenOrdersB
	RoleDestinationWallet
	RoleAuthority
	RoleDexProgram
	RoleTokenProgram
	RoleSwapProgram
	RoleRent

	AccountCount = int(RoleRent) + 1
)

var roleNames = [AccountCount]string{
	"market_a",
	"request_queue_a",
	"event_queue_a",
	"bids_a",
	"asks_a",
	"coin_vault_a",
	"pc_vault_a",
	"vault_signer_a",
	"open_orders_a",
	"source_wallet",
	"pc_wallet",
	"market_b",
	"request_queue_b",
	"event_queue_b",
	"bids_b",
	"asks_b",
	"coin_vault_b",
	"pc_vault_b",
	"vault_signer_b",
	"open_orders_b",
	"destination_wallet",
	"authority",
	"dex_program",
	"token_program",
	"swap_program",
	"rent",
}

func (r Role) String() string {
	if r < 0 || int(r) >= AccountCount {
		return "unknown"
	}
	return roleNames[r]
}

// MarketAccounts are the ten accounts an order-book market contributes to the list.
type MarketAccounts struct {
	Market       *solana.AccountMeta
	RequestQueue *solana.AccountMeta
	EventQueue   *solana.AccountMeta
	Bids         *solana.AccountMeta
	Asks         *solana.AccountMeta
	CoinVault    *solana.AccountMeta
	PcVault      *solana.AccountMeta
	VaultSigner  *solana.AccountMeta
	OpenOrders   *solana.AccountMeta
	CoinWallet   *solana.AccountMeta
}

// AccountBindings holds the caller's accounts by role. The metas are borrowed from
// the caller and are never modified.
type AccountBindings struct {
	From         MarketAccounts
	PcWallet     *solana.AccountMeta
	To           MarketAccounts
	Authority    *solana.AccountMeta
	DexProgram   *solana.AccountMeta
	TokenProgram *solana.AccountMeta
	SwapProgram  *solana.AccountMeta
	Rent         *solana.AccountMeta
}

// slots lists the binding fields in role order.
func (b *AccountBindings) slots() [AccountCount]**solana.AccountMeta {
	return [AccountCount]**solana.AccountMeta{
		&b.From.Market,
		&b.From.RequestQueue,
		&b.From.EventQueue,
		&b.From.Bids,
		&b.From.Asks,
		&b.From.CoinVault,
		&b.From.PcVault,
		&b.From.VaultSigner,
		&b.From.OpenOrders,
		&b.From.CoinWallet,
		&b.PcWallet,
		&b.To.Market,
		&b.To.RequestQueue,
		&b.To.EventQueue,
		&b.To.Bids,
		&b.To.Asks,
		&b.To.CoinVault,
		&b.To.PcVault,
		&b.To.VaultSigner,
		&b.To.OpenOrders,
		&b.To.CoinWallet,
		&b.Authority,
		&b.DexProgram,
		&b.TokenProgram,
		&b.SwapProgram,
		&b.Rent,
	}
}

// BindAccounts assigns accounts to roles in order, one account per role. Accounts
// past the last role are ignored.
func BindAccounts(accounts []*solana.AccountMeta) (*AccountBindings, error) {
	bindings := &AccountBindings{}

	next := 0
	for role, slot := range bindings.slots() {
		if next >= len(accounts) || accounts[next] == nil {
			return nil, &MissingAccountError{Role: Role(role), Index: next}
		}
		*slot = accounts[next]
		next++
	}

	return bindings, nil
}

// Metas returns the bound accounts in role order.
func (b *AccountBindings) Metas() solana.AccountMetaSlice {
	metas := make(solana.AccountMetaSlice, 0, AccountCount)
	for _, slot := range b.slots() {
		metas = append(metas, *slot)
	}
	return metas
}

// Account returns the account bound to role, or nil.
func (b *AccountBindings) Account(role Role) *solana.AccountMeta {
	if role < 0 || int(role) >= AccountCount {
		return nil
	}
	return *b.slots()[role]
}
