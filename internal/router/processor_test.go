package router

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingInvoker struct {
	calls []*TransitiveCall
	err   error
}

func (r *recordingInvoker) SwapTransitive(_ context.Context, call *TransitiveCall) error {
	r.calls = append(r.calls, call)
	return r.err
}

func TestProcess(t *testing.T) {
	invoker := &recordingInvoker{}
	p := NewProcessor(invoker, WithLogger(zaptest.NewLogger(t)))

	accounts := testAccounts(AccountCount)
	err := p.Process(context.Background(), solana.NewWallet().PublicKey(), accounts, payload(400000000, 8, 6))
	require.NoError(t, err)
	require.Len(t, invoker.calls, 1)

	call := invoker.calls[0]
	assert.Equal(t, uint64(400000000), call.Amount)
	assert.Equal(t, ExchangeRate{Rate: 1, FromDecimals: 8, QuoteDecimals: 6, Strict: false}, call.MinExchangeRate)
	assert.Same(t, accounts[RoleSwapProgram], call.Program)
}

func TestProcessLegs(t *testing.T) {
	invoker := &recordingInvoker{}
	accounts := testAccounts(AccountCount)

	err := NewProcessor(invoker).Process(context.Background(), solana.PublicKey{}, accounts, payload(1, 6, 9))
	require.NoError(t, err)
	call := invoker.calls[0]

	// first leg pays from and receives into the source wallet
	assert.Same(t, accounts[RoleSourceWallet], call.From.OrderPayerTokenAccount)
	assert.Same(t, accounts[RoleSourceWallet], call.From.CoinWallet)
	assert.Same(t, accounts[RoleMarketA], call.From.Market)
	assert.Same(t, accounts[RoleRequestQueueA], call.From.RequestQueue)
	assert.Same(t, accounts[RoleEventQueueA], call.From.EventQueue)
	assert.Same(t, accounts[RoleBidsA], call.From.Bids)
	assert.Same(t, accounts[RoleAsksA], call.From.Asks)
	assert.Same(t, accounts[RoleCoinVaultA], call.From.CoinVault)
	assert.Same(t, accounts[RolePcVaultA], call.From.PcVault)
	assert.Same(t, accounts[RoleVaultSignerA], call.From.VaultSigner)
	assert.Same(t, accounts[RoleOpenOrdersA], call.From.OpenOrders)

	// second leg is paid from the shared pc wallet
	assert.Same(t, accounts[RolePcWallet], call.To.OrderPayerTokenAccount)
	assert.Same(t, accounts[RoleDestinationWallet], call.To.CoinWallet)
	assert.Same(t, accounts[RoleMarketB], call.To.Market)
	assert.Same(t, accounts[RoleVaultSignerB], call.To.VaultSigner)
	assert.Same(t, accounts[RoleOpenOrdersB], call.To.OpenOrders)

	assert.Same(t, accounts[RolePcWallet], call.PcWallet)
	assert.Same(t, accounts[RoleAuthority], call.Authority)
	assert.Same(t, accounts[RoleDexProgram], call.DexProgram)
	assert.Same(t, accounts[RoleTokenProgram], call.TokenProgram)
	assert.Same(t, accounts[RoleRent], call.Rent)
}

func TestProcessShortPayloadNeverInvokes(t *testing.T) {
	invoker := &recordingInvoker{}

	err := NewProcessor(invoker).Process(context.Background(), solana.PublicKey{}, testAccounts(AccountCount), make([]byte, 9))
	assert.ErrorIs(t, err, ErrMalformedPayload)
	assert.Empty(t, invoker.calls)
}

func TestProcessMissingAccountNeverInvokes(t *testing.T) {
	invoker := &recordingInvoker{}

	err := NewProcessor(invoker).Process(context.Background(), solana.PublicKey{}, testAccounts(25), payload(1, 1, 1))
	assert.ErrorIs(t, err, ErrMissingAccount)
	assert.Empty(t, invoker.calls)
}

func TestProcessPropagatesSwapError(t *testing.T) {
	swapErr := errors.New("custom program error: 0x12e")
	invoker := &recordingInvoker{err: swapErr}

	err := NewProcessor(invoker).Process(context.Background(), solana.PublicKey{}, testAccounts(AccountCount), payload(22, 9, 6))
	assert.Same(t, swapErr, err)
	assert.Len(t, invoker.calls, 1)
}

func TestProcessWithExchangeRate(t *testing.T) {
	invoker := &recordingInvoker{}

	err := NewProcessor(invoker, WithExchangeRate(1500, true)).
		Process(context.Background(), solana.PublicKey{}, testAccounts(AccountCount), payload(5, 6, 6))
	require.NoError(t, err)

	assert.Equal(t, uint64(1500), invoker.calls[0].MinExchangeRate.Rate)
	assert.True(t, invoker.calls[0].MinExchangeRate.Strict)
}

func TestInvokeBuildsFreshCall(t *testing.T) {
	invoker := &recordingInvoker{}
	bindings, err := BindAccounts(testAccounts(AccountCount))
	require.NoError(t, err)

	req := &SwapRequest{Amount: 3, SourceDecimals: 6, DestinationDecimals: 6, Rate: 1}
	require.NoError(t, Invoke(context.Background(), invoker, bindings, req))
	require.NoError(t, Invoke(context.Background(), invoker, bindings, req))

	require.Len(t, invoker.calls, 2)
	assert.NotSame(t, invoker.calls[0], invoker.calls[1])
	assert.Equal(t, invoker.calls[0], invoker.calls[1])
}
