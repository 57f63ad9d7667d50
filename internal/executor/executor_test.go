package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/transitive-swap-router/internal/config"
	"github.com/iqbalbaharum/transitive-swap-router/internal/instructions"
	"github.com/iqbalbaharum/transitive-swap-router/internal/router"
	"github.com/iqbalbaharum/transitive-swap-router/internal/rpc"
	"github.com/iqbalbaharum/transitive-swap-router/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type staticBlockhash struct {
	hash solana.Hash
	err  error
}

func (s staticBlockhash) GetLatestBlockhash(context.Context) (solana.Hash, error) {
	return s.hash, s.err
}

type captureSender struct {
	sent []*solana.Transaction
	err  error
}

func (c *captureSender) Name() string { return "capture" }

func (c *captureSender) Send(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	c.sent = append(c.sent, tx)
	if c.err != nil {
		return solana.Signature{}, c.err
	}
	return tx.Signatures[0], nil
}

type fakeSimulator struct{ err error }

func (f fakeSimulator) Simulate(context.Context, *solana.Transaction) (*rpc.SimulateValue, error) {
	return &rpc.SimulateValue{UnitsConsumed: 1200}, f.err
}

type fakeConfirmer struct{ err error }

func (f fakeConfirmer) ConfirmSignature(context.Context, solana.Signature) error { return f.err }

type memoryRecorder struct{ swaps []*types.Swap }

func (m *memoryRecorder) Set(_ context.Context, swap *types.Swap) error {
	m.swaps = append(m.swaps, swap)
	return nil
}

func randomMarket() instructions.MarketKeys {
	return instructions.MarketKeys{
		Market:       solana.NewWallet().PublicKey(),
		RequestQueue: solana.NewWallet().PublicKey(),
		EventQueue:   solana.NewWallet().PublicKey(),
		Bids:         solana.NewWallet().PublicKey(),
		Asks:         solana.NewWallet().PublicKey(),
		CoinVault:    solana.NewWallet().PublicKey(),
		PcVault:      solana.NewWallet().PublicKey(),
		VaultSigner:  solana.NewWallet().PublicKey(),
		OpenOrders:   solana.NewWallet().PublicKey(),
	}
}

func newCall(t *testing.T, authority solana.PublicKey) *router.TransitiveCall {
	t.Helper()

	accounts := &instructions.RouterAccounts{
		MarketA:      randomMarket(),
		SourceWallet: solana.NewWallet().PublicKey(),
		PcWallet:     solana.NewWallet().PublicKey(),
		MarketB:      randomMarket(),
		DestWallet:   solana.NewWallet().PublicKey(),
		Authority:    authority,
		DexProgram:   config.SERUM_DEX_V3,
		TokenProgram: solana.TokenProgramID,
		SwapProgram:  config.SERUM_SWAP_PROGRAM,
		Rent:         solana.SysVarRentPubkey,
	}

	bindings, err := router.BindAccounts(accounts.Metas())
	require.NoError(t, err)

	return router.NewTransitiveCall(bindings, &router.SwapRequest{
		Amount:              1_500_000,
		SourceDecimals:      6,
		DestinationDecimals: 9,
		Rate:                router.DefaultExchangeRate,
	})
}

func TestSwapTransitiveDirect(t *testing.T) {
	payer := solana.NewWallet()
	sender := &captureSender{}
	recorder := &memoryRecorder{}

	e, err := New(config.MODE_DIRECT, payer.PrivateKey, staticBlockhash{hash: solana.Hash{1}}, sender,
		WithRecorder(recorder),
		WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	call := newCall(t, payer.PublicKey())
	ctx, receipt := WithReceipt(context.Background())

	require.NoError(t, e.SwapTransitive(ctx, call))
	require.Len(t, sender.sent, 1)

	tx := sender.sent[0]
	require.NoError(t, tx.VerifySignatures())
	// compute limit + swap
	require.Len(t, tx.Message.Instructions, 2)

	program, err := tx.Message.Program(tx.Message.Instructions[1].ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, config.SERUM_SWAP_PROGRAM, program)

	data := tx.Message.Instructions[1].Data
	assert.Equal(t, instructions.SwapTransitiveDiscriminator[:], []byte(data[:8]))

	assert.Equal(t, tx.Signatures[0], receipt.Signature())
	assert.Equal(t, types.SwapStatusSubmitted, receipt.Status())
	assert.Equal(t, "capture", receipt.Sender())

	require.Len(t, recorder.swaps, 1)
	assert.Equal(t, uint64(1_500_000), recorder.swaps[0].Amount)
	assert.Equal(t, call.From.Market.PublicKey.String(), recorder.swaps[0].MarketFrom)
	assert.Equal(t, call.To.CoinWallet.PublicKey.String(), recorder.swaps[0].DestinationWallet)
	assert.Equal(t, config.MODE_DIRECT, recorder.swaps[0].Mode)
	assert.Equal(t, uint8(1), recorder.swaps[0].InstructionIndex)
}

func TestSwapTransitiveProgram(t *testing.T) {
	payer := solana.NewWallet()
	routerProgram := solana.NewWallet().PublicKey()
	sender := &captureSender{}

	e, err := New(config.MODE_PROGRAM, payer.PrivateKey, staticBlockhash{}, sender,
		WithRouterProgram(routerProgram),
		WithCompute(instructions.ComputeUnit{Units: 400000, MicroLamports: 1000}))
	require.NoError(t, err)

	call := newCall(t, payer.PublicKey())
	require.NoError(t, e.SwapTransitive(context.Background(), call))

	tx := sender.sent[0]
	// compute limit + compute price + router
	require.Len(t, tx.Message.Instructions, 3)

	ix := tx.Message.Instructions[2]
	program, err := tx.Message.Program(ix.ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, routerProgram, program)
	assert.Len(t, ix.Accounts, router.AccountCount)

	req, err := router.DecodeRequest(ix.Data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000), req.Amount)
	assert.Equal(t, uint8(6), req.SourceDecimals)
	assert.Equal(t, uint8(9), req.DestinationDecimals)
}

func TestSwapTransitiveProgramRejectsRate(t *testing.T) {
	payer := solana.NewWallet()
	sender := &captureSender{}

	e, err := New(config.MODE_PROGRAM, payer.PrivateKey, staticBlockhash{}, sender,
		WithRouterProgram(solana.NewWallet().PublicKey()))
	require.NoError(t, err)

	cases := map[string]func(*router.TransitiveCall){
		"rate":   func(c *router.TransitiveCall) { c.MinExchangeRate.Rate = 1500 },
		"strict": func(c *router.TransitiveCall) { c.MinExchangeRate.Strict = true },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			call := newCall(t, payer.PublicKey())
			mutate(call)

			assert.ErrorIs(t, e.SwapTransitive(context.Background(), call), ErrRateNotEncodable)
		})
	}
	assert.Empty(t, sender.sent)
}

func TestSwapTransitiveDirectCarriesRate(t *testing.T) {
	payer := solana.NewWallet()
	sender := &captureSender{}

	e, err := New(config.MODE_DIRECT, payer.PrivateKey, staticBlockhash{}, sender)
	require.NoError(t, err)

	call := newCall(t, payer.PublicKey())
	call.MinExchangeRate.Rate = 1500
	call.MinExchangeRate.Strict = true
	require.NoError(t, e.SwapTransitive(context.Background(), call))

	// discriminator | amount u64 | rate u64 | from u8 | quote u8 | strict bool
	data := sender.sent[0].Message.Instructions[1].Data
	require.Len(t, data, 8+8+8+3)
	assert.Equal(t, []byte{0xdc, 0x05, 0, 0, 0, 0, 0, 0}, []byte(data[16:24]))
	assert.Equal(t, byte(1), data[26])
}

func TestNewProgramModeRequiresRouter(t *testing.T) {
	_, err := New(config.MODE_PROGRAM, solana.NewWallet().PrivateKey, staticBlockhash{}, &captureSender{})
	assert.Error(t, err)

	_, err = New("bundle", solana.NewWallet().PrivateKey, staticBlockhash{}, &captureSender{})
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestSwapTransitiveSenderErrorUnchanged(t *testing.T) {
	payer := solana.NewWallet()
	sendErr := errors.New("blockhash not found")
	recorder := &memoryRecorder{}

	e, err := New(config.MODE_DIRECT, payer.PrivateKey, staticBlockhash{}, &captureSender{err: sendErr}, WithRecorder(recorder))
	require.NoError(t, err)

	err = e.SwapTransitive(context.Background(), newCall(t, payer.PublicKey()))
	assert.Same(t, sendErr, err)
	assert.Empty(t, recorder.swaps)
}

func TestSwapTransitiveSimulationStopsSend(t *testing.T) {
	payer := solana.NewWallet()
	sender := &captureSender{}
	simErr := &rpc.SimulationError{Err: `{"InstructionError":[2,{"Custom":302}]}`}

	e, err := New(config.MODE_DIRECT, payer.PrivateKey, staticBlockhash{}, sender, WithSimulator(fakeSimulator{err: simErr}))
	require.NoError(t, err)

	err = e.SwapTransitive(context.Background(), newCall(t, payer.PublicKey()))
	assert.Same(t, simErr, err)
	assert.Empty(t, sender.sent)
}

func TestSwapTransitiveConfirmation(t *testing.T) {
	payer := solana.NewWallet()
	recorder := &memoryRecorder{}
	txErr := &rpc.TransactionError{Err: `{"InstructionError":[2,{"Custom":302}]}`}

	e, err := New(config.MODE_DIRECT, payer.PrivateKey, staticBlockhash{}, &captureSender{},
		WithConfirmer(fakeConfirmer{err: txErr}),
		WithRecorder(recorder))
	require.NoError(t, err)

	ctx, receipt := WithReceipt(context.Background())
	err = e.SwapTransitive(ctx, newCall(t, payer.PublicKey()))
	assert.Same(t, txErr, err)
	assert.Equal(t, types.SwapStatusFailed, receipt.Status())
	require.Len(t, recorder.swaps, 1)
	assert.Equal(t, txErr.Error(), recorder.swaps[0].Error)
}

func TestSwapTransitiveForeignAuthority(t *testing.T) {
	payer := solana.NewWallet()
	authority := solana.NewWallet()

	e, err := New(config.MODE_DIRECT, payer.PrivateKey, staticBlockhash{}, &captureSender{})
	require.NoError(t, err)

	err = e.SwapTransitive(context.Background(), newCall(t, authority.PublicKey()))
	assert.ErrorIs(t, err, instructions.ErrMissingSigner)

	e, err = New(config.MODE_DIRECT, payer.PrivateKey, staticBlockhash{}, &captureSender{}, WithSigners(authority.PrivateKey))
	require.NoError(t, err)
	assert.NoError(t, e.SwapTransitive(context.Background(), newCall(t, authority.PublicKey())))
}

func TestReceiptFromEmptyContext(t *testing.T) {
	assert.Nil(t, ReceiptFrom(context.Background()))
}

func TestSwapTransitiveMemo(t *testing.T) {
	payer := solana.NewWallet()
	sender := &captureSender{}

	e, err := New(config.MODE_DIRECT, payer.PrivateKey, staticBlockhash{}, sender,
		WithMemo(config.BLOXROUTE_MEMO, config.BLOXROUTE_MEMO_TEXT))
	require.NoError(t, err)

	require.NoError(t, e.SwapTransitive(context.Background(), newCall(t, payer.PublicKey())))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0].Message
	// compute limit + swap + memo
	require.Len(t, msg.Instructions, 3)

	program, err := msg.Program(msg.Instructions[2].ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, config.BLOXROUTE_MEMO, program)
	assert.Equal(t, config.BLOXROUTE_MEMO_TEXT, string(msg.Instructions[2].Data))
}
