package executor

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/transitive-swap-router/internal/config"
	"github.com/iqbalbaharum/transitive-swap-router/internal/instructions"
	"github.com/iqbalbaharum/transitive-swap-router/internal/metrics"
	"github.com/iqbalbaharum/transitive-swap-router/internal/router"
	"github.com/iqbalbaharum/transitive-swap-router/internal/rpc"
	"github.com/iqbalbaharum/transitive-swap-router/internal/types"
	"go.uber.org/zap"
)

var (
	ErrUnknownMode = errors.New("unknown execution mode")
	// the router payload has no room for a rate, the deployed program always
	// swaps with rate 1 non-strict
	ErrRateNotEncodable = errors.New("exchange rate cannot be carried by the router instruction")
)

type BlockhashSource interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
}

type Simulator interface {
	Simulate(ctx context.Context, transaction *solana.Transaction) (*rpc.SimulateValue, error)
}

type Confirmer interface {
	ConfirmSignature(ctx context.Context, signature solana.Signature) error
}

type SwapRecorder interface {
	Set(ctx context.Context, swap *types.Swap) error
}

type Option func(*Executor)

func WithRouterProgram(programId solana.PublicKey) Option {
	return func(e *Executor) { e.routerProgram = programId }
}

func WithCompute(compute instructions.ComputeUnit) Option {
	return func(e *Executor) { e.compute = compute }
}

// WithSigners adds keys for accounts other than the payer that must sign,
// typically a separate authority.
func WithSigners(signers ...solana.PrivateKey) Option {
	return func(e *Executor) { e.signers = append(e.signers, signers...) }
}

// WithMemo appends a memo instruction, bloXroute only forwards transactions
// carrying its memo.
func WithMemo(programId solana.PublicKey, memo string) Option {
	return func(e *Executor) {
		e.memo = instructions.MakeMemoInstruction(programId, memo)
	}
}

func WithSimulator(simulator Simulator) Option {
	return func(e *Executor) { e.simulator = simulator }
}

func WithConfirmer(confirmer Confirmer) Option {
	return func(e *Executor) { e.confirmer = confirmer }
}

func WithRecorder(recorder SwapRecorder) Option {
	return func(e *Executor) { e.recorder = recorder }
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// Executor turns a swap_transitive call into a signed transaction and submits it.
type Executor struct {
	mode          string
	routerProgram solana.PublicKey
	payer         solana.PrivateKey
	signers       []solana.PrivateKey
	compute       instructions.ComputeUnit
	memo          solana.Instruction

	blockhash BlockhashSource
	sender    rpc.Sender
	simulator Simulator
	confirmer Confirmer
	recorder  SwapRecorder
	logger    *zap.Logger
	now       func() time.Time
}

func New(mode string, payer solana.PrivateKey, blockhash BlockhashSource, sender rpc.Sender, opts ...Option) (*Executor, error) {
	e := &Executor{
		mode:      mode,
		payer:     payer,
		compute:   instructions.ComputeUnit{Units: config.DEFAULT_UNIT_LIMIT},
		blockhash: blockhash,
		sender:    sender,
		logger:    zap.NewNop(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	switch mode {
	case config.MODE_DIRECT:
	case config.MODE_PROGRAM:
		if e.routerProgram.IsZero() {
			return nil, errors.New("router program id is required in program mode")
		}
	default:
		return nil, ErrUnknownMode
	}

	return e, nil
}

func (e *Executor) instruction(call *router.TransitiveCall) solana.Instruction {
	if e.mode == config.MODE_PROGRAM {
		req := &router.SwapRequest{
			Amount:              call.Amount,
			SourceDecimals:      call.MinExchangeRate.FromDecimals,
			DestinationDecimals: call.MinExchangeRate.QuoteDecimals,
		}
		return instructions.MakeRouterInstruction(e.routerProgram, instructions.RouterMetasFromCall(call), req)
	}

	return instructions.MakeSwapTransitiveInstruction(call)
}

// SwapTransitive builds, signs and submits the call. Any failure of the sender,
// the simulation or the confirmation is returned as is.
func (e *Executor) SwapTransitive(ctx context.Context, call *router.TransitiveCall) error {
	if e.mode == config.MODE_PROGRAM &&
		(call.MinExchangeRate.Rate != router.DefaultExchangeRate || call.MinExchangeRate.Strict) {
		return ErrRateNotEncodable
	}

	start := e.now()
	receipt := ReceiptFrom(ctx)

	blockhash, err := e.blockhash.GetLatestBlockhash(ctx)
	if err != nil {
		return err
	}

	ixs := []solana.Instruction{e.instruction(call)}
	if e.memo != nil {
		ixs = append(ixs, e.memo)
	}

	tx, err := instructions.MakeTransaction(
		ixs,
		e.compute,
		instructions.TxOption{
			Blockhash: blockhash,
			Payer:     e.payer,
			Signers:   e.signers,
		},
	)
	if err != nil {
		return err
	}

	if e.simulator != nil {
		value, err := e.simulator.Simulate(ctx, tx)
		if err != nil {
			e.logger.Warn("simulation failed", zap.Error(err))
			return err
		}
		e.logger.Debug("simulation ok", zap.Uint64("units", value.UnitsConsumed))
	}

	signature, err := e.sender.Send(ctx, tx)
	metrics.SubmitLatency.WithLabelValues(e.mode).Observe(e.now().Sub(start).Seconds())
	if err != nil {
		metrics.Submissions.WithLabelValues(e.sender.Name(), "error").Inc()
		return err
	}
	metrics.Submissions.WithLabelValues(e.sender.Name(), "ok").Inc()

	status := types.SwapStatusSubmitted
	receipt.set(signature, e.sender.Name(), status)

	e.logger.Info("swap submitted",
		zap.String("sender", e.sender.Name()),
		zap.Stringer("signature", signature),
		zap.String("mode", e.mode))

	var confirmErr error
	if e.confirmer != nil {
		confirmErr = e.confirmer.ConfirmSignature(ctx, signature)
		if confirmErr != nil {
			status = types.SwapStatusFailed
		} else {
			status = types.SwapStatusConfirmed
		}
		receipt.set(signature, e.sender.Name(), status)
	}

	// compute budget instructions sit in front of the swap
	index := len(tx.Message.Instructions) - len(ixs)
	e.record(ctx, call, signature, uint8(index), status, confirmErr)

	return confirmErr
}

func (e *Executor) record(ctx context.Context, call *router.TransitiveCall, signature solana.Signature, index uint8, status string, failure error) {
	if e.recorder == nil {
		return
	}

	swap := &types.Swap{
		Signature:           signature.String(),
		InstructionIndex:    index,
		Source:              types.SwapSourceExecutor,
		Mode:                e.mode,
		Amount:              call.Amount,
		SourceDecimals:      call.MinExchangeRate.FromDecimals,
		DestinationDecimals: call.MinExchangeRate.QuoteDecimals,
		SourceWallet:        call.From.CoinWallet.PublicKey.String(),
		DestinationWallet:   call.To.CoinWallet.PublicKey.String(),
		MarketFrom:          call.From.Market.PublicKey.String(),
		MarketTo:            call.To.Market.PublicKey.String(),
		Authority:           call.Authority.PublicKey.String(),
		ComputeLimit:        uint64(e.compute.Units),
		ComputePrice:        e.compute.MicroLamports,
		Status:              status,
		Timestamp:           e.now().Unix(),
	}
	if failure != nil {
		swap.Error = failure.Error()
	}

	if err := e.recorder.Set(ctx, swap); err != nil {
		e.logger.Error("failed to record swap", zap.Stringer("signature", signature), zap.Error(err))
	}
}
