package router

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

type Option func(*Processor)

// WithExchangeRate overrides the rate and strict flag placed on every request.
func WithExchangeRate(rate uint64, strict bool) Option {
	return func(p *Processor) {
		p.rate = rate
		p.strict = strict
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(p *Processor) {
		p.log = log
	}
}

// Processor is the router's entry point. It holds no per-call state and may be
// shared between goroutines as long as the invoker can.
type Processor struct {
	invoker SwapInvoker
	log     *zap.Logger
	rate    uint64
	strict  bool
}

func NewProcessor(invoker SwapInvoker, opts ...Option) *Processor {
	p := &Processor{
		invoker: invoker,
		log:     zap.NewNop(),
		rate:    DefaultExchangeRate,
		strict:  false,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Process binds accounts, decodes data and forwards one swap_transitive call.
// Binding and decoding failures return before the invoker is touched.
func (p *Processor) Process(ctx context.Context, programID solana.PublicKey, accounts []*solana.AccountMeta, data []byte) error {
	log := p.log.With(zap.Stringer("program", programID))
	log.Debug("transitive swap entrypoint", zap.Int("accounts", len(accounts)), zap.Int("data_len", len(data)))

	bindings, err := BindAccounts(accounts)
	if err != nil {
		log.Warn("account binding failed", zap.Error(err))
		return err
	}

	req, err := DecodeRequest(data)
	if err != nil {
		log.Warn("payload decoding failed", zap.Error(err))
		return err
	}

	req.Rate = p.rate
	req.Strict = p.strict

	log.Info("decoded swap request",
		zap.Uint64("amount", req.Amount),
		zap.Uint8("from_decimals", req.SourceDecimals),
		zap.Uint8("quote_decimals", req.DestinationDecimals))

	log.Debug("invoking swap_transitive",
		zap.Stringer("swap_program", bindings.SwapProgram.PublicKey),
		zap.Uint64("rate", req.Rate),
		zap.Bool("strict", req.Strict))

	err = Invoke(ctx, p.invoker, bindings, req)
	if err != nil {
		log.Warn("swap_transitive failed", zap.Error(err))
		return err
	}

	log.Debug("swap_transitive done")
	return nil
}
