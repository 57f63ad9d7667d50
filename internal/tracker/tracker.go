package tracker

import (
	"context"
	"math/big"
	"runtime"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/transitive-swap-router/internal/coder"
	"github.com/iqbalbaharum/transitive-swap-router/internal/config"
	"github.com/iqbalbaharum/transitive-swap-router/internal/generators"
	"github.com/iqbalbaharum/transitive-swap-router/internal/metrics"
	"github.com/iqbalbaharum/transitive-swap-router/internal/router"
	"github.com/iqbalbaharum/transitive-swap-router/internal/types"
	"go.uber.org/zap"
)

const dedupWindow = time.Minute

type SwapRecorder interface {
	Set(ctx context.Context, swap *types.Swap) error
}

type Tracker struct {
	routerProgram solana.PublicKey
	lookups       *LookupTables
	recorder      SwapRecorder
	compute       *coder.ComputeBudgetCoder
	logger        *zap.Logger
	now           func() time.Time

	processed sync.Map
}

func New(routerProgram solana.PublicKey, lookups *LookupTables, recorder SwapRecorder, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Tracker{
		routerProgram: routerProgram,
		lookups:       lookups,
		recorder:      recorder,
		compute:       coder.NewComputeBudgetCoder(),
		logger:        logger,
		now:           time.Now,
	}
}

// Run drains txChannel with a pool of workers until it is closed or ctx ends.
// The same signature reported by several sources is processed once.
func (t *Tracker) Run(ctx context.Context, txChannel <-chan generators.GeyserResponse, workers int) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case response, ok := <-txChannel:
					if !ok {
						return
					}
					t.handle(ctx, response)
				}
			}
		}()
	}
	wg.Wait()
}

func (t *Tracker) handle(ctx context.Context, response generators.GeyserResponse) {
	signature := response.MempoolTxns.Signature
	if _, exists := t.processed.LoadOrStore(signature, true); exists {
		return
	}
	time.AfterFunc(dedupWindow, func() {
		t.processed.Delete(signature)
	})

	if _, err := t.Process(ctx, response); err != nil {
		t.logger.Warn("failed to process transaction",
			zap.String("source", response.MempoolTxns.Source),
			zap.String("signature", signature),
			zap.Error(err))
	}
}

// Process decodes every router instruction in the transaction and records it.
// Instructions that do not bind or decode are counted and skipped.
func (t *Tracker) Process(ctx context.Context, response generators.GeyserResponse) ([]*types.Swap, error) {
	tx := response.MempoolTxns

	keys, err := t.lookups.AccountKeys(ctx, tx)
	if err != nil {
		return nil, err
	}

	var (
		computeLimit uint64
		computePrice uint64
		found        []int
	)

	for i, ins := range tx.Instructions {
		if int(ins.ProgramIdIndex) >= len(keys) {
			continue
		}

		switch programId := keys[ins.ProgramIdIndex]; {
		case programId.Equals(t.routerProgram):
			found = append(found, i)
		case programId.Equals(config.COMPUTE_PROGRAM):
			decoded, err := t.compute.DecodeCompute(ins.Data)
			if err != nil {
				continue
			}
			switch decoded.Instruction {
			case coder.ComputeUnitLimit:
				computeLimit = decoded.Value
			case coder.ComputeUnitPrice:
				computePrice = decoded.Value
			}
		}
	}

	status := types.SwapStatusSuccess
	if tx.Error != "" {
		status = types.SwapStatusFailed
	}

	var swaps []*types.Swap
	for _, index := range found {
		ins := tx.Instructions[index]
		metas, err := instructionMetas(ins, keys)
		if err != nil {
			metrics.Observed.WithLabelValues("invalid").Inc()
			continue
		}

		bindings, err := router.BindAccounts(metas)
		if err != nil {
			metrics.Observed.WithLabelValues("invalid").Inc()
			t.logger.Debug("router instruction accounts", zap.String("signature", tx.Signature), zap.Error(err))
			continue
		}

		req, err := router.DecodeRequest(ins.Data)
		if err != nil {
			metrics.Observed.WithLabelValues("invalid").Inc()
			t.logger.Debug("router instruction payload", zap.String("signature", tx.Signature), zap.Error(err))
			continue
		}

		swap := &types.Swap{
			Signature:           tx.Signature,
			InstructionIndex:    uint8(index),
			Slot:                tx.Slot,
			Source:              types.SwapSourceTracker,
			Mode:                config.MODE_PROGRAM,
			Amount:              req.Amount,
			SourceDecimals:      req.SourceDecimals,
			DestinationDecimals: req.DestinationDecimals,
			SourceWallet:        bindings.From.CoinWallet.PublicKey.String(),
			DestinationWallet:   bindings.To.CoinWallet.PublicKey.String(),
			MarketFrom:          bindings.From.Market.PublicKey.String(),
			MarketTo:            bindings.To.Market.PublicKey.String(),
			Authority:           bindings.Authority.PublicKey.String(),
			AmountOut:           balanceChange(tx, int(ins.Accounts[router.RoleDestinationWallet])).String(),
			ComputeLimit:        computeLimit,
			ComputePrice:        computePrice,
			Status:              status,
			Error:               tx.Error,
			Timestamp:           t.now().Unix(),
		}

		metrics.Observed.WithLabelValues(status).Inc()
		t.logger.Info("router swap observed",
			zap.String("source", tx.Source),
			zap.String("signature", tx.Signature),
			zap.Uint64("amount", req.Amount),
			zap.String("amount_out", swap.AmountOut),
			zap.String("status", status))

		if t.recorder != nil {
			if err := t.recorder.Set(ctx, swap); err != nil {
				t.logger.Error("failed to record swap", zap.String("signature", tx.Signature), zap.Error(err))
			}
		}

		swaps = append(swaps, swap)
	}

	return swaps, nil
}

func instructionMetas(ins generators.TxInstruction, keys solana.PublicKeySlice) ([]*solana.AccountMeta, error) {
	metas := make([]*solana.AccountMeta, len(ins.Accounts))
	for i, idx := range ins.Accounts {
		if int(idx) >= len(keys) {
			return nil, ErrLookupIndexOutOfRange
		}
		metas[i] = solana.Meta(keys[idx])
	}
	return metas, nil
}

// balanceChange is the post minus pre token balance of the account at index.
func balanceChange(tx generators.MempoolTxn, index int) *big.Int {
	pre := findBalance(tx.PreTokenBalances, index)
	post := findBalance(tx.PostTokenBalances, index)
	return new(big.Int).Sub(post, pre)
}

func findBalance(balances []types.TxTokenBalance, index int) *big.Int {
	for _, b := range balances {
		if int(b.AccountIndex) != index {
			continue
		}
		amount, ok := new(big.Int).SetString(b.Amount, 10)
		if !ok {
			break
		}
		return amount
	}
	return big.NewInt(0)
}
