package pool

import (
	"context"
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/transitive-swap-router/internal/rpc"
	"go.uber.org/zap"
)

var (
	ErrPoolClosed = errors.New("broadcast pool closed")
	ErrNoSenders  = errors.New("broadcast pool has no senders")
)

type broadcastTask struct {
	ctx         context.Context
	transaction *solana.Transaction
	results     chan<- broadcastResult
}

type broadcastResult struct {
	sender    string
	signature solana.Signature
	err       error
}

// BroadcastPool submits every transaction through all of its senders at once.
// Each sender is driven by its own worker goroutine.
type BroadcastPool struct {
	senders []rpc.Sender
	taskChs []chan *broadcastTask
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewBroadcastPool(senders []rpc.Sender, logger *zap.Logger) *BroadcastPool {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool := &BroadcastPool{
		senders: senders,
		taskChs: make([]chan *broadcastTask, len(senders)),
		logger:  logger,
	}

	for i, sender := range senders {
		pool.taskChs[i] = make(chan *broadcastTask, 100)
		pool.wg.Add(1)
		go pool.worker(sender, pool.taskChs[i])
	}

	return pool
}

func (p *BroadcastPool) worker(sender rpc.Sender, taskCh <-chan *broadcastTask) {
	defer p.wg.Done()
	for task := range taskCh {
		signature, err := sender.Send(task.ctx, task.transaction)
		if err != nil {
			p.logger.Warn("broadcast send failed", zap.String("sender", sender.Name()), zap.Error(err))
		}
		task.results <- broadcastResult{sender: sender.Name(), signature: signature, err: err}
	}
}

func (p *BroadcastPool) Name() string {
	return "all"
}

// Send hands the transaction to every sender and returns the first signature
// that comes back. When all senders fail the errors are joined.
func (p *BroadcastPool) Send(ctx context.Context, transaction *solana.Transaction) (solana.Signature, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return solana.Signature{}, ErrPoolClosed
	}
	if len(p.taskChs) == 0 {
		p.mu.RUnlock()
		return solana.Signature{}, ErrNoSenders
	}

	// buffered so workers never block on a caller that already returned
	results := make(chan broadcastResult, len(p.taskChs))
	queued := 0
	for _, taskCh := range p.taskChs {
		select {
		case taskCh <- &broadcastTask{ctx: ctx, transaction: transaction, results: results}:
			queued++
		case <-ctx.Done():
			p.mu.RUnlock()
			return solana.Signature{}, ctx.Err()
		}
	}
	p.mu.RUnlock()

	var errs []error
	for i := 0; i < queued; i++ {
		select {
		case <-ctx.Done():
			return solana.Signature{}, ctx.Err()
		case result := <-results:
			if result.err == nil {
				p.logger.Debug("broadcast accepted",
					zap.String("sender", result.sender),
					zap.Stringer("signature", result.signature))
				return result.signature, nil
			}
			errs = append(errs, result.err)
		}
	}

	return solana.Signature{}, errors.Join(errs...)
}

func (p *BroadcastPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, taskCh := range p.taskChs {
		close(taskCh)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

var _ rpc.Sender = (*BroadcastPool)(nil)
