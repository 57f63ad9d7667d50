package executor

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
)

type receiptKey struct{}

// Receipt collects what the executor submitted for one request.
type Receipt struct {
	mu        sync.Mutex
	signature solana.Signature
	sender    string
	status    string
}

func WithReceipt(ctx context.Context) (context.Context, *Receipt) {
	receipt := &Receipt{}
	return context.WithValue(ctx, receiptKey{}, receipt), receipt
}

func ReceiptFrom(ctx context.Context) *Receipt {
	receipt, _ := ctx.Value(receiptKey{}).(*Receipt)
	return receipt
}

func (r *Receipt) set(signature solana.Signature, sender string, status string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signature = signature
	r.sender = sender
	r.status = status
}

func (r *Receipt) Signature() solana.Signature {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.signature
}

func (r *Receipt) Sender() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sender
}

func (r *Receipt) Status() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}
