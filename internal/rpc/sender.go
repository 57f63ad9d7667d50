package rpc

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Sender submits a signed transaction to the network.
type Sender interface {
	Name() string
	Send(ctx context.Context, transaction *solana.Transaction) (solana.Signature, error)
}

var (
	_ Sender = (*Client)(nil)
	_ Sender = (*JitoClient)(nil)
	_ Sender = (*BloxRouteClient)(nil)
)
