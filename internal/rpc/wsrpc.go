package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/transitive-swap-router/internal/generators"
)

var ErrSubscriptionClosed = errors.New("websocket closed before confirmation")

// TransactionError is the on-chain failure reported for a confirmed signature.
type TransactionError struct {
	Signature solana.Signature
	Err       string
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %s", e.Signature, e.Err)
}

type signatureNotification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Value struct {
				Err json.RawMessage `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

type WsRpc struct {
	url string
}

func NewWsRpc(url string) *WsRpc {
	return &WsRpc{url: url}
}

// ConfirmSignature waits for the signature to reach confirmed commitment. A
// transaction that landed with an error is reported as *TransactionError.
func (w *WsRpc) ConfirmSignature(ctx context.Context, signature solana.Signature) error {
	wsClient, err := generators.NewWSClient(ctx, w.url, "")
	if err != nil {
		return err
	}
	defer wsClient.Close()

	subscriptionRequest := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "signatureSubscribe",
		"params": []interface{}{
			signature.String(),
			map[string]interface{}{"commitment": "confirmed"},
		},
	}

	requestData, err := json.Marshal(subscriptionRequest)
	if err != nil {
		return err
	}

	if err := wsClient.SendMessage(requestData); err != nil {
		return err
	}

	messageChan := make(chan []byte)
	go wsClient.ReadMessages(messageChan)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case message, ok := <-messageChan:
			if !ok {
				return ErrSubscriptionClosed
			}

			var notification signatureNotification
			if err := json.Unmarshal(message, &notification); err != nil {
				continue
			}

			if notification.Method != "signatureNotification" {
				continue
			}

			txErr := notification.Params.Result.Value.Err
			if len(txErr) > 0 && string(txErr) != "null" {
				return &TransactionError{Signature: signature, Err: string(txErr)}
			}

			return nil
		}
	}
}
