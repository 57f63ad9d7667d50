package rpc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/transitive-swap-router/internal/coder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTransaction(t *testing.T) *solana.Transaction {
	t.Helper()

	payer := solana.NewWallet()
	ins := solana.NewInstruction(solana.NewWallet().PublicKey(), solana.AccountMetaSlice{}, []byte{1})
	tx, err := solana.NewTransaction([]solana.Instruction{ins}, solana.Hash{7}, solana.TransactionPayer(payer.PublicKey()))
	require.NoError(t, err)

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		return &payer.PrivateKey
	})
	require.NoError(t, err)
	return tx
}

func rpcServer(t *testing.T, handle func(req RequestBody) interface{}) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RequestBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(handle(req))
	}))
	t.Cleanup(server.Close)
	return server
}

func result(v interface{}) map[string]interface{} {
	return map[string]interface{}{"jsonrpc": "2.0", "id": 1, "result": v}
}

func TestSend(t *testing.T) {
	tx := testTransaction(t)

	server := rpcServer(t, func(req RequestBody) interface{} {
		assert.Equal(t, "sendTransaction", req.Method)
		params := req.Params.([]interface{})
		raw, err := base64.StdEncoding.DecodeString(params[0].(string))
		require.NoError(t, err)
		expected, _ := tx.MarshalBinary()
		assert.Equal(t, expected, raw)
		return result(tx.Signatures[0].String())
	})

	signature, err := NewClient(server.URL).Send(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, tx.Signatures[0], signature)
}

func TestCallRPCError(t *testing.T) {
	server := rpcServer(t, func(req RequestBody) interface{} {
		return map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]interface{}{"code": -32002, "message": "custom program error: 0x12e"},
		}
	})

	_, err := NewClient(server.URL).Send(context.Background(), testTransaction(t))

	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32002, rpcErr.Code)
	assert.Contains(t, err.Error(), "0x12e")
}

func TestGetLatestBlockhash(t *testing.T) {
	hash := solana.Hash{9, 9, 9}
	server := rpcServer(t, func(req RequestBody) interface{} {
		assert.Equal(t, "getLatestBlockhash", req.Method)
		return result(map[string]interface{}{"value": map[string]interface{}{"blockhash": hash.String()}})
	})

	got, err := NewClient(server.URL).GetLatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, hash, got)
}

func TestSimulate(t *testing.T) {
	server := rpcServer(t, func(req RequestBody) interface{} {
		return result(map[string]interface{}{
			"value": map[string]interface{}{
				"err":           map[string]interface{}{"InstructionError": []interface{}{2, map[string]interface{}{"Custom": 302}}},
				"logs":          []string{"Program log: ici1"},
				"unitsConsumed": 51234,
			},
		})
	})

	value, err := NewClient(server.URL).Simulate(context.Background(), testTransaction(t))

	var simErr *SimulationError
	require.True(t, errors.As(err, &simErr))
	assert.Contains(t, simErr.Err, "Custom")
	assert.Equal(t, []string{"Program log: ici1"}, simErr.Logs)
	assert.Equal(t, uint64(51234), value.UnitsConsumed)
}

func TestSimulateOK(t *testing.T) {
	server := rpcServer(t, func(req RequestBody) interface{} {
		return result(map[string]interface{}{"value": map[string]interface{}{"err": nil, "unitsConsumed": 10}})
	})

	value, err := NewClient(server.URL).Simulate(context.Background(), testTransaction(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), value.UnitsConsumed)
}

func TestGetMarketState(t *testing.T) {
	state := coder.MarketStateLayoutV3{
		OwnAddress:       solana.NewWallet().PublicKey(),
		VaultSignerNonce: 1,
		Bids:             solana.NewWallet().PublicKey(),
	}
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, state))

	server := rpcServer(t, func(req RequestBody) interface{} {
		assert.Equal(t, "getAccountInfo", req.Method)
		return result(map[string]interface{}{
			"value": map[string]interface{}{
				"data":  []string{base64.StdEncoding.EncodeToString(buf.Bytes()), "base64"},
				"owner": "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
			},
		})
	})

	got, err := NewClient(server.URL).GetMarketState(context.Background(), state.OwnAddress)
	require.NoError(t, err)
	assert.Equal(t, state.Bids, got.Bids)
	assert.Equal(t, uint64(1), got.VaultSignerNonce)
}

func TestGetAccountDataNotFound(t *testing.T) {
	server := rpcServer(t, func(req RequestBody) interface{} {
		return result(map[string]interface{}{"value": nil})
	})

	_, err := NewClient(server.URL).GetAccountData(context.Background(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestCallRPCHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.URL).GetLatestBlockhash(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
