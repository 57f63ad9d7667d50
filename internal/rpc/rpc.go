package rpc

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/iqbalbaharum/transitive-swap-router/internal/coder"
)

var ErrAccountNotFound = errors.New("account not found")

type AccountInfo struct {
	Value *AccountInfoValue `json:"value"`
}

type BlockhashResult struct {
	Value BlockhashValue `json:"value"`
}

type BlockhashValue struct {
	Blockhash string `json:"blockhash"`
}

type AccountInfoValue struct {
	Data       []string `json:"data"`
	Owner      string   `json:"owner"`
	Lamports   uint64   `json:"lamports"`
	Executable bool     `json:"executable"`
}

type SimulateResult struct {
	Value SimulateValue `json:"value"`
}

type SimulateValue struct {
	Err           json.RawMessage `json:"err"`
	Logs          []string        `json:"logs"`
	UnitsConsumed uint64          `json:"unitsConsumed"`
}

type RequestBody struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type ResponseBody struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// SimulationError carries the program error and logs of a failed simulation.
type SimulationError struct {
	Err  string
	Logs []string
}

func (e *SimulationError) Error() string {
	return "simulation failed: " + e.Err
}

type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Name() string {
	return "rpc"
}

func (c *Client) CallRPC(ctx context.Context, method string, params interface{}) (*ResponseBody, error) {
	requestBody := RequestBody{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	}

	reqBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.ReadCloser
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
	default:
		reader = resp.Body
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var responseBody ResponseBody
	if err := json.Unmarshal(body, &responseBody); err != nil {
		return nil, fmt.Errorf("%s: decode response (status %d): %w", method, resp.StatusCode, err)
	}

	if responseBody.Error != nil {
		return nil, responseBody.Error
	}

	return &responseBody, nil
}

// Send submits the transaction and returns the signature reported by the node.
func (c *Client) Send(ctx context.Context, transaction *solana.Transaction) (solana.Signature, error) {
	msg, err := transaction.MarshalBinary()
	if err != nil {
		return solana.Signature{}, err
	}

	params := []interface{}{
		base64.StdEncoding.EncodeToString(msg),
		map[string]interface{}{
			"encoding":            "base64",
			"skipPreflight":       false,
			"maxRetries":          1,
			"preflightCommitment": "confirmed",
		},
	}

	response, err := c.CallRPC(ctx, "sendTransaction", params)
	if err != nil {
		return solana.Signature{}, err
	}

	var signature string
	if err := json.Unmarshal(response.Result, &signature); err != nil {
		return solana.Signature{}, err
	}

	return solana.SignatureFromBase58(signature)
}

// Simulate runs the transaction without committing it. A program error is
// returned as *SimulationError.
func (c *Client) Simulate(ctx context.Context, transaction *solana.Transaction) (*SimulateValue, error) {
	msg, err := transaction.MarshalBinary()
	if err != nil {
		return nil, err
	}

	params := []interface{}{
		base64.StdEncoding.EncodeToString(msg),
		map[string]interface{}{
			"encoding":   "base64",
			"sigVerify":  false,
			"commitment": "confirmed",
		},
	}

	response, err := c.CallRPC(ctx, "simulateTransaction", params)
	if err != nil {
		return nil, err
	}

	var result SimulateResult
	if err := json.Unmarshal(response.Result, &result); err != nil {
		return nil, err
	}

	if len(result.Value.Err) > 0 && string(result.Value.Err) != "null" {
		return &result.Value, &SimulationError{Err: string(result.Value.Err), Logs: result.Value.Logs}
	}

	return &result.Value, nil
}

func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	params := []interface{}{
		map[string]interface{}{
			"commitment": "confirmed",
		},
	}

	response, err := c.CallRPC(ctx, "getLatestBlockhash", params)
	if err != nil {
		return solana.Hash{}, err
	}

	var result BlockhashResult
	if err := json.Unmarshal(response.Result, &result); err != nil {
		return solana.Hash{}, err
	}

	return solana.HashFromBase58(result.Value.Blockhash)
}

func (c *Client) GetAccountInfo(ctx context.Context, publicKey solana.PublicKey, dataSlice *rpc.DataSlice) (*AccountInfo, error) {
	params := map[string]interface{}{
		"encoding":   "base64",
		"commitment": "confirmed",
	}

	if dataSlice != nil {
		params["dataSlice"] = map[string]interface{}{
			"offset": dataSlice.Offset,
			"length": dataSlice.Length,
		}
	}

	reqParams := []interface{}{
		publicKey,
		params,
	}

	response, err := c.CallRPC(ctx, "getAccountInfo", reqParams)
	if err != nil {
		return nil, err
	}

	var accountInfo AccountInfo
	if err := json.Unmarshal(response.Result, &accountInfo); err != nil {
		return nil, err
	}

	return &accountInfo, nil
}

// GetAccountData returns the decoded data of an existing account.
func (c *Client) GetAccountData(ctx context.Context, publicKey solana.PublicKey) ([]byte, error) {
	resp, err := c.GetAccountInfo(ctx, publicKey, nil)
	if err != nil {
		return nil, err
	}

	if resp == nil || resp.Value == nil || len(resp.Value.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, publicKey)
	}

	return base64.StdEncoding.DecodeString(resp.Value.Data[0])
}

func (c *Client) GetLookupTable(ctx context.Context, addr solana.PublicKey) (addresslookuptable.AddressLookupTableState, error) {
	data, err := c.GetAccountData(ctx, addr)
	if err != nil {
		return addresslookuptable.AddressLookupTableState{}, err
	}

	var lookupTableState addresslookuptable.AddressLookupTableState
	err = lookupTableState.UnmarshalWithDecoder(bin.NewBorshDecoder(data))
	if err != nil {
		return addresslookuptable.AddressLookupTableState{}, err
	}

	return lookupTableState, nil
}

func (c *Client) GetMarketState(ctx context.Context, marketId solana.PublicKey) (*coder.MarketStateLayoutV3, error) {
	data, err := c.GetAccountData(ctx, marketId)
	if err != nil {
		return nil, err
	}

	state, err := coder.NewSerumMarketCoder().MarketDecode(data)
	if err != nil {
		return nil, fmt.Errorf("market %s: %w", marketId, err)
	}

	return &state, nil
}
