package rpc

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
)

type BloxRouteResponse struct {
	Signature string `json:"signature"`
}

var ErrNoBloxRouteSignature = errors.New("no signature returned from BloxRoute")

type BloxRouteClient struct {
	url           string
	token         string
	useStakedRPCs bool
	httpClient    *http.Client
}

func NewBloxRouteClient(url string, token string, useStakedRPCs bool) *BloxRouteClient {
	return &BloxRouteClient{
		url:           url,
		token:         token,
		useStakedRPCs: useStakedRPCs,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *BloxRouteClient) Name() string {
	return "bloxroute"
}

func (b *BloxRouteClient) Send(ctx context.Context, transaction *solana.Transaction) (solana.Signature, error) {
	msg, err := transaction.MarshalBinary()
	if err != nil {
		return solana.Signature{}, err
	}

	requestBody := map[string]interface{}{
		"transaction": map[string]string{
			"content": base64.StdEncoding.EncodeToString(msg),
		},
		"skipPreFlight":          false,
		"frontRunningProtection": false,
		"fastBestEffort":         false,
		"useStakedRPCs":          b.useStakedRPCs,
	}

	var requestBodyBuffer bytes.Buffer
	if err := json.NewEncoder(&requestBodyBuffer).Encode(requestBody); err != nil {
		return solana.Signature{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, &requestBodyBuffer)
	if err != nil {
		return solana.Signature{}, err
	}

	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("Authorization", b.token)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return solana.Signature{}, err
	}
	defer resp.Body.Close()

	var reader io.ReadCloser

	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		reader, err = gzip.NewReader(resp.Body)
	case "deflate":
		reader, err = zlib.NewReader(resp.Body)
	default:
		reader = resp.Body
	}

	if err != nil {
		return solana.Signature{}, err
	}
	defer reader.Close()

	var response BloxRouteResponse
	if err := json.NewDecoder(reader).Decode(&response); err != nil {
		return solana.Signature{}, err
	}

	if response.Signature == "" {
		return solana.Signature{}, ErrNoBloxRouteSignature
	}

	return solana.SignatureFromBase58(response.Signature)
}
