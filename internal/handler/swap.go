package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/transitive-swap-router/internal/executor"
	"github.com/iqbalbaharum/transitive-swap-router/internal/instructions"
	"github.com/iqbalbaharum/transitive-swap-router/internal/market"
	"github.com/iqbalbaharum/transitive-swap-router/internal/metrics"
	"github.com/iqbalbaharum/transitive-swap-router/internal/router"
	"github.com/iqbalbaharum/transitive-swap-router/internal/storage"
	"github.com/iqbalbaharum/transitive-swap-router/internal/types"
	"github.com/iqbalbaharum/transitive-swap-router/internal/utils"
	"go.uber.org/zap"
)

type SwapProcessor interface {
	Process(ctx context.Context, programID solana.PublicKey, accounts []*solana.AccountMeta, data []byte) error
}

type MarketResolver interface {
	ResolveMarket(ctx context.Context, marketId solana.PublicKey) (*types.MarketKeys, error)
}

type SwapStore interface {
	Search(ctx context.Context, filter types.MySQLFilter) ([]types.Swap, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// RouterProgram holds the deployed router and the swap program it forwards to.
type RouterProgram struct {
	ID          solana.PublicKey
	SwapProgram solana.PublicKey
}

type AccountMeta struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

type ExecuteRequest struct {
	Accounts []AccountMeta `json:"accounts"`
	Data     string        `json:"data"`
}

type ExecuteResponse struct {
	Signature string `json:"signature"`
	Sender    string `json:"sender"`
	Status    string `json:"status"`
}

type BuildRequest struct {
	FromMarket          string `json:"fromMarket"`
	ToMarket            string `json:"toMarket"`
	FromOpenOrders      string `json:"fromOpenOrders"`
	ToOpenOrders        string `json:"toOpenOrders"`
	SourceWallet        string `json:"sourceWallet"`
	PcWallet            string `json:"pcWallet"`
	DestinationWallet   string `json:"destinationWallet"`
	Authority           string `json:"authority"`
	Amount              uint64 `json:"amount"`
	SourceDecimals      uint8  `json:"sourceDecimals"`
	DestinationDecimals uint8  `json:"destinationDecimals"`
}

type BuildResponse struct {
	ProgramID string        `json:"programId"`
	Accounts  []AccountMeta `json:"accounts"`
	Data      string        `json:"data"`
}

type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

type swapHandler struct {
	processor     SwapProcessor
	resolver      MarketResolver
	store         SwapStore
	routerProgram RouterProgram
	logger        *zap.Logger
}

func NewSwapHandler(deps Dependencies) *swapHandler {
	return &swapHandler{
		processor:     deps.Processor,
		resolver:      deps.Resolver,
		store:         deps.Store,
		routerProgram: deps.RouterProgram,
		logger:        deps.Logger,
	}
}

// Execute runs a raw router request: base64 payload plus the 26 accounts.
func (h *swapHandler) Execute(w http.ResponseWriter, r *http.Request) {
	decoded, err := utils.Decode[ExecuteRequest](r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	data, err := base64.StdEncoding.DecodeString(decoded.Data)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrInvalidData)
		return
	}

	accounts, err := toSolanaMetas(decoded.Accounts)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrInvalidAccount)
		return
	}

	ctx, receipt := executor.WithReceipt(r.Context())
	err = h.processor.Process(ctx, h.routerProgram.ID, accounts, data)
	if err != nil {
		switch {
		case errors.Is(err, router.ErrInvalidArgument):
			metrics.Requests.WithLabelValues(metrics.OutcomeInvalidArgument).Inc()
			writeError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			metrics.Requests.WithLabelValues(metrics.OutcomeSwapError).Inc()
			writeError(w, r, http.StatusGatewayTimeout, ErrTimeout)
		default:
			metrics.Requests.WithLabelValues(metrics.OutcomeSwapError).Inc()
			writeError(w, r, http.StatusBadGateway, err.Error())
		}
		return
	}

	metrics.Requests.WithLabelValues(metrics.OutcomeOK).Inc()

	resp := ExecuteResponse{
		Signature: receipt.Signature().String(),
		Sender:    receipt.Sender(),
		Status:    receipt.Status(),
	}
	if err := utils.Encode(w, r, http.StatusOK, resp); err != nil {
		h.logger.Warn("write response", zap.Error(err))
	}
}

// Build resolves both markets and returns what a client needs to call the
// router program itself.
func (h *swapHandler) Build(w http.ResponseWriter, r *http.Request) {
	decoded, err := utils.Decode[BuildRequest](r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	keys, err := parseKeys(
		decoded.FromMarket, decoded.ToMarket,
		decoded.FromOpenOrders, decoded.ToOpenOrders,
		decoded.SourceWallet, decoded.PcWallet, decoded.DestinationWallet,
		decoded.Authority,
	)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrInvalidAccount)
		return
	}

	ctx := r.Context()
	from, err := h.resolver.ResolveMarket(ctx, keys[0])
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err.Error())
		return
	}

	to, err := h.resolver.ResolveMarket(ctx, keys[1])
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err.Error())
		return
	}

	accounts, err := market.BuildAccounts(market.SwapParams{
		From:              from,
		To:                to,
		FromOpenOrders:    keys[2],
		ToOpenOrders:      keys[3],
		SourceWallet:      keys[4],
		PcWallet:          keys[5],
		DestinationWallet: keys[6],
		Authority:         keys[7],
		SwapProgram:       h.routerProgram.SwapProgram,
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req := &router.SwapRequest{
		Amount:              decoded.Amount,
		SourceDecimals:      decoded.SourceDecimals,
		DestinationDecimals: decoded.DestinationDecimals,
	}

	ix := instructions.MakeRouterInstruction(h.routerProgram.ID, accounts.Metas(), req)
	data, err := ix.Data()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	resp := BuildResponse{
		ProgramID: ix.ProgramID().String(),
		Accounts:  fromSolanaMetas(ix.Accounts()),
		Data:      base64.StdEncoding.EncodeToString(data),
	}
	if err := utils.Encode(w, r, http.StatusOK, resp); err != nil {
		h.logger.Warn("write response", zap.Error(err))
	}
}

func (h *swapHandler) Get(w http.ResponseWriter, r *http.Request) {
	decoded, err := utils.Decode[types.MySQLFilter](r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	ctx := r.Context()
	swaps, err := h.store.Search(ctx, decoded)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidFilter) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		select {
		case <-ctx.Done():
			writeError(w, r, http.StatusGatewayTimeout, ErrTimeout)
		default:
			writeError(w, r, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if err := utils.Encode(w, r, http.StatusOK, swaps); err != nil {
		h.logger.Warn("write response", zap.Error(err))
	}
}

func (h *swapHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deleted, err := h.store.DeleteAll(ctx)
	if err != nil {
		select {
		case <-ctx.Done():
			writeError(w, r, http.StatusGatewayTimeout, ErrTimeout)
		default:
			writeError(w, r, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if err := utils.Encode(w, r, http.StatusOK, DeleteResponse{Deleted: deleted}); err != nil {
		h.logger.Warn("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	_ = utils.Encode(w, r, status, errorResponse{Error: message})
}

func parseKeys(values ...string) ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, len(values))
	for i, v := range values {
		key, err := solana.PublicKeyFromBase58(v)
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}
	return keys, nil
}

func toSolanaMetas(accounts []AccountMeta) ([]*solana.AccountMeta, error) {
	metas := make([]*solana.AccountMeta, len(accounts))
	for i, a := range accounts {
		key, err := solana.PublicKeyFromBase58(a.Pubkey)
		if err != nil {
			return nil, err
		}
		metas[i] = solana.NewAccountMeta(key, a.IsWritable, a.IsSigner)
	}
	return metas, nil
}

func fromSolanaMetas(metas []*solana.AccountMeta) []AccountMeta {
	accounts := make([]AccountMeta, len(metas))
	for i, m := range metas {
		accounts[i] = AccountMeta{
			Pubkey:     m.PublicKey.String(),
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
		}
	}
	return accounts
}
