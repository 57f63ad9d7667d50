package generators

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gagliardetto/solana-go"
	pb "github.com/iqbalbaharum/solana-protos/pb"
	"github.com/iqbalbaharum/transitive-swap-router/internal/types"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
)

var ErrGrpcNotConnected = errors.New("GRPC not connected")

var kacp = keepalive.ClientParameters{
	Time:                10 * time.Minute,
	Timeout:             20 * time.Second,
	PermitWithoutStream: true,
}

type MempoolTxn struct {
	Source               string                 `json:"source"`
	Signature            string                 `json:"signature"`
	AccountKeys          []string               `json:"accountKeys"`
	RecentBlockhash      string                 `json:"recentBlockhash"`
	Instructions         []TxInstruction        `json:"instructions"`
	AddressTableLookups  []TxAddressTableLookup `json:"addressTableLookups"`
	PreTokenBalances     []types.TxTokenBalance `json:"preTokenBalances"`
	PostTokenBalances    []types.TxTokenBalance `json:"postTokenBalances"`
	ComputeUnitsConsumed uint64                 `json:"computeUnitsConsumed"`
	Slot                 uint64                 `json:"slot"`
	Error                string                 `json:"error"`
}

type TxInstruction struct {
	ProgramIdIndex uint32  `json:"programIdIndex"`
	Accounts       []uint8 `json:"accounts"`
	Data           []byte  `json:"data"`
}

type TxAddressTableLookup struct {
	AccountKey      string  `json:"accountKey"`
	WritableIndexes []uint8 `json:"writableIndexes"`
	ReadonlyIndexes []uint8 `json:"readonlyIndexes"`
}

type GeyserResponse struct {
	MempoolTxns MempoolTxn `json:"mempoolTxns"`
}

type GrpcClient struct {
	conn   *grpc.ClientConn
	client pb.GeyserClient
	token  string
	logger *zap.Logger
}

func GrpcConnect(address string, plaintext bool, token string, logger *zap.Logger) (*GrpcClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []grpc.DialOption
	if plaintext {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		pool, err := x509.SystemCertPool()
		if err != nil {
			return nil, err
		}
		creds := credentials.NewClientTLSFromCert(pool, "")
		opts = append(opts, grpc.WithTransportCredentials(creds))
	}

	opts = append(opts, grpc.WithKeepaliveParams(kacp))
	opts = append(opts, grpc.WithInitialWindowSize(100<<20))
	opts = append(opts, grpc.WithInitialConnWindowSize(100<<20))
	opts = append(opts, grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(1<<30)))

	logger.Info("starting grpc client", zap.String("address", address))
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, err
	}

	return &GrpcClient{
		conn:   conn,
		client: pb.NewGeyserClient(conn),
		token:  token,
		logger: logger,
	}, nil
}

func (g *GrpcClient) CloseConnection() error {
	if g.conn != nil {
		return g.conn.Close()
	}
	return nil
}

func (g *GrpcClient) outgoing(ctx context.Context) context.Context {
	if g.token == "" {
		return ctx
	}
	return metadata.NewOutgoingContext(ctx, metadata.New(map[string]string{"x-token": g.token}))
}

// SubscriptionRequest selects every transaction, failed ones included, that
// mentions one of accountInclude.
func SubscriptionRequest(accountInclude []string, accountExclude []string) *pb.SubscribeRequest {
	subscription := &pb.SubscribeRequest{
		Slots:        make(map[string]*pb.SubscribeRequestFilterSlots),
		Blocks:       make(map[string]*pb.SubscribeRequestFilterBlocks),
		BlocksMeta:   make(map[string]*pb.SubscribeRequestFilterBlocksMeta),
		Accounts:     make(map[string]*pb.SubscribeRequestFilterAccounts),
		Transactions: make(map[string]*pb.SubscribeRequestFilterTransactions),
		Entry:        make(map[string]*pb.SubscribeRequestFilterEntry),
		Commitment:   pb.CommitmentLevel_CONFIRMED.Enum(),
	}

	if len(accountInclude) > 0 {
		vote := false
		subscription.Transactions[accountInclude[0]] = &pb.SubscribeRequestFilterTransactions{
			Vote:           &vote,
			AccountInclude: accountInclude,
			AccountExclude: accountExclude,
		}
	}

	return subscription
}

// GrpcSubscribeByAddresses streams matching transactions into txChannel until the
// stream ends or ctx is cancelled. txChannel is left open for other subscribers.
func (g *GrpcClient) GrpcSubscribeByAddresses(ctx context.Context, sourceName string, accountInclude []string, accountExclude []string, txChannel chan<- GeyserResponse) error {
	if g.client == nil {
		return ErrGrpcNotConnected
	}

	subscription := SubscriptionRequest(accountInclude, accountExclude)

	stream, err := g.client.Subscribe(g.outgoing(ctx), grpc.MaxCallRecvMsgSize(100<<20))
	if err != nil {
		return err
	}

	if err := stream.Send(subscription); err != nil {
		return err
	}

	g.logger.Info("subscribed", zap.String("source", sourceName), zap.Strings("accounts", accountInclude))

	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%s: receive update: %w", sourceName, err)
		}

		if resp.GetTransaction() == nil {
			continue
		}

		response, ok := ConvertTransaction(sourceName, resp.GetTransaction())
		if !ok {
			continue
		}

		select {
		case txChannel <- response:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ConvertTransaction flattens a geyser transaction update.
func ConvertTransaction(sourceName string, update *pb.SubscribeUpdateTransaction) (GeyserResponse, bool) {
	info := update.GetTransaction()
	message := info.GetTransaction().GetMessage()
	if message == nil {
		return GeyserResponse{}, false
	}

	meta := info.GetMeta()

	var errorString string
	if meta.GetErr() != nil {
		errorString = fmt.Sprintf("0x%x", meta.GetErr().GetErr())
	}

	return GeyserResponse{
		MempoolTxns: MempoolTxn{
			Source:               sourceName,
			Signature:            base58.Encode(info.GetSignature()),
			AccountKeys:          convertAccountKeys(message.GetAccountKeys()),
			RecentBlockhash:      base58.Encode(message.GetRecentBlockhash()),
			Instructions:         convertInstructions(message.GetInstructions()),
			AddressTableLookups:  convertAddressTableLookups(message.GetAddressTableLookups()),
			PreTokenBalances:     convertTokenBalances(meta.GetPreTokenBalances()),
			PostTokenBalances:    convertTokenBalances(meta.GetPostTokenBalances()),
			ComputeUnitsConsumed: meta.GetComputeUnitsConsumed(),
			Slot:                 update.GetSlot(),
			Error:                errorString,
		},
	}, true
}

func convertAccountKeys(accountKeys [][]byte) []string {
	encodedKeys := make([]string, len(accountKeys))
	for i, key := range accountKeys {
		encodedKeys[i] = base58.Encode(key)
	}
	return encodedKeys
}

func convertInstructions(instructions []*pb.CompiledInstruction) []TxInstruction {
	convertedInstructions := make([]TxInstruction, len(instructions))
	for i, instr := range instructions {
		convertedInstructions[i] = TxInstruction{
			ProgramIdIndex: instr.ProgramIdIndex,
			Accounts:       instr.Accounts,
			Data:           instr.Data,
		}
	}
	return convertedInstructions
}

func convertAddressTableLookups(lookups []*pb.MessageAddressTableLookup) []TxAddressTableLookup {
	convertedLookups := make([]TxAddressTableLookup, len(lookups))
	for i, lookup := range lookups {
		convertedLookups[i] = TxAddressTableLookup{
			AccountKey:      base58.Encode(lookup.AccountKey),
			WritableIndexes: lookup.WritableIndexes,
			ReadonlyIndexes: lookup.ReadonlyIndexes,
		}
	}
	return convertedLookups
}

func convertTokenBalances(tokenBalances []*pb.TokenBalance) []types.TxTokenBalance {
	convertedBalances := make([]types.TxTokenBalance, len(tokenBalances))
	for i, balance := range tokenBalances {
		convertedBalances[i] = types.TxTokenBalance{
			AccountIndex: balance.GetAccountIndex(),
			Mint:         balance.GetMint(),
			Owner:        balance.GetOwner(),
			Amount:       balance.GetUiTokenAmount().GetAmount(),
			Decimal:      balance.GetUiTokenAmount().GetDecimals(),
		}
	}
	return convertedBalances
}

// GetLatestBlockhash asks the geyser node for a confirmed blockhash.
func (g *GrpcClient) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	if g.client == nil {
		return solana.Hash{}, ErrGrpcNotConnected
	}

	block, err := g.client.GetLatestBlockhash(g.outgoing(ctx), &pb.GetLatestBlockhashRequest{
		Commitment: pb.CommitmentLevel_CONFIRMED.Enum(),
	})
	if err != nil {
		return solana.Hash{}, err
	}

	return solana.HashFromBase58(block.Blockhash)
}
