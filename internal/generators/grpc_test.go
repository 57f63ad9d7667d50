package generators

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	pb "github.com/iqbalbaharum/solana-protos/pb"
	"github.com/iqbalbaharum/transitive-swap-router/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionRequest(t *testing.T) {
	program := solana.NewWallet().PublicKey().String()

	req := SubscriptionRequest([]string{program}, nil)
	require.Contains(t, req.Transactions, program)

	filter := req.Transactions[program]
	assert.False(t, filter.GetVote())
	assert.Nil(t, filter.Failed)
	assert.Equal(t, []string{program}, filter.AccountInclude)
	assert.Equal(t, pb.CommitmentLevel_CONFIRMED, req.GetCommitment())

	assert.Empty(t, SubscriptionRequest(nil, nil).Transactions)
}

func TestConvertTransaction(t *testing.T) {
	signature := solana.Signature{9, 9}
	key := solana.NewWallet().PublicKey()
	table := solana.NewWallet().PublicKey()
	units := uint64(48211)

	update := &pb.SubscribeUpdateTransaction{
		Slot: 300,
		Transaction: &pb.SubscribeUpdateTransactionInfo{
			Signature: signature[:],
			Transaction: &pb.Transaction{
				Message: &pb.Message{
					AccountKeys:     [][]byte{key[:]},
					RecentBlockhash: make([]byte, 32),
					Instructions: []*pb.CompiledInstruction{
						{ProgramIdIndex: 0, Accounts: []byte{0, 1}, Data: []byte{1, 2}},
					},
					AddressTableLookups: []*pb.MessageAddressTableLookup{
						{AccountKey: table[:], WritableIndexes: []byte{3}, ReadonlyIndexes: []byte{4}},
					},
				},
			},
			Meta: &pb.TransactionStatusMeta{
				Err:                  &pb.TransactionError{Err: []byte{1}},
				ComputeUnitsConsumed: &units,
				PostTokenBalances: []*pb.TokenBalance{
					{AccountIndex: 2, Mint: "mint", Owner: "owner", UiTokenAmount: &pb.UiTokenAmount{Amount: "15", Decimals: 6}},
				},
			},
		},
	}

	response, ok := ConvertTransaction("triton", update)
	require.True(t, ok)

	tx := response.MempoolTxns
	assert.Equal(t, "triton", tx.Source)
	assert.Equal(t, signature.String(), tx.Signature)
	assert.Equal(t, []string{key.String()}, tx.AccountKeys)
	assert.Equal(t, uint64(300), tx.Slot)
	assert.Equal(t, units, tx.ComputeUnitsConsumed)
	assert.Equal(t, "0x01", tx.Error)
	assert.Equal(t, []TxAddressTableLookup{{AccountKey: table.String(), WritableIndexes: []uint8{3}, ReadonlyIndexes: []uint8{4}}}, tx.AddressTableLookups)
	assert.Equal(t, []types.TxTokenBalance{{AccountIndex: 2, Mint: "mint", Owner: "owner", Amount: "15", Decimal: 6}}, tx.PostTokenBalances)
	assert.Empty(t, tx.PreTokenBalances)
}

func TestConvertTransactionWithoutMessage(t *testing.T) {
	_, ok := ConvertTransaction("triton", &pb.SubscribeUpdateTransaction{})
	assert.False(t, ok)
}
