package instructions

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/transitive-swap-router/internal/router"
)

const (
	SwapTransitiveArgsSize = (8 + // amount
		8 + // rate
		1 + // from decimals
		1 + // quote decimals
		1) // strict
)

// SwapTransitiveDiscriminator is the Anchor sighash of serum-swap's swap_transitive.
var SwapTransitiveDiscriminator = anchorSighash("swap_transitive")

func anchorSighash(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

type SwapTransitiveInstruction struct {
	Amount                  uint64
	MinExchangeRate         router.ExchangeRate
	programID               solana.PublicKey
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

func (instruction *SwapTransitiveInstruction) ProgramID() solana.PublicKey {
	return instruction.programID
}

func (instruction *SwapTransitiveInstruction) Accounts() (out []*solana.AccountMeta) {
	return instruction.AccountMetaSlice
}

func (instruction *SwapTransitiveInstruction) Data() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(instruction); err != nil {
		return nil, fmt.Errorf("unable to encode instruction: %w", err)
	}
	return buf.Bytes(), nil
}

func (instruction *SwapTransitiveInstruction) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	if err = encoder.WriteBytes(SwapTransitiveDiscriminator[:], false); err != nil {
		return err
	}
	if err = encoder.WriteUint64(instruction.Amount, binary.LittleEndian); err != nil {
		return err
	}
	if err = encoder.WriteUint64(instruction.MinExchangeRate.Rate, binary.LittleEndian); err != nil {
		return err
	}
	if err = encoder.WriteUint8(instruction.MinExchangeRate.FromDecimals); err != nil {
		return err
	}
	if err = encoder.WriteUint8(instruction.MinExchangeRate.QuoteDecimals); err != nil {
		return err
	}
	return encoder.WriteBool(instruction.MinExchangeRate.Strict)
}

func marketLegMetas(leg router.MarketLeg) []*solana.AccountMeta {
	return []*solana.AccountMeta{
		solana.Meta(leg.Market.PublicKey).WRITE(),                 // Market
		solana.Meta(leg.OpenOrders.PublicKey).WRITE(),             // Open orders
		solana.Meta(leg.RequestQueue.PublicKey).WRITE(),           // Request queue
		solana.Meta(leg.EventQueue.PublicKey).WRITE(),             // Event queue
		solana.Meta(leg.Bids.PublicKey).WRITE(),                   // Bids
		solana.Meta(leg.Asks.PublicKey).WRITE(),                   // Asks
		solana.Meta(leg.OrderPayerTokenAccount.PublicKey).WRITE(), // Order payer
		solana.Meta(leg.CoinVault.PublicKey).WRITE(),              // Coin vault
		solana.Meta(leg.PcVault.PublicKey).WRITE(),                // Pc vault
		solana.Meta(leg.VaultSigner.PublicKey),                    // Vault signer
		solana.Meta(leg.CoinWallet.PublicKey).WRITE(),             // Coin wallet
	}
}

// MakeSwapTransitiveInstruction lays the call out in serum-swap's SwapTransitive
// account order.
func MakeSwapTransitiveInstruction(call *router.TransitiveCall) *SwapTransitiveInstruction {
	ins := &SwapTransitiveInstruction{
		Amount:          call.Amount,
		MinExchangeRate: call.MinExchangeRate,
		programID:       call.Program.PublicKey,
	}

	accountMetas := make([]*solana.AccountMeta, 0, 2*11+5)
	accountMetas = append(accountMetas, marketLegMetas(call.From)...)
	accountMetas = append(accountMetas, marketLegMetas(call.To)...)
	accountMetas = append(accountMetas,
		solana.Meta(call.Authority.PublicKey).SIGNER(), // Authority
		solana.Meta(call.PcWallet.PublicKey).WRITE(),   // Pc wallet
		solana.Meta(call.DexProgram.PublicKey),         // Dex program
		solana.Meta(call.TokenProgram.PublicKey),       // Token program
		solana.Meta(call.Rent.PublicKey),               // Rent sysvar
	)

	ins.AccountMetaSlice = accountMetas

	return ins
}
