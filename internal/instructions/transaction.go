package instructions

import (
	"errors"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
)

type ComputeUnit struct {
	MicroLamports uint64
	Units         uint32
}

type TxOption struct {
	Blockhash solana.Hash
	Payer     solana.PrivateKey
	Signers   []solana.PrivateKey
}

var ErrMissingSigner = errors.New("missing private key for required signer")

func MakeMemoInstruction(programId solana.PublicKey, memo string) solana.Instruction {
	return solana.NewInstruction(programId, solana.AccountMetaSlice{}, []byte(memo))
}

// MakeTransaction prepends compute budget instructions and signs with the payer and
// any extra signers.
func MakeTransaction(ixs []solana.Instruction, compute ComputeUnit, options TxOption) (*solana.Transaction, error) {
	computeInstructions := []solana.Instruction{}

	if compute.Units > 0 {
		computeInstructions = append(
			computeInstructions,
			computebudget.NewSetComputeUnitLimitInstruction(compute.Units).Build())
	}

	if compute.MicroLamports > 0 {
		computeInstructions = append(
			computeInstructions,
			computebudget.NewSetComputeUnitPriceInstruction(compute.MicroLamports).Build())
	}

	ins := []solana.Instruction{}
	ins = append(ins, computeInstructions...)
	ins = append(ins, ixs...)

	payer := options.Payer.PublicKey()

	tx, err := solana.NewTransaction(
		ins,
		options.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return nil, err
	}

	keys := append([]solana.PrivateKey{options.Payer}, options.Signers...)

	var missing bool
	_, err = tx.Sign(
		func(key solana.PublicKey) *solana.PrivateKey {
			for i := range keys {
				if keys[i].PublicKey().Equals(key) {
					return &keys[i]
				}
			}
			missing = true
			return nil
		},
	)
	if missing {
		return nil, ErrMissingSigner
	}
	if err != nil {
		return nil, err
	}

	return tx, nil
}
