package coder

import (
	"bytes"
	"encoding/binary"
	"errors"
)

var ErrInvalidCompute = errors.New("invalid compute budget instruction")

type ComputeBudgetCoder struct{}

func NewComputeBudgetCoder() *ComputeBudgetCoder {
	return &ComputeBudgetCoder{}
}

// DecodeCompute reads a SetComputeUnitLimit (u32) or SetComputeUnitPrice (u64)
// instruction.
func (coder *ComputeBudgetCoder) DecodeCompute(data []byte) (Compute, error) {
	return decodeCompute(data)
}

func decodeCompute(data []byte) (Compute, error) {
	var instruction Compute

	buf := bytes.NewReader(data)
	if err := binary.Read(buf, binary.LittleEndian, &instruction.Instruction); err != nil {
		return Compute{}, ErrInvalidCompute
	}

	switch instruction.Instruction {
	case ComputeUnitLimit:
		var units uint32
		if err := binary.Read(buf, binary.LittleEndian, &units); err != nil {
			return Compute{}, ErrInvalidCompute
		}
		instruction.Value = uint64(units)
	case ComputeUnitPrice:
		if err := binary.Read(buf, binary.LittleEndian, &instruction.Value); err != nil {
			return Compute{}, ErrInvalidCompute
		}
	default:
		return Compute{}, ErrInvalidCompute
	}

	return instruction, nil
}
