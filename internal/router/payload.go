package router

import (
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

const (
	PayloadSize = (8 + // amount
		1 + // source decimals
		1) // destination decimals

	DefaultExchangeRate uint64 = 1
)

// SwapRequest is the typed form of one instruction payload.
type SwapRequest struct {
	Amount              uint64
	SourceDecimals      uint8
	DestinationDecimals uint8
	Rate                uint64
	Strict              bool
}

// DecodeRequest reads amount, source decimals and destination decimals from the
// front of data. Bytes past PayloadSize are ignored.
func DecodeRequest(data []byte) (*SwapRequest, error) {
	if len(data) < PayloadSize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrMalformedPayload, len(data), PayloadSize)
	}

	decoder := bin.NewBinDecoder(data[:PayloadSize])

	amount, err := decoder.ReadUint64(binary.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("%w: amount: %v", ErrMalformedPayload, err)
	}

	sourceDecimals, err := decoder.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: source decimals: %v", ErrMalformedPayload, err)
	}

	destinationDecimals, err := decoder.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: destination decimals: %v", ErrMalformedPayload, err)
	}

	return &SwapRequest{
		Amount:              amount,
		SourceDecimals:      sourceDecimals,
		DestinationDecimals: destinationDecimals,
		Rate:                DefaultExchangeRate,
		Strict:              false,
	}, nil
}

// EncodeRequest writes the payload layout read by DecodeRequest.
func EncodeRequest(req *SwapRequest) []byte {
	data := make([]byte, PayloadSize)
	binary.LittleEndian.PutUint64(data[0:8], req.Amount)
	data[8] = req.SourceDecimals
	data[9] = req.DestinationDecimals
	return data
}
