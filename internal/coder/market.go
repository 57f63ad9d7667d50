package coder

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/gagliardetto/solana-go"
)

// MarketStateLayoutV3 is the serum dex v3 market account, padding included.
type MarketStateLayoutV3 struct {
	Unused1                [5]byte
	Unused2                [8]byte
	OwnAddress             solana.PublicKey
	VaultSignerNonce       uint64
	BaseMint               solana.PublicKey
	QuoteMint              solana.PublicKey
	BaseVault              solana.PublicKey
	BaseDepositsTotal      uint64
	BaseFeesAccrued        uint64
	QuoteVault             solana.PublicKey
	QuoteDepositsTotal     uint64
	QuoteFeesAccrued       uint64
	QuoteDustThreshold     uint64
	RequestQueue           solana.PublicKey
	EventQueue             solana.PublicKey
	Bids                   solana.PublicKey
	Asks                   solana.PublicKey
	BaseLotSize            uint64
	QuoteLotSize           uint64
	FeeRateBps             uint64
	ReferrerRebatesAccrued uint64
	Unused3                [7]byte
}

var MarketStateLayoutV3Size = binary.Size(MarketStateLayoutV3{})

var ErrMarketDataTooShort = errors.New("market account data too short")

type SerumMarketCoder struct{}

func NewSerumMarketCoder() *SerumMarketCoder {
	return &SerumMarketCoder{}
}

func (coder *SerumMarketCoder) MarketDecode(data []byte) (MarketStateLayoutV3, error) {
	return decodeMarketData(data)
}

func decodeMarketData(data []byte) (MarketStateLayoutV3, error) {
	var state MarketStateLayoutV3

	if len(data) < MarketStateLayoutV3Size {
		return state, ErrMarketDataTooShort
	}

	buf := bytes.NewReader(data)
	if err := binary.Read(buf, binary.LittleEndian, &state); err != nil {
		return MarketStateLayoutV3{}, err
	}

	return state, nil
}
