package types

const (
	SwapStatusSubmitted = "submitted"
	SwapStatusConfirmed = "confirmed"
	SwapStatusSuccess   = "success"
	SwapStatusFailed    = "failed"
)

const (
	SwapSourceExecutor = "executor"
	SwapSourceTracker  = "tracker"
)

// Swap is one row of the swaps table, one per router or swap instruction of a
// transaction. Field order follows the table columns.
type Swap struct {
	Signature           string `json:"signature"`
	InstructionIndex    uint8  `json:"instruction_index"`
	Slot                uint64 `json:"slot"`
	Source              string `json:"source"`
	Mode                string `json:"mode"`
	Amount              uint64 `json:"amount"`
	SourceDecimals      uint8  `json:"source_decimals"`
	DestinationDecimals uint8  `json:"destination_decimals"`
	SourceWallet        string `json:"source_wallet"`
	DestinationWallet   string `json:"destination_wallet"`
	MarketFrom          string `json:"market_from"`
	MarketTo            string `json:"market_to"`
	Authority           string `json:"authority"`
	AmountOut           string `json:"amount_out"`
	ComputeLimit        uint64 `json:"compute_limit"`
	ComputePrice        uint64 `json:"compute_price"`
	Status              string `json:"status"`
	Error               string `json:"error"`
	Timestamp           int64  `json:"timestamp"`
}
