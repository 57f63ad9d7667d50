package storage

const (
	KEY_MARKETKEYS = "storage::market_keys"
	KEY_LOOKUP     = "storage::lookup"
)

const (
	TABLE_NAME_SWAP = "swaps"
)
