package storage

import "database/sql"

var (
	Swap *SwapStorage
)

func Init(client *sql.DB) {
	Swap = NewSwapStorage(client)
}
