package storage

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/iqbalbaharum/transitive-swap-router/internal/types"
	"github.com/iqbalbaharum/transitive-swap-router/internal/utils"
)

var (
	swapColumns = jsonColumns(types.Swap{})
	searchOps   = map[string]bool{"=": true, "!=": true, ">": true, ">=": true, "<": true, "<=": true, "LIKE": true}
)

type SwapStorage struct {
	client *sql.DB
}

func NewSwapStorage(db *sql.DB) *SwapStorage {
	return &SwapStorage{client: db}
}

// Set inserts the swap, or refreshes the outcome of an already recorded
// signature and instruction index.
func (s *SwapStorage) Set(ctx context.Context, swap *types.Swap) error {
	query := `INSERT INTO ` + TABLE_NAME_SWAP + ` ` + utils.BuildInsertQuery(swap) + `
		ON DUPLICATE KEY UPDATE
			slot = GREATEST(slot, VALUES(slot)),
			status = VALUES(status),
			error = VALUES(error),
			amount_out = VALUES(amount_out)`

	_, err := s.client.ExecContext(ctx, query, utils.UnpackStruct(swap)...)
	if err != nil {
		return fmt.Errorf("failed to insert swap: %w", err)
	}

	return nil
}

func (s *SwapStorage) Search(ctx context.Context, filter types.MySQLFilter) ([]types.Swap, error) {
	for _, q := range filter.Query {
		if !swapColumns[q.Column] || !searchOps[q.Op] {
			return nil, fmt.Errorf("%w: %s %s", ErrInvalidFilter, q.Column, q.Op)
		}
	}

	if filter.Order != nil && !swapColumns[filter.Order.Column] {
		return nil, fmt.Errorf("%w: order by %s", ErrInvalidFilter, filter.Order.Column)
	}

	query, values := utils.BuildSearchQuery(TABLE_NAME_SWAP, filter)

	rows, err := s.client.QueryContext(ctx, query, values...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrExecuteQuery, err)
	}
	defer rows.Close()

	swaps := []types.Swap{}
	for rows.Next() {
		var swap types.Swap
		err := rows.Scan(
			&swap.Signature,
			&swap.InstructionIndex,
			&swap.Slot,
			&swap.Source,
			&swap.Mode,
			&swap.Amount,
			&swap.SourceDecimals,
			&swap.DestinationDecimals,
			&swap.SourceWallet,
			&swap.DestinationWallet,
			&swap.MarketFrom,
			&swap.MarketTo,
			&swap.Authority,
			&swap.AmountOut,
			&swap.ComputeLimit,
			&swap.ComputePrice,
			&swap.Status,
			&swap.Error,
			&swap.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrScanData, err)
		}
		swaps = append(swaps, swap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrExecuteQuery, err)
	}

	return swaps, nil
}

func (s *SwapStorage) DeleteAll(ctx context.Context) (int64, error) {
	result, err := s.client.ExecContext(ctx, `DELETE FROM `+TABLE_NAME_SWAP)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrExecuteStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrRetrieveRows, err)
	}

	return affected, nil
}

func jsonColumns(v any) map[string]bool {
	columns := map[string]bool{}
	typ := reflect.TypeOf(v)
	for i := 0; i < typ.NumField(); i++ {
		columns[typ.Field(i).Tag.Get("json")] = true
	}
	return columns
}
