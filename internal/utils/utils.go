package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/transitive-swap-router/internal/types"
)

// Decode reads a JSON request body into T. An empty body yields the zero value.
func Decode[T any](r *http.Request) (T, error) {
	var v T
	if r.Body == nil {
		return v, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		return v, fmt.Errorf("decode json: %w", err)
	}

	return v, nil
}

func Encode[T any](w http.ResponseWriter, r *http.Request, status int, v T) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func replaceLastComma(str string, replacement string) string {
	lastCommaIndex := strings.LastIndex(str, ",")
	if lastCommaIndex != -1 {
		str = str[:lastCommaIndex] + replacement + str[lastCommaIndex+1:]
	}

	return str
}

func UnpackStruct(s interface{}) []interface{} {
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem() // Dereference pointer
	}

	var result []interface{}
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)

		if field.Kind() == reflect.Ptr {
			field = field.Elem() // Dereference pointer
		}

		fieldType := field.Type()

		if fieldType == reflect.TypeOf(solana.PublicKey{}) {
			result = append(result, field.Interface().(solana.PublicKey).String())
		} else {
			result = append(result, field.Interface())
		}

	}

	return result
}

func BuildInsertQuery(i any) string {
	column := "("
	values := " VALUES ("
	typ := reflect.TypeOf(i).Elem()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		jsonTag := field.Tag.Get("json")

		column += fmt.Sprintf("%s,", jsonTag)
		values += "?,"

	}

	column = replaceLastComma(column, ")")
	values = replaceLastComma(values, ")")

	return column + values
}

func BuildSearchQuery(tableName string, filter types.MySQLFilter) (string, []any) {
	query := fmt.Sprintf(`SELECT * FROM %s`, tableName)
	var values []any
	for idx, q := range filter.Query {
		if idx == 0 {
			query += " WHERE "
		}

		query += fmt.Sprintf("%s %s ?", q.Column, q.Op)
		values = append(values, q.Query)

		if idx < len(filter.Query)-1 {
			query += " AND "
		}
	}

	if filter.Order != nil {
		query += " ORDER BY " + filter.Order.Column
		if filter.Order.Desc {
			query += " DESC"
		}
	}

	switch {
	case filter.Limit > 0:
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	case filter.Offset > 0:
		// MySQL has no OFFSET without LIMIT
		query += " LIMIT 18446744073709551615"
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	return query, values
}
