package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/transitive-swap-router/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Signature string           `json:"signature"`
	Amount    uint64           `json:"amount"`
	Market    solana.PublicKey `json:"market"`
}

func TestBuildInsertQuery(t *testing.T) {
	assert.Equal(t, "(signature,amount,market) VALUES (?,?,?)", BuildInsertQuery(&row{}))
}

func TestUnpackStruct(t *testing.T) {
	market := solana.NewWallet().PublicKey()
	values := UnpackStruct(&row{Signature: "sig", Amount: 7, Market: market})
	assert.Equal(t, []interface{}{"sig", uint64(7), market.String()}, values)
}

func TestBuildSearchQuery(t *testing.T) {
	query, values := BuildSearchQuery("swaps", types.MySQLFilter{
		Query: []types.MySQLQuery{
			{Column: "status", Op: "=", Query: "success"},
			{Column: "amount", Op: ">", Query: "100"},
		},
		Limit:  10,
		Offset: 20,
	})

	assert.Equal(t, "SELECT * FROM swaps WHERE status = ? AND amount > ? LIMIT 10 OFFSET 20", query)
	assert.Equal(t, []any{"success", "100"}, values)
}

func TestBuildSearchQueryOrder(t *testing.T) {
	query, _ := BuildSearchQuery("swaps", types.MySQLFilter{
		Order: &types.MySQLOrder{Column: "timestamp", Desc: true},
		Limit: 5,
	})

	assert.Equal(t, "SELECT * FROM swaps ORDER BY timestamp DESC LIMIT 5", query)
}

func TestBuildSearchQueryOffsetOnly(t *testing.T) {
	query, _ := BuildSearchQuery("swaps", types.MySQLFilter{Offset: 40})

	assert.Equal(t, "SELECT * FROM swaps LIMIT 18446744073709551615 OFFSET 40", query)
}

func TestBuildSearchQueryNoFilter(t *testing.T) {
	query, values := BuildSearchQuery("swaps", types.MySQLFilter{})
	assert.Equal(t, "SELECT * FROM swaps", query)
	assert.Empty(t, values)
}

func TestDecode(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"limit":5}`))
	filter, err := Decode[types.MySQLFilter](r)
	require.NoError(t, err)
	assert.Equal(t, 5, filter.Limit)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	filter, err = Decode[types.MySQLFilter](r)
	require.NoError(t, err)
	assert.Zero(t, filter.Limit)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"limit":`))
	_, err = Decode[types.MySQLFilter](r)
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, Encode(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusCreated, map[string]int{"n": 1}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, w.Body.String())
}
