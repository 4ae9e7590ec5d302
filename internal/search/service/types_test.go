package service

import (
	"net/http"
	"testing"

	"github.com/lk2023060901/forum-search-backend/internal/search/biz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want int
	}{
		{name: "leading zero is decimal", in: "010", want: 10},
		{name: "not octal", in: "08", want: 8},
		{name: "hex prefix stops at x", in: "0x10", want: 0},
		{name: "trailing garbage", in: "12abc", want: 12},
		{name: "signed", in: " -3 ", want: -3},
		{name: "empty", in: "", want: 0},
		{name: "no digits", in: "abc", want: 0},
		{name: "json number", in: float64(20), want: 20},
		{name: "json fraction", in: 7.9, want: 7},
		{name: "absent", in: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toInt(tt.in))
		})
	}
}

func TestBodies_DecimalFields(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{in: "010", want: 10},
		{in: "08", want: 8},
		{in: "0x10", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			filters := (&ForumSearchBody{Page: tt.in, ItemsPerPage: tt.in}).filters(1)
			assert.Equal(t, tt.want, filters.Page)
			assert.Equal(t, tt.want, filters.ItemsPerPage)

			raw := (&CustomSearchBody{Limit: tt.in, Offset: tt.in}).raw()
			assert.Equal(t, tt.want, raw.Limit)
			assert.Equal(t, tt.want, raw.Offset)

			req := (&AdvancedSearchBody{Limit: tt.in, Offset: tt.in}).request()
			assert.Equal(t, tt.want, req.Limit)
			assert.Equal(t, tt.want, req.Offset)
		})
	}
}

func TestCustomSearch_HTTPDecimalQuery(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/custom-search/companies?ticker=aa&limit=08&offset=010", "", 1)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 8, s.adapter.last.Limit)
	assert.Equal(t, 10, s.adapter.last.Offset)

	w = s.do(t, http.MethodGet, "/api/v1/custom-search/companies?ticker=aa&limit=0x10", "", 1)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, s.adapter.last.Limit, "hex limit reads as 0 and falls back to the default")
}

func TestCustomSearch_HTTPPresetList(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/custom-search/presets", "", 1)
	require.Equal(t, http.StatusOK, w.Code)

	presets := decode(t, w)["data"].(map[string]interface{})
	require.Contains(t, presets, biz.PresetCompanies)
	assert.Equal(t, map[string]interface{}{
		"table":         "company_daily_stock_price",
		"column":        "ticker",
		"sortBy":        "ticker",
		"sortDirection": "ASC",
	}, presets[biz.PresetCompanies])
	t.Logf("✓ %d presets listed", len(presets))
}
