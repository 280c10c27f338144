package service

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	perrors "github.com/abgdnv/productcrud/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ValidateProduct(t *testing.T) {
	testCases := []struct {
		name    string
		payload Payload
		wantMsg string
	}{
		{name: "valid", payload: Payload{"name": "Pen", "price": 1.5, "category": "Stationery"}},
		{name: "zero price is valid", payload: Payload{"name": "Sticker", "price": 0.0, "category": "Free"}},
		{name: "integer price is valid", payload: Payload{"name": "Pen", "price": 2, "category": "Stationery"}},
		{name: "json.Number price is valid", payload: Payload{"name": "Pen", "price": json.Number("3.25"), "category": "Stationery"}},
		{name: "empty name", payload: Payload{"name": "", "price": 1.5, "category": "Stationery"}, wantMsg: MsgNameRequired},
		{name: "blank name", payload: Payload{"name": "   ", "price": 1.5, "category": "Stationery"}, wantMsg: MsgNameRequired},
		{name: "missing name", payload: Payload{"price": 1.5, "category": "Stationery"}, wantMsg: MsgNameRequired},
		{name: "name not a string", payload: Payload{"name": 7, "price": 1.5, "category": "Stationery"}, wantMsg: MsgNameRequired},
		{name: "negative price", payload: Payload{"name": "Pen", "price": -1, "category": "Stationery"}, wantMsg: MsgPriceRequired},
		{name: "missing price", payload: Payload{"name": "Pen", "category": "Stationery"}, wantMsg: MsgPriceRequired},
		{name: "string price", payload: Payload{"name": "Pen", "price": "1.5", "category": "Stationery"}, wantMsg: MsgPriceRequired},
		{name: "boolean price", payload: Payload{"name": "Pen", "price": true, "category": "Stationery"}, wantMsg: MsgPriceRequired},
		{name: "category not a string", payload: Payload{"name": "Pen", "price": 1.5, "category": 123}, wantMsg: MsgCategoryRequired},
		{name: "blank category", payload: Payload{"name": "Pen", "price": 1.5, "category": "\t"}, wantMsg: MsgCategoryRequired},
		{name: "name checked before price", payload: Payload{"name": "", "price": -1, "category": 123}, wantMsg: MsgNameRequired},
		{name: "name of 100 characters", payload: Payload{"name": strings.Repeat("a", 100), "price": 1, "category": "Stationery"}},
		{name: "name over 100 characters", payload: Payload{"name": strings.Repeat("a", 101), "price": 1, "category": "Stationery"}, wantMsg: MsgNameTooLong},
		{name: "length counts characters", payload: Payload{"name": strings.Repeat("é", 100), "price": 1, "category": "Stationery"}},
		{name: "category over 100 characters", payload: Payload{"name": "Pen", "price": 1, "category": strings.Repeat("c", 101)}, wantMsg: MsgCategoryTooLong},
		{name: "price checked before category", payload: Payload{"name": "Pen", "price": -1, "category": 123}, wantMsg: MsgPriceRequired},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			err := ValidateProduct(tc.payload)
			// then
			if tc.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, perrors.ErrValidation)
			assert.EqualError(t, err, tc.wantMsg)
		})
	}
}

func Test_ValidatePatch(t *testing.T) {
	t.Run("only present fields are set", func(t *testing.T) {
		patch, err := ValidatePatch(Payload{"price": 4.5, "colour": "red"})

		require.NoError(t, err)
		require.NotNil(t, patch.Price)
		assert.Equal(t, 4.5, *patch.Price)
		assert.Nil(t, patch.Name)
		assert.Nil(t, patch.Category)
	})

	t.Run("present fields follow the product rules", func(t *testing.T) {
		_, err := ValidatePatch(Payload{"name": "Pen", "category": ""})

		assert.EqualError(t, err, MsgCategoryRequired)
	})

	t.Run("present fields are length checked", func(t *testing.T) {
		_, err := ValidatePatch(Payload{"name": strings.Repeat("n", 101)})

		assert.EqualError(t, err, MsgNameTooLong)
	})

	t.Run("no product field", func(t *testing.T) {
		_, err := ValidatePatch(Payload{"colour": "red"})

		require.ErrorIs(t, err, perrors.ErrValidation)
		assert.EqualError(t, err, MsgUpdateRequired)
	})
}

func Test_ParseID(t *testing.T) {
	testCases := []struct {
		name    string
		in      any
		want    int64
		wantErr bool
	}{
		{name: "int", in: 3, want: 3},
		{name: "int64", in: int64(9), want: 9},
		{name: "integral float", in: 2.0, want: 2},
		{name: "json.Number", in: json.Number("12"), want: 12},
		{name: "smallest int64 as float", in: float64(math.MinInt64), want: math.MinInt64},
		{name: "float at 2^63", in: float64(math.MaxInt64), wantErr: true},
		{name: "float beyond int64", in: 1e19, wantErr: true},
		{name: "negative float beyond int64", in: -1e19, wantErr: true},
		{name: "fractional float", in: 2.5, wantErr: true},
		{name: "fractional json.Number", in: json.Number("1.5"), wantErr: true},
		{name: "string", in: "1", wantErr: true},
		{name: "bool", in: true, wantErr: true},
		{name: "nil", in: nil, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ParseID(tc.in)
			if tc.wantErr {
				assert.EqualError(t, err, MsgIDNotInteger)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
		})
	}
}
