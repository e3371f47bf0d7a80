package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func rec(date, open, high, low, close string, volume uint64) PriceRecord {
	return PriceRecord{
		Date:   day(date),
		Open:   decimal.RequireFromString(open),
		High:   decimal.RequireFromString(high),
		Low:    decimal.RequireFromString(low),
		Close:  decimal.RequireFromString(close),
		Volume: volume,
	}
}

func TestPriceRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		record  PriceRecord
		wantErr bool
	}{
		{"valid", rec("2024-01-02", "10", "12", "9", "11", 100), false},
		{"flat bar", rec("2024-01-02", "10", "10", "10", "10", 0), false},
		{"low above high", rec("2024-01-02", "10", "9", "12", "10", 1), true},
		{"open above high", rec("2024-01-02", "13", "12", "9", "11", 1), true},
		{"open below low", rec("2024-01-02", "8", "12", "9", "11", 1), true},
		{"close above high", rec("2024-01-02", "10", "12", "9", "12.01", 1), true},
		{"close below low", rec("2024-01-02", "10", "12", "9", "8.99", 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var invErr *InvariantError
			require.True(t, errors.As(err, &invErr))
			assert.True(t, invErr.Date.Equal(tt.record.Date))
		})
	}
}

func TestNewPriceSeries_OrderInvariants(t *testing.T) {
	a := rec("2024-01-02", "10", "12", "9", "11", 100)
	b := rec("2024-01-03", "11", "13", "10", "12", 200)

	s, err := NewPriceSeries("AAPL", []PriceRecord{a, b})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", s.Symbol())
	assert.Equal(t, 2, s.Len())

	_, err = NewPriceSeries("AAPL", []PriceRecord{a, a})
	var invErr *InvariantError
	require.True(t, errors.As(err, &invErr))
	assert.True(t, invErr.Date.Equal(a.Date))

	_, err = NewPriceSeries("AAPL", []PriceRecord{b, a})
	require.True(t, errors.As(err, &invErr))
	assert.True(t, invErr.Date.Equal(a.Date), "нарушение должно указывать на более раннюю дату, идущую второй")
}

func TestPriceSeries_IsImmutable(t *testing.T) {
	input := []PriceRecord{
		rec("2024-01-02", "10", "12", "9", "11", 100),
		rec("2024-01-03", "11", "13", "10", "12", 200),
	}
	s, err := NewPriceSeries("X", input)
	require.NoError(t, err)

	input[0].Volume = 999
	assert.Equal(t, uint64(100), s.At(0).Volume)

	out := s.Records()
	out[1].Volume = 999
	assert.Equal(t, uint64(200), s.At(1).Volume)

	closes := s.Closes()
	closes[0] = decimal.NewFromInt(-1)
	assert.True(t, s.At(0).Close.Equal(decimal.NewFromInt(11)))
}

func TestPriceSeries_Column(t *testing.T) {
	s, err := NewPriceSeries("X", []PriceRecord{rec("2024-01-02", "10", "12", "9", "11", 1)})
	require.NoError(t, err)

	assert.Equal(t, "10", s.Column(ColumnOpen)[0].String())
	assert.Equal(t, "12", s.Column(ColumnHigh)[0].String())
	assert.Equal(t, "9", s.Column(ColumnLow)[0].String())
	assert.Equal(t, "11", s.Column(ColumnClose)[0].String())
	assert.Equal(t, []time.Time{day("2024-01-02")}, s.Dates())
}

func TestParseColumn(t *testing.T) {
	c, err := ParseColumn("")
	require.NoError(t, err)
	assert.Equal(t, ColumnClose, c)

	c, err = ParseColumn("High")
	require.NoError(t, err)
	assert.Equal(t, ColumnHigh, c)
	assert.Equal(t, "high", c.String())

	_, err = ParseColumn("adj_close")
	assert.Error(t, err)
}
