package technical

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ChannelMA канал скользящей средней
const ChannelMA = "ma"

// SMA простая скользящая средняя
type SMA struct {
	Period int
}

func (SMA) Kind() Kind { return KindSMA }

func (s SMA) Name() string { return fmt.Sprintf("MA%d", s.Period) }

func (s SMA) MinHistory() int { return s.Period }

func (s SMA) Validate() error { return positive(s.Name(), "period", s.Period) }

func (SMA) sealed() {}

// Compute считает среднее каждого окна из Period значений
func (s SMA) Compute(values []decimal.Decimal) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}
	if len(values) < s.Period {
		return emptyResult(s.Name(), s.Period-1, ChannelMA), nil
	}
	return Result{
		Indicator: s.Name(),
		Offset:    s.Period - 1,
		Channels:  []Channel{{Name: ChannelMA, Values: movingAverage(values, s.Period)}},
	}, nil
}

// movingAverage сумма окна считается заново для каждой позиции,
// поэтому значение не зависит от длины предыдущей истории
func movingAverage(values []decimal.Decimal, period int) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values)-period+1)
	p := decimal.NewFromInt(int64(period))
	for i := range out {
		out[i] = windowSum(values[i : i+period]).DivRound(p, Precision)
	}
	return out
}
