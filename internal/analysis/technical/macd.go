package technical

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Каналы MACD
const (
	ChannelEMA       = "ema"
	ChannelMACD      = "macd"
	ChannelSignal    = "signal"
	ChannelHistogram = "histogram"
)

// EMA экспоненциальная скользящая средняя с коэффициентом 2/(period+1).
// Первое значение - простое среднее первых period значений, оно относится к индексу period-1.
// Каждый шаг округляется до Precision знаков.
func EMA(values []decimal.Decimal, period int) (Result, error) {
	name := fmt.Sprintf("EMA%d", period)
	if err := positive(name, "period", period); err != nil {
		return Result{}, err
	}
	return Result{
		Indicator: name,
		Offset:    period - 1,
		Channels:  []Channel{{Name: ChannelEMA, Values: ema(values, period)}},
	}, nil
}

func ema(values []decimal.Decimal, period int) []decimal.Decimal {
	if len(values) < period {
		return []decimal.Decimal{}
	}
	p := decimal.NewFromInt(int64(period))
	k := decimal.NewFromInt(2).DivRound(decimal.NewFromInt(int64(period+1)), Precision)

	out := make([]decimal.Decimal, len(values)-period+1)
	out[0] = windowSum(values[:period]).DivRound(p, Precision)
	for i := 1; i < len(out); i++ {
		prev := out[i-1]
		out[i] = values[i+period-1].Sub(prev).Mul(k).Add(prev).Round(Precision)
	}
	return out
}

// MACD схождение-расхождение скользящих средних.
//
// Линия MACD = EMA(Fast) - EMA(Slow), определена с индекса Slow-1.
// Сигнальная линия = EMA(Signal) от линии MACD, гистограмма = MACD - сигнал.
// Все три канала выровнены по сигнальной линии: Offset = Slow+Signal-2.
type MACD struct {
	Fast   int
	Slow   int
	Signal int
}

func (MACD) Kind() Kind { return KindMACD }

func (m MACD) Name() string { return fmt.Sprintf("MACD(%d,%d,%d)", m.Fast, m.Slow, m.Signal) }

func (m MACD) MinHistory() int { return m.Slow + m.Signal - 1 }

func (m MACD) Validate() error {
	if err := positive(m.Name(), "fast", m.Fast); err != nil {
		return err
	}
	if err := positive(m.Name(), "slow", m.Slow); err != nil {
		return err
	}
	if err := positive(m.Name(), "signal", m.Signal); err != nil {
		return err
	}
	if m.Fast >= m.Slow {
		return &ParameterError{Indicator: m.Name(), Param: "fast", Value: fmt.Sprintf("%d >= slow %d", m.Fast, m.Slow)}
	}
	return nil
}

func (MACD) sealed() {}

// Compute возвращает каналы macd, signal, histogram
func (m MACD) Compute(values []decimal.Decimal) (Result, error) {
	if err := m.Validate(); err != nil {
		return Result{}, err
	}
	offset := m.Slow + m.Signal - 2
	if len(values) < m.MinHistory() {
		return emptyResult(m.Name(), offset, ChannelMACD, ChannelSignal, ChannelHistogram), nil
	}

	fast := ema(values, m.Fast)
	slow := ema(values, m.Slow)

	// fast начинается с индекса Fast-1, slow с Slow-1
	shift := m.Slow - m.Fast
	line := make([]decimal.Decimal, len(slow))
	for i := range slow {
		line[i] = fast[i+shift].Sub(slow[i])
	}

	signal := ema(line, m.Signal)
	macd := line[m.Signal-1:]
	hist := make([]decimal.Decimal, len(signal))
	for i := range signal {
		hist[i] = macd[i].Sub(signal[i])
	}

	return Result{
		Indicator: m.Name(),
		Offset:    offset,
		Channels: []Channel{
			{Name: ChannelMACD, Values: append([]decimal.Decimal(nil), macd...)},
			{Name: ChannelSignal, Values: signal},
			{Name: ChannelHistogram, Values: hist},
		},
	}, nil
}
