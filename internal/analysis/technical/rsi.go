package technical

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ChannelRSI канал индекса относительной силы
const ChannelRSI = "rsi"

// RSIMode способ усреднения приростов и потерь
type RSIMode int

const (
	// RSIWilder сглаживание Уайлдера, используется по умолчанию
	RSIWilder RSIMode = iota
	// RSISimple простое среднее по окну из Period изменений (RSI Катлера)
	RSISimple
)

// ParseRSIMode разбирает режим из конфигурации; пустая строка означает wilder
func ParseRSIMode(s string) (RSIMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wilder":
		return RSIWilder, nil
	case "simple":
		return RSISimple, nil
	}
	return RSIWilder, &ParameterError{Indicator: "rsi", Param: "mode", Value: s}
}

var hundred = decimal.NewFromInt(100)

// RSI индекс относительной силы.
//
// Первые средние прироста и потери - простое среднее первых Period изменений,
// далее avg = (avg*(Period-1) + x) / Period. RSI = 100 - 100/(1 + avgGain/avgLoss),
// при нулевой средней потере RSI = 100. Выход короче входа на Period значений,
// значение i относится к цене с индексом i+Period.
type RSI struct {
	Period int
	Mode   RSIMode
}

func (RSI) Kind() Kind { return KindRSI }

func (r RSI) Name() string {
	if r.Mode == RSISimple {
		return fmt.Sprintf("RSI%d (simple)", r.Period)
	}
	return fmt.Sprintf("RSI%d", r.Period)
}

func (r RSI) MinHistory() int { return r.Period + 1 }

func (r RSI) Validate() error {
	if err := positive(r.Name(), "period", r.Period); err != nil {
		return err
	}
	if r.Mode != RSIWilder && r.Mode != RSISimple {
		return &ParameterError{Indicator: r.Name(), Param: "mode", Value: fmt.Sprint(int(r.Mode))}
	}
	return nil
}

func (RSI) sealed() {}

// Compute считает RSI по ценам values
func (r RSI) Compute(values []decimal.Decimal) (Result, error) {
	if err := r.Validate(); err != nil {
		return Result{}, err
	}
	if len(values) <= r.Period {
		return emptyResult(r.Name(), r.Period, ChannelRSI), nil
	}

	gains := make([]decimal.Decimal, len(values)-1)
	losses := make([]decimal.Decimal, len(values)-1)
	for i := 1; i < len(values); i++ {
		change := values[i].Sub(values[i-1])
		gains[i-1], losses[i-1] = decimal.Zero, decimal.Zero
		if change.IsPositive() {
			gains[i-1] = change
		} else if change.IsNegative() {
			losses[i-1] = change.Neg()
		}
	}

	var out []decimal.Decimal
	if r.Mode == RSISimple {
		out = r.simple(gains, losses)
	} else {
		out = r.wilder(gains, losses)
	}

	return Result{
		Indicator: r.Name(),
		Offset:    r.Period,
		Channels:  []Channel{{Name: ChannelRSI, Values: out}},
	}, nil
}

func (r RSI) wilder(gains, losses []decimal.Decimal) []decimal.Decimal {
	p := decimal.NewFromInt(int64(r.Period))
	prev := decimal.NewFromInt(int64(r.Period - 1))

	avgGain := windowSum(gains[:r.Period]).DivRound(p, Precision)
	avgLoss := windowSum(losses[:r.Period]).DivRound(p, Precision)

	out := make([]decimal.Decimal, 0, len(gains)-r.Period+1)
	out = append(out, rsiValue(avgGain, avgLoss))

	for i := r.Period; i < len(gains); i++ {
		avgGain = avgGain.Mul(prev).Add(gains[i]).DivRound(p, Precision)
		avgLoss = avgLoss.Mul(prev).Add(losses[i]).DivRound(p, Precision)
		out = append(out, rsiValue(avgGain, avgLoss))
	}
	return out
}

func (r RSI) simple(gains, losses []decimal.Decimal) []decimal.Decimal {
	p := decimal.NewFromInt(int64(r.Period))

	out := make([]decimal.Decimal, len(gains)-r.Period+1)
	for i := range out {
		avgGain := windowSum(gains[i : i+r.Period]).DivRound(p, Precision)
		avgLoss := windowSum(losses[i : i+r.Period]).DivRound(p, Precision)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss decimal.Decimal) decimal.Decimal {
	if avgLoss.IsZero() {
		return hundred
	}
	rs := avgGain.DivRound(avgLoss, Precision)
	return hundred.Sub(hundred.DivRound(decimal.NewFromInt(1).Add(rs), Precision))
}
