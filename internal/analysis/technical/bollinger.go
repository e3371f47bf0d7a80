package technical

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Каналы полос Боллинджера
const (
	ChannelLower  = "lower"
	ChannelMiddle = "middle"
	ChannelUpper  = "upper"
)

// Bollinger полосы Боллинджера: SMA(Period) ± NumStdDev стандартных отклонений
// (отклонение генеральной совокупности окна)
type Bollinger struct {
	Period    int
	NumStdDev decimal.Decimal
}

func (Bollinger) Kind() Kind { return KindBollinger }

func (b Bollinger) Name() string { return fmt.Sprintf("BB(%d,%s)", b.Period, b.NumStdDev.String()) }

func (b Bollinger) MinHistory() int { return b.Period }

func (b Bollinger) Validate() error {
	if err := positive(b.Name(), "period", b.Period); err != nil {
		return err
	}
	if b.NumStdDev.IsNegative() {
		return &ParameterError{Indicator: b.Name(), Param: "num_std_dev", Value: b.NumStdDev.String()}
	}
	return nil
}

func (Bollinger) sealed() {}

// Compute возвращает каналы lower, middle, upper одинаковой длины.
// Средний канал считается той же функцией, что и SMA.
func (b Bollinger) Compute(values []decimal.Decimal) (Result, error) {
	if err := b.Validate(); err != nil {
		return Result{}, err
	}
	if len(values) < b.Period {
		return emptyResult(b.Name(), b.Period-1, ChannelLower, ChannelMiddle, ChannelUpper), nil
	}

	middle := movingAverage(values, b.Period)
	lower := make([]decimal.Decimal, len(middle))
	upper := make([]decimal.Decimal, len(middle))
	p := decimal.NewFromInt(int64(b.Period))

	for i := range middle {
		width := b.NumStdDev.Mul(stdDev(values[i:i+b.Period], p))
		lower[i] = middle[i].Sub(width)
		upper[i] = middle[i].Add(width)
	}

	return Result{
		Indicator: b.Name(),
		Offset:    b.Period - 1,
		Channels: []Channel{
			{Name: ChannelLower, Values: lower},
			{Name: ChannelMiddle, Values: middle},
			{Name: ChannelUpper, Values: upper},
		},
	}, nil
}

// stdDev стандартное отклонение окна: sqrt(p*Σx² - (Σx)²) / p.
// Подкоренное выражение считается точно, неточен только корень.
func stdDev(window []decimal.Decimal, p decimal.Decimal) decimal.Decimal {
	sum, sumSq := decimal.Zero, decimal.Zero
	for _, v := range window {
		sum = sum.Add(v)
		sumSq = sumSq.Add(v.Mul(v))
	}
	radicand := p.Mul(sumSq).Sub(sum.Mul(sum))
	return sqrtDecimal(radicand).DivRound(p, Precision)
}

// sqrtPrec точность big.Float для извлечения корня, в битах
const sqrtPrec = 256

// sqrtDecimal единственная граница между десятичной арифметикой и плавающей точкой.
// Корень считается в big.Float с точностью 256 бит и округляется до Precision знаков;
// погрешность не превышает половины единицы последнего знака.
// Отрицательный аргумент невозможен для дисперсии и дает ноль.
func sqrtDecimal(d decimal.Decimal) decimal.Decimal {
	if d.Sign() <= 0 {
		return decimal.Zero
	}
	f, ok := new(big.Float).SetPrec(sqrtPrec).SetString(d.String())
	if !ok {
		panic(fmt.Sprintf("technical: некорректное десятичное значение %q", d.String()))
	}
	f.Sqrt(f)
	return decimal.RequireFromString(f.Text('f', int(Precision)+8)).Round(Precision)
}
