package technical

import (
	"errors"
	"fmt"
	"math"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
)

// ErrVerifyUnsupported для индикатора нет эталонной реализации в TA-Lib
// с той же договоренностью о затравке
var ErrVerifyUnsupported = errors.New("сверка с TA-Lib не поддерживается")

// Divergence расхождение с эталоном в одной позиции
type Divergence struct {
	Indicator   string
	Channel     string
	SourceIndex int
	Value       float64
	Reference   float64
}

func (d Divergence) String() string {
	return fmt.Sprintf("%s/%s[%d]: %.10f, TA-Lib %.10f", d.Indicator, d.Channel, d.SourceIndex, d.Value, d.Reference)
}

// Verify пересчитывает индикатор через TA-Lib на float64 и возвращает позиции,
// где результаты расходятся больше чем на tolerance.
// MACD не сверяется: TA-Lib начинает быструю EMA с позиции медленной.
func Verify(ind Indicator, values []decimal.Decimal, tolerance float64) ([]Divergence, error) {
	res, err := ind.Compute(values)
	if err != nil {
		return nil, err
	}

	in := make([]float64, len(values))
	for i, v := range values {
		in[i] = v.InexactFloat64()
	}

	reference := map[string][]float64{}
	switch ind := ind.(type) {
	case SMA:
		if ind.Period < 2 {
			return nil, ErrVerifyUnsupported
		}
		reference[ChannelMA] = talib.Sma(in, ind.Period)
	case Bollinger:
		if ind.Period < 2 {
			return nil, ErrVerifyUnsupported
		}
		k := ind.NumStdDev.InexactFloat64()
		upper, middle, lower := talib.BBands(in, ind.Period, k, k, 0) // 0 - SMA
		reference[ChannelUpper] = upper
		reference[ChannelMiddle] = middle
		reference[ChannelLower] = lower
	case RSI:
		if ind.Period < 2 || ind.Mode != RSIWilder {
			return nil, ErrVerifyUnsupported
		}
		reference[ChannelRSI] = talib.Rsi(in, ind.Period)
	default:
		return nil, ErrVerifyUnsupported
	}

	var out []Divergence
	for _, ch := range res.Channels {
		ref := reference[ch.Name]
		for i, v := range ch.Values {
			idx := res.SourceIndex(i)
			if idx >= len(ref) {
				break
			}
			got := v.InexactFloat64()
			// TA-Lib возвращает 0 для RSI при полном отсутствии движения, у нас 100
			if ch.Name == ChannelRSI && got == 100 && ref[idx] == 0 {
				continue
			}
			if math.Abs(got-ref[idx]) > tolerance {
				out = append(out, Divergence{
					Indicator:   res.Indicator,
					Channel:     ch.Name,
					SourceIndex: idx,
					Value:       got,
					Reference:   ref[idx],
				})
			}
		}
	}
	return out, nil
}
