package technical

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/skalibog/stockchart/internal/config"
)

// Precision количество знаков после запятой, до которого округляется
// каждое деление и каждый шаг сглаживания
const Precision int32 = 16

// ErrInvalidParameter недопустимый параметр индикатора
var ErrInvalidParameter = errors.New("недопустимый параметр индикатора")

// Kind вид индикатора. Набор закрыт: SMA, Bollinger, RSI, MACD.
type Kind int

const (
	KindSMA Kind = iota + 1
	KindBollinger
	KindRSI
	KindMACD
)

func (k Kind) String() string {
	switch k {
	case KindSMA:
		return "SMA"
	case KindBollinger:
		return "Bollinger"
	case KindRSI:
		return "RSI"
	case KindMACD:
		return "MACD"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Indicator индикатор над числовой колонкой ряда.
// Реализации: SMA, Bollinger, RSI, MACD; других быть не может.
type Indicator interface {
	Kind() Kind
	// Name стабильная подпись для графика, например "MA20"
	Name() string
	// MinHistory минимальное число входных значений для первого результата
	MinHistory() int
	// Validate проверяет параметры без обращения к данным
	Validate() error
	// Compute считает индикатор. Недостаточная история дает пустой результат, а не ошибку.
	Compute(values []decimal.Decimal) (Result, error)

	sealed()
}

// Channel один выходной ряд индикатора
type Channel struct {
	Name   string
	Values []decimal.Decimal
}

// Result производные ряды индикатора. Значение i всех каналов
// относится к исходному индексу Offset+i.
type Result struct {
	Indicator string
	Offset    int
	Channels  []Channel
}

// Len количество значений в каждом канале
func (r Result) Len() int {
	if len(r.Channels) == 0 {
		return 0
	}
	return len(r.Channels[0].Values)
}

// SourceIndex индекс исходного ряда для значения i
func (r Result) SourceIndex(i int) int {
	return r.Offset + i
}

// Channel возвращает канал по имени
func (r Result) Channel(name string) (Channel, bool) {
	for _, ch := range r.Channels {
		if ch.Name == name {
			return ch, true
		}
	}
	return Channel{}, false
}

// ParameterError описывает недопустимый параметр
type ParameterError struct {
	Indicator string
	Param     string
	Value     string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s: %s=%s", e.Indicator, ErrInvalidParameter, e.Param, e.Value)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

func positive(indicator, param string, v int) error {
	if v <= 0 {
		return &ParameterError{Indicator: indicator, Param: param, Value: fmt.Sprint(v)}
	}
	return nil
}

// New строит индикатор по конфигурации и проверяет его параметры
func New(cfg config.IndicatorConfig) (Indicator, error) {
	var ind Indicator

	switch strings.ToLower(cfg.Type) {
	case config.TypeSMA:
		ind = SMA{Period: cfg.Period}
	case config.TypeBollinger:
		k := decimal.NewFromInt(2)
		if cfg.NumStdDev != "" {
			var err error
			if k, err = decimal.NewFromString(cfg.NumStdDev); err != nil {
				return nil, &ParameterError{Indicator: "bollinger", Param: "num_std_dev", Value: cfg.NumStdDev}
			}
		}
		ind = Bollinger{Period: cfg.Period, NumStdDev: k}
	case config.TypeRSI:
		mode, err := ParseRSIMode(cfg.Mode)
		if err != nil {
			return nil, err
		}
		ind = RSI{Period: cfg.Period, Mode: mode}
	case config.TypeMACD:
		ind = MACD{Fast: cfg.Fast, Slow: cfg.Slow, Signal: cfg.Signal}
	default:
		return nil, fmt.Errorf("неизвестный тип индикатора %q", cfg.Type)
	}

	if err := ind.Validate(); err != nil {
		return nil, err
	}
	return ind, nil
}

// emptyResult результат без значений при недостаточной истории
func emptyResult(name string, offset int, channels ...string) Result {
	res := Result{Indicator: name, Offset: offset, Channels: make([]Channel, len(channels))}
	for i, ch := range channels {
		res.Channels[i] = Channel{Name: ch, Values: []decimal.Decimal{}}
	}
	return res
}

func windowSum(values []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum
}
