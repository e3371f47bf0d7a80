package loader

import (
	"errors"
	"fmt"
	"time"

	"github.com/skalibog/stockchart/pkg/models"
)

// ErrorKind вид ошибки загрузки
type ErrorKind int

const (
	KindIoFailure ErrorKind = iota + 1
	KindInvalidSchema
	KindMalformedRow
	KindInvalidDate
	KindInvalidDecimal
	KindInvalidVolume
	KindSeriesInvariant
)

// Сентинелы для errors.Is; каждая LoadError совпадает с сентинелом своего вида
var (
	ErrIoFailure       = errors.New("ошибка ввода-вывода")
	ErrInvalidSchema   = errors.New("неверный заголовок")
	ErrMalformedRow    = errors.New("некорректная строка")
	ErrInvalidDate     = errors.New("некорректная дата")
	ErrInvalidDecimal  = errors.New("некорректное десятичное число")
	ErrInvalidVolume   = errors.New("некорректный объем")
	ErrSeriesInvariant = errors.New("нарушение инварианта ряда")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindIoFailure:
		return ErrIoFailure
	case KindInvalidSchema:
		return ErrInvalidSchema
	case KindMalformedRow:
		return ErrMalformedRow
	case KindInvalidDate:
		return ErrInvalidDate
	case KindInvalidDecimal:
		return ErrInvalidDecimal
	case KindInvalidVolume:
		return ErrInvalidVolume
	case KindSeriesInvariant:
		return ErrSeriesInvariant
	}
	return nil
}

func (k ErrorKind) String() string {
	switch k {
	case KindIoFailure:
		return "IoFailure"
	case KindInvalidSchema:
		return "InvalidSchema"
	case KindMalformedRow:
		return "MalformedRow"
	case KindInvalidDate:
		return "InvalidDate"
	case KindInvalidDecimal:
		return "InvalidDecimal"
	case KindInvalidVolume:
		return "InvalidVolume"
	case KindSeriesInvariant:
		return "SeriesInvariantViolation"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// LoadError ошибка загрузки ряда. Line заполняется для ошибок строк,
// Column для InvalidDecimal, Date для SeriesInvariantViolation.
type LoadError struct {
	Kind   ErrorKind
	Line   int
	Column string
	Date   time.Time
	Err    error
}

func (e *LoadError) Error() string {
	msg := e.Kind.sentinel().Error()
	switch e.Kind {
	case KindMalformedRow, KindInvalidDate, KindInvalidVolume:
		msg = fmt.Sprintf("%s (строка %d)", msg, e.Line)
	case KindInvalidDecimal:
		msg = fmt.Sprintf("%s (строка %d, колонка %s)", msg, e.Line, e.Column)
	case KindSeriesInvariant:
		msg = fmt.Sprintf("%s (дата %s)", msg, e.Date.Format(models.DateLayout))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is сравнивает ошибку с сентинелом ее вида
func (e *LoadError) Is(target error) bool {
	return target == e.Kind.sentinel()
}
