package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout формат даты во входных файлах
const DateLayout = "2006-01-02"

// PriceRecord представляет торговый день
type PriceRecord struct {
	Date   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume uint64
}

// Validate проверяет порядок low <= open, close <= high
func (r PriceRecord) Validate() error {
	switch {
	case r.Low.GreaterThan(r.High):
		return &InvariantError{Date: r.Date, Reason: fmt.Sprintf("low %s > high %s", r.Low, r.High)}
	case r.Open.LessThan(r.Low) || r.Open.GreaterThan(r.High):
		return &InvariantError{Date: r.Date, Reason: fmt.Sprintf("open %s вне диапазона [%s, %s]", r.Open, r.Low, r.High)}
	case r.Close.LessThan(r.Low) || r.Close.GreaterThan(r.High):
		return &InvariantError{Date: r.Date, Reason: fmt.Sprintf("close %s вне диапазона [%s, %s]", r.Close, r.Low, r.High)}
	}
	return nil
}

// Up сообщает, закрылся ли день не ниже открытия
func (r PriceRecord) Up() bool {
	return r.Close.GreaterThanOrEqual(r.Open)
}

// InvariantError нарушение инварианта ряда, привязанное к дате записи
type InvariantError struct {
	Date   time.Time
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("нарушение инварианта ряда на %s: %s", e.Date.Format(DateLayout), e.Reason)
}
