package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Column числовая колонка записи, по которой считаются индикаторы
type Column int

const (
	ColumnClose Column = iota
	ColumnOpen
	ColumnHigh
	ColumnLow
)

func (c Column) String() string {
	switch c {
	case ColumnOpen:
		return "open"
	case ColumnHigh:
		return "high"
	case ColumnLow:
		return "low"
	default:
		return "close"
	}
}

// ParseColumn разбирает имя колонки; пустая строка означает close
func ParseColumn(s string) (Column, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "close":
		return ColumnClose, nil
	case "open":
		return ColumnOpen, nil
	case "high":
		return ColumnHigh, nil
	case "low":
		return ColumnLow, nil
	}
	return ColumnClose, fmt.Errorf("неизвестная колонка %q", s)
}

// PriceSeries упорядоченный по дате ряд записей одного символа.
// После создания ряд не изменяется: все методы возвращают копии.
type PriceSeries struct {
	symbol  string
	records []PriceRecord
}

// NewPriceSeries копирует записи и проверяет инварианты ряда:
// даты строго возрастают, у каждой записи корректный порядок OHLC.
// Возвращает первое нарушение в порядке записей.
func NewPriceSeries(symbol string, records []PriceRecord) (*PriceSeries, error) {
	owned := make([]PriceRecord, len(records))
	copy(owned, records)

	for i, rec := range owned {
		if i > 0 {
			prev := owned[i-1].Date
			if rec.Date.Equal(prev) {
				return nil, &InvariantError{Date: rec.Date, Reason: "повторяющаяся дата"}
			}
			if rec.Date.Before(prev) {
				return nil, &InvariantError{
					Date:   rec.Date,
					Reason: fmt.Sprintf("дата раньше предыдущей %s", prev.Format(DateLayout)),
				}
			}
		}
		if err := rec.Validate(); err != nil {
			return nil, err
		}
	}

	return &PriceSeries{symbol: symbol, records: owned}, nil
}

// Symbol возвращает тикер ряда
func (s *PriceSeries) Symbol() string { return s.symbol }

// Len возвращает количество записей
func (s *PriceSeries) Len() int { return len(s.records) }

// At возвращает запись по индексу
func (s *PriceSeries) At(i int) PriceRecord { return s.records[i] }

// Records возвращает копию записей
func (s *PriceSeries) Records() []PriceRecord {
	out := make([]PriceRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Dates возвращает даты записей
func (s *PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.records))
	for i, r := range s.records {
		out[i] = r.Date
	}
	return out
}

// Column извлекает числовую колонку в новый срез
func (s *PriceSeries) Column(c Column) []decimal.Decimal {
	out := make([]decimal.Decimal, len(s.records))
	for i, r := range s.records {
		switch c {
		case ColumnOpen:
			out[i] = r.Open
		case ColumnHigh:
			out[i] = r.High
		case ColumnLow:
			out[i] = r.Low
		default:
			out[i] = r.Close
		}
	}
	return out
}

// Closes цены закрытия
func (s *PriceSeries) Closes() []decimal.Decimal {
	return s.Column(ColumnClose)
}
