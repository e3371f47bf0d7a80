package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/skalibog/stockchart/pkg/logger"
	"github.com/skalibog/stockchart/pkg/models"
	"go.uber.org/zap"
)

// Header ожидаемый заголовок входного файла
var Header = []string{"date", "open", "high", "low", "close", "volume"}

// Метка порядка байтов, которую добавляют выгрузки из электронных таблиц
const bom = "\ufeff"

// Допускаются только простые десятичные литералы: без экспоненты,
// разделителей разрядов и запятой в качестве десятичного разделителя.
var decimalLiteral = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// Load читает CSV файл и возвращает проверенный ряд.
// При любой ошибке ряд не возвращается.
func Load(path, symbol string) (*models.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Kind: KindIoFailure, Err: err}
	}
	defer f.Close()

	series, err := Read(f, symbol)
	if err != nil {
		return nil, err
	}

	logger.Debug("Загружен ряд цен",
		zap.String("path", path),
		zap.String("symbol", symbol),
		zap.Int("rows", series.Len()))
	return series, nil
}

// Read разбирает CSV из потока. Строки разбираются по порядку,
// первая же ошибка прерывает загрузку.
func Read(r io.Reader, symbol string) (*models.PriceSeries, error) {
	rdr := csv.NewReader(r)
	rdr.FieldsPerRecord = -1
	rdr.ReuseRecord = true

	header, err := rdr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Kind: KindInvalidSchema, Err: errors.New("пустой файл")}
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, &LoadError{Kind: KindInvalidSchema, Err: err}
		}
		return nil, &LoadError{Kind: KindIoFailure, Err: err}
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var records []models.PriceRecord
	for {
		row, err := rdr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &LoadError{Kind: KindMalformedRow, Line: parseErr.StartLine, Err: parseErr.Err}
			}
			return nil, &LoadError{Kind: KindIoFailure, Err: err}
		}

		line, _ := rdr.FieldPos(0)
		rec, err := parseRow(row, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	series, err := models.NewPriceSeries(symbol, records)
	if err != nil {
		var invErr *models.InvariantError
		if errors.As(err, &invErr) {
			return nil, &LoadError{Kind: KindSeriesInvariant, Date: invErr.Date, Err: err}
		}
		return nil, fmt.Errorf("ошибка построения ряда: %w", err)
	}
	return series, nil
}

func checkHeader(header []string) error {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}
	if len(header) != len(Header) {
		return &LoadError{
			Kind: KindInvalidSchema,
			Err:  fmt.Errorf("ожидалось %d колонок, получено %d", len(Header), len(header)),
		}
	}
	for i, name := range Header {
		if header[i] != name {
			return &LoadError{
				Kind: KindInvalidSchema,
				Err:  fmt.Errorf("колонка %d: ожидалось %q, получено %q", i+1, name, header[i]),
			}
		}
	}
	return nil
}

func parseRow(row []string, line int) (models.PriceRecord, error) {
	if len(row) != len(Header) {
		return models.PriceRecord{}, &LoadError{
			Kind: KindMalformedRow,
			Line: line,
			Err:  fmt.Errorf("ожидалось %d полей, получено %d", len(Header), len(row)),
		}
	}

	date, err := time.Parse(models.DateLayout, row[0])
	if err != nil {
		return models.PriceRecord{}, &LoadError{Kind: KindInvalidDate, Line: line, Err: err}
	}

	var prices [4]decimal.Decimal
	for i := range prices {
		d, err := parseDecimal(row[i+1])
		if err != nil {
			return models.PriceRecord{}, &LoadError{Kind: KindInvalidDecimal, Line: line, Column: Header[i+1], Err: err}
		}
		prices[i] = d
	}

	volume, err := strconv.ParseUint(row[5], 10, 64)
	if err != nil {
		return models.PriceRecord{}, &LoadError{Kind: KindInvalidVolume, Line: line, Err: err}
	}

	return models.PriceRecord{
		Date:   date,
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: volume,
	}, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if !decimalLiteral.MatchString(s) {
		return decimal.Decimal{}, fmt.Errorf("%q не является десятичным литералом", s)
	}
	return decimal.NewFromString(s)
}
