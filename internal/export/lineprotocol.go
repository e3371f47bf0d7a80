package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/skalibog/stockchart/internal/analysis/technical"
	"github.com/skalibog/stockchart/pkg/models"
)

const (
	MeasurementCandles    = "candles"
	MeasurementIndicators = "indicators"
)

// Точность меток времени: дневные свечи
const precision = time.Second

// WriteLineProtocol пишет ряд и производные ряды в формате InfluxDB line protocol.
// Свечи идут в measurement candles, значения индикаторов в indicators с датой
// той цены, к которой привязано значение.
func WriteLineProtocol(w io.Writer, series *models.PriceSeries, results []technical.Result) error {
	for i := 0; i < series.Len(); i++ {
		if err := writePoint(w, candlePoint(series.Symbol(), series.At(i))); err != nil {
			return err
		}
	}

	for _, res := range results {
		for i := 0; i < res.Len(); i++ {
			idx := res.SourceIndex(i)
			if idx >= series.Len() {
				return fmt.Errorf("значение %s #%d привязано к индексу %d вне ряда", res.Indicator, i, idx)
			}
			if err := writePoint(w, indicatorPoint(series.Symbol(), series.At(idx).Date, res, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func candlePoint(symbol string, r models.PriceRecord) *write.Point {
	return influxdb2.NewPoint(
		MeasurementCandles,
		map[string]string{
			"symbol": symbol,
		},
		map[string]interface{}{
			"open":   r.Open.InexactFloat64(),
			"high":   r.High.InexactFloat64(),
			"low":    r.Low.InexactFloat64(),
			"close":  r.Close.InexactFloat64(),
			"volume": r.Volume,
		},
		r.Date,
	)
}

func indicatorPoint(symbol string, date time.Time, res technical.Result, i int) *write.Point {
	fields := make(map[string]interface{}, len(res.Channels))
	for _, ch := range res.Channels {
		fields[ch.Name] = ch.Values[i].InexactFloat64()
	}

	return influxdb2.NewPoint(
		MeasurementIndicators,
		map[string]string{
			"symbol":    symbol,
			"indicator": res.Indicator,
		},
		fields,
		date,
	)
}

func writePoint(w io.Writer, p *write.Point) error {
	line := strings.TrimSuffix(write.PointToLineProtocol(p, precision), "\n")
	if _, err := io.WriteString(w, line+"\n"); err != nil {
		return fmt.Errorf("ошибка записи точки %s: %w", p.Name(), err)
	}
	return nil
}
