package aggregator

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/skalibog/stockchart/internal/analysis/technical"
	"github.com/skalibog/stockchart/internal/config"
	"github.com/skalibog/stockchart/pkg/logger"
	"github.com/skalibog/stockchart/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrDuplicateIndicator два индикатора с одним именем неразличимы в отчете
var ErrDuplicateIndicator = errors.New("повторяющийся индикатор")

// Report результаты всех индикаторов по одному ряду
type Report struct {
	Symbol      string
	Column      models.Column
	Results     []technical.Result
	Divergences []technical.Divergence
}

// Result возвращает результат индикатора по имени
func (r *Report) Result(name string) (technical.Result, bool) {
	for _, res := range r.Results {
		if res.Indicator == name {
			return res, true
		}
	}
	return technical.Result{}, false
}

// Analyzer считает набор индикаторов по ряду
type Analyzer struct {
	config     config.AnalysisConfig
	column     models.Column
	indicators []technical.Indicator
}

// NewAnalyzer строит индикаторы из конфигурации; ошибка параметров
// возвращается до какого-либо расчета. Имена индикаторов должны быть уникальны.
func NewAnalyzer(cfg config.AnalysisConfig) (*Analyzer, error) {
	column, err := models.ParseColumn(cfg.Column)
	if err != nil {
		return nil, err
	}

	indicators := make([]technical.Indicator, 0, len(cfg.Indicators))
	seen := make(map[string]int, len(cfg.Indicators))
	for i, indCfg := range cfg.Indicators {
		ind, err := technical.New(indCfg)
		if err != nil {
			return nil, fmt.Errorf("индикатор %d (%s): %w", i, indCfg.Type, err)
		}
		if j, ok := seen[ind.Name()]; ok {
			return nil, fmt.Errorf("индикатор %d: %w: %s уже задан индикатором %d", i, ErrDuplicateIndicator, ind.Name(), j)
		}
		seen[ind.Name()] = i
		indicators = append(indicators, ind)
	}

	return &Analyzer{
		config:     cfg,
		column:     column,
		indicators: indicators,
	}, nil
}

// Indicators возвращает индикаторы в порядке конфигурации
func (a *Analyzer) Indicators() []technical.Indicator {
	return append([]technical.Indicator(nil), a.indicators...)
}

// Analyze считает все индикаторы параллельно, по горутине на индикатор.
// Ряд только читается; результаты идут в порядке конфигурации.
func (a *Analyzer) Analyze(ctx context.Context, series *models.PriceSeries) (*Report, error) {
	values := series.Column(a.column)

	results := make([]technical.Result, len(a.indicators))
	divergences := make([][]technical.Divergence, len(a.indicators))

	g, ctx := errgroup.WithContext(ctx)
	for i, ind := range a.indicators {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := ind.Compute(values)
			if err != nil {
				return fmt.Errorf("ошибка расчета %s: %w", ind.Name(), err)
			}
			results[i] = res

			logger.Debug("AGGREGATOR: индикатор рассчитан",
				zap.String("symbol", series.Symbol()),
				zap.String("indicator", ind.Name()),
				zap.Int("values", res.Len()),
				zap.Int("offset", res.Offset))

			if a.config.Verify {
				divergences[i], err = a.verify(ind, values, series.Symbol())
				if err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Symbol:  series.Symbol(),
		Column:  a.column,
		Results: results,
	}
	for _, d := range divergences {
		report.Divergences = append(report.Divergences, d...)
	}
	return report, nil
}

func (a *Analyzer) verify(ind technical.Indicator, values []decimal.Decimal, symbol string) ([]technical.Divergence, error) {
	divergences, err := technical.Verify(ind, values, a.config.VerifyTolerance)
	if errors.Is(err, technical.ErrVerifyUnsupported) {
		logger.Debug("AGGREGATOR: сверка с TA-Lib пропущена", zap.String("indicator", ind.Name()))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сверки %s: %w", ind.Name(), err)
	}

	for _, d := range divergences {
		logger.Warn("Расхождение с TA-Lib",
			zap.String("symbol", symbol),
			zap.String("indicator", d.Indicator),
			zap.String("channel", d.Channel),
			zap.Int("index", d.SourceIndex),
			zap.Float64("value", d.Value),
			zap.Float64("reference", d.Reference))
	}
	return divergences, nil
}
