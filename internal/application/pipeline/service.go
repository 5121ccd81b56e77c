// Package pipeline runs the batch steps that turn the published per-year CSV
// files into the relational database, the Parquet files and the JSON
// documents of the static site.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
	"github.com/taxpayers/backend/internal/infrastructure/columnar"
	"github.com/taxpayers/backend/internal/infrastructure/config"
	csvimport "github.com/taxpayers/backend/internal/infrastructure/import"
	"github.com/taxpayers/backend/internal/infrastructure/logger"
	"github.com/taxpayers/backend/internal/infrastructure/telemetry"
)

// ColumnarEngine reads and writes the Parquet layer
type ColumnarEngine interface {
	WriteYearFile(ctx context.Context, path string, schema taxpayer.YearSchema, records []taxpayer.Record, opts columnar.WriteOptions) error
	ReadYearFile(ctx context.Context, path string, schema taxpayer.YearSchema) ([]taxpayer.Record, error)
	WriteConsolidated(ctx context.Context, path string, rows []taxpayer.ConsolidatedRow, opts columnar.WriteOptions) error
	Distribution(ctx context.Context, path string) ([]taxpayer.Distribution, error)
}

// Service runs pipeline steps against one configuration
type Service struct {
	cfg     *config.Config
	engine  ColumnarEngine
	decoder *csvimport.Decoder
	source  *YearSource
	metrics *telemetry.RunMetrics
}

// Option configures a Service
type Option func(*Service)

// WithMetrics records run metrics into m
func WithMetrics(m *telemetry.RunMetrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithDecoder replaces the default strict CSV decoder
func WithDecoder(d *csvimport.Decoder) Option {
	return func(s *Service) {
		if d != nil {
			s.decoder = d
		}
	}
}

// NewService creates a Service. engine may be nil for steps that never touch
// Parquet (BuildDatabase).
func NewService(cfg *config.Config, engine ColumnarEngine, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		engine:  engine,
		decoder: csvimport.NewDecoder(),
		metrics: telemetry.NewRunMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.source = NewYearSource(cfg.Paths, engine, s.decoder)
	return s
}

// Metrics returns the metrics recorded so far
func (s *Service) Metrics() *telemetry.RunMetrics {
	return s.metrics
}

// step tags ctx with the step name and starts its timer
func (s *Service) step(ctx context.Context, name string) (context.Context, *zap.Logger, func()) {
	ctx, log := logger.WithStep(ctx, name)
	return ctx, log, s.metrics.TimeStep(name)
}

// readYear reads every category of one year through the shared source,
// counting rows and missing inputs under the calling step
func (s *Service) readYear(ctx context.Context, year int) ([]taxpayer.Record, error) {
	step := logger.GetStep(ctx)
	var all []taxpayer.Record
	for _, category := range taxpayer.AllCategories {
		records, found, err := s.source.Read(ctx, year, category)
		if err != nil {
			return nil, err
		}
		if !found {
			s.metrics.ObserveMissing(step, string(category))
			continue
		}
		s.metrics.ObserveRead(step, string(category), len(records))
		all = append(all, records...)
	}
	return all, nil
}
