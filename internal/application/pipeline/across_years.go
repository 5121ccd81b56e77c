package pipeline

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
)

// BuildAcrossYears aggregates every category across the given years
func BuildAcrossYears(records []taxpayer.Record, opts taxpayer.AggregateOptions) AcrossYearsDocument {
	return AcrossYearsDocument{
		Companies:   toEntityTotals(taxpayer.AggregateAcrossYears(records, taxpayer.CategoryCompany, opts)),
		AOP:         toEntityTotals(taxpayer.AggregateAcrossYears(records, taxpayer.CategoryAOP, opts)),
		Individuals: toIndividualTotals(taxpayer.AggregateAcrossYears(records, taxpayer.CategoryIndividual, opts)),
	}
}

// AcrossYears writes top_taxpayers_across_years.json, the top taxpayers of
// each category ranked by their total over every configured year
func (s *Service) AcrossYears(ctx context.Context) (*AcrossYearsDocument, error) {
	ctx, log, done := s.step(ctx, "across-years")
	defer done()

	var records []taxpayer.Record
	for _, year := range s.cfg.Years {
		yearRecords, err := s.readYear(ctx, year)
		if err != nil {
			return nil, err
		}
		records = append(records, yearRecords...)
	}

	opts := taxpayer.AggregateOptions{
		Years:           s.cfg.Years,
		TopN:            s.cfg.AcrossYears.TopN,
		LegacyNameMatch: s.cfg.AcrossYears.LegacyNameMatch,
		LegacyYear:      s.cfg.AcrossYears.LegacyYear,
	}
	if opts.LegacyNameMatch {
		log.Info("Legacy name matching enabled; legacy-year individuals are joined by unique name",
			zap.Int("legacy_year", opts.LegacyYear))
	}

	doc := BuildAcrossYears(records, opts)

	path := filepath.Join(s.cfg.Web.OutputDir, AcrossYearsFile)
	if err := writeJSON(path, doc); err != nil {
		return nil, err
	}
	s.metrics.FileWritten("json")
	log.Info("Written",
		zap.String("path", path),
		zap.Int("companies", len(doc.Companies)),
		zap.Int("aop", len(doc.AOP)),
		zap.Int("individuals", len(doc.Individuals)),
	)
	return &doc, nil
}
