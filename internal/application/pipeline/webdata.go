package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
)

// Site document names
const (
	StatisticsFile      = "statistics.json"
	TopTaxpayersFile    = "top_taxpayers.json"
	AcrossYearsFile     = "top_taxpayers_across_years.json"
	yearlyTopFileFormat = "top_taxpayers_%d.json"
)

// YearlyTopFile returns the name of a year's ranking document
func YearlyTopFile(year int) string {
	return fmt.Sprintf(yearlyTopFileFormat, year)
}

// BuildStatistics computes statistics.json from one year's records
func BuildStatistics(records []taxpayer.Record) StatisticsDocument {
	return StatisticsDocument{
		Companies:   toCategoryStatistics(taxpayer.ComputeStatistics(taxpayer.FilterCategory(records, taxpayer.CategoryCompany))),
		AOP:         toCategoryStatistics(taxpayer.ComputeStatistics(taxpayer.FilterCategory(records, taxpayer.CategoryAOP))),
		Individuals: toCategoryStatistics(taxpayer.ComputeStatistics(taxpayer.FilterCategory(records, taxpayer.CategoryIndividual))),
	}
}

// BuildTopDocument ranks one year's records. Each category contributes at
// most limit/3 candidates; top_all merges the candidates by tax. Every list
// is cut to listSize.
func BuildTopDocument(records []taxpayer.Record, limit, listSize int) TopDocument {
	perCategory := limit / 3
	if perCategory < 1 {
		perCategory = 1
	}

	companies := taxpayer.TopN(taxpayer.FilterCategory(records, taxpayer.CategoryCompany), perCategory)
	aop := taxpayer.TopN(taxpayer.FilterCategory(records, taxpayer.CategoryAOP), perCategory)
	individuals := taxpayer.TopN(taxpayer.FilterCategory(records, taxpayer.CategoryIndividual), perCategory)
	all := taxpayer.MergeByTax(limit, companies, aop, individuals)

	return TopDocument{
		TopCompanies:   toTopEntries(firstN(companies, listSize)),
		TopAOP:         toTopEntries(firstN(aop, listSize)),
		TopIndividuals: toTopEntries(firstN(individuals, listSize)),
		TopAll:         toTopEntries(firstN(all, listSize)),
	}
}

func firstN(records []taxpayer.Record, n int) []taxpayer.Record {
	if n > 0 && len(records) > n {
		return records[:n]
	}
	return records
}

// WebDataResult lists the documents written
type WebDataResult struct {
	Files []string
}

// WebData writes top_taxpayers_<year>.json for every configured year, and
// statistics.json and top_taxpayers.json for the latest year. Any read error
// aborts the run.
func (s *Service) WebData(ctx context.Context) (*WebDataResult, error) {
	ctx, log, done := s.step(ctx, "webdata")
	defer done()

	outDir := s.cfg.Web.OutputDir
	primary := s.cfg.PrimaryYear()
	result := &WebDataResult{}

	write := func(name string, v any) error {
		path := filepath.Join(outDir, name)
		if err := writeJSON(path, v); err != nil {
			return err
		}
		s.metrics.FileWritten("json")
		result.Files = append(result.Files, path)
		log.Info("Written", zap.String("path", path))
		return nil
	}

	for _, year := range s.cfg.Years {
		records, err := s.readYear(ctx, year)
		if err != nil {
			return nil, err
		}

		top := BuildTopDocument(records, s.cfg.Web.TopLimit, s.cfg.Web.ListSize)
		if err := write(YearlyTopFile(year), top); err != nil {
			return nil, err
		}

		if year != primary {
			continue
		}
		if err := write(StatisticsFile, BuildStatistics(records)); err != nil {
			return nil, err
		}
		if err := write(TopTaxpayersFile, top); err != nil {
			return nil, err
		}
	}

	return result, nil
}
