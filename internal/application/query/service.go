// Package query answers the command-line lookups over the loaded database.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
)

// Default result limits per command
const (
	DefaultNameLimit  = 20
	DefaultTopLimit   = 20
	DefaultRangeLimit = 100
)

// TypeAll selects every category
const TypeAll = "all"

// Repository reads the taxpayer tables
type Repository interface {
	SearchByName(ctx context.Context, category taxpayer.Category, term string, limit int) ([]taxpayer.Record, error)
	Top(ctx context.Context, category taxpayer.Category, limit int) ([]taxpayer.Record, error)
	Range(ctx context.Context, category taxpayer.Category, min, max decimal.Decimal, limit int) ([]taxpayer.Record, error)
	FindByRegNo(ctx context.Context, category taxpayer.Category, regNo string) (*taxpayer.Record, error)
}

// TypeFilter selects the tables a command reads
type TypeFilter struct {
	name       string
	categories []taxpayer.Category
}

// ParseType parses the type argument: all or one category
func ParseType(s string) (TypeFilter, error) {
	if s == "" || strings.EqualFold(s, TypeAll) {
		return TypeFilter{name: TypeAll, categories: taxpayer.AllCategories}, nil
	}
	category, err := taxpayer.ParseCategory(s)
	if err != nil {
		return TypeFilter{}, err
	}
	return TypeFilter{name: s, categories: []taxpayer.Category{category}}, nil
}

// String returns the type as given on the command line
func (f TypeFilter) String() string {
	return f.name
}

// IsAll reports whether every category is selected
func (f TypeFilter) IsAll() bool {
	return len(f.categories) == len(taxpayer.AllCategories)
}

// Service runs the lookups
type Service struct {
	repo Repository
}

// NewService creates a new Service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SearchByName finds taxpayers whose name contains term
func (s *Service) SearchByName(ctx context.Context, term string, filter TypeFilter, limit int) ([]taxpayer.Record, error) {
	if strings.TrimSpace(term) == "" {
		return nil, errors.New("search term is empty")
	}
	return s.collect(filter, limit, func(c taxpayer.Category) ([]taxpayer.Record, error) {
		return s.repo.SearchByName(ctx, c, term, limit)
	})
}

// Top returns the highest positive taxes
func (s *Service) Top(ctx context.Context, filter TypeFilter, limit int) ([]taxpayer.Record, error) {
	return s.collect(filter, limit, func(c taxpayer.Category) ([]taxpayer.Record, error) {
		return s.repo.Top(ctx, c, limit)
	})
}

// Range returns taxpayers whose tax lies within [min, max]
func (s *Service) Range(ctx context.Context, min, max decimal.Decimal, filter TypeFilter, limit int) ([]taxpayer.Record, error) {
	if min.GreaterThan(max) {
		return nil, fmt.Errorf("minimum %s is greater than maximum %s", min, max)
	}
	return s.collect(filter, limit, func(c taxpayer.Category) ([]taxpayer.Record, error) {
		return s.repo.Range(ctx, c, min, max, limit)
	})
}

// FindByRegNo looks regNo up in companies, then aop, then individuals and
// returns the first match. An unknown number yields no records.
func (s *Service) FindByRegNo(ctx context.Context, regNo string) ([]taxpayer.Record, error) {
	regNo = strings.TrimSpace(regNo)
	if regNo == "" {
		return nil, errors.New("registration number is empty")
	}
	for _, category := range taxpayer.AllCategories {
		record, err := s.repo.FindByRegNo(ctx, category, regNo)
		if errors.Is(err, taxpayer.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return []taxpayer.Record{*record}, nil
	}
	return nil, nil
}

// collect queries each selected table with its own limit. Results of several
// tables are merged, re-sorted by tax and cut to the limit.
func (s *Service) collect(filter TypeFilter, limit int, fetch func(taxpayer.Category) ([]taxpayer.Record, error)) ([]taxpayer.Record, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if len(filter.categories) == 0 {
		return nil, errors.New("no taxpayer type selected")
	}

	lists := make([][]taxpayer.Record, 0, len(filter.categories))
	for _, category := range filter.categories {
		records, err := fetch(category)
		if err != nil {
			return nil, err
		}
		lists = append(lists, records)
	}
	if len(lists) == 1 {
		return lists[0], nil
	}
	return taxpayer.MergeByTax(limit, lists...), nil
}
