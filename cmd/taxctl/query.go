package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taxpayers/backend/internal/application/query"
	"github.com/taxpayers/backend/internal/infrastructure/persistence"
)

const queryExamples = `  taxctl query name abbott company 10
  taxctl query regno 1347561
  taxctl query top company 20
  taxctl query range 1000000 10000000 all 50`

func newQueryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query",
		Short:   "Look taxpayers up in the loaded database",
		Example: queryExamples,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return fmt.Errorf("unknown command '%s'", args[0])
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "name <search_term> [company|aop|individual|all] [limit]",
			Short: "Search taxpayers by name",
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) < 1 {
					return errors.New("please provide search term")
				}
				filter, limit, err := typeAndLimit(args[1:], query.DefaultNameLimit)
				if err != nil {
					return err
				}
				return a.withQuery(cmd, func(ctx context.Context, svc *query.Service, out *query.TablePrinter) error {
					records, err := svc.SearchByName(ctx, args[0], filter, limit)
					if err != nil {
						return err
					}
					out.SearchTitle(args[0], filter)
					out.Print(records)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "regno <registration_number>",
			Short: "Look a taxpayer up by NTN or CNIC",
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) < 1 {
					return errors.New("please provide registration number")
				}
				return a.withQuery(cmd, func(ctx context.Context, svc *query.Service, out *query.TablePrinter) error {
					records, err := svc.FindByRegNo(ctx, args[0])
					if err != nil {
						return err
					}
					out.RegNoTitle(args[0])
					out.Print(records)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "top [company|aop|individual|all] [limit]",
			Short: "List the taxpayers with the highest tax",
			RunE: func(cmd *cobra.Command, args []string) error {
				filter, limit, err := typeAndLimit(args, query.DefaultTopLimit)
				if err != nil {
					return err
				}
				return a.withQuery(cmd, func(ctx context.Context, svc *query.Service, out *query.TablePrinter) error {
					records, err := svc.Top(ctx, filter, limit)
					if err != nil {
						return err
					}
					out.TopTitle(limit, filter)
					out.Print(records)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "range <min_tax> <max_tax> [company|aop|individual|all] [limit]",
			Short: "List taxpayers whose tax lies within a range",
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) < 2 {
					return errors.New("please provide min and max tax amounts")
				}
				min, err := decimal.NewFromString(args[0])
				if err != nil {
					return fmt.Errorf("invalid minimum tax %q", args[0])
				}
				max, err := decimal.NewFromString(args[1])
				if err != nil {
					return fmt.Errorf("invalid maximum tax %q", args[1])
				}
				filter, limit, err := typeAndLimit(args[2:], query.DefaultRangeLimit)
				if err != nil {
					return err
				}
				return a.withQuery(cmd, func(ctx context.Context, svc *query.Service, out *query.TablePrinter) error {
					records, err := svc.Range(ctx, min, max, filter, limit)
					if err != nil {
						return err
					}
					out.RangeTitle(min, max, filter)
					out.Print(records)
					return nil
				})
			},
		},
	)

	return cmd
}

// typeAndLimit parses the optional [type] [limit] tail shared by the lookups
func typeAndLimit(args []string, defaultLimit int) (query.TypeFilter, int, error) {
	if len(args) > 2 {
		return query.TypeFilter{}, 0, fmt.Errorf("unexpected argument %q", args[2])
	}

	typeArg := query.TypeAll
	if len(args) > 0 {
		typeArg = args[0]
	}
	filter, err := query.ParseType(typeArg)
	if err != nil {
		return query.TypeFilter{}, 0, err
	}

	limit := defaultLimit
	if len(args) > 1 {
		limit, err = strconv.Atoi(args[1])
		if err != nil || limit <= 0 {
			return query.TypeFilter{}, 0, fmt.Errorf("invalid limit %q", args[1])
		}
	}
	return filter, limit, nil
}

// withQuery opens the existing database and runs fn with a printer on the
// command's output
func (a *app) withQuery(cmd *cobra.Command, fn func(context.Context, *query.Service, *query.TablePrinter) error) error {
	db, err := persistence.OpenExisting(&a.cfg.Database, a.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			a.log.Warn("Error closing database", zap.Error(err))
		}
	}()

	svc := query.NewService(persistence.NewGormTaxpayerRepository(db.DB))
	return fn(cmd.Context(), svc, query.NewTablePrinter(cmd.OutOrStdout()))
}
