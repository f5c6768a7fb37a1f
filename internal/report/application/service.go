package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	expenses "aeroledger/internal/expenses/domain"
	"aeroledger/internal/observability/metrics"
	domain "aeroledger/internal/report/domain"
)

// ExpenseSource provides the bulk expense snapshot with flight dates and
// invoice type names already joined.
type ExpenseSource interface {
	ListForReport(ctx context.Context) ([]expenses.Expense, error)
}

// Clock abstracts time for deterministic builds.
type Clock interface {
	Now() time.Time
}

// Service builds the expenses-by-month report from a fresh snapshot per
// request. It holds no state between requests.
type Service struct {
	source ExpenseSource
	clock  Clock
	cutoff time.Time
}

// NewService constructs a report service.
func NewService(source ExpenseSource, clock Clock, cutoff time.Time) (*Service, error) {
	if source == nil {
		return nil, errors.New("report service: nil expense source")
	}
	if clock == nil {
		return nil, errors.New("report service: nil clock")
	}
	if cutoff.IsZero() {
		cutoff = domain.DefaultATSCutoff
	}
	return &Service{source: source, clock: clock, cutoff: cutoff}, nil
}

// Build fetches the expense snapshot and aggregates the report matrix.
// The fetch is not retried here; the whole operation is idempotent and
// safe to re-invoke by the caller.
func (s *Service) Build(ctx context.Context, opts domain.Options) (*domain.Matrix, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportBuild(result, time.Since(start))
	}()

	if opts.YearFilter == "" {
		opts.YearFilter = domain.YearFilterCurrent
	}
	if opts.ATSCutoff.IsZero() {
		opts.ATSCutoff = s.cutoff
	}

	list, err := s.source.ListForReport(ctx)
	if err != nil {
		result = metrics.ResultError
		return nil, fmt.Errorf("report service: fetch expenses: %w", err)
	}

	matrix, err := domain.BuildMatrix(list, opts, s.clock.Now())
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return matrix, nil
}
