// Package analytics builds read-only sales and receivables reports.
package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/partner"
	"github.com/fabrictrade/backend/internal/domain/report"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultWindow   = 30 * 24 * time.Hour
	defaultTopLimit = 10
)

// Service computes sales and aging reports
type Service struct {
	reportRepo   report.Repository
	billRepo     billing.BillRepository
	customerRepo partner.CustomerRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewService creates a new analytics Service
func NewService(reportRepo report.Repository, billRepo billing.BillRepository, customerRepo partner.CustomerRepository, logger *zap.Logger) *Service {
	return &Service{
		reportRepo:   reportRepo,
		billRepo:     billRepo,
		customerRepo: customerRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Sales summarises orders, billing and collections over the query window.
// Without dates the last 30 days are reported.
func (s *Service) Sales(ctx context.Context, q SalesQuery) (*SalesReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", "sales")
	defer span.End()

	rng, err := s.window(q)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultTopLimit
	}

	summary, err := s.reportRepo.SalesSummary(ctx, rng)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	top, err := s.reportRepo.TopProducts(ctx, rng, limit)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if top == nil {
		top = []report.ProductSales{}
	}
	return &SalesReport{Summary: *summary, TopProducts: top}, nil
}

func (s *Service) window(q SalesQuery) (report.DateRange, error) {
	now := s.now()
	to := now
	if q.To != nil {
		// inclusive: the whole "to" day counts
		to = q.To.AddDate(0, 0, 1)
	}
	from := to.Add(-defaultWindow)
	if q.From != nil {
		from = *q.From
	}
	if !from.Before(to) {
		return report.DateRange{}, shared.NewDomainError("INVALID_DATE_RANGE", "from must be on or before to")
	}
	return report.DateRange{From: from, To: to}, nil
}

// Aging buckets every outstanding bill by age and totals them per customer,
// largest balance first. Interest figures are advisory.
func (s *Service) Aging(ctx context.Context) (*AgingReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", "aging")
	defer span.End()

	bills, err := s.billRepo.FindOutstanding(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.now()
	rep := &AgingReport{
		AsOf:             now,
		Customers:        []report.CustomerAging{},
		Totals:           emptyBuckets(),
		TotalOutstanding: decimal.Zero,
		AdvisoryInterest: decimal.Zero,
	}

	lines := make(map[uuid.UUID]*report.CustomerAging)
	for i := range bills {
		b := &bills[i]
		line, ok := lines[b.CustomerID]
		if !ok {
			line = &report.CustomerAging{
				CustomerID:       b.CustomerID,
				Buckets:          emptyBuckets(),
				TotalOutstanding: decimal.Zero,
				AdvisoryInterest: decimal.Zero,
			}
			lines[b.CustomerID] = line
		}

		age := int(math.Floor(now.Sub(b.CreatedAt).Hours() / 24))
		bucket := report.BucketFor(age)
		line.Buckets[bucket] = line.Buckets[bucket].Add(b.BalanceDue)
		line.TotalOutstanding = line.TotalOutstanding.Add(b.BalanceDue)
		if age > line.OldestBillDays {
			line.OldestBillDays = age
		}
		if q := b.OverdueInterest(now); q != nil && q.IsOverdue {
			line.AdvisoryInterest = line.AdvisoryInterest.Add(q.InterestAmount)
		}

		rep.Totals[bucket] = rep.Totals[bucket].Add(b.BalanceDue)
		rep.TotalOutstanding = rep.TotalOutstanding.Add(b.BalanceDue)
	}

	for id, line := range lines {
		c, err := s.customerRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			line.CustomerCode = c.Code
			line.CustomerName = c.Name
		}
		rep.AdvisoryInterest = rep.AdvisoryInterest.Add(line.AdvisoryInterest)
		rep.Customers = append(rep.Customers, *line)
	}
	sort.Slice(rep.Customers, func(i, j int) bool {
		a, b := rep.Customers[i], rep.Customers[j]
		if !a.TotalOutstanding.Equal(b.TotalOutstanding) {
			return a.TotalOutstanding.GreaterThan(b.TotalOutstanding)
		}
		return a.CustomerCode < b.CustomerCode
	})

	s.logger.Debug("Aging report built",
		zap.Int("bills", len(bills)),
		zap.Int("customers", len(rep.Customers)),
	)
	return rep, nil
}

func emptyBuckets() map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, 4)
	for _, name := range report.BucketNames() {
		m[name] = decimal.Zero
	}
	return m
}
