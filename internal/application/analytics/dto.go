package analytics

import (
	"time"

	"github.com/fabrictrade/backend/internal/domain/report"
	"github.com/shopspring/decimal"
)

// SalesQuery selects the reporting window. Dates are inclusive calendar days.
type SalesQuery struct {
	From  *time.Time `form:"from" time_format:"2006-01-02"`
	To    *time.Time `form:"to" time_format:"2006-01-02"`
	Limit int        `form:"limit" binding:"omitempty,min=1,max=50"`
}

// SalesReport is the sales summary plus the best selling fabrics
type SalesReport struct {
	Summary     report.SalesSummary   `json:"summary"`
	TopProducts []report.ProductSales `json:"top_products"`
}

// AgingReport is receivables aging across all customers
type AgingReport struct {
	AsOf             time.Time                  `json:"as_of"`
	Customers        []report.CustomerAging     `json:"customers"`
	Totals           map[string]decimal.Decimal `json:"totals"`
	TotalOutstanding decimal.Decimal            `json:"total_outstanding"`
	AdvisoryInterest decimal.Decimal            `json:"advisory_interest"`
}
