package persistence

import (
	"strings"

	"github.com/fabrictrade/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField if whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// BillSortFields contains allowed sort fields for bills
var BillSortFields = map[string]bool{
	"created_at":   true,
	"bill_number":  true,
	"total_amount": true,
	"balance_due":  true,
	"status":       true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"created_at": true,
	"amount":     true,
	"method":     true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"created_at":      true,
	"sku":             true,
	"name":            true,
	"price_per_meter": true,
	"stock_meters":    true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"created_at":   true,
	"code":         true,
	"name":         true,
	"credit_limit": true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"created_at":   true,
	"order_number": true,
	"total_amount": true,
	"status":       true,
}

// PaymentRequestSortFields contains allowed sort fields for payment requests
var PaymentRequestSortFields = map[string]bool{
	"created_at": true,
	"amount":     true,
	"status":     true,
}

// applyPaging applies whitelisted ordering plus limit/offset
func applyPaging(query *gorm.DB, filter shared.Filter, allowed map[string]bool) *gorm.DB {
	f := filter.Normalize()
	field := ValidateSortField(f.OrderBy, allowed, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(f.OrderDir))
	if field != "created_at" {
		query = query.Order("created_at DESC")
	}
	return query.Offset(f.Offset()).Limit(f.PageSize)
}
