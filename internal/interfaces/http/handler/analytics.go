package handler

import (
	"github.com/fabrictrade/backend/internal/application/analytics"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves staff reports
type AnalyticsHandler struct {
	BaseHandler
	service *analytics.Service
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(service *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Sales godoc
// @Summary      Sales summary
// @Description  Orders, billing and collections in a date window plus the best selling fabrics. Defaults to the last 30 days.
// @Tags         analytics
// @Produce      json
// @Param        from query string false "First day (YYYY-MM-DD)"
// @Param        to query string false "Last day (YYYY-MM-DD)"
// @Param        limit query int false "Top products to return"
// @Success      200 {object} dto.Response{data=analytics.SalesReport}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /analytics/sales [get]
func (h *AnalyticsHandler) Sales(c *gin.Context) {
	var q analytics.SalesQuery
	if !h.bindQuery(c, &q) {
		return
	}
	report, err := h.service.Sales(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Aging godoc
// @Summary      Receivables aging
// @Description  Outstanding balances per customer bucketed by days past due, with the advisory overdue interest.
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=analytics.AgingReport}
// @Security     BearerAuth
// @Router       /analytics/aging [get]
func (h *AnalyticsHandler) Aging(c *gin.Context) {
	report, err := h.service.Aging(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
