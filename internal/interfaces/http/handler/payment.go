package handler

import (
	"errors"
	"net/http"

	billingapp "github.com/fabrictrade/backend/internal/application/billing"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdempotencyKeyHeader lets clients retry a payment without recording it twice
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Record godoc
// @Summary      Record a payment
// @Description  With bill_id the whole amount goes to that bill. Without it the amount is applied
// @Description  to the customer's outstanding bills oldest first. Any amount left over is returned
// @Description  as remainder. A customer with nothing outstanding gets 200 with notice NO_OUTSTANDING_BILLS.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client key; repeating it with the same body replays the first result, a different body gets 422"
// @Param        request body billingapp.RecordPaymentRequest true "Payment"
// @Success      201 {object} dto.Response{data=billingapp.RecordResult}
// @Success      200 {object} dto.Response{data=billingapp.RecordResult,notice=dto.Notice}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	var req billingapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	key := c.GetHeader(IdempotencyKeyHeader)
	if len(key) > 200 {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}

	var staffID *uuid.UUID
	if userID, err := getUserID(c); err == nil {
		staffID = &userID
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), key, req, staffID)
	if err != nil {
		h.handlePaymentError(c, result, err)
		return
	}
	h.Created(c, result)
}

// handlePaymentError answers informational outcomes with 200 and the result, everything else as an error
func (h *BaseHandler) handlePaymentError(c *gin.Context, result any, err error) {
	var domainErr *shared.DomainError
	if billingapp.IsInformational(err) && errors.As(err, &domainErr) {
		c.JSON(http.StatusOK, dto.NewNoticeResponse(result, domainErr.Code, domainErr.Message))
		return
	}
	h.HandleError(c, err)
}

// List godoc
// @Summary      List payments
// @Description  Newest first. Customers only see their own.
// @Tags         payments
// @Produce      json
// @Param        customer_id query string false "Customer (staff only)"
// @Param        bill_id query string false "Bill"
// @Param        from_date query string false "YYYY-MM-DD"
// @Param        to_date query string false "YYYY-MM-DD"
// @Success      200 {object} dto.Response{data=[]billingapp.PaymentResponse}
// @Security     BearerAuth
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var q billingapp.PaymentListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	scope, ok := h.customerScope(c)
	if !ok {
		return
	}
	if scope != nil {
		q.CustomerID = scope
	}
	payments, err := h.paymentService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}
