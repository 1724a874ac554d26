package handler

import (
	payreqapp "github.com/fabrictrade/backend/internal/application/payreq"
	"github.com/gin-gonic/gin"
)

// PaymentRequestHandler handles customer-reported payments awaiting review
type PaymentRequestHandler struct {
	BaseHandler
	service *payreqapp.Service
}

// NewPaymentRequestHandler creates a new PaymentRequestHandler
func NewPaymentRequestHandler(service *payreqapp.Service) *PaymentRequestHandler {
	return &PaymentRequestHandler{
		service: service,
	}
}

// Submit godoc
// @Summary      Report a payment
// @Description  A customer reports money sent outside the system; an accountant reviews it.
// @Tags         payment-requests
// @Accept       json
// @Produce      json
// @Param        request body payreqapp.SubmitRequest true "Payment made"
// @Success      201 {object} dto.Response{data=payreqapp.Response}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payment-requests [post]
func (h *PaymentRequestHandler) Submit(c *gin.Context) {
	var req payreqapp.SubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}
	scope, ok := h.customerScope(c)
	if !ok {
		return
	}
	if scope == nil {
		h.Forbidden(c, "Only customers can submit payment requests")
		return
	}
	resp, err := h.service.Submit(c.Request.Context(), *scope, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary      List payment requests
// @Tags         payment-requests
// @Produce      json
// @Param        status query string false "pending, approved or rejected"
// @Param        customer_id query string false "Customer (staff only)"
// @Param        page query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]payreqapp.Response,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /payment-requests [get]
func (h *PaymentRequestHandler) List(c *gin.Context) {
	var q payreqapp.ListQuery
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
	page, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @Summary      Get a payment request
// @Tags         payment-requests
// @Produce      json
// @Param        id path string true "Payment request ID"
// @Success      200 {object} dto.Response{data=payreqapp.Response}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payment-requests/{id} [get]
func (h *PaymentRequestHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	scope, ok := h.customerScope(c)
	if !ok {
		return
	}
	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !h.visible(c, scope, resp.CustomerID, "Payment request") {
		return
	}
	h.Success(c, resp)
}

// Approve godoc
// @Summary      Approve a payment request
// @Description  Records the payment and marks the request approved in one transaction.
// @Description  With nothing outstanding the request stays pending and 200 carries notice NO_OUTSTANDING_BILLS.
// @Tags         payment-requests
// @Produce      json
// @Param        id path string true "Payment request ID"
// @Success      200 {object} dto.Response{data=payreqapp.ApproveResult}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payment-requests/{id}/approve [post]
func (h *PaymentRequestHandler) Approve(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	reviewer, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	result, err := h.service.Approve(c.Request.Context(), id, reviewer)
	if err != nil {
		h.handlePaymentError(c, result, err)
		return
	}
	h.Success(c, result)
}

// Reject godoc
// @Summary      Reject a payment request
// @Tags         payment-requests
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment request ID"
// @Param        request body payreqapp.RejectRequest true "Reason"
// @Success      200 {object} dto.Response{data=payreqapp.Response}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payment-requests/{id}/reject [post]
func (h *PaymentRequestHandler) Reject(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	reviewer, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req payreqapp.RejectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Reject(c.Request.Context(), id, reviewer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
