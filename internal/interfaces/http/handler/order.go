package handler

import (
	tradeapp "github.com/fabrictrade/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// Place godoc
// @Summary      Place an order
// @Description  Deducts stock, checks credit and issues the order's bill in one transaction.
// @Description  Customers always order for themselves; admins name the customer.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.PlaceOrderRequest true "Order lines in meters"
// @Success      201 {object} dto.Response{data=tradeapp.PlaceOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Place(c *gin.Context) {
	var req tradeapp.PlaceOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	scope, ok := h.customerScope(c)
	if !ok {
		return
	}
	if scope != nil {
		req.CustomerID = *scope
	} else if req.CustomerID == uuid.Nil {
		h.BadRequest(c, "customer_id is required")
		return
	}

	var placedBy *uuid.UUID
	if userID, err := getUserID(c); err == nil {
		placedBy = &userID
	}

	result, err := h.orderService.PlaceOrder(c.Request.Context(), req, placedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List godoc
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        customer_id query string false "Customer (staff only)"
// @Param        status query string false "placed, shipped or delivered"
// @Param        from_date query string false "YYYY-MM-DD"
// @Param        to_date query string false "YYYY-MM-DD"
// @Param        page query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]tradeapp.OrderResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var q tradeapp.OrderListQuery
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
	page, err := h.orderService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	scope, ok := h.customerScope(c)
	if !ok {
		return
	}
	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !h.visible(c, scope, order.CustomerID, "Order") {
		return
	}
	h.Success(c, order)
}

// Advance godoc
// @Summary      Advance order status
// @Description  placed -> shipped -> delivered
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body tradeapp.AdvanceOrderRequest true "Next status"
// @Success      200 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) Advance(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req tradeapp.AdvanceOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.Advance(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
