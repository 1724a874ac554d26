package handler

import (
	"fmt"
	"net/http"

	billingapp "github.com/fabrictrade/backend/internal/application/billing"
	"github.com/fabrictrade/backend/internal/application/invoice"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// BillHandler handles bill and invoice endpoints
type BillHandler struct {
	BaseHandler
	billService    *billingapp.BillService
	invoiceService *invoice.Service
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(billService *billingapp.BillService, invoiceService *invoice.Service) *BillHandler {
	return &BillHandler{
		billService:    billService,
		invoiceService: invoiceService,
	}
}

// OutstandingResponse lists a customer's unpaid bills oldest first
type OutstandingResponse struct {
	Bills []billingapp.BillResponse `json:"bills"`
	Total decimal.Decimal           `json:"total_outstanding"`
}

// List godoc
// @Summary      List bills
// @Description  Each bill carries an advisory overdue interest quote
// @Tags         bills
// @Produce      json
// @Param        customer_id query string false "Customer (staff only)"
// @Param        status query string false "unpaid, partial or paid"
// @Param        page query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]billingapp.BillResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /bills [get]
func (h *BillHandler) List(c *gin.Context) {
	var q billingapp.BillListQuery
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
	page, err := h.billService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @Summary      Get a bill
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID"
// @Success      200 {object} dto.Response{data=billingapp.BillResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills/{id} [get]
func (h *BillHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	scope, ok := h.customerScope(c)
	if !ok {
		return
	}
	bill, err := h.billService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !h.visible(c, scope, bill.CustomerID, "Bill") {
		return
	}
	h.Success(c, bill)
}

// CreateOffline godoc
// @Summary      Enter an offline bill
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        request body billingapp.CreateBillRequest true "Bill"
// @Success      201 {object} dto.Response{data=billingapp.BillResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills [post]
func (h *BillHandler) CreateOffline(c *gin.Context) {
	var req billingapp.CreateBillRequest
	if !h.bindJSON(c, &req) {
		return
	}
	bill, err := h.billService.CreateOffline(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bill)
}

// Payments godoc
// @Summary      Payments recorded against a bill
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID"
// @Success      200 {object} dto.Response{data=[]billingapp.PaymentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills/{id}/payments [get]
func (h *BillHandler) Payments(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	scope, ok := h.customerScope(c)
	if !ok {
		return
	}
	if scope != nil {
		bill, err := h.billService.GetBill(c.Request.Context(), id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if !h.visible(c, scope, bill.CustomerID, "Bill") {
			return
		}
	}
	payments, err := h.billService.ListPayments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Outstanding godoc
// @Summary      A customer's unpaid bills
// @Description  Oldest first, the order bulk payments are applied in
// @Tags         bills
// @Produce      json
// @Param        id path string true "Customer ID"
// @Success      200 {object} dto.Response{data=OutstandingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id}/outstanding [get]
func (h *BillHandler) Outstanding(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	scope, ok := h.customerScope(c)
	if !ok || !h.visible(c, scope, id, "Customer") {
		return
	}
	bills, total, err := h.billService.Outstanding(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, OutstandingResponse{Bills: bills, Total: total})
}

// InvoiceHTML godoc
// @Summary      Invoice as HTML
// @Tags         invoices
// @Produce      html
// @Param        id path string true "Bill ID"
// @Success      200 {string} string "HTML document"
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills/{id}/invoice [get]
func (h *BillHandler) InvoiceHTML(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	scope, ok := h.customerScope(c)
	if !ok {
		return
	}
	html, err := h.invoiceService.HTML(c.Request.Context(), id, scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// InvoicePDF godoc
// @Summary      Invoice as PDF
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path string true "Bill ID"
// @Success      200 {file} file
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills/{id}/invoice/pdf [get]
func (h *BillHandler) InvoicePDF(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	scope, ok := h.customerScope(c)
	if !ok {
		return
	}
	pdf, filename, err := h.invoiceService.PDF(c.Request.Context(), id, scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// PublishInvoice godoc
// @Summary      Publish invoice PDF
// @Description  Uploads the PDF to object storage and returns a presigned download URL
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Bill ID"
// @Success      200 {object} dto.Response{data=invoice.Link}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills/{id}/invoice/publish [post]
func (h *BillHandler) PublishInvoice(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	scope, ok := h.customerScope(c)
	if !ok {
		return
	}
	link, err := h.invoiceService.Publish(c.Request.Context(), id, scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, link)
}
