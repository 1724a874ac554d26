package router

import (
	"github.com/fabrictrade/backend/internal/domain/identity"
	"github.com/fabrictrade/backend/internal/interfaces/http/handler"
	"github.com/fabrictrade/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers are the HTTP handlers behind the API
type Handlers struct {
	Auth           *handler.AuthHandler
	Product        *handler.ProductHandler
	Customer       *handler.CustomerHandler
	Order          *handler.OrderHandler
	Bill           *handler.BillHandler
	Payment        *handler.PaymentHandler
	PaymentRequest *handler.PaymentRequestHandler
	Analytics      *handler.AnalyticsHandler
	Assistant      *handler.AssistantHandler
	System         *handler.SystemHandler
}

// APIGroups returns the /api/v1 route groups with their role guards.
// loginLimit throttles login attempts; pass nil to disable.
func APIGroups(h Handlers, loginLimit gin.HandlerFunc) []RouteRegistrar {
	var (
		admin      = middleware.RequireRole(identity.RoleAdmin)
		accountant = middleware.RequireRole(identity.RoleAccountant)
		staff      = middleware.RequireStaff()
		buyer      = middleware.RequireRole(identity.RoleCustomer, identity.RoleAdmin)
		customer   = middleware.RequireRole(identity.RoleCustomer)
	)

	login := []gin.HandlerFunc{h.Auth.Login}
	if loginLimit != nil {
		login = append([]gin.HandlerFunc{loginLimit}, login...)
	}

	authGroup := NewDomainGroup("auth", "/auth").
		POST("/login", login...).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me).
		PUT("/password", h.Auth.ChangePassword)

	users := NewDomainGroup("users", "/users").
		POST("", admin, h.Auth.CreateStaffUser)

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.Group("products", "/products").
		GET("", h.Product.List).
		GET("/:id", h.Product.GetByID).
		POST("", admin, h.Product.Create).
		PUT("/:id", admin, h.Product.Update).
		DELETE("/:id", admin, h.Product.Deactivate).
		POST("/:id/stock", admin, h.Product.AdjustStock)

	customers := NewDomainGroup("customers", "/customers").
		POST("", admin, h.Customer.Create).
		GET("", staff, h.Customer.List).
		GET("/:id", h.Customer.GetByID).
		PUT("/:id", admin, h.Customer.Update).
		PUT("/:id/credit-limit", admin, h.Customer.SetCreditLimit).
		GET("/:id/credit", h.Customer.Credit).
		GET("/:id/outstanding", h.Bill.Outstanding)

	orders := NewDomainGroup("orders", "/orders").
		POST("", buyer, h.Order.Place).
		GET("", h.Order.List).
		GET("/:id", h.Order.GetByID).
		PUT("/:id/status", admin, h.Order.Advance)

	bills := NewDomainGroup("bills", "/bills").
		GET("", h.Bill.List).
		GET("/:id", h.Bill.GetByID).
		POST("", accountant, h.Bill.CreateOffline).
		GET("/:id/payments", h.Bill.Payments).
		GET("/:id/invoice", h.Bill.InvoiceHTML).
		GET("/:id/invoice/pdf", h.Bill.InvoicePDF).
		POST("/:id/invoice/publish", h.Bill.PublishInvoice)

	payments := NewDomainGroup("payments", "/payments").
		GET("", h.Payment.List).
		POST("", accountant, h.Payment.Record)

	paymentRequests := NewDomainGroup("payment-requests", "/payment-requests").
		POST("", customer, h.PaymentRequest.Submit).
		GET("", h.PaymentRequest.List).
		GET("/:id", h.PaymentRequest.GetByID).
		POST("/:id/approve", accountant, h.PaymentRequest.Approve).
		POST("/:id/reject", accountant, h.PaymentRequest.Reject)

	analytics := NewDomainGroup("analytics", "/analytics").
		Use(staff).
		GET("/sales", h.Analytics.Sales).
		GET("/aging", h.Analytics.Aging)

	assistant := NewDomainGroup("assistant", "/assistant").
		POST("/chat", h.Assistant.Chat)

	system := NewDomainGroup("system", "/system").
		GET("/info", admin, h.System.GetSystemInfo)

	return []RouteRegistrar{
		authGroup, users, catalog, customers, orders, bills,
		payments, paymentRequests, analytics, assistant, system,
	}
}
