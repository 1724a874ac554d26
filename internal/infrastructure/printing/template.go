// Package printing renders invoices to HTML and prints them to PDF with headless Chrome.
package printing

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

//go:embed templates/invoice.html.tmpl
var invoiceTemplate string

// InvoiceLine is one fabric line printed on an invoice
type InvoiceLine struct {
	SKU         string
	Description string
	Meters      decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// InvoicePayment is one payment printed under the totals
type InvoicePayment struct {
	ReceivedAt time.Time
	Method     string
	Reference  string
	Amount     decimal.Decimal
}

// InvoiceData is everything the invoice template prints
type InvoiceData struct {
	CompanyName     string
	CompanyAddress  string
	Currency        string
	BillNumber      string
	IssuedAt        time.Time
	OrderNumber     string
	Status          string
	CustomerCode    string
	CustomerName    string
	CustomerAddress string
	GSTIN           string
	Notes           string
	Lines           []InvoiceLine
	Subtotal        decimal.Decimal
	TaxAmount       decimal.Decimal
	Total           decimal.Decimal
	Paid            decimal.Decimal
	BalanceDue      decimal.Decimal
	Payments        []InvoicePayment
	Interest        *billing.InterestQuote
	GraceDays       int
}

// TemplateEngine renders InvoiceData with html/template
type TemplateEngine struct {
	invoice *template.Template
}

// NewTemplateEngine parses the built-in invoice template
func NewTemplateEngine() (*TemplateEngine, error) {
	printer := message.NewPrinter(language.English)
	title := cases.Title(language.English)

	funcs := template.FuncMap{
		"money": func(d decimal.Decimal) string {
			f, _ := d.Round(2).Float64()
			return printer.Sprint(number.Decimal(f, number.Scale(2)))
		},
		"meters": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006")
		},
		"title": func(s string) string {
			return title.String(strings.ReplaceAll(s, "_", " "))
		},
	}

	tmpl, err := template.New("invoice").Funcs(funcs).Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	return &TemplateEngine{invoice: tmpl}, nil
}

// RenderInvoice returns the invoice as a complete HTML document
func (e *TemplateEngine) RenderInvoice(data InvoiceData) (string, error) {
	if data.GraceDays == 0 {
		data.GraceDays = billing.GracePeriodDays
	}
	var buf bytes.Buffer
	if err := e.invoice.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	return buf.String(), nil
}
