package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/kpsbusiness/paywall/services/storefront-service/catalog"
	"github.com/kpsbusiness/paywall/services/storefront-service/clients"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// ContentSecurityPolicy admits the PayPal SDK script and its checkout frames.
const ContentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://www.paypal.com https://*.paypal.com; " +
	"frame-src https://*.paypal.com; " +
	"connect-src 'self' https://*.paypal.com; " +
	"img-src 'self' data: https://*.paypal.com https://*.paypalobjects.com; " +
	"style-src 'self' 'unsafe-inline'; " +
	"frame-ancestors 'none'"

const pageTitle = "KPS Business -N- The Box"

var currencySymbols = map[string]string{"USD": "$", "EUR": "€", "GBP": "£"}

// GateView drives the purchase gate. Unavailable hides the widget.
type GateView struct {
	Payment     *clients.PaymentConfig
	PriceLabel  string
	Unavailable bool
}

// NewGateView validates the gateway's payment config. A missing client id
// or an unusable amount renders the gate without a widget.
func NewGateView(cfg *clients.PaymentConfig) GateView {
	if cfg == nil || cfg.PayPalClientID == "" || cfg.Currency == "" {
		return GateView{Unavailable: true}
	}
	amount, err := decimal.NewFromString(cfg.Amount)
	if err != nil || !amount.IsPositive() {
		return GateView{Unavailable: true}
	}
	return GateView{Payment: cfg, PriceLabel: formatPrice(amount, cfg.Currency)}
}

func formatPrice(amount decimal.Decimal, currency string) string {
	if sym, ok := currencySymbols[currency]; ok {
		return sym + amount.StringFixed(2)
	}
	return fmt.Sprintf("%s %s", amount.StringFixed(2), currency)
}

type pageView struct {
	Title   string
	Paid    bool
	Gate    GateView
	Catalog []catalog.Product
	Year    int
}

type Renderer struct {
	tmpl *template.Template
	now  func() time.Time
}

func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, now: time.Now}, nil
}

// GatePage writes the full page with the purchase gate. No catalog data
// reaches this template.
func (r *Renderer) GatePage(w io.Writer, gate GateView) error {
	return r.tmpl.ExecuteTemplate(w, "layout", pageView{Title: pageTitle, Gate: gate})
}

// DashboardPage writes the full page with the unlocked dashboard.
func (r *Renderer) DashboardPage(w io.Writer) error {
	return r.tmpl.ExecuteTemplate(w, "layout", r.dashboardView())
}

// DashboardFragment writes only the dashboard markup, for swapping into a
// page that was rendered as the gate.
func (r *Renderer) DashboardFragment(w io.Writer) error {
	return r.tmpl.ExecuteTemplate(w, "dashboard", r.dashboardView())
}

func (r *Renderer) dashboardView() pageView {
	return pageView{
		Title:   pageTitle,
		Paid:    true,
		Catalog: catalog.Products(),
		Year:    r.now().Year(),
	}
}
