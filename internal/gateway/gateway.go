package gateway

import (
	"context"
	"math/rand"
	"net/url"

	"github.com/shopspring/decimal"
)

// Status is the provider-agnostic transaction outcome.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
	StatusUnknown  Status = "unknown"
)

// TypePayment is the only transaction type either gateway produces;
// neither Moip nor PagSeguro supports subscriptions on these APIs.
const TypePayment = "payment"

// currencyBRL is the fixed currency both gateways charge in.
const currencyBRL = "BRL"

// Buyer is the payer identity as the host billing system knows it.
// Address detail and phone are optional; document construction must
// degrade gracefully when they are missing.
type Buyer struct {
	FirstName string
	LastName  string
	Email     string
	Address   string
	City      string
	State     string
	Zip       string
	Phone     string
}

// LineItem is one billed line of an invoice.
type LineItem struct {
	ID       int64
	Title    string
	Quantity int
	Price    decimal.Decimal
}

// Invoice is the immutable snapshot an adapter charges for. It is built
// by the caller from the stored invoice and never written back.
type Invoice struct {
	ID       int64
	Number   string
	Seller   string
	Currency string
	Total    decimal.Decimal
	Buyer    Buyer
	Lines    []LineItem
}

// CheckoutSession is the result of initiating a payment: the provider's
// session token and the hosted checkout URL to send the payer to.
// Performing the redirect is the caller's job.
type CheckoutSession struct {
	Gateway     string `json:"gateway"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	Reference   string `json:"reference"`
}

// Transaction is the normalized outcome recovered from a gateway
// notification. The adapter hands it to the caller and keeps nothing.
type Transaction struct {
	InvoiceID  int64
	ProviderID string
	Reference  string
	Amount     decimal.Decimal
	Currency   string
	Status     Status
	Type       string
}

// Gateway is implemented by each payment provider adapter.
type Gateway interface {
	// Name returns the gateway identifier used in routes and config.
	Name() string

	// Initiate sends the payment instruction for an invoice and returns
	// the hosted checkout session.
	Initiate(ctx context.Context, inv *Invoice) (*CheckoutSession, error)

	// HandleCallback interprets the fields a gateway posted to our
	// webhook into a normalized transaction.
	HandleCallback(ctx context.Context, fields url.Values) (*Transaction, error)
}

// newNonce returns the three-digit disambiguator embedded in outbound
// references. It carries no meaning on decode.
func newNonce() int64 {
	return rand.Int63n(900) + 100
}
