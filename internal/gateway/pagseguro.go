package gateway

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pagbridge/internal/pkg/httpclient"
)

const (
	pagseguroEndpoint        = "https://ws.pagseguro.uol.com.br/v2/checkout"
	pagseguroSandboxEndpoint = "https://ws.sandbox.pagseguro.uol.com.br/v2/checkout"

	pagseguroPayFlowURL        = "https://pagseguro.uol.com.br/v2/checkout/payment.html?code="
	pagseguroSandboxPayFlowURL = "https://sandbox.pagseguro.uol.com.br/v2/checkout/payment.html?code="

	pagseguroNotificationURL        = "https://ws.pagseguro.uol.com.br/v2/transactions/notifications/"
	pagseguroSandboxNotificationURL = "https://ws.sandbox.pagseguro.uol.com.br/v2/transactions/notifications/"
)

// PagSeguroConfig carries the PagSeguro account credentials plus the
// optional markup applied to every item. Email and Token are required.
type PagSeguroConfig struct {
	Email string
	Token string

	// PercTax is a percentage markup, FixedTax an absolute one, both
	// applied per item on top of the invoice price.
	PercTax  decimal.Decimal
	FixedTax decimal.Decimal

	TestMode bool
}

func (c PagSeguroConfig) enabled() bool {
	return c.Email != "" || c.Token != ""
}

// PagSeguroGateway charges invoices through PagSeguro's v2 checkout API.
// Its notifications carry only a lookup code; the transaction detail is
// fetched in a second authenticated call.
type PagSeguroGateway struct {
	cfg    PagSeguroConfig
	client *httpclient.Client
	ref    ReferenceCodec
	logger *zap.Logger

	endpoint        string
	payFlowURL      string
	notificationURL string
}

// NewPagSeguroGateway validates the configuration and resolves the
// endpoint set for the configured mode.
func NewPagSeguroGateway(cfg PagSeguroConfig, logger *zap.Logger) (*PagSeguroGateway, error) {
	for _, f := range []struct{ name, value string }{
		{"email", cfg.Email},
		{"token", cfg.Token},
	} {
		if f.value == "" {
			return nil, &ConfigurationError{Gateway: "pagseguro", Field: f.name}
		}
	}

	// PagSeguro authenticates with query-string credentials, not headers.
	client := httpclient.New().
		WithTimeout(60 * time.Second).
		WithQueryCredentials(map[string]string{
			"email": cfg.Email,
			"token": cfg.Token,
		})

	g := &PagSeguroGateway{
		cfg:             cfg,
		client:          client,
		ref:             pagseguroReference{},
		logger:          logger,
		endpoint:        pagseguroEndpoint,
		payFlowURL:      pagseguroPayFlowURL,
		notificationURL: pagseguroNotificationURL,
	}
	if cfg.TestMode {
		g.endpoint = pagseguroSandboxEndpoint
		g.payFlowURL = pagseguroSandboxPayFlowURL
		g.notificationURL = pagseguroSandboxNotificationURL
		g.client.WithInsecureSkipVerify()
	}
	return g, nil
}

func (g *PagSeguroGateway) Name() string {
	return "pagseguro"
}

// Initiate posts the checkout document and returns the session for the
// issued checkout code.
func (g *PagSeguroGateway) Initiate(ctx context.Context, inv *Invoice) (*CheckoutSession, error) {
	ref := pagseguroReference{number: inv.Number}.Encode(inv.ID, newNonce())
	doc := buildPagSeguroDocument(inv, g.cfg, ref)

	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, &ProtocolError{Gateway: g.Name(), Err: fmt.Errorf("marshal checkout: %w", err)}
	}
	body = append([]byte(xml.Header), body...)

	resp, err := g.client.PostXML(ctx, g.endpoint, body)
	if err != nil {
		return nil, &TransportError{Gateway: g.Name(), Err: err}
	}

	checkout, err := parsePagSeguroCheckout(g.Name(), resp)
	if err != nil {
		g.logger.Warn("PagSeguro checkout refused", zap.Int64("invoice_id", inv.ID), zap.Error(err))
		return nil, err
	}

	g.logger.Info("PagSeguro checkout created",
		zap.Int64("invoice_id", inv.ID),
		zap.String("reference", ref))

	return &CheckoutSession{
		Gateway:     g.Name(),
		Token:       checkout.Code,
		RedirectURL: g.payFlowURL + checkout.Code,
		Reference:   ref,
	}, nil
}

// HandleCallback resolves a notification code into the full transaction
// detail and normalizes it. The posted fields alone carry no outcome.
func (g *PagSeguroGateway) HandleCallback(ctx context.Context, fields url.Values) (*Transaction, error) {
	code := fields.Get("notificationCode")
	if code == "" {
		return nil, &ProtocolError{Gateway: g.Name(), Err: fmt.Errorf("notification carries no notificationCode")}
	}

	resp, err := g.client.Get(ctx, g.notificationURL+code)
	if err != nil {
		return nil, &TransportError{Gateway: g.Name(), Err: err}
	}

	detail, err := parsePagSeguroTransaction(g.Name(), resp)
	if err != nil {
		return nil, err
	}

	invoiceID, err := g.ref.Decode(detail.Reference)
	if err != nil {
		return nil, &ProtocolError{Gateway: g.Name(), Err: err}
	}

	status, err := normalizeStatus(g.Name(), pagseguroStatuses, detail.Status)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(detail.GrossAmount)
	if err != nil {
		return nil, &ProtocolError{Gateway: g.Name(), Err: fmt.Errorf("parse grossAmount %q: %w", detail.GrossAmount, err)}
	}

	return &Transaction{
		InvoiceID:  invoiceID,
		ProviderID: detail.Code,
		Reference:  detail.Reference,
		Amount:     amount,
		Currency:   currencyBRL,
		Status:     status,
		Type:       TypePayment,
	}, nil
}
