package gateway

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"pagbridge/internal/pkg/httpclient"
)

const (
	moipEndpoint        = "https://www.moip.com.br/ws/alpha/EnviarInstrucao/Unica"
	moipSandboxEndpoint = "https://desenvolvedor.moip.com.br/sandbox/ws/alpha/EnviarInstrucao/Unica"

	moipPayFlowURL        = "https://www.moip.com.br/Instrucao.do?token="
	moipSandboxPayFlowURL = "https://desenvolvedor.moip.com.br/sandbox/Instrucao.do?token="
)

// MoipConfig carries the credentials issued by Moip plus checkout options.
// Login, Email, Token and Key are required.
type MoipConfig struct {
	Login    string
	Email    string
	Token    string
	Key      string
	Nickname string

	// DirectPayment switches the instruction to bank-slip (boleto) mode.
	DirectPayment     bool
	DirectPaymentDays int
	DirectPaymentLogo string

	TestMode bool
}

func (c MoipConfig) enabled() bool {
	return c.Login != "" || c.Email != "" || c.Token != "" || c.Key != ""
}

// MoipGateway charges invoices through Moip's EnviarInstrucao web service
// and interprets its NASP payment notifications.
type MoipGateway struct {
	cfg    MoipConfig
	client *httpclient.Client
	ref    ReferenceCodec
	logger *zap.Logger

	endpoint   string
	payFlowURL string
}

// NewMoipGateway validates the configuration and resolves the endpoint
// set for the configured mode. Missing credentials fail here, not on the
// first payment.
func NewMoipGateway(cfg MoipConfig, logger *zap.Logger) (*MoipGateway, error) {
	for _, f := range []struct{ name, value string }{
		{"login", cfg.Login},
		{"email", cfg.Email},
		{"token", cfg.Token},
		{"key", cfg.Key},
	} {
		if f.value == "" {
			return nil, &ConfigurationError{Gateway: "moip", Field: f.name}
		}
	}

	client := httpclient.New().
		WithTimeout(60 * time.Second).
		WithBasicAuth(cfg.Token, cfg.Key)

	g := &MoipGateway{
		cfg:        cfg,
		client:     client,
		ref:        moipReference{},
		logger:     logger,
		endpoint:   moipEndpoint,
		payFlowURL: moipPayFlowURL,
	}
	if cfg.TestMode {
		g.endpoint = moipSandboxEndpoint
		g.payFlowURL = moipSandboxPayFlowURL
		g.client.WithInsecureSkipVerify()
	}
	return g, nil
}

func (g *MoipGateway) Name() string {
	return "moip"
}

// Initiate builds the payment instruction, posts it with Basic auth and
// returns the checkout session for the issued token.
func (g *MoipGateway) Initiate(ctx context.Context, inv *Invoice) (*CheckoutSession, error) {
	ref := g.ref.Encode(inv.ID, newNonce())
	doc := buildMoipDocument(inv, g.cfg, ref)

	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, &ProtocolError{Gateway: g.Name(), Err: fmt.Errorf("marshal instruction: %w", err)}
	}
	body = append([]byte(xml.Header), body...)

	resp, err := g.client.PostXML(ctx, g.endpoint, body)
	if err != nil {
		return nil, &TransportError{Gateway: g.Name(), Err: err}
	}

	answer, err := parseMoipResponse(g.Name(), resp)
	if err != nil {
		g.logger.Warn("Moip instruction refused", zap.Int64("invoice_id", inv.ID), zap.Error(err))
		return nil, err
	}

	g.logger.Info("Moip instruction accepted",
		zap.Int64("invoice_id", inv.ID),
		zap.String("reference", ref))

	return &CheckoutSession{
		Gateway:     g.Name(),
		Token:       answer.Token,
		RedirectURL: g.payFlowURL + answer.Token,
		Reference:   ref,
	}, nil
}

// HandleCallback normalizes a NASP notification. Moip posts everything we
// need: no follow-up fetch is required.
func (g *MoipGateway) HandleCallback(_ context.Context, fields url.Values) (*Transaction, error) {
	ref := fields.Get("id_transacao")
	invoiceID, err := g.ref.Decode(ref)
	if err != nil {
		return nil, &ProtocolError{Gateway: g.Name(), Err: err}
	}

	status, err := normalizeStatus(g.Name(), moipStatuses, fields.Get("status_pagamento"))
	if err != nil {
		return nil, err
	}

	amount, err := minorUnitsToAmount(fields.Get("valor"))
	if err != nil {
		return nil, &ProtocolError{Gateway: g.Name(), Err: err}
	}

	return &Transaction{
		InvoiceID:  invoiceID,
		ProviderID: fields.Get("cod_moip"),
		Reference:  ref,
		Amount:     amount,
		Currency:   currencyBRL,
		Status:     status,
		Type:       TypePayment,
	}, nil
}
