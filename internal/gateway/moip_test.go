package gateway

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pagbridge/internal/pkg/httpclient"
)

func testInvoice() *Invoice {
	return &Invoice{
		ID:       42,
		Number:   "INV-42",
		Seller:   "Hostbill Ltda",
		Currency: "BRL",
		Total:    decimal.RequireFromString("99.90"),
		Buyer: Buyer{
			FirstName: "Ana",
			LastName:  "Souza",
			Email:     "ana@example.com",
			Address:   "Rua das Flores, 123 Jardim Paulista",
			City:      "São Paulo",
			State:     "SP",
			Zip:       "01310-100",
			Phone:     "+55 (11) 3456-7890",
		},
		Lines: []LineItem{
			{ID: 7, Title: "Plano Pro", Quantity: 1, Price: decimal.RequireFromString("99.90")},
		},
	}
}

func testMoipConfig() MoipConfig {
	return MoipConfig{
		Login:    "loja_exemplo",
		Email:    "loja@example.com",
		Token:    "MOIPTOKEN",
		Key:      "MOIPKEY",
		Nickname: "Loja Exemplo",
		TestMode: true,
	}
}

const moipSuccessXML = `<?xml version="1.0" encoding="UTF-8"?>
<ns1:EnviarInstrucaoUnicaResponse xmlns:ns1="http://www.moip.com.br/ws/alpha/"><Resposta><ID>201608081011</ID><Status>Sucesso</Status><Token>T2N0L1M8A0V9R1I3U2K2Z7O3E9D0N8H6</Token></Resposta></ns1:EnviarInstrucaoUnicaResponse>`

const moipFailureXML = `<?xml version="1.0" encoding="UTF-8"?>
<ns1:EnviarInstrucaoUnicaResponse xmlns:ns1="http://www.moip.com.br/ws/alpha/"><Resposta><ID>201608081012</ID><Status>Falha</Status><Erro Codigo="102">Id Próprio já foi utilizado em outra Instrução</Erro><Erro Codigo="131">O valor do pagamento deverá ser enviado obrigatoriamente</Erro></Resposta></ns1:EnviarInstrucaoUnicaResponse>`

func TestNewMoipGatewayValidatesCredentials(t *testing.T) {
	for _, field := range []string{"login", "email", "token", "key"} {
		t.Run("missing "+field, func(t *testing.T) {
			cfg := testMoipConfig()
			switch field {
			case "login":
				cfg.Login = ""
			case "email":
				cfg.Email = ""
			case "token":
				cfg.Token = ""
			case "key":
				cfg.Key = ""
			}

			_, err := NewMoipGateway(cfg, zap.NewNop())

			var confErr *ConfigurationError
			require.ErrorAs(t, err, &confErr)
			assert.Equal(t, field, confErr.Field)
		})
	}
}

func TestNewMoipGatewayResolvesEndpoints(t *testing.T) {
	t.Run("production", func(t *testing.T) {
		cfg := testMoipConfig()
		cfg.TestMode = false
		g, err := NewMoipGateway(cfg, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, moipEndpoint, g.endpoint)
		assert.Equal(t, moipPayFlowURL, g.payFlowURL)
	})

	t.Run("sandbox", func(t *testing.T) {
		g, err := NewMoipGateway(testMoipConfig(), zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, moipSandboxEndpoint, g.endpoint)
		assert.Equal(t, moipSandboxPayFlowURL, g.payFlowURL)
	})
}

func TestBuildMoipDocument(t *testing.T) {
	inv := testInvoice()
	cfg := testMoipConfig()

	t.Run("maps the invoice", func(t *testing.T) {
		body, err := xml.Marshal(buildMoipDocument(inv, cfg, "42$777"))
		require.NoError(t, err)

		doc := string(body)
		assert.Contains(t, doc, "<Razao>Fatura #INV-42 - Hostbill Ltda</Razao>")
		assert.Contains(t, doc, "<IdProprio>42$777</IdProprio>")
		assert.Contains(t, doc, `<Valor moeda="BRL">99.90</Valor>`)
		assert.Contains(t, doc, "<Mensagem>Plano Pro - Quant.: 1</Mensagem>")
		assert.Contains(t, doc, "<LoginMoIP>loja_exemplo</LoginMoIP>")
		assert.Contains(t, doc, "<Nome>Ana Souza</Nome>")
		assert.Contains(t, doc, "<Logradouro>Rua das Flores</Logradouro>")
		assert.Contains(t, doc, "<Numero>123</Numero>")
		assert.Contains(t, doc, "<Bairro>Jardim Paulista</Bairro>")
		assert.Contains(t, doc, "<TelefoneFixo>(11) 3456-7890</TelefoneFixo>")
		assert.Contains(t, doc, "<Pais>BRA</Pais>")
		assert.NotContains(t, doc, "<PagamentoDireto>")
	})

	t.Run("messages element is present even without lines", func(t *testing.T) {
		bare := *inv
		bare.Lines = nil
		body, err := xml.Marshal(buildMoipDocument(&bare, cfg, "42$777"))
		require.NoError(t, err)
		assert.Contains(t, string(body), "<Mensagens></Mensagens>")
	})

	t.Run("direct payment adds the boleto subtree", func(t *testing.T) {
		direct := cfg
		direct.DirectPayment = true
		direct.DirectPaymentDays = 5
		direct.DirectPaymentLogo = "https://example.com/logo.png"

		body, err := xml.Marshal(buildMoipDocument(inv, direct, "42$777"))
		require.NoError(t, err)

		doc := string(body)
		assert.Contains(t, doc, "<Forma>BoletoBancario</Forma>")
		assert.Contains(t, doc, `<DiasExpiracao tipo="Corridos">5</DiasExpiracao>`)
		assert.Contains(t, doc, "<Instrucao1>Não receber após o vencimento</Instrucao1>")
		assert.Contains(t, doc, "<URLLogo>https://example.com/logo.png</URLLogo>")
	})
}

func TestParseMoipResponse(t *testing.T) {
	t.Run("success yields the token", func(t *testing.T) {
		answer, err := parseMoipResponse("moip", &httpclient.Response{StatusCode: 200, Body: []byte(moipSuccessXML)})
		require.NoError(t, err)
		assert.Equal(t, "T2N0L1M8A0V9R1I3U2K2Z7O3E9D0N8H6", answer.Token)
	})

	t.Run("refusal aggregates errors in document order", func(t *testing.T) {
		_, err := parseMoipResponse("moip", &httpclient.Response{StatusCode: 200, Body: []byte(moipFailureXML)})

		var rejected *GatewayRejectedError
		require.ErrorAs(t, err, &rejected)
		require.Len(t, rejected.Reasons, 2)
		assert.Equal(t, "102", rejected.Reasons[0].Code)
		assert.Equal(t, "131", rejected.Reasons[1].Code)
		assert.Equal(t,
			"102: Id Próprio já foi utilizado em outra Instrução\n131: O valor do pagamento deverá ser enviado obrigatoriamente",
			rejected.Error())
	})

	t.Run("malformed 200 body is a protocol error", func(t *testing.T) {
		_, err := parseMoipResponse("moip", &httpclient.Response{StatusCode: 200, Body: []byte("<broken")})
		var protoErr *ProtocolError
		assert.ErrorAs(t, err, &protoErr)
	})

	t.Run("malformed 5xx body is a transport error", func(t *testing.T) {
		_, err := parseMoipResponse("moip", &httpclient.Response{StatusCode: 502, Body: []byte("Bad Gateway")})
		var transErr *TransportError
		assert.ErrorAs(t, err, &transErr)
	})

	t.Run("missing Resposta element is a protocol error", func(t *testing.T) {
		_, err := parseMoipResponse("moip", &httpclient.Response{StatusCode: 200, Body: []byte("<Outro></Outro>")})
		var protoErr *ProtocolError
		assert.ErrorAs(t, err, &protoErr)
	})

	t.Run("success without token is a protocol error", func(t *testing.T) {
		body := `<Resp><Resposta><Status>Sucesso</Status></Resposta></Resp>`
		_, err := parseMoipResponse("moip", &httpclient.Response{StatusCode: 200, Body: []byte(body)})
		var protoErr *ProtocolError
		assert.ErrorAs(t, err, &protoErr)
	})
}

func TestMoipInitiate(t *testing.T) {
	var gotAuth, gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Write([]byte(moipSuccessXML))
	}))
	defer srv.Close()

	g, err := NewMoipGateway(testMoipConfig(), zap.NewNop())
	require.NoError(t, err)
	g.endpoint = srv.URL

	session, err := g.Initiate(context.Background(), testInvoice())
	require.NoError(t, err)

	assert.Equal(t, "moip", session.Gateway)
	assert.Equal(t, "T2N0L1M8A0V9R1I3U2K2Z7O3E9D0N8H6", session.Token)
	assert.Equal(t, moipSandboxPayFlowURL+session.Token, session.RedirectURL)
	assert.True(t, strings.HasPrefix(session.Reference, "42$"))

	assert.NotEmpty(t, gotAuth, "instruction must carry Basic auth")
	assert.Contains(t, gotContentType, "application/xml")
	assert.Contains(t, gotBody, "<EnviarInstrucao>")
	assert.Contains(t, gotBody, "<IdProprio>"+session.Reference+"</IdProprio>")
}

func TestMoipInitiateRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(moipFailureXML))
	}))
	defer srv.Close()

	g, err := NewMoipGateway(testMoipConfig(), zap.NewNop())
	require.NoError(t, err)
	g.endpoint = srv.URL

	_, err = g.Initiate(context.Background(), testInvoice())

	var rejected *GatewayRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Len(t, rejected.Reasons, 2)
}

func TestMoipHandleCallback(t *testing.T) {
	g, err := NewMoipGateway(testMoipConfig(), zap.NewNop())
	require.NoError(t, err)

	t.Run("completed payment", func(t *testing.T) {
		fields := url.Values{
			"id_transacao":     {moipReference{}.Encode(42, 777)},
			"status_pagamento": {"4"},
			"valor":            {"9990"},
			"cod_moip":         {"ABC"},
		}

		txn, err := g.HandleCallback(context.Background(), fields)
		require.NoError(t, err)

		assert.Equal(t, int64(42), txn.InvoiceID)
		assert.Equal(t, StatusComplete, txn.Status)
		assert.Equal(t, "ABC", txn.ProviderID)
		assert.Equal(t, "42$777", txn.Reference)
		assert.True(t, txn.Amount.Equal(decimal.RequireFromString("99.90")), "amount %s", txn.Amount)
		assert.Equal(t, "BRL", txn.Currency)
		assert.Equal(t, TypePayment, txn.Type)
	})

	t.Run("printed boleto stays pending", func(t *testing.T) {
		fields := url.Values{
			"id_transacao":     {"42$777"},
			"status_pagamento": {"3"},
			"valor":            {"9990"},
			"cod_moip":         {"DEF"},
		}

		txn, err := g.HandleCallback(context.Background(), fields)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, txn.Status)
	})

	t.Run("unmapped status is surfaced, never guessed", func(t *testing.T) {
		fields := url.Values{
			"id_transacao":     {"42$777"},
			"status_pagamento": {"9"},
			"valor":            {"9990"},
		}

		_, err := g.HandleCallback(context.Background(), fields)
		var unknown *UnknownStatusError
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("unreadable reference is a protocol error", func(t *testing.T) {
		fields := url.Values{
			"id_transacao":     {"not-ours"},
			"status_pagamento": {"4"},
			"valor":            {"9990"},
		}

		_, err := g.HandleCallback(context.Background(), fields)
		var protoErr *ProtocolError
		assert.ErrorAs(t, err, &protoErr)
	})
}
