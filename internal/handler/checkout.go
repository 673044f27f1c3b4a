package handler

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pagbridge/internal/gateway"
	"pagbridge/internal/repository"
)

// CheckoutHandler initiates payments and hands the payer over to the
// gateway's hosted checkout.
type CheckoutHandler struct {
	invoices *repository.InvoiceRepository
	gateways gateway.Registry
	logger   *zap.Logger
}

func NewCheckoutHandler(invoices *repository.InvoiceRepository, gateways gateway.Registry, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		invoices: invoices,
		gateways: gateways,
		logger:   logger,
	}
}

type checkoutRequest struct {
	InvoiceID int64 `json:"invoice_id"`
}

// Checkout creates a gateway session for an invoice and returns the
// redirect URL. Performing the redirect is the client's job.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	gw, ok := h.gateways.Get(c.Param("gateway"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown gateway"})
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil || req.InvoiceID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid invoice_id"})
	}

	invoice, err := h.invoices.FindByID(req.InvoiceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "invoice not found"})
	}

	session, err := gw.Initiate(c.Request().Context(), snapshotInvoice(invoice))
	if err != nil {
		h.logger.Error("checkout initiation failed",
			zap.String("gateway", gw.Name()),
			zap.Int64("invoice_id", invoice.ID),
			zap.Error(err))
		return c.JSON(statusForCheckoutError(err), map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, session)
}

// redirectPage is the self-submitting page shown while the payer is
// handed over to the gateway.
var redirectPage = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
    <meta charset="UTF-8">
    <title>Redirecionando para o pagamento</title>
</head>
<body>
    <h2><a href="{{.URL}}">Clique aqui para continuar com o pagamento...</a></h2>
    <script type="text/javascript">
        setTimeout(function() { window.location.href = {{.URL}}; }, 3000);
    </script>
</body>
</html>`))

// CheckoutRedirect initiates a payment and renders the self-submitting
// redirect page for browser-driven flows.
func (h *CheckoutHandler) CheckoutRedirect(c echo.Context) error {
	gw, ok := h.gateways.Get(c.Param("gateway"))
	if !ok {
		return c.String(http.StatusNotFound, "unknown gateway")
	}

	invoiceID, err := strconv.ParseInt(c.Param("invoice"), 10, 64)
	if err != nil || invoiceID <= 0 {
		return c.String(http.StatusBadRequest, "invalid invoice id")
	}

	invoice, err := h.invoices.FindByID(invoiceID)
	if err != nil {
		return c.String(http.StatusNotFound, "invoice not found")
	}

	session, err := gw.Initiate(c.Request().Context(), snapshotInvoice(invoice))
	if err != nil {
		h.logger.Error("checkout initiation failed",
			zap.String("gateway", gw.Name()),
			zap.Int64("invoice_id", invoice.ID),
			zap.Error(err))
		return c.String(statusForCheckoutError(err), "payment could not be initiated")
	}

	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return redirectPage.Execute(c.Response().Writer, map[string]string{"URL": session.RedirectURL})
}
