package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pagbridge/internal/gateway"
	"pagbridge/internal/models"
	"pagbridge/internal/repository"
)

// CallbackHandler receives the gateways' asynchronous notifications and
// records the normalized transactions against their invoices.
type CallbackHandler struct {
	invoices     *repository.InvoiceRepository
	transactions *repository.TransactionRepository
	gateways     gateway.Registry
	logger       *zap.Logger
}

func NewCallbackHandler(
	invoices *repository.InvoiceRepository,
	transactions *repository.TransactionRepository,
	gateways gateway.Registry,
	logger *zap.Logger,
) *CallbackHandler {
	return &CallbackHandler{
		invoices:     invoices,
		transactions: transactions,
		gateways:     gateways,
		logger:       logger,
	}
}

// Callback handles POST /payments/:gateway/callback. A non-2xx reply
// makes the gateway redeliver, so only failures worth a retry (transport,
// unrecognized status) return one.
func (h *CallbackHandler) Callback(c echo.Context) error {
	gw, ok := h.gateways.Get(c.Param("gateway"))
	if !ok {
		return c.String(http.StatusNotFound, "unknown gateway")
	}

	if err := c.Request().ParseForm(); err != nil {
		return c.String(http.StatusBadRequest, "invalid form payload")
	}
	form := c.Request().PostForm

	txn, err := gw.HandleCallback(c.Request().Context(), form)
	if err != nil {
		var unknown *gateway.UnknownStatusError
		if errors.As(err, &unknown) {
			// Halt loudly: a new provider code needs manual triage, and
			// the 5xx keeps the gateway redelivering until someone looks.
			h.logger.Error("unrecognized gateway status",
				zap.String("gateway", gw.Name()),
				zap.String("code", unknown.Code))
			return c.String(http.StatusInternalServerError, "unrecognized status")
		}
		h.logger.Warn("callback rejected",
			zap.String("gateway", gw.Name()),
			zap.Error(err))
		return c.String(statusForError(err), "callback could not be processed")
	}

	if err := h.record(gw.Name(), txn, form.Encode()); err != nil {
		h.logger.Error("failed to record transaction",
			zap.String("gateway", gw.Name()),
			zap.String("provider_id", txn.ProviderID),
			zap.Error(err))
		return c.String(http.StatusInternalServerError, "could not record transaction")
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CallbackHandler) record(gatewayName string, txn *gateway.Transaction, rawPayload string) error {
	invoice, invErr := h.invoices.FindByID(txn.InvoiceID)

	existing, err := h.transactions.FindByProvider(gatewayName, txn.ProviderID)
	switch {
	case err == nil:
		if existing.Status == string(gateway.StatusComplete) {
			// Already settled; the dedup layer normally catches this,
			// the record check covers restarts and dedup TTL expiry.
			return nil
		}
		if err := h.transactions.UpdateStatus(existing.ID, string(txn.Status)); err != nil {
			return err
		}
	case errors.Is(err, repository.ErrTransactionNotFound):
		currency := txn.Currency
		if invErr == nil && invoice.Currency != "" {
			currency = invoice.Currency
		}
		record := &models.Transaction{
			ID:         uuid.New().String(),
			Gateway:    gatewayName,
			ProviderID: txn.ProviderID,
			InvoiceID:  txn.InvoiceID,
			Reference:  txn.Reference,
			Amount:     txn.Amount,
			Currency:   currency,
			Status:     string(txn.Status),
			Type:       txn.Type,
			RawPayload: rawPayload,
		}
		if err := h.transactions.Create(record); err != nil {
			return err
		}
	default:
		return err
	}

	if txn.Status != gateway.StatusComplete {
		return nil
	}
	if invErr != nil {
		return invErr
	}
	if txn.Amount.LessThan(invoice.Total) {
		// Keep the transaction on record, but a partial payment does not
		// settle the invoice.
		h.logger.Warn("completed transaction does not cover the invoice total",
			zap.String("gateway", gatewayName),
			zap.Int64("invoice_id", txn.InvoiceID),
			zap.String("amount", txn.Amount.StringFixed(2)),
			zap.String("total", invoice.Total.StringFixed(2)))
		return nil
	}

	if err := h.invoices.MarkPaid(txn.InvoiceID, time.Now()); err != nil {
		return err
	}
	h.logger.Info("invoice paid",
		zap.String("gateway", gatewayName),
		zap.Int64("invoice_id", txn.InvoiceID),
		zap.String("provider_id", txn.ProviderID),
		zap.String("amount", txn.Amount.StringFixed(2)))

	return nil
}
