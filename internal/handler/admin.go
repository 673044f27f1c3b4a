package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pagbridge/internal/repository"
)

// AdminHandler serves the operator listing endpoints behind API auth.
type AdminHandler struct {
	invoices     *repository.InvoiceRepository
	transactions *repository.TransactionRepository
	logger       *zap.Logger
}

func NewAdminHandler(invoices *repository.InvoiceRepository, transactions *repository.TransactionRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		invoices:     invoices,
		transactions: transactions,
		logger:       logger,
	}
}

// ListInvoices returns paginated invoices.
func (h *AdminHandler) ListInvoices(c echo.Context) error {
	limit, page, query := listParams(c)

	invoices, total, err := h.invoices.FindAll(limit, page, query)
	if err != nil {
		h.logger.Error("failed to list invoices", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": invoices,
		"total": total,
		"page":  page,
	})
}

// ListTransactions returns paginated gateway transactions.
func (h *AdminHandler) ListTransactions(c echo.Context) error {
	limit, page, query := listParams(c)

	transactions, total, err := h.transactions.FindAll(limit, page, query)
	if err != nil {
		h.logger.Error("failed to list transactions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": transactions,
		"total": total,
		"page":  page,
	})
}

func listParams(c echo.Context) (limit, page int, query string) {
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	page, _ = strconv.Atoi(c.QueryParam("page"))
	return limit, page, c.QueryParam("q")
}
