package handler

import (
	"errors"
	"net/http"

	"pagbridge/internal/gateway"
	"pagbridge/internal/models"
)

// statusForError maps the adapter error taxonomy onto HTTP statuses for
// the callback path. Transport and unknown-status failures return 5xx so
// the gateway redelivers; rejections and undecodable payloads do not.
func statusForError(err error) int {
	var (
		cfgErr       *gateway.ConfigurationError
		transportErr *gateway.TransportError
		protocolErr  *gateway.ProtocolError
		rejectedErr  *gateway.GatewayRejectedError
		unknownErr   *gateway.UnknownStatusError
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	case errors.As(err, &protocolErr):
		return http.StatusBadRequest
	case errors.As(err, &rejectedErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unknownErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// statusForCheckoutError is the outbound-direction mapping. A
// ProtocolError on checkout means the gateway answered with a malformed
// body, an upstream fault rather than a bad request of ours.
func statusForCheckoutError(err error) int {
	var protocolErr *gateway.ProtocolError
	if errors.As(err, &protocolErr) {
		return http.StatusBadGateway
	}
	return statusForError(err)
}

// snapshotInvoice maps the stored invoice onto the immutable view the
// adapters consume.
func snapshotInvoice(inv *models.Invoice) *gateway.Invoice {
	lines := make([]gateway.LineItem, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, gateway.LineItem{
			ID:       l.ID,
			Title:    l.Title,
			Quantity: l.Quantity,
			Price:    l.Price,
		})
	}

	return &gateway.Invoice{
		ID:       inv.ID,
		Number:   inv.Number,
		Seller:   inv.Seller,
		Currency: inv.Currency,
		Total:    inv.Total,
		Buyer: gateway.Buyer{
			FirstName: inv.BuyerFirstName,
			LastName:  inv.BuyerLastName,
			Email:     inv.BuyerEmail,
			Address:   inv.BuyerAddress,
			City:      inv.BuyerCity,
			State:     inv.BuyerState,
			Zip:       inv.BuyerZip,
			Phone:     inv.BuyerPhone,
		},
		Lines: lines,
	}
}
