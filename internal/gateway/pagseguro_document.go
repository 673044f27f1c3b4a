package gateway

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"pagbridge/internal/pkg/httpclient"
)

// pagseguroDocument is the v2 checkout tree.
type pagseguroDocument struct {
	XMLName   xml.Name        `xml:"checkout"`
	Currency  string          `xml:"currency"`
	Items     pagseguroItems  `xml:"items"`
	Sender    pagseguroSender `xml:"sender"`
	Reference string          `xml:"reference"`
}

type pagseguroItems struct {
	Items []pagseguroItem `xml:"item"`
}

type pagseguroItem struct {
	ID          string `xml:"id"`
	Description string `xml:"description"`
	Amount      string `xml:"amount"`
	Quantity    int    `xml:"quantity"`
}

type pagseguroSender struct {
	Name  string `xml:"name"`
	Email string `xml:"email"`
}

// buildPagSeguroDocument maps an invoice snapshot onto the checkout tree,
// applying the configured percentage and fixed markup per item.
func buildPagSeguroDocument(inv *Invoice, cfg PagSeguroConfig, reference string) pagseguroDocument {
	hundred := decimal.NewFromInt(100)
	factor := cfg.PercTax.Add(hundred).Div(hundred)

	items := make([]pagseguroItem, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		amount := line.Price.Mul(factor).Add(cfg.FixedTax).Round(2)
		items = append(items, pagseguroItem{
			ID:          strconv.FormatInt(line.ID, 10),
			Description: line.Title,
			Amount:      amount.StringFixed(2),
			Quantity:    line.Quantity,
		})
	}

	return pagseguroDocument{
		Currency:  currencyBRL,
		Items:     pagseguroItems{Items: items},
		Sender: pagseguroSender{
			Name:  fullName(inv.Buyer),
			Email: inv.Buyer.Email,
		},
		Reference: reference,
	}
}

// pagseguroCheckout is the success response of the checkout call.
type pagseguroCheckout struct {
	XMLName xml.Name `xml:"checkout"`
	Code    string   `xml:"code"`
	Date    string   `xml:"date"`
}

// pagseguroDetail is the transaction element returned by the
// notification detail fetch.
type pagseguroDetail struct {
	XMLName     xml.Name `xml:"transaction"`
	Code        string   `xml:"code"`
	Reference   string   `xml:"reference"`
	Status      string   `xml:"status"`
	GrossAmount string   `xml:"grossAmount"`
}

type pagseguroErrors struct {
	XMLName xml.Name         `xml:"errors"`
	Errors  []pagseguroError `xml:"error"`
}

type pagseguroError struct {
	Code    string `xml:"code"`
	Message string `xml:"message"`
}

// rejectionFrom extracts the structured error list PagSeguro embeds in
// non-2xx bodies. Order follows the document.
func rejectionFrom(gateway string, body []byte) (*GatewayRejectedError, bool) {
	var parsed pagseguroErrors
	if err := xml.Unmarshal(body, &parsed); err != nil || len(parsed.Errors) == 0 {
		return nil, false
	}
	rejected := &GatewayRejectedError{Gateway: gateway}
	for _, e := range parsed.Errors {
		rejected.Reasons = append(rejected.Reasons, Rejection{Code: e.Code, Message: e.Message})
	}
	return rejected, true
}

func parsePagSeguroCheckout(gateway string, resp *httpclient.Response) (*pagseguroCheckout, error) {
	if rejected, ok := rejectionFrom(gateway, resp.Body); ok {
		return nil, rejected
	}

	var checkout pagseguroCheckout
	if err := xml.Unmarshal(resp.Body, &checkout); err != nil {
		if !resp.OK() {
			return nil, &TransportError{Gateway: gateway, Err: fmt.Errorf("gateway returned HTTP %d", resp.StatusCode)}
		}
		return nil, &ProtocolError{Gateway: gateway, Err: err}
	}
	if checkout.Code == "" {
		return nil, &ProtocolError{Gateway: gateway, Err: fmt.Errorf("checkout response carries no code")}
	}
	return &checkout, nil
}

func parsePagSeguroTransaction(gateway string, resp *httpclient.Response) (*pagseguroDetail, error) {
	if rejected, ok := rejectionFrom(gateway, resp.Body); ok {
		return nil, rejected
	}

	var detail pagseguroDetail
	if err := xml.Unmarshal(resp.Body, &detail); err != nil {
		if !resp.OK() {
			return nil, &TransportError{Gateway: gateway, Err: fmt.Errorf("gateway returned HTTP %d", resp.StatusCode)}
		}
		return nil, &ProtocolError{Gateway: gateway, Err: err}
	}
	if detail.Code == "" || detail.Status == "" {
		return nil, &ProtocolError{Gateway: gateway, Err: fmt.Errorf("notification detail carries no transaction")}
	}
	return &detail, nil
}
