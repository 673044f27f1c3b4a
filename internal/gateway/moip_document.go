package gateway

import (
	"encoding/xml"
	"fmt"

	"pagbridge/internal/pkg/httpclient"
)

// moipDocument is the EnviarInstrucao tree. Built once per initiation and
// never mutated after serialization.
type moipDocument struct {
	XMLName     xml.Name        `xml:"EnviarInstrucao"`
	Instruction moipInstruction `xml:"InstrucaoUnica"`
}

type moipInstruction struct {
	Reason    string        `xml:"Razao"`
	Direct    *moipDirect   `xml:"PagamentoDireto,omitempty"`
	Boleto    *moipBoleto   `xml:"Boleto,omitempty"`
	Reference string        `xml:"IdProprio"`
	Values    moipValues    `xml:"Valores"`
	Messages  moipMessages  `xml:"Mensagens"`
	Receiver  moipReceiver  `xml:"Recebedor"`
	Payer     moipPayer     `xml:"Pagador"`
}

type moipDirect struct {
	Form string `xml:"Forma"`
}

type moipBoleto struct {
	Expiration  moipExpiration `xml:"DiasExpiracao"`
	Instruction string         `xml:"Instrucao1"`
	LogoURL     string         `xml:"URLLogo"`
}

type moipExpiration struct {
	Type string `xml:"tipo,attr"`
	Days int    `xml:",chardata"`
}

type moipValues struct {
	Value moipValue `xml:"Valor"`
}

type moipValue struct {
	Currency string `xml:"moeda,attr"`
	Amount   string `xml:",chardata"`
}

type moipMessages struct {
	Messages []string `xml:"Mensagem"`
}

type moipReceiver struct {
	Login    string `xml:"LoginMoIP"`
	Email    string `xml:"Email"`
	Nickname string `xml:"Apelido"`
}

type moipPayer struct {
	Name    string      `xml:"Nome"`
	Email   string      `xml:"Email"`
	Address moipAddress `xml:"EnderecoCobranca"`
}

type moipAddress struct {
	Street   string `xml:"Logradouro"`
	Number   string `xml:"Numero"`
	City     string `xml:"Cidade"`
	State    string `xml:"Estado"`
	Country  string `xml:"Pais"`
	Phone    string `xml:"TelefoneFixo"`
	Zip      string `xml:"CEP"`
	District string `xml:"Bairro"`
}

// buildMoipDocument maps an invoice snapshot onto the instruction tree.
// Pure function: same inputs, same document.
func buildMoipDocument(inv *Invoice, cfg MoipConfig, reference string) moipDocument {
	address := splitAddress(inv.Buyer.Address)

	messages := make([]string, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		messages = append(messages, fmt.Sprintf("%s - Quant.: %d", line.Title, line.Quantity))
	}

	instruction := moipInstruction{
		Reason:    fmt.Sprintf("Fatura #%s - %s", inv.Number, inv.Seller),
		Reference: reference,
		Values: moipValues{
			Value: moipValue{Currency: currencyBRL, Amount: inv.Total.StringFixed(2)},
		},
		Messages: moipMessages{Messages: messages},
		Receiver: moipReceiver{
			Login:    cfg.Login,
			Email:    cfg.Email,
			Nickname: cfg.Nickname,
		},
		Payer: moipPayer{
			Name:  fullName(inv.Buyer),
			Email: inv.Buyer.Email,
			Address: moipAddress{
				Street:   address.Street,
				Number:   address.Number,
				City:     inv.Buyer.City,
				State:    inv.Buyer.State,
				Country:  "BRA",
				Phone:    formatPhone(inv.Buyer.Phone),
				Zip:      inv.Buyer.Zip,
				District: address.District,
			},
		},
	}

	if cfg.DirectPayment {
		instruction.Direct = &moipDirect{Form: "BoletoBancario"}
		instruction.Boleto = &moipBoleto{
			Expiration:  moipExpiration{Type: "Corridos", Days: cfg.DirectPaymentDays},
			Instruction: "Não receber após o vencimento",
			LogoURL:     cfg.DirectPaymentLogo,
		}
	}

	return moipDocument{Instruction: instruction}
}

// moipAnswer is the Resposta element of the web service response.
type moipAnswer struct {
	ID     string      `xml:"ID"`
	Status string      `xml:"Status"`
	Token  string      `xml:"Token"`
	Errors []moipError `xml:"Erro"`
}

type moipError struct {
	Code    string `xml:"Codigo,attr"`
	Message string `xml:",chardata"`
}

type moipResponse struct {
	Answer moipAnswer `xml:"Resposta"`
}

// parseMoipResponse distinguishes the three failure classes: a body that
// is not the documented schema (ProtocolError, or TransportError when the
// HTTP status already signals a framing problem), and a well-formed
// refusal (GatewayRejectedError, errors kept in document order).
func parseMoipResponse(gateway string, resp *httpclient.Response) (*moipAnswer, error) {
	var parsed moipResponse
	if err := xml.Unmarshal(resp.Body, &parsed); err != nil {
		if !resp.OK() {
			return nil, &TransportError{Gateway: gateway, Err: fmt.Errorf("gateway returned HTTP %d", resp.StatusCode)}
		}
		return nil, &ProtocolError{Gateway: gateway, Err: err}
	}

	answer := parsed.Answer
	if answer.Status != "Sucesso" {
		if len(answer.Errors) == 0 && answer.Status == "" {
			if !resp.OK() {
				return nil, &TransportError{Gateway: gateway, Err: fmt.Errorf("gateway returned HTTP %d", resp.StatusCode)}
			}
			return nil, &ProtocolError{Gateway: gateway, Err: fmt.Errorf("response carries no Resposta element")}
		}
		rejected := &GatewayRejectedError{Gateway: gateway}
		for _, e := range answer.Errors {
			rejected.Reasons = append(rejected.Reasons, Rejection{Code: e.Code, Message: e.Message})
		}
		return nil, rejected
	}
	if answer.Token == "" {
		return nil, &ProtocolError{Gateway: gateway, Err: fmt.Errorf("success response carries no token")}
	}
	return &answer, nil
}
