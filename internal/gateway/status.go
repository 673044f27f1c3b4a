package gateway

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Moip NASP payment status table (WebService v1.5 docs).
var moipStatuses = map[int]Status{
	1: StatusComplete, // Autorizado
	2: StatusPending,  // Iniciado
	3: StatusPending,  // Boleto impresso
	4: StatusComplete, // Concluído
	5: StatusFailed,   // Cancelado
	6: StatusPending,  // Em análise
	7: StatusFailed,   // Estornado
}

// PagSeguro v2 transaction status table.
var pagseguroStatuses = map[int]Status{
	1: StatusPending,  // Aguardando pagamento
	2: StatusPending,  // Em análise
	3: StatusComplete, // Paga
	4: StatusComplete, // Disponível
	5: StatusPending,  // Em disputa
	6: StatusFailed,   // Devolvida
	7: StatusFailed,   // Cancelada
}

// normalizeStatus maps a provider status code onto the canonical outcome.
// Codes outside the documented table fail with UnknownStatusError rather
// than normalizing to a guessed pending/failed.
func normalizeStatus(gateway string, table map[int]Status, code string) (Status, error) {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return StatusUnknown, &UnknownStatusError{Gateway: gateway, Code: code}
	}
	st, ok := table[n]
	if !ok {
		return StatusUnknown, &UnknownStatusError{Gateway: gateway, Code: code}
	}
	return st, nil
}

// minorUnitsToAmount converts a minor-unit integer string ("9990") into
// the decimal amount (99.90). Moip reports callback amounts in centavos.
func minorUnitsToAmount(raw string) (decimal.Decimal, error) {
	cents, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse minor-unit amount %q: %w", raw, err)
	}
	return decimal.New(cents, -2), nil
}
