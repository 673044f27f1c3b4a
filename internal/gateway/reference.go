package gateway

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadReference is wrapped by Decode when a callback reference does not
// match the shape this codec produces. Decode never defaults to zero: a
// misread reference would attribute the payment to the wrong invoice.
var ErrBadReference = errors.New("reference does not match the expected shape")

// ReferenceCodec embeds an invoice id, plus a nonce that keeps repeated
// attempts for one invoice distinct on the provider side, into the
// free-form reference field the gateway echoes back on notification.
type ReferenceCodec interface {
	Encode(invoiceID, nonce int64) string
	Decode(ref string) (int64, error)
}

// moipReference encodes "id$nonce". The dollar sign cannot appear in
// either numeric component.
type moipReference struct{}

func (moipReference) Encode(invoiceID, nonce int64) string {
	return strconv.FormatInt(invoiceID, 10) + "$" + strconv.FormatInt(nonce, 10)
}

func (moipReference) Decode(ref string) (int64, error) {
	head, tail, ok := strings.Cut(ref, "$")
	if !ok {
		return 0, fmt.Errorf("decode %q: %w", ref, ErrBadReference)
	}
	id, err := strconv.ParseInt(head, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("decode %q: %w", ref, ErrBadReference)
	}
	if _, err := strconv.ParseInt(tail, 10, 64); err != nil {
		return 0, fmt.Errorf("decode %q: %w", ref, ErrBadReference)
	}
	return id, nil
}

// pagseguroReference encodes "number.id.nonce". The human-readable
// invoice number leads for operator visibility in the PagSeguro panel,
// so the id is NOT the first field: decode reads it second-from-last.
type pagseguroReference struct {
	number string
}

func (r pagseguroReference) Encode(invoiceID, nonce int64) string {
	number := strings.Map(func(c rune) rune {
		if c == '.' || c == ' ' {
			return -1
		}
		return c
	}, r.number)
	return number + "." + strconv.FormatInt(invoiceID, 10) + "." + strconv.FormatInt(nonce, 10)
}

func (pagseguroReference) Decode(ref string) (int64, error) {
	fields := strings.Split(ref, ".")
	if len(fields) < 3 {
		return 0, fmt.Errorf("decode %q: %w", ref, ErrBadReference)
	}
	id, err := strconv.ParseInt(fields[len(fields)-2], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("decode %q: %w", ref, ErrBadReference)
	}
	if _, err := strconv.ParseInt(fields[len(fields)-1], 10, 64); err != nil {
		return 0, fmt.Errorf("decode %q: %w", ref, ErrBadReference)
	}
	return id, nil
}
