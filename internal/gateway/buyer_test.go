package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullName(t *testing.T) {
	t.Run("joins first and last", func(t *testing.T) {
		assert.Equal(t, "Ana Souza", fullName(Buyer{FirstName: "Ana", LastName: "Souza"}))
	})

	t.Run("missing last name gets title prefix", func(t *testing.T) {
		assert.Equal(t, "Sr(a). Ana", fullName(Buyer{FirstName: "Ana"}))
	})
}

func TestSplitAddress(t *testing.T) {
	t.Run("full shape", func(t *testing.T) {
		parts := splitAddress("Rua das Flores, 123 Jardim Paulista")
		assert.Equal(t, "Rua das Flores", parts.Street)
		assert.Equal(t, "123", parts.Number)
		assert.Equal(t, "Jardim Paulista", parts.District)
	})

	t.Run("no comma degrades to street only", func(t *testing.T) {
		parts := splitAddress("Rua das Flores 123")
		assert.Equal(t, "Rua das Flores 123", parts.Street)
		assert.Empty(t, parts.Number)
		assert.Empty(t, parts.District)
	})

	t.Run("number without neighborhood", func(t *testing.T) {
		parts := splitAddress("Rua das Flores, 123")
		assert.Equal(t, "123", parts.Number)
		assert.Empty(t, parts.District)
	})

	t.Run("empty input", func(t *testing.T) {
		parts := splitAddress("")
		assert.Empty(t, parts.Street)
		assert.Empty(t, parts.Number)
		assert.Empty(t, parts.District)
	})
}

func TestFormatPhone(t *testing.T) {
	t.Run("regroups after stripping country prefix", func(t *testing.T) {
		assert.Equal(t, "(11) 3456-7890", formatPhone("+55 (11) 3456-7890"))
	})

	t.Run("plain digits", func(t *testing.T) {
		assert.Equal(t, "(11) 3456-7890", formatPhone("551134567890"))
	})

	t.Run("too short yields empty", func(t *testing.T) {
		assert.Equal(t, "", formatPhone("55"))
		assert.Equal(t, "", formatPhone(""))
	})

	t.Run("unexpected length passes through ungrouped", func(t *testing.T) {
		assert.Equal(t, "119876", formatPhone("55119876"))
	})
}
