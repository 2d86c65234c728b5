package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocuments(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		isCPF  bool
		isCNPJ bool
	}{
		{"valid cpf", "529.982.247-25", true, false},
		{"valid cpf digits", "52998224725", true, false},
		{"bad cpf check digit", "529.982.247-26", false, false},
		{"repeated cpf", "111.111.111-11", false, false},
		{"valid cnpj", "11.222.333/0001-81", false, true},
		{"bad cnpj", "11.222.333/0001-80", false, false},
		{"repeated cnpj", "00000000000000", false, false},
		{"short", "123", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isCPF, IsCPF(tt.in))
			assert.Equal(t, tt.isCNPJ, IsCNPJ(tt.in))
		})
	}
}

func TestFormatDocument(t *testing.T) {
	assert.Equal(t, "529.982.247-25", FormatDocument("52998224725"))
	assert.Equal(t, "11.222.333/0001-81", FormatDocument("11222333000181"))
	assert.Equal(t, "abc", FormatDocument("abc"))
}

type sampleRequest struct {
	Name     string          `json:"name" validate:"required"`
	Email    string          `json:"email" validate:"omitempty,email"`
	Document string          `json:"document" validate:"omitempty,cpfcnpj"`
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
}

func TestStruct(t *testing.T) {
	ok := sampleRequest{Name: "Maria", Document: "11.222.333/0001-81", Amount: decimal.NewFromInt(10)}
	require.NoError(t, Struct(ok))

	err := Struct(sampleRequest{Email: "nope", Document: "123", Amount: decimal.Zero})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "document is not a valid CPF/CNPJ")
	assert.Contains(t, err.Error(), "amount must be greater than 0")
}
