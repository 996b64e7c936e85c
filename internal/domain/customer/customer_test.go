package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	c, err := NewCustomer("1234567", "Ana María", "Quispe", "Mamani", "ana@mail.bo", "71234567")
	require.NoError(t, err)
	assert.Equal(t, "Ana María Quispe Mamani", c.FullName())

	_, err = NewCustomer("12345678901", "Ana", "Q", "M", "ana@mail.bo", "7123")
	assert.ErrorIs(t, err, ErrInvalidCI)

	_, err = NewCustomer("1234567", "Ana", "Q", "M", "no-es-email", "7123")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = NewCustomer("1234567", "Ana", "Q", "M", "ana@mail.bo", "712345678")
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = NewCustomer("1234567", "Ana", "", "M", "ana@mail.bo", "7123")
	assert.ErrorIs(t, err, ErrInvalidSurname)
}
