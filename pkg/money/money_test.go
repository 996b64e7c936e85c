package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "25.00", Format(2500))
	assert.Equal(t, "0.05", Format(5))
	assert.Equal(t, "-3.10", Format(-310))
}

func TestParse(t *testing.T) {
	c, err := Parse("25.5")
	require.NoError(t, err)
	assert.Equal(t, int64(2550), c)

	c, err = Parse("120")
	require.NoError(t, err)
	assert.Equal(t, int64(12000), c)

	_, err = Parse("1.999")
	assert.Error(t, err)

	_, err = Parse("abc")
	assert.Error(t, err)
}

func TestMultiply(t *testing.T) {
	assert.Equal(t, int64(7500), Multiply(2500, 3))
	assert.Equal(t, int64(0), Multiply(2500, 0))
}
