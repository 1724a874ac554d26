package partner

import (
	"testing"

	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	c, err := NewCustomer("acme", "Acme Garments", ContactInfo{Email: "Buyer@Acme.test", GSTIN: "29abcde1234f1z5"})
	require.NoError(t, err)
	assert.Equal(t, "ACME", c.Code)
	assert.Equal(t, "buyer@acme.test", c.Email)
	assert.Equal(t, "29ABCDE1234F1Z5", c.GSTIN)
	assert.False(t, c.HasCreditLimit())
	assert.True(t, c.IsActive())

	_, err = NewCustomer("", "x", ContactInfo{})
	assert.Error(t, err)
	_, err = NewCustomer("X", "", ContactInfo{})
	assert.Error(t, err)
	_, err = NewCustomer("X", "x", ContactInfo{Email: "not-an-email"})
	assert.Error(t, err)
}

func TestCustomer_CheckCredit(t *testing.T) {
	c, err := NewCustomer("C1", "Loom House", ContactInfo{})
	require.NoError(t, err)

	t.Run("no limit allows anything", func(t *testing.T) {
		assert.NoError(t, c.CheckCredit(decimal.NewFromInt(1_000_000), decimal.NewFromInt(1)))
		assert.True(t, c.Credit(decimal.NewFromInt(5)).Unlimited)
	})

	require.NoError(t, c.SetCreditLimit(decimal.NewFromInt(1000)))

	t.Run("within limit", func(t *testing.T) {
		assert.NoError(t, c.CheckCredit(decimal.NewFromInt(600), decimal.NewFromInt(400)))
	})

	t.Run("over limit", func(t *testing.T) {
		err := c.CheckCredit(decimal.NewFromInt(600), decimal.NewFromFloat(400.01))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrCreditLimitExceeded)
	})

	t.Run("available credit never negative", func(t *testing.T) {
		cs := c.Credit(decimal.NewFromInt(1200))
		assert.True(t, cs.AvailableCredit.IsZero())
		cs = c.Credit(decimal.NewFromInt(250))
		assert.True(t, cs.AvailableCredit.Equal(decimal.NewFromInt(750)))
	})

	t.Run("negative limit rejected", func(t *testing.T) {
		assert.Error(t, c.SetCreditLimit(decimal.NewFromInt(-1)))
	})
}
