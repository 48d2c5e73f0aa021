package payments

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayment(t *testing.T) {
	p, err := parsePayment(map[string]interface{}{
		"id":       "pay_29QQoUBi66xm2f",
		"entity":   "payment",
		"amount":   float64(50000),
		"currency": "INR",
		"status":   "captured",
		"order_id": "order_9A33XWu170gUtm",
	})
	require.NoError(t, err)
	assert.Equal(t, "pay_29QQoUBi66xm2f", p.ID)
	assert.Equal(t, int64(50000), p.AmountMinor)
	assert.Equal(t, "order_9A33XWu170gUtm", p.OrderID)
	assert.True(t, p.Settled())
}

func TestParsePayment_Rejects(t *testing.T) {
	_, err := parsePayment(map[string]interface{}{"amount": float64(1)})
	assert.Error(t, err)

	_, err = parsePayment(map[string]interface{}{"id": "pay_1", "amount": "100"})
	assert.Error(t, err)
}

func TestPayment_Settled(t *testing.T) {
	for status, want := range map[string]bool{
		"created":    false,
		"authorized": true,
		"captured":   true,
		"refunded":   false,
		"failed":     false,
	} {
		assert.Equal(t, want, Payment{Status: status}.Settled(), status)
	}
}

func TestGatewayError(t *testing.T) {
	cause := errors.New("connection reset")
	err := error(&GatewayError{Op: "create order", Err: cause})

	assert.ErrorIs(t, err, ErrGateway)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "create order")
}

func TestOrder_ID(t *testing.T) {
	assert.Equal(t, "order_1", Order{"id": "order_1", "amount": 50000}.ID())
	assert.Equal(t, "", Order{}.ID())
}

func TestToMinor(t *testing.T) {
	minor, err := ToMinor(500)
	assert.NoError(t, err)
	assert.Equal(t, int64(50000), minor)

	minor, err = ToMinor(MaxAmount)
	assert.NoError(t, err)
	assert.Equal(t, int64(MaxAmount)*100, minor)

	for _, amount := range []int64{0, -1, MaxAmount + 1, 1<<61, 1<<62 + 1, math.MaxInt64} {
		_, err := ToMinor(amount)
		assert.ErrorIs(t, err, ErrAmountOutOfRange, "amount %d", amount)
	}
}
