package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartLineSubtotal(t *testing.T) {
	line := CartLine{
		ProductID: 1,
		Price:     decimal.RequireFromString("10.00"),
		Quantity:  2,
	}

	assert.True(t, decimal.RequireFromString("20.00").Equal(line.Subtotal()))
}

func TestCartTotalAcrossLines(t *testing.T) {
	lines := []CartLine{
		{ProductID: 3, Price: decimal.RequireFromString("5.00"), Quantity: 1},
		{ProductID: 4, Price: decimal.RequireFromString("7.50"), Quantity: 1},
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}

	assert.True(t, decimal.RequireFromString("12.50").Equal(total))
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderStatusPending))
	assert.True(t, ValidOrderStatus(OrderStatusShipped))
	assert.False(t, ValidOrderStatus("PENDING"))
	assert.False(t, ValidOrderStatus(""))
}

func TestValidPaymentStatus(t *testing.T) {
	assert.True(t, ValidPaymentStatus(PaymentStatusPaid))
	assert.False(t, ValidPaymentStatus("refunded"))
}
