package infra

import (
	"bytes"
	"testing"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOrderPDF(t *testing.T) {
	order := &model.Order{
		OrderNumber:  "ORD-20240301-ab12cd",
		CustomerName: "Ana Pop",
		Billing:      model.Address{FirstName: "Ana", LastName: "Pop", City: "Cluj", Country: "RO"},
		Items: []model.OrderItem{
			{ProductName: "Ceramic mug", SKU: "MUG-1", Quantity: 2, Price: 9.95, Total: 19.9},
		},
		Status:    model.OrderProcessing,
		Subtotal:  19.9,
		Total:     19.9,
		Currency:  "RON",
		Notes:     "Leave at the door",
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOrderPDF(order, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "19.90 RON", money(19.9, "RON"))
	assert.Equal(t, "0.10", money(0.1, ""))
}
